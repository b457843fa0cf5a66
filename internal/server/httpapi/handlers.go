package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
)

type fileRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type startResponse struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

type signPartRequest struct {
	Key        string `json:"key"`
	UploadID   string `json:"uploadId"`
	PartNumber int32  `json:"partNumber"`
}

type signPartResponse struct {
	URL string `json:"url"`
}

type completeRequest struct {
	Key      string                 `json:"key"`
	UploadID string                 `json:"uploadId"`
	Parts    []models.CompletedPart `json:"parts"`
}

type abortRequest struct {
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}

type deleteRequest struct {
	Key  string   `json:"key"`
	Keys []string `json:"keys"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", common.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) postUpload(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	url, key, err := s.media.GenerateUploadURL(r.Context(), req.FileName, req.FileType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{URL: url, Key: key})
}

func (s *Server) postMultipartStart(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	uploadID, key, err := s.media.StartMultipart(r.Context(), req.FileName, req.FileType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, startResponse{UploadID: uploadID, Key: key})
}

func (s *Server) postMultipartSignPart(w http.ResponseWriter, r *http.Request) {
	var req signPartRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	url, err := s.media.SignPart(r.Context(), req.Key, req.UploadID, req.PartNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, signPartResponse{URL: url})
}

func (s *Server) postMultipartComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.media.CompleteMultipart(r.Context(), req.Key, req.UploadID, req.Parts); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) postMultipartAbort(w http.ResponseWriter, r *http.Request) {
	var req abortRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.media.AbortMultipart(r.Context(), req.Key, req.UploadID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) getMedia(w http.ResponseWriter, r *http.Request) {
	files, err := s.media.ListMedia(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (s *Server) postMediaDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	switch {
	case req.Keys != nil:
		s.media.DeleteFiles(r.Context(), req.Keys)
	case req.Key != "":
		if err := s.media.DeleteFile(r.Context(), req.Key); err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing key or keys"})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
