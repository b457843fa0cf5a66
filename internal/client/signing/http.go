package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/common"
)

// Endpoint paths, relative to the service base URL.
const (
	PathSingleShot        = "/upload"
	PathMultipartStart    = "/upload/multipart/start"
	PathMultipartSignPart = "/upload/multipart/sign-part"
	PathMultipartComplete = "/upload/multipart/complete"
	PathMultipartAbort    = "/upload/multipart/abort"
)

// Wire shapes shared with the signing service.
type (
	FileRequest struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}

	SingleShotResponse struct {
		URL string `json:"url"`
		Key string `json:"key"`
	}

	StartResponse struct {
		UploadID string `json:"uploadId"`
		Key      string `json:"key"`
	}

	SignPartRequest struct {
		Key        string `json:"key"`
		UploadID   string `json:"uploadId"`
		PartNumber int    `json:"partNumber"`
	}

	SignPartResponse struct {
		URL string `json:"url"`
	}

	CompleteRequest struct {
		Key      string              `json:"key"`
		UploadID string              `json:"uploadId"`
		Parts    []models.PartResult `json:"parts"`
	}

	AbortRequest struct {
		Key      string `json:"key"`
		UploadID string `json:"uploadId"`
	}

	SuccessResponse struct {
		Success bool `json:"success"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// HTTPClient implements Client against the JSON endpoints of the signing
// service.
type HTTPClient struct {
	baseURL     string
	accessToken string
	client      *http.Client
	timeout     time.Duration
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithAccessToken sends "Authorization: Bearer <token>" on every call.
func WithAccessToken(token string) Option {
	return func(c *HTTPClient) { c.accessToken = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// WithTimeout bounds every signing call. It applies to whichever http.Client
// the client ends up with.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) RequestSingleShotURL(ctx context.Context, name, contentType string) (string, string, error) {
	var resp SingleShotResponse
	if err := c.post(ctx, PathSingleShot, FileRequest{FileName: name, FileType: contentType}, &resp); err != nil {
		return "", "", err
	}
	if resp.URL == "" || resp.Key == "" {
		return "", "", &common.SigningError{Endpoint: PathSingleShot, Reason: "response is missing url or key"}
	}
	return resp.URL, resp.Key, nil
}

func (c *HTTPClient) BeginMultipart(ctx context.Context, name, contentType string) (string, string, error) {
	var resp StartResponse
	if err := c.post(ctx, PathMultipartStart, FileRequest{FileName: name, FileType: contentType}, &resp); err != nil {
		return "", "", err
	}
	if resp.UploadID == "" || resp.Key == "" {
		return "", "", &common.SigningError{Endpoint: PathMultipartStart, Reason: "response is missing uploadId or key"}
	}
	return resp.UploadID, resp.Key, nil
}

func (c *HTTPClient) RequestPartURL(ctx context.Context, key, uploadID string, partNumber int) (string, error) {
	var resp SignPartResponse
	req := SignPartRequest{Key: key, UploadID: uploadID, PartNumber: partNumber}
	if err := c.post(ctx, PathMultipartSignPart, req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", &common.SigningError{Endpoint: PathMultipartSignPart, Reason: "response is missing url"}
	}
	return resp.URL, nil
}

func (c *HTTPClient) CompleteMultipart(ctx context.Context, key, uploadID string, receipts []models.PartResult) error {
	var resp SuccessResponse
	req := CompleteRequest{Key: key, UploadID: uploadID, Parts: receipts}
	if err := c.post(ctx, PathMultipartComplete, req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &common.SigningError{Endpoint: PathMultipartComplete, Reason: "service did not confirm completion"}
	}
	return nil
}

func (c *HTTPClient) AbortMultipart(ctx context.Context, key, uploadID string) error {
	return c.post(ctx, PathMultipartAbort, AbortRequest{Key: key, UploadID: uploadID}, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &common.SigningError{Endpoint: path, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &common.SigningError{Endpoint: path, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &common.SigningError{Endpoint: path, StatusCode: resp.StatusCode, Reason: errorReason(resp)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &common.SigningError{Endpoint: path, StatusCode: resp.StatusCode, Reason: "malformed response: " + err.Error()}
	}
	return nil
}

func errorReason(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er ErrorResponse
	if json.Unmarshal(b, &er) == nil && er.Error != "" {
		return er.Error
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}
