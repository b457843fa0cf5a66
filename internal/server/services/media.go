// Package services holds the signing service's business logic: it mints
// pre-authorized URLs, drives multipart sessions and serves the gallery
// listing on top of an S3-compatible store.
package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/filex"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	sc "github.com/dmitrijs2005/mediavault/internal/server/config"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/dmitrijs2005/mediavault/internal/server/storage"
)

// deleteParallelism bounds concurrent DeleteObject calls in a batch.
const deleteParallelism = 8

var newID = uuid.NewString

type MediaService struct {
	store     storage.ObjectStore
	presigner storage.Presigner
	config    *sc.Config
	logger    logging.Logger
}

func NewMediaService(store storage.ObjectStore, presigner storage.Presigner, c *sc.Config, l logging.Logger) *MediaService {
	return &MediaService{
		store:     store,
		presigner: presigner,
		config:    c,
		logger:    logging.OrNop(l).With("module", "media_service"),
	}
}

// NewStorageKey returns "<prefix><uuid>.<ext>", or "<prefix><uuid>" when
// fileName has no extension.
func (s *MediaService) NewStorageKey(fileName string) string {
	key := s.config.KeyPrefix + newID()
	if ext := filex.Extension(fileName); ext != "" {
		key += "." + ext
	}
	return key
}

// GenerateUploadURL presigns a single PutObject for a new key.
func (s *MediaService) GenerateUploadURL(ctx context.Context, fileName, fileType string) (url string, key string, err error) {
	if fileName == "" || fileType == "" {
		return "", "", common.ErrorMissingFields
	}

	key = s.NewStorageKey(fileName)

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return "", "", mapStorageError("presign put", err)
	}

	return req.URL, key, nil
}

// StartMultipart opens a multipart session for a new key.
func (s *MediaService) StartMultipart(ctx context.Context, fileName, fileType string) (uploadID string, key string, err error) {
	if fileName == "" || fileType == "" {
		return "", "", common.ErrorMissingFields
	}

	key = s.NewStorageKey(fileName)

	out, err := s.store.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	})
	if err != nil {
		return "", "", mapStorageError("create multipart upload", err)
	}
	if out.UploadId == nil || *out.UploadId == "" {
		return "", "", fmt.Errorf("%w: create multipart upload returned no upload id", common.ErrStorageBackend)
	}

	s.logger.Info(ctx, "multipart upload started", "key", key, "upload_id", *out.UploadId)
	return *out.UploadId, key, nil
}

// SignPart presigns one UploadPart of an open session.
func (s *MediaService) SignPart(ctx context.Context, key, uploadID string, partNumber int32) (string, error) {
	if err := s.checkSession(key, uploadID); err != nil {
		return "", err
	}
	if partNumber < 1 || partNumber > common.MaxMultipartParts {
		return "", fmt.Errorf("%w: part number %d out of range 1..%d", common.ErrInvalidInput, partNumber, common.MaxMultipartParts)
	}

	req, err := s.presigner.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(s.config.S3Bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return "", mapStorageError("presign upload part", err)
	}

	return req.URL, nil
}

// CompleteMultipart assembles the object from the given receipts. Parts
// must be numbered from 1 in strictly ascending order.
func (s *MediaService) CompleteMultipart(ctx context.Context, key, uploadID string, parts []models.CompletedPart) error {
	if err := s.checkSession(key, uploadID); err != nil {
		return err
	}
	if err := validateParts(parts); err != nil {
		return err
	}

	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		})
	}

	_, err := s.store.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.config.S3Bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return mapStorageError("complete multipart upload", err)
	}

	s.logger.Info(ctx, "multipart upload completed", "key", key, "parts", len(parts))
	return nil
}

// AbortMultipart discards an open session and its uploaded parts.
func (s *MediaService) AbortMultipart(ctx context.Context, key, uploadID string) error {
	if err := s.checkSession(key, uploadID); err != nil {
		return err
	}

	_, err := s.store.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.config.S3Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return mapStorageError("abort multipart upload", err)
	}

	s.logger.Info(ctx, "multipart upload aborted", "key", key, "upload_id", uploadID)
	return nil
}

// ListMedia returns every object stored under the key prefix.
func (s *MediaService) ListMedia(ctx context.Context) ([]models.MediaFile, error) {
	files := []models.MediaFile{}

	p := s3.NewListObjectsV2Paginator(s.store, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.config.S3Bucket),
		Prefix: aws.String(s.config.KeyPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapStorageError("list objects", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, models.MediaFile{
				Key:          key,
				FileName:     path.Base(key),
				URL:          s.objectURL(key),
				LastModified: aws.ToTime(obj.LastModified),
				FileSize:     aws.ToInt64(obj.Size),
				Metadata:     models.Metadata{MimeType: filex.InferMimeType(key)},
			})
		}
	}

	return files, nil
}

// DeleteFile removes one object.
func (s *MediaService) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return common.ErrorMissingFields
	}

	_, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapStorageError("delete object", err)
	}
	return nil
}

// DeleteFiles removes keys in parallel. Individual failures are logged and
// do not fail the batch; the number of removed objects is returned.
func (s *MediaService) DeleteFiles(ctx context.Context, keys []string) int {
	deleted := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteParallelism)
	for i, key := range keys {
		g.Go(func() error {
			if err := s.DeleteFile(gctx, key); err != nil {
				s.logger.Warn(ctx, "delete failed", "key", key, "error", err)
				return nil
			}
			deleted[i] = true
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range deleted {
		if ok {
			n++
		}
	}
	s.logger.Info(ctx, "batch delete finished", "requested", len(keys), "deleted", n)
	return n
}

// SweepStaleUploads aborts multipart sessions under the key prefix that
// were initiated more than maxAge ago and returns how many it aborted.
func (s *MediaService) SweepStaleUploads(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	aborted := 0

	input := &s3.ListMultipartUploadsInput{
		Bucket: aws.String(s.config.S3Bucket),
		Prefix: aws.String(s.config.KeyPrefix),
	}
	for {
		out, err := s.store.ListMultipartUploads(ctx, input)
		if err != nil {
			return aborted, mapStorageError("list multipart uploads", err)
		}

		for _, u := range out.Uploads {
			if u.Initiated == nil || u.Initiated.After(cutoff) {
				continue
			}
			key, id := aws.ToString(u.Key), aws.ToString(u.UploadId)
			if err := s.AbortMultipart(ctx, key, id); err != nil {
				s.logger.Warn(ctx, "stale upload abort failed", "key", key, "upload_id", id, "error", err)
				continue
			}
			aborted++
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.KeyMarker = out.NextKeyMarker
		input.UploadIdMarker = out.NextUploadIdMarker
	}

	return aborted, nil
}

func (s *MediaService) objectURL(key string) string {
	return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
}

func (s *MediaService) checkSession(key, uploadID string) error {
	if key == "" || uploadID == "" {
		return common.ErrorMissingFields
	}
	if !strings.HasPrefix(key, s.config.KeyPrefix) {
		return fmt.Errorf("%w: key %q is outside %q", common.ErrInvalidInput, key, s.config.KeyPrefix)
	}
	return nil
}

func validateParts(parts []models.CompletedPart) error {
	if len(parts) == 0 {
		return fmt.Errorf("%w: no parts", common.ErrInvalidInput)
	}
	for i, p := range parts {
		if p.PartNumber < 1 {
			return fmt.Errorf("%w: part number %d is not positive", common.ErrInvalidInput, p.PartNumber)
		}
		if i > 0 && p.PartNumber <= parts[i-1].PartNumber {
			return fmt.Errorf("%w: parts must be in ascending order without duplicates", common.ErrInvalidInput)
		}
		if p.ETag == "" {
			return fmt.Errorf("%w: part %d has no ETag", common.ErrInvalidInput, p.PartNumber)
		}
	}
	return nil
}

func mapStorageError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchUpload", "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrStorageBackend, err)
}
