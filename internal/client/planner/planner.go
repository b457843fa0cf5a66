// Package planner decides between single-shot and multipart transfer and
// splits a file into ordered byte ranges.
package planner

import (
	"fmt"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/common"
)

// Plan returns a single-part plan when size <= threshold, otherwise
// ceil(size/partSize) contiguous parts where only the last one may be short.
// More than common.MaxMultipartParts parts is rejected before any upload.
//
// contentType does not influence the split; it is accepted so every plan
// decision has the full file description available.
func Plan(size int64, contentType string, threshold, partSize int64) (models.Plan, error) {
	if size <= 0 {
		return models.Plan{}, fmt.Errorf("%w: file size must be > 0, got %d", common.ErrInvalidInput, size)
	}
	if threshold <= 0 || partSize <= 0 {
		return models.Plan{}, fmt.Errorf("%w: threshold and part size must be > 0", common.ErrInvalidInput)
	}

	if size <= threshold {
		return models.Plan{
			Mode:  models.ModeSingle,
			Size:  size,
			Parts: []models.PartSpec{{Number: 1, Offset: 0, Length: size}},
		}, nil
	}

	count := (size + partSize - 1) / partSize
	if count > common.MaxMultipartParts {
		return models.Plan{}, fmt.Errorf("%w: %d parts exceed the limit of %d, use a larger part size",
			common.ErrInvalidInput, count, common.MaxMultipartParts)
	}
	parts := make([]models.PartSpec, count)
	for i := range int(count) {
		offset := int64(i) * partSize
		parts[i] = models.PartSpec{
			Number: i + 1,
			Offset: offset,
			Length: min(partSize, size-offset),
		}
	}

	return models.Plan{Mode: models.ModeMultipart, Size: size, Parts: parts}, nil
}
