package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/sitefund/backend/internal/interfaces/http/dto"
)

func newMeta(page, pageSize int, total int64) dto.Meta {
	return dto.NewMeta(page, pageSize, total)
}

var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/heic":      {},
}

// readUpload reads the multipart file field into memory and returns its
// bytes and declared content type. Uploads are size-capped by the route's
// body limit before they reach here.
func readUpload(c *gin.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing file field %q: %w", field, err)
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedUploadTypes[contentType]; !ok {
		return nil, "", fmt.Errorf("unsupported content type %q", contentType)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
