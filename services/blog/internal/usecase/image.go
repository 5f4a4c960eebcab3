package usecase

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"blog-service/services/blog/internal/entity"
)

// ImageUpload is a raw image payload supplied by the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// DecodeDataURI parses a base64 data URI such as "data:image/png;base64,....".
func DecodeDataURI(uri string) (*ImageUpload, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("%w: image must be a base64 data URI", entity.ErrInvalidInput)
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: image must be a base64 data URI", entity.ErrInvalidInput)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed base64 image: %v", entity.ErrInvalidInput, err)
	}

	return &ImageUpload{
		ContentType: strings.TrimSuffix(meta, ";base64"),
		Data:        data,
	}, nil
}

// sniffImage checks the payload really is an image and returns its content
// type and file extension.
func sniffImage(img *ImageUpload, maxBytes int64) (string, string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", "", fmt.Errorf("%w: image is required", entity.ErrInvalidInput)
	}
	if maxBytes > 0 && int64(len(img.Data)) > maxBytes {
		return "", "", fmt.Errorf("%w: image exceeds %d bytes", entity.ErrInvalidInput, maxBytes)
	}

	contentType := http.DetectContentType(img.Data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", fmt.Errorf("%w: unsupported image type %s", entity.ErrInvalidInput, contentType)
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(img.Filename))
	}
	return contentType, ext, nil
}
