package studio

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hpungsan/atelier/internal/errors"
)

// ToDataURL encodes raw bytes as a data URL with the given MIME type.
func ToDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// ParseDataURL splits a data URL into its MIME type and decoded bytes.
func ParseDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, errors.NewInvalidRequest("invalid data URL format")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.NewInvalidRequest("invalid data URL format")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return "", nil, errors.NewInvalidRequest("invalid data URL format")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.NewInvalidRequest("invalid data URL payload: " + err.Error())
	}
	return mimeType, data, nil
}

// GuessMIME maps a file extension to an image MIME type, defaulting to PNG.
func GuessMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "image/png"
}
