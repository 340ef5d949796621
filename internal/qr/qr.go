// Package qr renders text content as a PNG QR image.
package qr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyContent is returned when the content is empty or only whitespace.
var ErrEmptyContent = errors.New("qr content cannot be empty")

// DefaultSize is the image size in pixels used when size is not positive.
const DefaultSize = 256

// EncodePNG renders content as a PNG QR image with medium error correction.
func EncodePNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	return png, nil
}

// EncodeBase64PNG renders content as a PNG QR image and returns it
// base64-encoded for transport inside a JSON payload.
func EncodeBase64PNG(content string, size int) (string, error) {
	png, err := EncodePNG(content, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
