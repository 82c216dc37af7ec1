package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// LinkService turns a QR identifier into the scannable URL and PNG image.
type LinkService struct {
	baseURL string
	pngSize int
}

// NewLinkService builds a link service. baseURL is the public origin the scan
// links point at, e.g. "https://qr.example.com".
func NewLinkService(baseURL string, pngSize int) *LinkService {
	if pngSize <= 0 {
		pngSize = 256
	}
	return &LinkService{baseURL: strings.TrimRight(baseURL, "/"), pngSize: pngSize}
}

// URL returns the scan URL embedding the opaque token.
func (s *LinkService) URL(token string) string {
	return fmt.Sprintf("%s/qr/scan/%s", s.baseURL, token)
}

// ImageDataURL renders the scan URL as a PNG data URL suitable for direct
// embedding in an <img> tag.
func (s *LinkService) ImageDataURL(token string) (string, error) {
	png, err := qrcode.Encode(s.URL(token), qrcode.Medium, s.pngSize)
	if err != nil {
		return "", fmt.Errorf("qr png encode: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
