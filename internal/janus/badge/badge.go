// Package badge builds visitor badge payloads and renders them as QR PNGs.
package badge

import (
	"fmt"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// ModulePixels is the width in pixels of one QR module.
const ModulePixels = 10

// Payload is the text encoded in a visitor's badge.
func Payload(id int64, name, mobile, visitCode string) string {
	return fmt.Sprintf("ID: %d, Name: %s, Mobile: %s, Visit Code: %s", id, name, mobile, visitCode)
}

// Render encodes payload at Medium error correction, black on white, with
// the library's default four-module quiet zone.
func Render(payload string) ([]byte, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White

	// A negative size fixes the module width instead of the image width.
	png, err := q.PNG(-ModulePixels)
	if err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}
	return png, nil
}

// FileName is the stored file name of a visitor's badge.
func FileName(visitorID int64) string {
	return fmt.Sprintf("qr_code_%d.png", visitorID)
}
