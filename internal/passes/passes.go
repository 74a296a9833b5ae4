// Package passes renders entry passes as QR codes and archives them to object storage.
package passes

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"

	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/storage"
)

// DefaultSize is the rendered pass width and height in pixels.
const DefaultSize = 256

// Render returns a PNG QR code whose payload is exactly token.
func Render(token string, size int) ([]byte, error) {
	if token == "" {
		return nil, models.ErrInvalidToken
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(token, qrcode.Highest, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// Uploader stores an object and returns its location.
type Uploader interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64) (string, error)
}

// Archiver keeps a copy of each participant's pass in a bucket.
type Archiver struct {
	uploader Uploader
	bucket   string
	size     int
}

// NewArchiver creates an archiver writing to bucket.
func NewArchiver(uploader Uploader, bucket string) *Archiver {
	return &Archiver{uploader: uploader, bucket: bucket, size: DefaultSize}
}

// Archive renders p's pass and uploads it to passes/{event}/{participant}.png.
func (a *Archiver) Archive(ctx context.Context, p *models.Participant) (string, error) {
	png, err := Render(p.EntryUUID, a.size)
	if err != nil {
		return "", err
	}
	key := storage.PassKey(p.EventID.String(), p.ID.String())
	url, err := a.uploader.Upload(ctx, a.bucket, key, "image/png", bytes.NewReader(png), int64(len(png)))
	if err != nil {
		return "", fmt.Errorf("archive pass %s: %w", p.ID, err)
	}
	return url, nil
}
