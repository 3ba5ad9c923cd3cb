package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"elearning-backend-go/internal/access"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

type UploadKind string

const (
	UploadImage      UploadKind = "image"
	UploadAttachment UploadKind = "attachment"
)

func (k UploadKind) Valid() bool {
	return k == UploadImage || k == UploadAttachment
}

// Upload is a validated file ready to hand to an Uploader.
type Upload struct {
	Kind        UploadKind
	Filename    string
	ContentType string
	Extension   string
	Data        []byte
}

// Uploader stores a file and returns a durable URL for it.
type Uploader interface {
	Upload(ctx context.Context, upload Upload) (string, error)
}

// ReadUpload reads at most maxBytes from r and checks the content against the
// kind: images must sniff as image/*, attachments as a PDF with pages.
func ReadUpload(r io.Reader, filename string, kind UploadKind, maxBytes int64) (Upload, error) {
	if !kind.Valid() {
		return Upload{}, ErrBadRequest("Unknown upload kind")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Upload{}, ErrBadRequest("Could not read file")
	}
	if len(data) == 0 {
		return Upload{}, ErrBadRequest("File is empty")
	}
	if int64(len(data)) > maxBytes {
		return Upload{}, ErrBadRequest(fmt.Sprintf("File is larger than %d bytes", maxBytes))
	}
	mt := mimetype.Detect(data)
	switch kind {
	case UploadImage:
		if !strings.HasPrefix(mt.String(), "image/") {
			return Upload{}, ErrBadRequest("File must be an image")
		}
	case UploadAttachment:
		if !mt.Is("application/pdf") {
			return Upload{}, ErrBadRequest("Attachment must be a PDF")
		}
		if pages, err := countPDFPages(data); err != nil || pages < 1 {
			return Upload{}, ErrBadRequest("Attachment is not a readable PDF")
		}
	}
	return Upload{
		Kind:        kind,
		Filename:    filepath.Base(strings.TrimSpace(filename)),
		ContentType: mt.String(),
		Extension:   mt.Extension(),
		Data:        data,
	}, nil
}

func countPDFPages(data []byte) (pages int, err error) {
	// the reader panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

// UploadMedia stores a validated file for an instructor. Backend failures are
// reported with the upstream message and nothing else is written.
func UploadMedia(ctx context.Context, up Uploader, who access.Identity, upload Upload) (string, error) {
	if !who.IsInstructor() {
		return "", ErrForbidden()
	}
	if up == nil {
		return "", ErrMisconfigured("Media upload is not configured")
	}
	url, err := up.Upload(ctx, upload)
	if err != nil {
		if _, ok := AsServiceError(err); ok {
			return "", err
		}
		return "", ErrUpstream("Upload failed: " + err.Error())
	}
	return url, nil
}

// objectName is the storage key of an upload: <kind>/<uuid><ext>.
func objectName(upload Upload) string {
	return string(upload.Kind) + "/" + uuid.NewString() + upload.Extension
}

// LocalUploader writes files below BasePath and serves them under
// PublicBaseURL. Files are named by the sha256 of their content, so uploading
// the same bytes twice stores them once.
type LocalUploader struct {
	BasePath      string
	PublicBaseURL string
}

func (l LocalUploader) Upload(ctx context.Context, upload Upload) (string, error) {
	if strings.TrimSpace(l.BasePath) == "" {
		return "", ErrMisconfigured("MEDIA_STORAGE_PATH is not set")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum := sha256.Sum256(upload.Data)
	name := string(upload.Kind) + "/" + hex.EncodeToString(sum[:]) + upload.Extension
	target := filepath.Join(l.BasePath, filepath.FromSlash(name))
	url := strings.TrimRight(l.PublicBaseURL, "/") + "/" + name
	if _, err := os.Stat(target); err == nil {
		return url, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", err
	}
	_, err = tmp.Write(upload.Data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), target)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return url, nil
}
