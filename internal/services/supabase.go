package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseUploader stores files in a public Supabase Storage bucket.
type SupabaseUploader struct {
	URL    string
	Key    string
	Bucket string
}

func (s SupabaseUploader) Upload(ctx context.Context, upload Upload) (string, error) {
	if strings.TrimSpace(s.URL) == "" || strings.TrimSpace(s.Key) == "" || strings.TrimSpace(s.Bucket) == "" {
		return "", ErrMisconfigured("Upload is not configured: SUPABASE_URL, SUPABASE_KEY and SUPABASE_BUCKET are required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := strings.TrimRight(s.URL, "/")
	client := storage.NewClient(base+"/storage/v1", s.Key, nil)

	objectPath := objectName(upload)
	contentType := upload.ContentType
	options := storage.FileOptions{
		ContentType: &contentType,
	}
	if _, err := client.UploadFile(s.Bucket, objectPath, bytes.NewReader(upload.Data), options); err != nil {
		return "", ErrUpstream("Upload failed: " + err.Error())
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", base, s.Bucket, objectPath), nil
}
