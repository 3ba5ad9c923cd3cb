package services

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/go-resty/resty/v2"
)

// CloudinaryUploader posts unsigned uploads with an upload preset. Images go
// to the image endpoint, everything else to auto.
type CloudinaryUploader struct {
	APIBase      string
	CloudName    string
	UploadPreset string
	Client       *resty.Client
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
}

type cloudinaryError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinaryUploader(apiBase, cloudName, preset string) *CloudinaryUploader {
	return &CloudinaryUploader{
		APIBase:      apiBase,
		CloudName:    cloudName,
		UploadPreset: preset,
		Client:       resty.New(),
	}
}

func (c *CloudinaryUploader) Upload(ctx context.Context, upload Upload) (string, error) {
	if strings.TrimSpace(c.CloudName) == "" || strings.TrimSpace(c.UploadPreset) == "" {
		return "", ErrMisconfigured("Upload is not configured: CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET are required")
	}
	resource := "auto"
	if upload.Kind == UploadImage {
		resource = "image"
	}
	endpoint := strings.TrimRight(c.APIBase, "/") + "/" + c.CloudName + "/" + resource + "/upload"
	filename := upload.Filename
	if filename == "" || filename == "." {
		filename = string(upload.Kind) + upload.Extension
	}

	var ok cloudinaryResponse
	var failed cloudinaryError
	resp, err := c.Client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(upload.Data)).
		SetFormData(map[string]string{"upload_preset": c.UploadPreset}).
		SetResult(&ok).
		SetError(&failed).
		Post(endpoint)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if failed.Error.Message != "" {
			return "", ErrUpstream(failed.Error.Message)
		}
		return "", ErrUpstream("Upload failed: " + resp.Status())
	}
	if ok.SecureURL == "" {
		return "", errors.New("upload service returned no URL")
	}
	return ok.SecureURL, nil
}
