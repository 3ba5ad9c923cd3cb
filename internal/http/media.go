package httpapi

import (
	"errors"
	"mime"
	"net/http"

	"elearning-backend-go/internal/services"
)

const defaultMaxUploadBytes = 10 << 20

func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	s.upload(w, r, services.UploadImage)
}

func (s *Server) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	s.upload(w, r, services.UploadAttachment)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, kind services.UploadKind) {
	if !s.parseMultipart(w, r) {
		return
	}
	upload, found, err := s.formUpload(r, "file", kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		WriteError(w, http.StatusBadRequest, "File is empty")
		return
	}
	url, err := services.UploadMedia(r.Context(), s.Uploader, CurrentIdentity(r), upload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, UploadResponse{URL: url})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func (s *Server) maxUploadBytes() int64 {
	if s.Config.MediaMaxUploadBytes > 0 {
		return s.Config.MediaMaxUploadBytes
	}
	return defaultMaxUploadBytes
}

// parseMultipart caps the body at the upload limit plus room for the form
// fields. Oversized or malformed bodies end the request with 400.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload")
		return false
	}
	return true
}

// formUpload reads and checks the file part named field. found is false when
// the form has no such part.
func (s *Server) formUpload(r *http.Request, field string, kind services.UploadKind) (services.Upload, bool, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return services.Upload{}, false, nil
	}
	if err != nil {
		return services.Upload{}, false, services.ErrBadRequest("Invalid upload")
	}
	defer file.Close()
	upload, err := services.ReadUpload(file, header.Filename, kind, s.maxUploadBytes())
	if err != nil {
		return services.Upload{}, true, err
	}
	return upload, true, nil
}

func optionalFormValue(r *http.Request, key string) *string {
	value := r.FormValue(key)
	if value == "" {
		return nil
	}
	return &value
}
