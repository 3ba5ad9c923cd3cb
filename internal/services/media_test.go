package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elearning-backend-go/internal/models"
	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

// onePagePDF builds a minimal PDF with a correct cross-reference table.
func onePagePDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestReadUpload(t *testing.T) {
	img, err := services.ReadUpload(bytes.NewReader(pngBytes), "../cover.png", services.UploadImage, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)
	assert.Equal(t, "cover.png", img.Filename)

	_, err = services.ReadUpload(strings.NewReader("plain text"), "a.png", services.UploadImage, 1<<20)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = services.ReadUpload(bytes.NewReader(nil), "a.png", services.UploadImage, 1<<20)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = services.ReadUpload(bytes.NewReader(pngBytes), "a.png", services.UploadImage, 8)
	requireStatus(t, err, http.StatusBadRequest)

	doc, err := services.ReadUpload(bytes.NewReader(onePagePDF()), "notes.pdf", services.UploadAttachment, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)

	_, err = services.ReadUpload(bytes.NewReader(pngBytes), "notes.pdf", services.UploadAttachment, 1<<20)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = services.ReadUpload(strings.NewReader("%PDF-1.4\nbroken"), "notes.pdf", services.UploadAttachment, 1<<20)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	up := services.LocalUploader{BasePath: dir, PublicBaseURL: "http://localhost:8080/api/media/files/"}
	upload := services.Upload{Kind: services.UploadImage, Extension: ".png", Data: pngBytes}

	url, err := up.Upload(context.Background(), upload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/api/media/files/image/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	again, err := up.Upload(context.Background(), upload)
	require.NoError(t, err)
	assert.Equal(t, url, again, "same bytes, same file")

	name := strings.TrimPrefix(url, "http://localhost:8080/api/media/files/")
	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestCloudinaryUploader(t *testing.T) {
	var gotPath, gotPreset string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPreset = r.FormValue("upload_preset")
		if file, _, err := r.FormFile("file"); err == nil {
			gotFile, _ = io.ReadAll(file)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.test/demo/image/upload/v1/x.png"}`))
	}))
	defer srv.Close()

	up := services.NewCloudinaryUploader(srv.URL, "demo", "unsigned")
	url, err := up.Upload(context.Background(), services.Upload{Kind: services.UploadImage, Filename: "x.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.test/demo/image/upload/v1/x.png", url)
	assert.Equal(t, "/demo/image/upload", gotPath)
	assert.Equal(t, "unsigned", gotPreset)
	assert.Equal(t, pngBytes, gotFile)

	_, err = up.Upload(context.Background(), services.Upload{Kind: services.UploadAttachment, Filename: "x.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "/demo/auto/upload", gotPath)
}

func TestCloudinaryUploaderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	up := services.NewCloudinaryUploader(srv.URL, "demo", "missing")
	_, err := up.Upload(context.Background(), services.Upload{Kind: services.UploadImage, Data: pngBytes})
	requireStatus(t, err, http.StatusBadGateway)
	assert.Equal(t, "Upload preset not found", err.Error())

	unconfigured := services.NewCloudinaryUploader(srv.URL, "", "")
	_, err = unconfigured.Upload(context.Background(), services.Upload{Kind: services.UploadImage, Data: pngBytes})
	requireStatus(t, err, http.StatusServiceUnavailable)
}

func TestSupabaseUploader(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"media/image/x.png"}`))
	}))
	defer srv.Close()

	up := services.SupabaseUploader{URL: srv.URL, Key: "service-key", Bucket: "media"}
	url, err := up.Upload(context.Background(), services.Upload{Kind: services.UploadImage, Extension: ".png", ContentType: "image/png", Data: pngBytes})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/media/image/"), gotPath)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/storage/v1/object/public/media/image/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	_, err = services.SupabaseUploader{}.Upload(context.Background(), services.Upload{Kind: services.UploadImage})
	requireStatus(t, err, http.StatusServiceUnavailable)
}

type failingUploader struct{ err error }

func (f failingUploader) Upload(context.Context, services.Upload) (string, error) {
	return "", f.err
}

func TestUploadFailureWritesNothing(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()
	st := memstore.New()
	a := instructor("ins-a")
	image := services.Upload{Kind: services.UploadImage, Extension: ".png", Data: pngBytes}

	_, err := services.CreateCourseWithImage(ctx, st, failingUploader{err: io.ErrUnexpectedEOF}, a, services.CourseInput{Title: "Pics"}, image)
	requireStatus(t, err, http.StatusBadGateway)
	courses, err := st.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = services.CreateCourseWithImage(ctx, st, nil, a, services.CourseInput{Title: "Pics"}, image)
	requireStatus(t, err, http.StatusServiceUnavailable)

	up := services.LocalUploader{BasePath: t.TempDir(), PublicBaseURL: "/api/media/files"}
	course, err := services.CreateCourseWithImage(ctx, st, up, a, services.CourseInput{Title: "Pics"}, image)
	require.NoError(t, err)
	require.NotNil(t, course.ImageURL)
	assert.True(t, strings.HasPrefix(*course.ImageURL, "/api/media/files/image/"))

	pdf := services.Upload{Kind: services.UploadAttachment, Extension: ".pdf", Data: onePagePDF()}
	_, err = services.AddLessonWithAttachment(ctx, st, failingUploader{err: io.ErrClosedPipe}, a, course.ID,
		services.LessonInput{Title: "Doc", Kind: models.LessonArticle, Body: "read"}, pdf)
	requireStatus(t, err, http.StatusBadGateway)
	lessons, err := st.ListLessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)

	lesson, err := services.AddLessonWithAttachment(ctx, st, up, a, course.ID,
		services.LessonInput{Title: "Doc", Kind: models.LessonArticle, Body: "read"}, pdf)
	require.NoError(t, err)
	require.NotNil(t, lesson.AttachmentURL)

	_, err = services.AddLessonWithAttachment(ctx, st, up, instructor("ins-b"), course.ID,
		services.LessonInput{Title: "Doc", Kind: models.LessonArticle, Body: "read"}, pdf)
	requireStatus(t, err, http.StatusForbidden)
}
