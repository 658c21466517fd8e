package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeTempPdf(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test content"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHTTPUploaderSuccess(t *testing.T) {
	var gotAuth string
	var gotField string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/documents/v1/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			file.Close()
			gotField = header.Filename
		}

		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"success":true,"message":"Document uploaded","data":{"document_id":"b4e9f7c2-0000-0000-0000-000000000001","status":"queued"}}`))
	}))
	defer srv.Close()

	uploader := NewHTTPUploader(srv.URL, "test-token")

	var mu sync.Mutex
	var progress []int
	id, err := uploader.Upload(context.Background(), File{
		Name:     "sample.pdf",
		MimeType: "application/pdf",
		Path:     writeTempPdf(t),
	}, func(p int) {
		mu.Lock()
		progress = append(progress, p)
		mu.Unlock()
	})

	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "b4e9f7c2-0000-0000-0000-000000000001" {
		t.Errorf("id = %q", id)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotField != "sample.pdf" {
		t.Errorf("filename = %q", gotField)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Errorf("progress = %v, want final 100", progress)
	}
}

func TestHTTPUploaderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"code":400,"message":"unsupported file type: image/png"}`))
	}))
	defer srv.Close()

	uploader := NewHTTPUploader(srv.URL, "test-token")
	_, err := uploader.Upload(context.Background(), File{
		Name:     "sample.pdf",
		MimeType: "application/pdf",
		Path:     writeTempPdf(t),
	}, nil)

	if err == nil {
		t.Fatal("expected rejection error")
	}
}

func TestHTTPUploaderMissingFile(t *testing.T) {
	uploader := NewHTTPUploader("http://localhost:0", "t")
	_, err := uploader.Upload(context.Background(), File{
		Name:     "gone.pdf",
		MimeType: "application/pdf",
		Path:     "/does/not/exist.pdf",
	}, nil)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
