package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"
)

// Uploader transfers a file and returns the server-assigned document
// identifier. onProgress receives 0-100 as bytes go out.
type Uploader interface {
	Upload(ctx context.Context, file File, onProgress func(percent int)) (string, error)
}

// HTTPUploader posts multipart uploads to the backend with a bearer token.
type HTTPUploader struct {
	ServerURL string
	Token     string
	Client    *http.Client
}

var _ Uploader = &HTTPUploader{}

func NewHTTPUploader(serverURL, token string) *HTTPUploader {
	return &HTTPUploader{
		ServerURL: serverURL,
		Token:     token,
		Client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// uploadEnvelope matches the server's response wrapper, success or error.
type uploadEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		DocumentId string `json:"document_id"`
		Status     string `json:"status"`
	} `json:"data"`
}

func (u *HTTPUploader) Upload(ctx context.Context, file File, onProgress func(percent int)) (string, error) {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", file.MimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create multipart: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("write multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	reader := &progressReader{
		r:          &body,
		total:      int64(body.Len()),
		onProgress: onProgress,
	}

	url := u.ServerURL + "/api/documents/v1/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u.Token)
	req.ContentLength = reader.total

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var envelope uploadEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return "", fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if resp.StatusCode >= 300 || !envelope.Success {
		msg := "upload rejected"
		if envelope.Message != "" {
			msg = envelope.Message
		}
		return "", fmt.Errorf("%s (status %d)", msg, resp.StatusCode)
	}
	if envelope.Data.DocumentId == "" {
		return "", fmt.Errorf("response missing document_id")
	}

	if onProgress != nil {
		onProgress(100)
	}
	return envelope.Data.DocumentId, nil
}

// progressReader reports percentage as the request body drains.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress func(percent int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil && p.total > 0 {
			p.onProgress(int(p.sent * 100 / p.total))
		}
	}
	return n, err
}
