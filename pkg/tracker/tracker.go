// Package tracker implements the client-side upload and status tracking
// state machine used by the upload CLI. It selects PDF files, runs a
// single upload at a time, and follows server status events for the
// resulting document until a terminal state.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status mirrors the server's document lifecycle, plus the client-only
// uploading phase. Completed and failed are terminal.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusAnalyzing  Status = "analyzing"
	StatusEnhancing  Status = "enhancing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StatusEvent is one message from the status channel.
type StatusEvent struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Message    string `json:"message,omitempty"`
}

// File is a candidate upload.
type File struct {
	Name     string
	MimeType string
	Path     string
}

// Notifier surfaces user-facing messages (failures, upload errors).
type Notifier interface {
	Notify(message string)
}

// Navigator is invoked once per completed document, after NavigateDelay.
type Navigator interface {
	NavigateToDocument(documentID string)
}

var (
	ErrNoSelection      = errors.New("no file selected")
	ErrUploadInProgress = errors.New("an upload is already in progress")
)

const allowedMimeType = "application/pdf"

// DefaultNavigateDelay is the pause between a completed event and
// navigation, giving the user a moment to see the final state.
const DefaultNavigateDelay = 1000 * time.Millisecond

type Option func(*Tracker)

func WithNavigateDelay(d time.Duration) Option {
	return func(t *Tracker) {
		t.navigateDelay = d
	}
}

// Tracker holds the selection, the active transfer, and the tracked
// document's last known status. All state transitions happen under one
// lock; events for any other document identifier are ignored.
type Tracker struct {
	uploader  Uploader
	notifier  Notifier
	navigator Navigator

	navigateDelay time.Duration

	mu        sync.Mutex
	selected  []File
	uploading bool
	currentID string
	status    Status
	progress  int
	navigated map[string]bool
}

func NewTracker(uploader Uploader, notifier Notifier, navigator Navigator, opts ...Option) *Tracker {
	t := &Tracker{
		uploader:      uploader,
		notifier:      notifier,
		navigator:     navigator,
		navigateDelay: DefaultNavigateDelay,
		status:        StatusIdle,
		navigated:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SelectFile replaces the current selection with the PDF members of the
// given files. Non-PDF files are dropped without any notification.
func (t *Tracker) SelectFile(files ...File) {
	selected := make([]File, 0, len(files))
	for _, f := range files {
		if f.MimeType == allowedMimeType {
			selected = append(selected, f)
		}
	}

	t.mu.Lock()
	t.selected = selected
	t.mu.Unlock()
}

// Selected returns a copy of the current selection.
func (t *Tracker) Selected() []File {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]File, len(t.selected))
	copy(out, t.selected)
	return out
}

// StartUpload transfers the first selected file. Only one transfer may
// run at a time. On success the tracker starts following the returned
// document identifier at {processing, 0}.
func (t *Tracker) StartUpload(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.uploading {
		t.mu.Unlock()
		return "", ErrUploadInProgress
	}
	if len(t.selected) == 0 {
		t.mu.Unlock()
		return "", ErrNoSelection
	}
	file := t.selected[0]
	t.uploading = true
	t.status = StatusUploading
	t.progress = 0
	t.mu.Unlock()

	documentID, err := t.uploader.Upload(ctx, file, t.setUploadProgress)

	t.mu.Lock()
	t.uploading = false
	if err != nil {
		t.status = StatusIdle
		t.progress = 0
		t.mu.Unlock()
		if t.notifier != nil {
			t.notifier.Notify(fmt.Sprintf("Upload failed: %v", err))
		}
		return "", err
	}

	t.currentID = documentID
	t.status = StatusProcessing
	t.progress = 0
	t.mu.Unlock()

	return documentID, nil
}

func (t *Tracker) setUploadProgress(percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.uploading {
		return
	}
	t.progress = clamp(percent)
}

// OnStatusEvent applies a status channel event. Events for any document
// other than the tracked one are ignored, as are events arriving after a
// terminal state. A completed event schedules navigation after
// navigateDelay, at most once per document identifier.
func (t *Tracker) OnStatusEvent(event StatusEvent) {
	t.mu.Lock()

	if event.DocumentId == "" || event.DocumentId != t.currentID {
		t.mu.Unlock()
		return
	}
	if t.status.IsTerminal() {
		t.mu.Unlock()
		return
	}

	t.status = Status(event.Status)
	t.progress = clamp(event.Progress)

	switch t.status {
	case StatusCompleted:
		scheduled := false
		if !t.navigated[event.DocumentId] {
			t.navigated[event.DocumentId] = true
			scheduled = true
		}
		t.mu.Unlock()

		if scheduled && t.navigator != nil {
			id := event.DocumentId
			time.AfterFunc(t.navigateDelay, func() {
				// The tracker may have moved on to another upload
				// while the timer was pending; navigate anyway, the
				// completed document is still the one the user sent.
				t.navigator.NavigateToDocument(id)
			})
		}
	case StatusFailed:
		t.mu.Unlock()
		if t.notifier != nil {
			msg := event.Message
			if msg == "" {
				msg = "document processing failed"
			}
			t.notifier.Notify(msg)
		}
	default:
		t.mu.Unlock()
	}
}

// Listen consumes events from a source until the context ends or the
// source closes its channel.
func (t *Tracker) Listen(ctx context.Context, source StatusSource) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-source.Events():
				if !ok {
					return
				}
				t.OnStatusEvent(event)
			}
		}
	}()
}

// State returns the tracked document id, status, and progress.
func (t *Tracker) State() (string, Status, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentID, t.status, t.progress
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
