package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeUploader struct {
	mu         sync.Mutex
	documentID string
	err        error
	release    chan struct{} // when set, Upload blocks until closed
	calls      int
}

func (f *fakeUploader) Upload(ctx context.Context, file File, onProgress func(int)) (string, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	return f.documentID, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(message string) {
	f.mu.Lock()
	f.messages = append(f.messages, message)
	f.mu.Unlock()
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeNavigator struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeNavigator) NavigateToDocument(documentID string) {
	f.mu.Lock()
	f.ids = append(f.ids, documentID)
	f.mu.Unlock()
}

func (f *fakeNavigator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

func pdf(name string) File {
	return File{Name: name, MimeType: "application/pdf"}
}

func TestSelectFileFiltersNonPdf(t *testing.T) {
	tr := NewTracker(&fakeUploader{}, &fakeNotifier{}, &fakeNavigator{})

	tr.SelectFile(
		pdf("a.pdf"),
		File{Name: "b.png", MimeType: "image/png"},
		File{Name: "c.txt", MimeType: "text/plain"},
		pdf("d.pdf"),
	)

	selected := tr.Selected()
	if len(selected) != 2 {
		t.Fatalf("selected = %d files, want 2", len(selected))
	}
	if selected[0].Name != "a.pdf" || selected[1].Name != "d.pdf" {
		t.Errorf("selected wrong files: %v", selected)
	}
}

func TestSelectFileReplacesWholesale(t *testing.T) {
	tr := NewTracker(&fakeUploader{}, &fakeNotifier{}, &fakeNavigator{})

	tr.SelectFile(pdf("first.pdf"), pdf("second.pdf"))
	tr.SelectFile(pdf("third.pdf"))

	selected := tr.Selected()
	if len(selected) != 1 || selected[0].Name != "third.pdf" {
		t.Errorf("selection not replaced, got %v", selected)
	}

	// An all-rejected batch leaves an empty selection, not the old one.
	tr.SelectFile(File{Name: "x.png", MimeType: "image/png"})
	if len(tr.Selected()) != 0 {
		t.Errorf("selection should be empty after all-rejected batch")
	}
}

func TestStartUploadWithoutSelection(t *testing.T) {
	tr := NewTracker(&fakeUploader{}, &fakeNotifier{}, &fakeNavigator{})

	if _, err := tr.StartUpload(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err = %v, want ErrNoSelection", err)
	}
}

func TestStartUploadSeedsProcessingState(t *testing.T) {
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, &fakeNavigator{})
	tr.SelectFile(pdf("a.pdf"))

	id, err := tr.StartUpload(context.Background())
	if err != nil {
		t.Fatalf("StartUpload: %v", err)
	}
	if id != "doc-1" {
		t.Errorf("id = %q, want doc-1", id)
	}

	gotID, status, progress := tr.State()
	if gotID != "doc-1" || status != StatusProcessing || progress != 0 {
		t.Errorf("state = (%q, %s, %d), want (doc-1, processing, 0)", gotID, status, progress)
	}
}

func TestStartUploadRejectsConcurrentTransfer(t *testing.T) {
	release := make(chan struct{})
	uploader := &fakeUploader{documentID: "doc-1", release: release}
	tr := NewTracker(uploader, &fakeNotifier{}, &fakeNavigator{})
	tr.SelectFile(pdf("a.pdf"))

	done := make(chan struct{})
	go func() {
		tr.StartUpload(context.Background())
		close(done)
	}()

	// Wait for the first transfer to be in flight.
	deadline := time.After(time.Second)
	for {
		_, status, _ := tr.State()
		if status == StatusUploading {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first upload never started")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := tr.StartUpload(context.Background()); !errors.Is(err, ErrUploadInProgress) {
		t.Fatalf("err = %v, want ErrUploadInProgress", err)
	}

	close(release)
	<-done
}

func TestStartUploadFailureNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	uploader := &fakeUploader{err: errors.New("connection reset")}
	tr := NewTracker(uploader, notifier, &fakeNavigator{})
	tr.SelectFile(pdf("a.pdf"))

	if _, err := tr.StartUpload(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}

	_, status, _ := tr.State()
	if status != StatusIdle {
		t.Errorf("status = %s, want idle after failed upload", status)
	}
}

func TestOnStatusEventIgnoresForeignDocuments(t *testing.T) {
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, &fakeNavigator{})
	tr.SelectFile(pdf("a.pdf"))
	tr.StartUpload(context.Background())

	tr.OnStatusEvent(StatusEvent{DocumentId: "other-doc", Status: "analyzing", Progress: 40})

	_, status, progress := tr.State()
	if status != StatusProcessing || progress != 0 {
		t.Errorf("state = (%s, %d), foreign event must be ignored", status, progress)
	}
}

func TestOnStatusEventReplacesStateWholesale(t *testing.T) {
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, &fakeNavigator{})
	tr.SelectFile(pdf("a.pdf"))
	tr.StartUpload(context.Background())

	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "analyzing", Progress: 40})
	_, status, progress := tr.State()
	if status != StatusAnalyzing || progress != 40 {
		t.Fatalf("state = (%s, %d), want (analyzing, 40)", status, progress)
	}

	// Out-of-order regression still replaces; the tracker mirrors the
	// channel, not a monotonic view.
	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "processing", Progress: 10})
	_, status, progress = tr.State()
	if status != StatusProcessing || progress != 10 {
		t.Errorf("state = (%s, %d), want (processing, 10)", status, progress)
	}
}

func TestOnStatusEventClampsProgress(t *testing.T) {
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, &fakeNavigator{})
	tr.SelectFile(pdf("a.pdf"))
	tr.StartUpload(context.Background())

	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "analyzing", Progress: 250})
	if _, _, progress := tr.State(); progress != 100 {
		t.Errorf("progress = %d, want clamped to 100", progress)
	}

	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "analyzing", Progress: -5})
	if _, _, progress := tr.State(); progress != 0 {
		t.Errorf("progress = %d, want clamped to 0", progress)
	}
}

func TestCompletedNavigatesExactlyOnceAfterDelay(t *testing.T) {
	navigator := &fakeNavigator{}
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, navigator, WithNavigateDelay(20*time.Millisecond))
	tr.SelectFile(pdf("a.pdf"))
	tr.StartUpload(context.Background())

	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "completed", Progress: 100})
	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "completed", Progress: 100})

	if navigator.count() != 0 {
		t.Fatal("navigation must not fire before the delay")
	}

	time.Sleep(100 * time.Millisecond)
	if navigator.count() != 1 {
		t.Errorf("navigations = %d, want exactly 1", navigator.count())
	}

	navigator.mu.Lock()
	defer navigator.mu.Unlock()
	if navigator.ids[0] != "doc-1" {
		t.Errorf("navigated to %q, want doc-1", navigator.ids[0])
	}
}

func TestFailedNotifiesWithoutNavigation(t *testing.T) {
	notifier := &fakeNotifier{}
	navigator := &fakeNavigator{}
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, notifier, navigator, WithNavigateDelay(time.Millisecond))
	tr.SelectFile(pdf("a.pdf"))
	tr.StartUpload(context.Background())

	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "failed", Progress: 40, Message: "analysis failed"})

	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}

	time.Sleep(20 * time.Millisecond)
	if navigator.count() != 0 {
		t.Error("failed documents must not navigate")
	}
}

func TestEventsAfterTerminalAreIgnored(t *testing.T) {
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, &fakeNavigator{}, WithNavigateDelay(time.Millisecond))
	tr.SelectFile(pdf("a.pdf"))
	tr.StartUpload(context.Background())

	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "failed", Progress: 40})
	tr.OnStatusEvent(StatusEvent{DocumentId: "doc-1", Status: "analyzing", Progress: 60})

	_, status, progress := tr.State()
	if status != StatusFailed || progress != 40 {
		t.Errorf("state = (%s, %d), terminal state must stick", status, progress)
	}
}

func TestListenDrivesTrackerFromSource(t *testing.T) {
	navigator := &fakeNavigator{}
	uploader := &fakeUploader{documentID: "doc-1"}
	tr := NewTracker(uploader, &fakeNotifier{}, navigator, WithNavigateDelay(time.Millisecond))
	tr.SelectFile(pdf("a.pdf"))

	id, err := tr.StartUpload(context.Background())
	if err != nil {
		t.Fatalf("StartUpload: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	source := NewSimulatedSource(id, time.Millisecond)
	go source.Run(ctx)
	tr.Listen(ctx, source)

	deadline := time.After(2 * time.Second)
	for {
		_, status, progress := tr.State()
		if status == StatusCompleted && progress == 100 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("tracker never completed, state = (%s, %d)", status, progress)
		case <-time.After(5 * time.Millisecond):
		}
	}

	time.Sleep(20 * time.Millisecond)
	if navigator.count() != 1 {
		t.Errorf("navigations = %d, want 1", navigator.count())
	}
}
