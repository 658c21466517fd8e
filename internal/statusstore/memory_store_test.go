package statusstore

import (
	"context"
	"testing"

	"doc-intelligence-be/internal/dto"
)

func TestMemoryStoreStatusRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	event := dto.StatusEvent{
		DocumentId: "doc-1",
		Status:     "analyzing",
		Progress:   40,
		Message:    "Extracting document content",
	}
	if err := store.SetStatus(ctx, event); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, found, err := store.GetStatus(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !found {
		t.Fatal("status not found")
	}
	if got.Status != "analyzing" || got.Progress != 40 {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStoreStatusOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.SetStatus(ctx, dto.StatusEvent{DocumentId: "doc-1", Status: "processing", Progress: 10})
	store.SetStatus(ctx, dto.StatusEvent{DocumentId: "doc-1", Status: "completed", Progress: 100})

	got, found, _ := store.GetStatus(ctx, "doc-1")
	if !found || got.Status != "completed" || got.Progress != 100 {
		t.Errorf("got %+v, found=%v", got, found)
	}
}

func TestMemoryStoreMissingKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, found, err := store.GetStatus(ctx, "nope"); err != nil || found {
		t.Errorf("GetStatus(nope) = found=%v err=%v, want miss without error", found, err)
	}
	if _, found, err := store.GetResult(ctx, "nope"); err != nil || found {
		t.Errorf("GetResult(nope) = found=%v err=%v, want miss without error", found, err)
	}
}

func TestMemoryStoreResultRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte(`{"document_id":"doc-1","status":"completed"}`)
	if err := store.SetResult(ctx, "doc-1", payload); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	got, found, err := store.GetResult(ctx, "doc-1")
	if err != nil || !found {
		t.Fatalf("GetResult: found=%v err=%v", found, err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s", got)
	}
}
