package tracker

import (
	"context"
	"time"
)

// SimulatedSource replays a canned pipeline progression for a document,
// for demos and development without a running backend.
type SimulatedSource struct {
	documentID string
	interval   time.Duration
	events     chan StatusEvent
}

var _ StatusSource = &SimulatedSource{}

func NewSimulatedSource(documentID string, interval time.Duration) *SimulatedSource {
	return &SimulatedSource{
		documentID: documentID,
		interval:   interval,
		events:     make(chan StatusEvent, 8),
	}
}

func (s *SimulatedSource) Events() <-chan StatusEvent {
	return s.events
}

func (s *SimulatedSource) Run(ctx context.Context) error {
	defer close(s.events)

	script := []StatusEvent{
		{DocumentId: s.documentID, Status: string(StatusProcessing), Progress: 10, Message: "Document received"},
		{DocumentId: s.documentID, Status: string(StatusAnalyzing), Progress: 40, Message: "Extracting document content"},
		{DocumentId: s.documentID, Status: string(StatusEnhancing), Progress: 75, Message: "Enhancing extracted data"},
		{DocumentId: s.documentID, Status: string(StatusCompleted), Progress: 100, Message: "Processing complete"},
	}

	for _, event := range script {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s.events <- event:
		}
	}
	return nil
}
