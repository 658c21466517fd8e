package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"doc-intelligence-be/internal/constant"
	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/metrics"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/internal/statusstore"
	"doc-intelligence-be/internal/websocket"
	"doc-intelligence-be/pkg/docai"
	"doc-intelligence-be/pkg/events"
	"doc-intelligence-be/pkg/llm"
	pktNats "doc-intelligence-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Pipeline stage progress checkpoints.
const (
	progressReceived  = 10
	progressAnalyzing = 40
	progressEnhancing = 75
	progressDone      = 100
)

type IProcessingService interface {
	Consume(ctx context.Context) error
}

type processingService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	docaiProvider  docai.Provider
	llmProvider    llm.LLMProvider
	statusStore    statusstore.Store
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	metrics        *metrics.Metrics
	serviceName    string
}

func NewProcessingService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	docaiProvider docai.Provider,
	llmProvider llm.LLMProvider,
	statusStore statusstore.Store,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	m *metrics.Metrics,
	serviceName string,
) IProcessingService {
	return &processingService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		docaiProvider:  docaiProvider,
		llmProvider:    llmProvider,
		statusStore:    statusStore,
		hub:            hub,
		eventPublisher: eventPublisher,
		metrics:        m,
		serviceName:    serviceName,
	}
}

func (ps *processingService) Consume(ctx context.Context) error {
	messages, err := ps.pubSub.Subscribe(ctx, ps.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ps.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ps *processingService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ProcessDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing document %s", payload.DocumentId)

	uow := ps.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to load document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Deleted meanwhile? Ack.
		return
	}

	ps.metrics.StartDocument()
	start := time.Now()

	runErr := ps.runPipeline(ctx, uow, doc, start)

	ps.metrics.FinishDocument(ps.serviceName, time.Since(start), runErr)

	if runErr != nil {
		ps.failDocument(ctx, uow, doc, runErr)
	}

	// Both outcomes are final states; nothing to retry.
	msg.Ack()
}

func (ps *processingService) runPipeline(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, start time.Time) error {
	ps.advance(ctx, uow, doc, entity.StatusProcessing, progressReceived, "Document received")

	content, err := os.ReadFile(doc.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to read stored document: %w", err)
	}

	ps.advance(ctx, uow, doc, entity.StatusAnalyzing, progressAnalyzing, "Extracting document content")

	analysis, err := ps.docaiProvider.Analyze(ctx, content, doc.MimeType)
	if err != nil {
		return fmt.Errorf("document analysis failed: %w", err)
	}

	filterByConfidence(analysis, doc.ConfidenceThreshold)

	analysisMap, err := toMap(analysis)
	if err != nil {
		return fmt.Errorf("failed to structure analysis result: %w", err)
	}

	ps.advance(ctx, uow, doc, entity.StatusEnhancing, progressEnhancing, "Enhancing extracted data")

	extracted, err := ps.enhance(ctx, doc.ExtractionType, analysisMap)
	if err != nil {
		return err
	}

	confidence := averageConfidence(analysis)
	processingTime := time.Since(start).Seconds()
	now := time.Now()

	doc.Status = entity.StatusCompleted
	doc.Progress = progressDone
	doc.ExtractedData = extracted
	doc.ConfidenceScore = &confidence
	doc.ProcessingTime = &processingTime
	doc.ErrorMessage = nil
	doc.CompletedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist completed document: %w", err)
	}

	ps.cacheResult(ctx, doc, analysis, confidence, processingTime)
	ps.publishStatus(ctx, dto.StatusEvent{
		DocumentId: doc.Id.String(),
		Status:     string(entity.StatusCompleted),
		Progress:   progressDone,
		Message:    "Processing complete",
	})
	ps.publishEvent(ctx, events.DocumentCompleted, doc, "")

	log.Printf("[SUCCESS] Document %s processed in %.2fs", doc.Id, processingTime)
	return nil
}

// enhance runs the extraction-type specific prompt over the analysis JSON.
// A response that is not valid JSON is kept as plain text next to the raw
// analysis rather than discarded.
func (ps *processingService) enhance(ctx context.Context, extractionType string, analysisMap map[string]interface{}) (map[string]interface{}, error) {
	analysisJson, err := json.MarshalIndent(analysisMap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis for enhancement: %w", err)
	}

	prompt := fmt.Sprintf(constant.EnhancementPromptFor(extractionType), string(analysisJson))

	resultStr, err := ps.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("enhancement failed: %w", err)
	}

	var enhanced map[string]interface{}
	if err := json.Unmarshal([]byte(resultStr), &enhanced); err != nil {
		log.Printf("[WARN] Failed to parse LLM response as JSON, keeping raw text")
		return map[string]interface{}{
			"enhanced_text":  resultStr,
			"raw_azure_data": analysisMap,
		}, nil
	}

	return enhanced, nil
}

// advance writes the stage to the database row and pushes it to status
// subscribers. A database write failure here is logged but does not stop
// the pipeline; the terminal update does fail hard.
func (ps *processingService) advance(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, status entity.DocumentStatus, progress int, msgText string) {
	doc.Status = status
	doc.Progress = progress
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		log.Printf("[WARN] Failed to persist stage %s for %s: %v", status, doc.Id, err)
	}

	ps.publishStatus(ctx, dto.StatusEvent{
		DocumentId: doc.Id.String(),
		Status:     string(status),
		Progress:   progress,
		Message:    msgText,
	})
}

func (ps *processingService) publishStatus(ctx context.Context, event dto.StatusEvent) {
	if err := ps.statusStore.SetStatus(ctx, event); err != nil {
		log.Printf("[WARN] Failed to store status for %s: %v", event.DocumentId, err)
	}
	ps.hub.Broadcast(event)
	ps.metrics.RecordStatusEvent(ps.serviceName, event.Status)
}

func (ps *processingService) failDocument(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, cause error) {
	log.Printf("[ERROR] Processing failed for %s: %v", doc.Id, cause)

	errMsg := cause.Error()
	now := time.Now()
	doc.Status = entity.StatusFailed
	doc.ErrorMessage = &errMsg
	doc.CompletedAt = &now

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		log.Printf("[ERROR] Failed to persist failure for %s: %v", doc.Id, err)
	}

	ps.publishStatus(ctx, dto.StatusEvent{
		DocumentId: doc.Id.String(),
		Status:     string(entity.StatusFailed),
		Progress:   doc.Progress,
		Message:    errMsg,
	})
	ps.publishEvent(ctx, events.DocumentFailed, doc, errMsg)
}

func (ps *processingService) publishEvent(ctx context.Context, eventType string, doc *entity.Document, reason string) {
	if ps.eventPublisher == nil {
		return
	}

	data := map[string]interface{}{
		"document_id": doc.Id,
		"user_id":     doc.UserId,
		"file_name":   doc.FileName,
	}
	if reason != "" {
		data["reason"] = reason
	}

	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := ps.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", eventType, err)
	}
}

func (ps *processingService) cacheResult(ctx context.Context, doc *entity.Document, analysis *docai.AnalysisResult, confidence, processingTime float64) {
	response := dto.ProcessDocumentResponse{
		DocumentId:      doc.Id,
		Status:          string(entity.StatusCompleted),
		ExtractedData:   doc.ExtractedData,
		ConfidenceScore: confidence,
		ProcessingTime:  processingTime,
		Metadata: map[string]interface{}{
			"model_id":     analysis.ModelID,
			"page_count":   len(analysis.Pages),
			"processed_at": time.Now().Format(time.RFC3339),
		},
	}

	payload, err := json.Marshal(response)
	if err != nil {
		log.Printf("[WARN] Failed to marshal result for %s: %v", doc.Id, err)
		return
	}
	if err := ps.statusStore.SetResult(ctx, doc.Id.String(), payload); err != nil {
		log.Printf("[WARN] Failed to cache result for %s: %v", doc.Id, err)
	}
}

func toMap(analysis *docai.AnalysisResult) (map[string]interface{}, error) {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// filterByConfidence drops key-value pairs scored below the document's
// configured threshold before enhancement.
func filterByConfidence(analysis *docai.AnalysisResult, threshold float64) {
	if threshold <= 0 {
		return
	}
	kept := analysis.KeyValuePairs[:0]
	for _, kv := range analysis.KeyValuePairs {
		if kv.Confidence >= threshold {
			kept = append(kept, kv)
		}
	}
	analysis.KeyValuePairs = kept
}

func averageConfidence(analysis *docai.AnalysisResult) float64 {
	if len(analysis.KeyValuePairs) == 0 {
		return 0
	}
	var sum float64
	for _, kv := range analysis.KeyValuePairs {
		sum += kv.Confidence
	}
	return sum / float64(len(analysis.KeyValuePairs))
}
