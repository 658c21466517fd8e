package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"doc-intelligence-be/internal/config"
	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/entity"
	"doc-intelligence-be/internal/pkg/serverutils"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/internal/statusstore"
	"doc-intelligence-be/pkg/events"
	pktNats "doc-intelligence-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, fileName, mimeType string, content []byte, opts dto.UploadOptions) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListDocumentsResponse, error)
	GetStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.StatusEvent, error)
	Process(ctx context.Context, userId uuid.UUID, req *dto.ProcessDocumentRequest) (*dto.ProcessDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	statusStore      statusstore.Store
	eventPublisher   *pktNats.Publisher
	uploadCfg        config.UploadConfig
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	statusStore statusstore.Store,
	eventPublisher *pktNats.Publisher,
	uploadCfg config.UploadConfig,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		statusStore:      statusStore,
		eventPublisher:   eventPublisher,
		uploadCfg:        uploadCfg,
	}
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, fileName, mimeType string, content []byte, opts dto.UploadOptions) (*dto.UploadDocumentResponse, error) {
	if !s.mimeAllowed(mimeType) {
		return nil, serverutils.NewBadRequestError(fmt.Sprintf("unsupported file type: %s", mimeType))
	}

	maxBytes := int64(s.uploadCfg.MaxFileSizeMB) * 1024 * 1024
	if int64(len(content)) > maxBytes {
		return nil, serverutils.NewBadRequestError(fmt.Sprintf("file exceeds %dMB limit", s.uploadCfg.MaxFileSizeMB))
	}

	id := uuid.New()
	storagePath := filepath.Join(s.uploadCfg.Directory, id.String()+filepath.Ext(fileName))

	if err := os.MkdirAll(s.uploadCfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}
	if err := os.WriteFile(storagePath, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	extractionType := opts.ExtractionType
	if extractionType == "" {
		extractionType = "hybrid"
	}
	language := opts.Language
	if language == "" {
		language = "en"
	}
	threshold := opts.ConfidenceThreshold
	if threshold == 0 {
		threshold = 0.8
	}

	doc := &entity.Document{
		Id:                  id,
		UserId:              userId,
		FileName:            fileName,
		MimeType:            mimeType,
		SizeBytes:           int64(len(content)),
		StoragePath:         storagePath,
		ExtractionType:      extractionType,
		Language:            language,
		ConfidenceThreshold: threshold,
		Status:              entity.StatusQueued,
		Progress:            0,
		CreatedAt:           time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		os.Remove(storagePath)
		return nil, err
	}

	// Seed the status key so GET /status answers before the worker picks
	// the job up.
	seed := dto.StatusEvent{
		DocumentId: id.String(),
		Status:     string(entity.StatusQueued),
		Progress:   0,
		Message:    "Document queued for processing",
	}
	if err := s.statusStore.SetStatus(ctx, seed); err != nil {
		fmt.Printf("[WARN] Failed to seed status for %s: %v\n", id, err)
	}

	msgJson, err := json.Marshal(dto.ProcessDocumentMessage{DocumentId: id})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.DocumentUploaded,
			Data: map[string]interface{}{
				"document_id": id,
				"user_id":     userId,
				"file_name":   fileName,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.DocumentUploaded, err)
		}
	}

	return &dto.UploadDocumentResponse{
		DocumentId: id.String(),
		Status:     string(entity.StatusQueued),
		Message:    "Document uploaded and queued for processing",
	}, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document not found")
	}

	return toShowResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	total, err := uow.DocumentRepository().Count(ctx, specification.OwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowDocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = toShowResponse(doc)
	}

	return &dto.ListDocumentsResponse{
		Documents: responses,
		Total:     total,
	}, nil
}

// GetStatus prefers the status store and falls back to the database row,
// so a restarted cache never makes a document look lost.
func (s *documentService) GetStatus(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.StatusEvent, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document not found")
	}

	event, found, err := s.statusStore.GetStatus(ctx, id.String())
	if err == nil && found {
		return event, nil
	}

	return &dto.StatusEvent{
		DocumentId: id.String(),
		Status:     string(doc.Status),
		Progress:   doc.Progress,
	}, nil
}

func (s *documentService) Process(ctx context.Context, userId uuid.UUID, req *dto.ProcessDocumentRequest) (*dto.ProcessDocumentResponse, error) {
	// Completed runs are cached for a short window; return the cached
	// payload instead of re-running the pipeline.
	if payload, found, err := s.statusStore.GetResult(ctx, req.DocumentId.String()); err == nil && found {
		var cached dto.ProcessDocumentResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, serverutils.NewNotFoundError("document not found")
	}

	doc.ExtractionType = req.ExtractionType
	if req.Language != "" {
		doc.Language = req.Language
	}
	doc.ConfidenceThreshold = req.ConfidenceThreshold
	doc.Status = entity.StatusQueued
	doc.Progress = 0
	doc.ErrorMessage = nil
	doc.CompletedAt = nil

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	msgJson, err := json.Marshal(dto.ProcessDocumentMessage{DocumentId: doc.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.ProcessDocumentResponse{
		DocumentId: doc.Id,
		Status:     string(entity.StatusQueued),
	}, nil
}

func (s *documentService) mimeAllowed(mimeType string) bool {
	for _, allowed := range s.uploadCfg.AllowedMimeTypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

func toShowResponse(doc *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:              doc.Id,
		FileName:        doc.FileName,
		MimeType:        doc.MimeType,
		SizeBytes:       doc.SizeBytes,
		ExtractionType:  doc.ExtractionType,
		Language:        doc.Language,
		Status:          string(doc.Status),
		Progress:        doc.Progress,
		ExtractedData:   doc.ExtractedData,
		ConfidenceScore: doc.ConfidenceScore,
		ProcessingTime:  doc.ProcessingTime,
		ErrorMessage:    doc.ErrorMessage,
		CreatedAt:       doc.CreatedAt,
		CompletedAt:     doc.CompletedAt,
	}
}
