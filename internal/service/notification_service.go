package service

import (
	"context"
	"fmt"

	"doc-intelligence-be/internal/pkg/mailer"
	"doc-intelligence-be/internal/repository/specification"
	"doc-intelligence-be/internal/repository/unitofwork"
	"doc-intelligence-be/pkg/events"

	"github.com/google/uuid"
)

// NotificationService turns terminal pipeline events into emails to the
// document owner. It is driven by the NATS durable subscriber.
type NotificationService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService) *NotificationService {
	return &NotificationService{
		uowFactory:   uowFactory,
		emailService: emailService,
	}
}

func (s *NotificationService) HandleDocumentCompleted(ctx context.Context, event events.Event) error {
	email, documentID, fileName, _, err := s.resolveEvent(ctx, event)
	if err != nil || email == "" {
		return err
	}
	return s.emailService.SendProcessingCompleted(email, documentID, fileName)
}

func (s *NotificationService) HandleDocumentFailed(ctx context.Context, event events.Event) error {
	email, documentID, fileName, reason, err := s.resolveEvent(ctx, event)
	if err != nil || email == "" {
		return err
	}
	return s.emailService.SendProcessingFailed(email, documentID, fileName, reason)
}

func (s *NotificationService) resolveEvent(ctx context.Context, event events.Event) (email, documentID, fileName, reason string, err error) {
	data := event.Payload()

	userIDStr, _ := data["user_id"].(string)
	userID, parseErr := uuid.Parse(userIDStr)
	if parseErr != nil {
		// Malformed event; retrying won't help.
		return "", "", "", "", nil
	}

	documentID, _ = data["document_id"].(string)
	fileName, _ = data["file_name"].(string)
	reason, _ = data["reason"].(string)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, findErr := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if findErr != nil {
		return "", "", "", "", fmt.Errorf("failed to load user %s: %w", userID, findErr)
	}
	if user == nil {
		return "", "", "", "", nil
	}

	return user.Email, documentID, fileName, reason, nil
}
