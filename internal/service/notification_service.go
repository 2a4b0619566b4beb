package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, audience string) ([]models.Notification, error)
	Create(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// NotificationService manages announcements and events.
type NotificationService struct {
	repo      notificationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, validator: validate, logger: logger}
}

// List returns notifications visible to audience. An empty audience lists everything.
func (s *NotificationService) List(ctx context.Context, audience string) ([]models.Notification, error) {
	audience = strings.TrimSpace(audience)
	switch audience {
	case "", models.AudienceAll, models.AudienceStudents, models.AudienceTeachers:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "audience must be All, Students or Teachers")
	}
	items, err := s.repo.List(ctx, audience)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return items, nil
}

// Create publishes a notification.
func (s *NotificationService) Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.Date = strings.TrimSpace(req.Date)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "type, message and date are required")
	}
	notification := &models.Notification{
		Type:     req.Type,
		Message:  req.Message,
		Date:     req.Date,
		Audience: req.Audience,
	}
	if notification.Audience == "" {
		notification.Audience = models.AudienceAll
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	s.logger.Info("notification published", zap.String("id", notification.ID), zap.String("audience", notification.Audience))
	return notification, nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "Not found")
	}
	return nil
}

// Count returns the number of stored notifications.
func (s *NotificationService) Count(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}
