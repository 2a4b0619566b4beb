package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/jobs"
)

// TaskAttachmentCleanup removes a stored attachment in the background.
const TaskAttachmentCleanup = "attachment.cleanup"

type messageRepository interface {
	List(ctx context.Context, filter models.MessageFilter) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Create(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id string) (bool, error)
}

type attachmentStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

type taskSubmitter interface {
	Submit(task jobs.Task) error
}

// MessageUpload carries one attachment stream.
type MessageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// MessageServiceConfig tunes attachment handling.
type MessageServiceConfig struct {
	// URLPrefix is prepended to stored filenames to build attachment URLs.
	URLPrefix   string
	MaxFileSize int64
}

// MessageService sends, lists and annotates internal messages.
type MessageService struct {
	repo      messageRepository
	storage   attachmentStorage
	validator *validator.Validate
	cfg       MessageServiceConfig
	cleanup   taskSubmitter
	logger    *zap.Logger
	now       func() time.Time
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, storage attachmentStorage, validate *validator.Validate, cfg MessageServiceConfig, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/uploads/"
	}
	if !strings.HasSuffix(cfg.URLPrefix, "/") {
		cfg.URLPrefix += "/"
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	return &MessageService{repo: repo, storage: storage, validator: validate, cfg: cfg, logger: logger, now: time.Now}
}

// UseCleanupQueue moves attachment removal onto a worker pool. Without one, files are removed inline.
func (s *MessageService) UseCleanupQueue(queue taskSubmitter) {
	s.cleanup = queue
}

// CleanupHandler returns the pool handler deleting the attachment named by the task payload.
func CleanupHandler(storage attachmentStorage) jobs.Handler {
	return func(_ context.Context, task jobs.Task) error {
		name, ok := task.Payload.(string)
		if !ok || name == "" {
			return nil
		}
		return storage.Delete(name)
	}
}

// List returns messages pinned first, then newest first.
func (s *MessageService) List(ctx context.Context, filter models.MessageFilter) ([]models.Message, error) {
	messages, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

// Send stores a message and its attachments. Attachments already written are removed when
// the message cannot be stored.
func (s *MessageService) Send(ctx context.Context, req dto.SendMessageRequest, uploads []MessageUpload) (*models.Message, error) {
	req.Receiver = strings.TrimSpace(req.Receiver)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "receiver, subject and message are required")
	}
	for _, upload := range uploads {
		if upload.Size > s.cfg.MaxFileSize {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s exceeds %d bytes limit", upload.Filename, s.cfg.MaxFileSize))
		}
	}

	message := &models.Message{
		Sender:      strings.TrimSpace(req.Sender),
		Receiver:    req.Receiver,
		Subject:     req.Subject,
		Message:     req.Message,
		Priority:    req.Priority,
		Category:    strings.TrimSpace(req.Category),
		Attachments: models.Attachments{},
		Replies:     models.Replies{},
	}
	if message.Priority == "" {
		message.Priority = models.PriorityNormal
	}

	var stored []string
	for _, upload := range uploads {
		display := attachmentBaseName(upload.Filename)
		path, err := s.storage.SaveStream(uuid.NewString()+"-"+sanitizeFilename(display), upload.Content)
		if err != nil {
			s.discard(stored)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
		}
		stored = append(stored, path)
		message.Attachments = append(message.Attachments, models.Attachment{Name: display, URL: s.cfg.URLPrefix + path})
	}

	if err := s.repo.Create(ctx, message); err != nil {
		s.discard(stored)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return message, nil
}

// UpdateFlags toggles read, pinned and liked.
func (s *MessageService) UpdateFlags(ctx context.Context, id string, flags models.MessageFlags) (*models.Message, error) {
	message, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if flags.Read != nil {
		message.Read = *flags.Read
	}
	if flags.Pinned != nil {
		message.Pinned = *flags.Pinned
	}
	if flags.Liked != nil {
		message.Liked = *flags.Liked
	}
	if err := s.repo.Update(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update message")
	}
	return message, nil
}

// Reply appends a reply to the thread.
func (s *MessageService) Reply(ctx context.Context, id string, req dto.ReplyRequest) (*models.Message, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reply message is required")
	}
	message, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	message.Replies = append(message.Replies, models.Reply{
		ID:       uuid.NewString(),
		Sender:   strings.TrimSpace(req.Sender),
		Message:  req.Message,
		DateTime: s.now().UTC(),
	})
	if err := s.repo.Update(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store reply")
	}
	return message, nil
}

// Delete removes a message together with its attachment files.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	message, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete message")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "Not found")
	}
	names := make([]string, 0, len(message.Attachments))
	for _, attachment := range message.Attachments {
		names = append(names, strings.TrimPrefix(attachment.URL, s.cfg.URLPrefix))
	}
	s.discard(names)
	return nil
}

func (s *MessageService) find(ctx context.Context, id string) (*models.Message, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	return message, nil
}

func (s *MessageService) discard(names []string) {
	for _, name := range names {
		if s.cleanup != nil {
			err := s.cleanup.Submit(jobs.Task{ID: uuid.NewString(), Kind: TaskAttachmentCleanup, Payload: name})
			if err == nil {
				continue
			}
			s.logger.Warn("cleanup queue unavailable, removing inline", zap.Error(err))
		}
		if err := s.storage.Delete(name); err != nil {
			s.logger.Warn("failed to remove attachment", zap.String("file", name), zap.Error(err))
		}
	}
}

func attachmentBaseName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "attachment"
	}
	return base
}
