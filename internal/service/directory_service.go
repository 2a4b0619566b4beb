package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

type directoryRepository[T any] interface {
	List(ctx context.Context, search string) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type directoryRecord[T any] interface {
	*T
	models.DirectoryRecord
}

type queryRecorder interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// Fields a patch may never overwrite.
var protectedPatchFields = []string{"id", "createdAt", "updatedAt"}

// DirectoryService is pass-through CRUD over one kind of directory record.
type DirectoryService[T any, PT directoryRecord[T]] struct {
	repo      directoryRepository[T]
	kind      string
	validator *validator.Validate
	metrics   queryRecorder
	logger    *zap.Logger
	hashCost  int
}

// NewDirectoryService constructs a DirectoryService. kind names the records in messages and metrics.
func NewDirectoryService[T any, PT directoryRecord[T]](repo directoryRepository[T], kind string, metrics *MetricsService, logger *zap.Logger) *DirectoryService[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService[T, PT]{
		repo:      repo,
		kind:      kind,
		validator: validator.New(),
		metrics:   metrics,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

// Kind returns the plural record name, e.g. "students".
func (s *DirectoryService[T, PT]) Kind() string {
	return s.kind
}

// List returns records optionally narrowed by search.
func (s *DirectoryService[T, PT]) List(ctx context.Context, search string) ([]T, error) {
	defer s.observe("list", time.Now())
	records, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+s.kind)
	}
	return records, nil
}

// Get returns the record with id.
func (s *DirectoryService[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	defer s.observe("get", time.Now())
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+s.kind)
	}
	return record, nil
}

// Register validates and stores a new record. A plain password is replaced by its bcrypt hash.
func (s *DirectoryService[T, PT]) Register(ctx context.Context, record *T) (*T, error) {
	defer s.observe("register", time.Now())
	account := PT(record).Base()
	account.ID = ""
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if err := s.validateRecord(record); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueEmail(ctx, account.Email, ""); err != nil {
		return nil, err
	}
	if err := s.applyPassword(account); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register "+s.kind)
	}
	s.logger.Info("directory record registered", zap.String("kind", s.kind), zap.String("id", account.ID))
	return record, nil
}

// Update merges patch, a partial JSON document, onto the stored record.
func (s *DirectoryService[T, PT]) Update(ctx context.Context, id string, patch []byte) (*T, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.observe("update", time.Now())

	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	for _, field := range protectedPatchFields {
		delete(changes, field)
	}

	merged, err := mergeJSON(existing, changes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	var updated T
	if err := json.Unmarshal(merged, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	before := PT(existing).Base()
	account := PT(&updated).Base()
	account.ID = before.ID
	account.CreatedAt = before.CreatedAt
	account.PasswordHash = before.PasswordHash
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if err := s.validateRecord(&updated); err != nil {
		return nil, err
	}
	if account.Email != before.Email {
		if err := s.ensureUniqueEmail(ctx, account.Email, account.ID); err != nil {
			return nil, err
		}
	}
	if err := s.applyPassword(account); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+s.kind)
	}
	return &updated, nil
}

// Delete removes the record with id.
func (s *DirectoryService[T, PT]) Delete(ctx context.Context, id string) error {
	defer s.observe("delete", time.Now())
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete "+s.kind)
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "Not found")
	}
	return nil
}

// Count returns the number of records.
func (s *DirectoryService[T, PT]) Count(ctx context.Context) (int, error) {
	defer s.observe("count", time.Now())
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count "+s.kind)
	}
	return total, nil
}

func (s *DirectoryService[T, PT]) validateRecord(record *T) error {
	account := PT(record).Base()
	if account.Email == "" {
		return appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	if err := s.validator.Var(account.Email, "email"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email is invalid")
	}
	if strings.TrimSpace(PT(record).DisplayName()) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	return nil
}

func (s *DirectoryService[T, PT]) ensureUniqueEmail(ctx context.Context, email, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrValidation, "email already registered")
	}
	return nil
}

func (s *DirectoryService[T, PT]) applyPassword(account *models.Account) error {
	if account.Password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), s.hashCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "password cannot be used")
	}
	account.PasswordHash = string(hash)
	account.Password = ""
	return nil
}

func (s *DirectoryService[T, PT]) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(fmt.Sprintf("%s.%s", s.kind, op), time.Since(start))
	}
}

func mergeJSON(base interface{}, changes map[string]json.RawMessage) ([]byte, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for key, value := range changes {
		doc[key] = value
	}
	return json.Marshal(doc)
}
