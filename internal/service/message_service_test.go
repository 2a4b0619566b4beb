package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/dto"
	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	"github.com/noah-isme/smart-edu-api/pkg/jobs"
)

type messageRepoStub struct {
	items     map[string]*models.Message
	createErr error
	lastList  models.MessageFilter
}

func newMessageRepoStub() *messageRepoStub {
	return &messageRepoStub{items: map[string]*models.Message{}}
}

func (r *messageRepoStub) List(_ context.Context, filter models.MessageFilter) ([]models.Message, error) {
	r.lastList = filter
	out := make([]models.Message, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, *m)
	}
	return out, nil
}

func (r *messageRepoStub) FindByID(_ context.Context, id string) (*models.Message, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *m
	return &clone, nil
}

func (r *messageRepoStub) Create(_ context.Context, message *models.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	message.ID = "msg-" + message.Subject
	clone := *message
	r.items[message.ID] = &clone
	return nil
}

func (r *messageRepoStub) Update(_ context.Context, message *models.Message) error {
	clone := *message
	r.items[message.ID] = &clone
	return nil
}

func (r *messageRepoStub) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

type memoryAttachments struct {
	mu      sync.Mutex
	files   map[string]string
	saveErr error
}

func newMemoryAttachments() *memoryAttachments {
	return &memoryAttachments{files: map[string]string{}}
}

func (s *memoryAttachments) SaveStream(filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[filename] = string(data)
	return filename, nil
}

func (s *memoryAttachments) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, filename)
	return nil
}

func (s *memoryAttachments) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func sendRequest(subject string) dto.SendMessageRequest {
	return dto.SendMessageRequest{Sender: "admin", Receiver: "Class 10A", Subject: subject, Message: "Bring your lab coats"}
}

func TestMessageServiceSendDefaultsPriorityAndStoresAttachments(t *testing.T) {
	repo := newMessageRepoStub()
	files := newMemoryAttachments()
	svc := NewMessageService(repo, files, nil, MessageServiceConfig{}, nil)

	msg, err := svc.Send(context.Background(), sendRequest("Lab"), []MessageUpload{
		{Filename: "../../notes.pdf", Size: 5, Content: strings.NewReader("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNormal, msg.Priority)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "notes.pdf", msg.Attachments[0].Name)
	assert.True(t, strings.HasPrefix(msg.Attachments[0].URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(msg.Attachments[0].URL, "-notes.pdf"))
	assert.Equal(t, 1, files.count())
	assert.NotNil(t, msg.Replies)
}

func TestMessageServiceSendValidation(t *testing.T) {
	svc := NewMessageService(newMessageRepoStub(), newMemoryAttachments(), nil, MessageServiceConfig{}, nil)

	req := sendRequest("  ")
	_, err := svc.Send(context.Background(), req, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	req = sendRequest("Lab")
	req.Priority = "Low"
	_, err = svc.Send(context.Background(), req, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestMessageServiceSendRejectsOversizedAttachment(t *testing.T) {
	files := newMemoryAttachments()
	svc := NewMessageService(newMessageRepoStub(), files, nil, MessageServiceConfig{MaxFileSize: 3}, nil)

	_, err := svc.Send(context.Background(), sendRequest("Lab"), []MessageUpload{
		{Filename: "big.bin", Size: 4, Content: strings.NewReader("abcd")},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Equal(t, 0, files.count())
}

func TestMessageServiceSendRemovesFilesWhenStoreFails(t *testing.T) {
	repo := newMessageRepoStub()
	repo.createErr = errors.New("db down")
	files := newMemoryAttachments()
	svc := NewMessageService(repo, files, nil, MessageServiceConfig{}, nil)

	_, err := svc.Send(context.Background(), sendRequest("Lab"), []MessageUpload{
		{Filename: "a.txt", Size: 1, Content: strings.NewReader("a")},
		{Filename: "b.txt", Size: 1, Content: strings.NewReader("b")},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
	assert.Equal(t, 0, files.count())
}

func TestMessageServiceUpdateFlagsAndReply(t *testing.T) {
	repo := newMessageRepoStub()
	svc := NewMessageService(repo, newMemoryAttachments(), nil, MessageServiceConfig{}, nil)
	fixed := time.Date(2025, 9, 5, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	msg, err := svc.Send(context.Background(), sendRequest("Lab"), nil)
	require.NoError(t, err)

	yes := true
	updated, err := svc.UpdateFlags(context.Background(), msg.ID, models.MessageFlags{Read: &yes, Pinned: &yes})
	require.NoError(t, err)
	assert.True(t, updated.Read)
	assert.True(t, updated.Pinned)
	assert.False(t, updated.Liked)

	replied, err := svc.Reply(context.Background(), msg.ID, dto.ReplyRequest{Sender: "teacher", Message: " Noted "})
	require.NoError(t, err)
	require.Len(t, replied.Replies, 1)
	assert.Equal(t, "Noted", replied.Replies[0].Message)
	assert.Equal(t, fixed, replied.Replies[0].DateTime)
	assert.NotEmpty(t, replied.Replies[0].ID)
	assert.True(t, repo.items[msg.ID].Read)

	_, err = svc.Reply(context.Background(), msg.ID, dto.ReplyRequest{Message: ""})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestMessageServiceMissingMessage(t *testing.T) {
	svc := NewMessageService(newMessageRepoStub(), newMemoryAttachments(), nil, MessageServiceConfig{}, nil)

	_, err := svc.UpdateFlags(context.Background(), "nope", models.MessageFlags{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	err = svc.Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, "Not found", appErrors.FromError(err).Message)
}

func TestMessageServiceDeleteRemovesAttachments(t *testing.T) {
	repo := newMessageRepoStub()
	files := newMemoryAttachments()
	svc := NewMessageService(repo, files, nil, MessageServiceConfig{}, nil)

	msg, err := svc.Send(context.Background(), sendRequest("Lab"), []MessageUpload{
		{Filename: "a.txt", Size: 1, Content: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, files.count())

	require.NoError(t, svc.Delete(context.Background(), msg.ID))
	assert.Empty(t, repo.items)
	assert.Equal(t, 0, files.count())
}

func TestMessageServiceDeleteUsesCleanupQueue(t *testing.T) {
	repo := newMessageRepoStub()
	files := newMemoryAttachments()
	svc := NewMessageService(repo, files, nil, MessageServiceConfig{}, nil)

	pool := jobs.NewPool("cleanup", CleanupHandler(files), jobs.PoolConfig{})
	pool.Start(context.Background())
	svc.UseCleanupQueue(pool)

	msg, err := svc.Send(context.Background(), sendRequest("Lab"), []MessageUpload{
		{Filename: "a.txt", Size: 1, Content: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), msg.ID))

	assert.Eventually(t, func() bool { return files.count() == 0 }, time.Second, 10*time.Millisecond)
	pool.Stop()
}

func TestMessageServiceListPassesFilter(t *testing.T) {
	repo := newMessageRepoStub()
	svc := NewMessageService(repo, newMemoryAttachments(), nil, MessageServiceConfig{}, nil)

	filter := models.MessageFilter{Receiver: "Class 10A", UnreadOnly: true, Search: "lab"}
	_, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, filter, repo.lastList)
}
