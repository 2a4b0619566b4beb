package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/models"
	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

type stubSnapshotStore struct {
	items   map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newStubSnapshotStore() *stubSnapshotStore {
	return &stubSnapshotStore{items: map[string][]byte{}}
}

func (s *stubSnapshotStore) Load(_ context.Context, key string, dest interface{}) error {
	if s.loadErr != nil {
		return s.loadErr
	}
	raw, ok := s.items[key]
	if !ok {
		return appErrors.ErrSnapshotNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubSnapshotStore) Save(_ context.Context, key string, value interface{}) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.items[key] = raw
	s.saves++
	return nil
}

func newTimetableService(t *testing.T, store SnapshotStore, metrics *MetricsService) *TimetableService {
	t.Helper()
	svc, err := NewTimetableService(context.Background(), store, NewExportService(ExportRenderers{}, metrics, nil), metrics, nil)
	require.NoError(t, err)
	return svc
}

func TestTimetableServiceAddPersistsSnapshot(t *testing.T) {
	store := newStubSnapshotStore()
	svc := newTimetableService(t, store, nil)

	added, err := svc.Add(context.Background(), entry("10A", "Prof. John", "R1", models.Monday, "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, 0, added.Index)
	assert.Equal(t, 1, store.saves)

	restored := newTimetableService(t, store, nil)
	assert.Equal(t, 1, restored.Count())
	assert.Equal(t, "10A", restored.List(models.TimetableFilter{})[0].Class)
}

func TestTimetableServiceSaveFailureKeepsState(t *testing.T) {
	store := newStubSnapshotStore()
	svc := newTimetableService(t, store, nil)
	_, err := svc.Add(context.Background(), entry("10A", "Prof. John", "R1", models.Monday, "09:00", "10:00"))
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	_, err = svc.Add(context.Background(), entry("10B", "Prof. Smith", "R2", models.Monday, "09:00", "10:00"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
	assert.Equal(t, 1, svc.Count())
}

func TestTimetableServiceLoadFailure(t *testing.T) {
	store := newStubSnapshotStore()
	store.loadErr = errors.New("corrupt")
	_, err := NewTimetableService(context.Background(), store, nil, nil, nil)
	require.Error(t, err)
}

func TestTimetableServiceConflictIsCounted(t *testing.T) {
	metrics := NewMetricsService()
	svc := newTimetableService(t, nil, metrics)

	_, err := svc.Add(context.Background(), entry("10A", "Prof. John", "R1", models.Monday, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), entry("10B", "Prof. Smith", "R1", models.Monday, "09:30", "10:30"))
	require.Error(t, err)

	assert.Equal(t, uint64(1), metrics.Snapshot().ConflictsTotal)
}

func TestTimetableServiceUpdateDeleteAndCheck(t *testing.T) {
	svc := newTimetableService(t, nil, nil)
	ctx := context.Background()
	_, err := svc.Add(ctx, entry("10A", "Prof. John", "R1", models.Monday, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, entry("10B", "Prof. Smith", "R2", models.Monday, "10:00", "11:00"))
	require.NoError(t, err)

	result, err := svc.Check(entry("10C", "Prof. Lee", "R2", models.Monday, "10:30", "11:30"), NoIgnore)
	require.NoError(t, err)
	assert.True(t, result.Conflict)
	assert.Equal(t, 1, result.Detail.Index)
	assert.Equal(t, 2, svc.Count(), "check must not change the timetable")

	result, err = svc.Check(entry("10B", "Prof. Smith", "R2", models.Monday, "10:00", "11:00"), 1)
	require.NoError(t, err)
	assert.False(t, result.Conflict)

	_, err = svc.Check(entry("10C", "Prof. Lee", "R2", models.Monday, "11:00", "10:00"), NoIgnore)
	assert.Error(t, err)

	updated, err := svc.Update(ctx, 1, entry("10B", "Prof. Smith", "R2", models.Monday, "10:00", "11:30"))
	require.NoError(t, err)
	assert.Equal(t, "11:30", updated.End.String())

	err = svc.Delete(ctx, 0, nil)
	assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
	require.NoError(t, svc.Delete(ctx, 0, Confirmed(true)))
	assert.Equal(t, 1, svc.Count())
}

func TestTimetableServiceExportFiltersRows(t *testing.T) {
	svc := newTimetableService(t, nil, nil)
	ctx := context.Background()
	_, err := svc.Add(ctx, entry("10A", "Prof. John", "R1", models.Monday, "09:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, entry("10B", "Prof. Smith", "R2", models.Tuesday, "09:00", "10:00"))
	require.NoError(t, err)

	result, err := svc.Export(ExportFormatCSV, models.TimetableFilter{Day: models.Tuesday})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Class,Section,Subject,Teacher,Day,Start,End,Room", lines[0])
	assert.Equal(t, "10B,,Mathematics,Prof. Smith,Tuesday,09:00,10:00,R2", lines[1])
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
}
