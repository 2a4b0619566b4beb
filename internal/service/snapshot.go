package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
	applog "github.com/noah-isme/smart-edu-api/pkg/logger"
)

// Snapshot keys.
const (
	SnapshotTimetable       = "timetable"
	SnapshotExamResults     = "exam_results"
	SnapshotReportTemplates = "report_templates"
	SnapshotReportSchedules = "report_schedules"
	SnapshotCourses         = "courses"
	SnapshotAssignments     = "assignments"
)

// SnapshotStore loads and saves whole JSON-encodable states. Load returns
// ErrSnapshotNotFound when nothing was saved under key.
type SnapshotStore interface {
	Load(ctx context.Context, key string, dest interface{}) error
	Save(ctx context.Context, key string, value interface{}) error
}

type snapshotRecorder interface {
	ObserveSnapshotSave(key string, err error, duration time.Duration)
}

// snapshotter wraps a SnapshotStore with logging and metrics. A nil store keeps state in memory only.
type snapshotter struct {
	store   SnapshotStore
	metrics snapshotRecorder
	logger  *zap.Logger
}

// load reports whether a snapshot existed under key.
func (s snapshotter) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	if err := s.store.Load(ctx, key, dest); err != nil {
		if errors.Is(err, appErrors.ErrSnapshotNotFound) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+key+" snapshot")
	}
	return true, nil
}

func (s snapshotter) save(ctx context.Context, key string, value interface{}) error {
	if s.store == nil {
		return nil
	}
	start := time.Now()
	err := s.store.Save(ctx, key, value)
	if s.metrics != nil {
		s.metrics.ObserveSnapshotSave(key, err, time.Since(start))
	}
	if err != nil {
		if s.logger != nil {
			applog.ForRequest(ctx, s.logger).Error("snapshot save failed", zap.String("key", key), zap.Error(err))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save "+key+" snapshot")
	}
	return nil
}
