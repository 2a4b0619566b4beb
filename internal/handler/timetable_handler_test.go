package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/models"
	"github.com/noah-isme/smart-edu-api/internal/service"
)

func timetableBody(class, teacher, room, start, end string) map[string]string {
	return map[string]string{
		"class": class, "subject": "Mathematics", "teacher": teacher,
		"day": "MON", "start": start, "end": end, "room": room,
	}
}

func TestTimetableCreateAndConflict(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Prof. John", "R1", "09:00", "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.IndexedEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))
	assert.Equal(t, 0, created.Index)
	assert.Equal(t, models.Monday, created.Day)

	rec = api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10B", "Prof. John", "R2", "09:30", "10:30"))
	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
	assert.Contains(t, env.Error.Message, "teacher Prof. John")
	conflict, ok := env.Meta["conflict"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, models.ConflictTeacher, conflict["dimension"])

	rec = api.do(http.MethodGet, "/api/v1/timetable?day=MON", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.IndexedEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &entries))
	assert.Len(t, entries, 1)
}

func TestTimetableRejectsInvalidInput(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Prof. John", "R1", "10:00", "09:00"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Prof. John", "R1", "9am", "10:00"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/timetable?day=SUN", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/v1/timetable/entries/abc", timetableBody("10A", "Prof. John", "R1", "09:00", "10:00"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimetableRejectsEntryWithoutTimes(t *testing.T) {
	api := newTestAPI(t, nil)

	noStart := timetableBody("10A", "Lee", "R1", "", "10:00")
	delete(noStart, "start")
	rec := api.do(http.MethodPost, "/api/v1/timetable/entries", noStart)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)

	noEnd := timetableBody("10A", "Lee", "R1", "09:00", "")
	delete(noEnd, "end")
	rec = api.do(http.MethodPost, "/api/v1/timetable/entries", noEnd)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/timetable", nil)
	var entries []models.IndexedEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &entries))
	assert.Empty(t, entries, "nothing may be stored")

	rec = api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Lee", "R1", "08:00", "09:00"))
	assert.Equal(t, http.StatusCreated, rec.Code, "the slot must still be free")
}

func TestTimetableCheckIgnoresEditedEntry(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Prof. John", "R1", "09:00", "10:00")).Code)

	rec := api.do(http.MethodPost, "/api/v1/timetable/check", map[string]interface{}{
		"entry": timetableBody("10A", "Prof. John", "R1", "09:15", "10:15"),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var result service.TimetableCheckResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.True(t, result.Conflict)
	require.NotNil(t, result.Detail)
	assert.Equal(t, models.ConflictClass, result.Detail.Dimension)

	rec = api.do(http.MethodPost, "/api/v1/timetable/check", map[string]interface{}{
		"entry":       timetableBody("10A", "Prof. John", "R1", "09:15", "10:15"),
		"ignoreIndex": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	result = service.TimetableCheckResult{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.False(t, result.Conflict)
}

func TestTimetableDeleteRequiresConfirmation(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Prof. John", "R1", "09:00", "10:00")).Code)

	rec := api.do(http.MethodDelete, "/api/v1/timetable/entries/0", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/timetable/entries/0?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodDelete, "/api/v1/timetable/entries/0?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTimetableExport(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/v1/timetable/entries", timetableBody("10A", "Prof. John", "R1", "09:00", "10:00")).Code)

	rec := api.do(http.MethodGet, "/api/v1/timetable/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "timetable_")
	assert.Contains(t, rec.Body.String(), "Monday")

	rec = api.do(http.MethodGet, "/api/v1/timetable/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
