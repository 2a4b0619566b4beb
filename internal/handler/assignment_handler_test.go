package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

func TestAssignmentsListAndFilter(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodGet, "/api/v1/assignments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assignments []models.Assignment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &assignments))
	assert.Len(t, assignments, 2)

	rec = api.do(http.MethodGet, "/api/v1/assignments?subject=Science&teacher=Dr.%20Adams", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &assignments))
	require.Len(t, assignments, 1)
	assert.Equal(t, "a2", assignments[0].ID)
}

func TestAssignmentsCreateAndValidate(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/assignments", map[string]interface{}{
		"title": "Essay", "subject": "English", "teacher": "Ms. Lee", "dueDate": "2025-10-01", "maxMarks": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/assignments", map[string]interface{}{
		"title": "Essay", "subject": "English", "teacher": "Ms. Lee", "dueDate": "2025-10-01T09:00", "maxMarks": 10,
		"submissions": []map[string]string{{"student": "Mallory"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Assignment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Submissions)

	rec = api.do(http.MethodPut, "/api/v1/assignments/"+created.ID, map[string]interface{}{
		"title": "Essay", "subject": "English", "teacher": "Ms. Lee", "dueDate": "2025-10-02T09:00", "maxMarks": 15,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Assignment
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &updated))
	assert.Equal(t, 15.0, updated.MaxMarks)
	assert.Equal(t, "2025-10-02T09:00", updated.DueDate)
}

func TestAssignmentsSubmitAndDelete(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(http.MethodPost, "/api/v1/assignments/a1/submissions", map[string]interface{}{"student": "Alice", "files": []string{"alice.pdf"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var submission models.Submission
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &submission))
	assert.Equal(t, "Alice", submission.Student)
	assert.False(t, submission.SubmittedAt.IsZero())
	assert.True(t, submission.Late)

	rec = api.do(http.MethodPost, "/api/v1/assignments/a1/submissions", map[string]interface{}{"student": "Alice", "files": []string{"alice-v2.pdf"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = api.do(http.MethodPost, "/api/v1/assignments/a1/submissions", map[string]interface{}{"student": "Bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPost, "/api/v1/assignments/missing/submissions", map[string]interface{}{"student": "Bob", "files": []string{"b.pdf"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/assignments/a1/submissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var submissions []models.Submission
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &submissions))
	require.Len(t, submissions, 1)
	assert.Equal(t, []string{"alice-v2.pdf"}, submissions[0].Files)

	assert.Equal(t, http.StatusPreconditionFailed, api.do(http.MethodDelete, "/api/v1/assignments/a1", nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/assignments/a1?confirm=true", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/assignments/a1", nil).Code)
}
