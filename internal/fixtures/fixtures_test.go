package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamResultsEmbedded(t *testing.T) {
	records, err := ExamResults("")
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Alice Johnson", records[0].StudentName)
	assert.Equal(t, "Math 101", records[0].Class)
	assert.Equal(t, 100.0, records[0].MaxScore)
}

func TestExamResultsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"studentName":"Eve","class":"C","subject":"S","score":1,"maxScore":2,"date":"2025-01-01"}]`), 0o644))

	records, err := ExamResults(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Eve", records[0].StudentName)

	_, err = ExamResults(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAssignmentsEmbedded(t *testing.T) {
	seed, err := Assignments()
	require.NoError(t, err)
	require.Len(t, seed, 2)
	assert.Equal(t, "Math Algebra Basics", seed[0].Title)
	assert.Equal(t, "2025-09-15T23:59", seed[0].DueDate)
	assert.Equal(t, 20.0, seed[0].MaxMarks)
	assert.Equal(t, "Dr. Adams", seed[1].Teacher)
}
