// Package fixtures holds the seed data shipped with the binary.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

//go:embed exam_results.json
var examResults []byte

//go:embed assignments.json
var assignments []byte

// ExamResults decodes the exam result seed. An empty path selects the embedded file.
func ExamResults(path string) ([]models.ScoredRecord, error) {
	raw := examResults
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read exam fixture: %w", err)
		}
		raw = data
	}
	var records []models.ScoredRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode exam fixture: %w", err)
	}
	return records, nil
}

// Assignments decodes the embedded assignment seed.
func Assignments() ([]models.Assignment, error) {
	var out []models.Assignment
	if err := json.Unmarshal(assignments, &out); err != nil {
		return nil, fmt.Errorf("decode assignment fixture: %w", err)
	}
	return out, nil
}
