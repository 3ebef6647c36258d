// Package seed ships the starter catalog of bible questions.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gincana-service/internal/domain"
)

//go:embed questions.json
var questionsJSON []byte

// Questions decodes the embedded catalog. Ids and timestamps are left empty so the
// importer assigns them.
func Questions() ([]domain.Question, error) {
	var qs []domain.Question
	if err := json.Unmarshal(questionsJSON, &qs); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return qs, nil
}
