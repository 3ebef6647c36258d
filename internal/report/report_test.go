package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gincana-service/internal/domain"
)

func finishedMatch() (domain.Match, domain.Standings) {
	finished := time.Date(2024, 11, 22, 21, 0, 0, 0, time.UTC)
	m := domain.Match{
		ID:             "m1",
		Mode:           domain.ModeQuick,
		Status:         domain.StatusFinished,
		CurrentRound:   11,
		FinishReason:   domain.FinishMaxRounds,
		AskedQuestions: []string{"q1", "q2", "q3"},
		CreatedAt:      finished.Add(-time.Hour),
		FinishedAt:     &finished,
	}
	st := domain.Standings{
		MatchID: "m1",
		Status:  domain.StatusFinished,
		Round:   11,
		Entries: []domain.Standing{
			{Rank: 1, TeamID: "a", Name: "Leões", Score: 100},
			{Rank: 2, TeamID: "b", Name: "Águias, do Norte", Score: 0, SkipsUsed: 1},
		},
	}
	return m, st
}

func TestCSVExport(t *testing.T) {
	m, st := finishedMatch()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, m, st))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	meta := map[string]string{}
	var table [][]string
	for i, rec := range records {
		if rec[0] == "rank" {
			table = records[i:]
			break
		}
		meta[rec[0]] = rec[1]
	}
	assert.Equal(t, "max_rounds", meta["finish_reason"])
	assert.Equal(t, "Leões", meta["winner"])
	assert.Equal(t, "3", meta["questions_asked"])
	require.Len(t, table, 3)
	assert.Equal(t, []string{"rank", "team_id", "team", "score", "skips_used"}, table[0])
	assert.Equal(t, []string{"2", "b", "Águias, do Norte", "0", "1"}, table[2])
}

func TestTextExportReportsDraw(t *testing.T) {
	m, st := finishedMatch()
	st.Entries[1].Score = 100
	st.Entries[1].Rank = 1
	st.Draw = true

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, m, st))
	out := buf.String()
	assert.Contains(t, out, "winner:")
	assert.Contains(t, out, "draw")
	assert.Contains(t, out, "Águias, do Norte")
	assert.Equal(t, 2, strings.Count(out, "100"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", f.ContentType())

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
