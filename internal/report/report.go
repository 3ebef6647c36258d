// Package report renders a match scoreboard for export. It is a pure projection of the
// match and its standings; nothing here touches storage.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"gincana-service/internal/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// ParseFormat accepts "csv" (the default when empty) and "text".
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", domain.Validationf("unknown export format %q", raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatText {
		return "text/plain; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return "csv"
}

// Write renders m and its standings to w.
func Write(w io.Writer, f Format, m domain.Match, st domain.Standings) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, m, st)
	case FormatText:
		return writeText(w, m, st)
	default:
		return domain.Validationf("unknown export format %q", f)
	}
}

func metadata(m domain.Match, st domain.Standings) [][2]string {
	winner := "draw"
	if s, ok := st.Winner(); ok {
		winner = s.Name
	}
	if len(st.Entries) == 0 {
		winner = ""
	}
	finished := ""
	if m.FinishedAt != nil {
		finished = m.FinishedAt.UTC().Format(time.RFC3339)
	}
	return [][2]string{
		{"match", m.ID},
		{"mode", m.Mode},
		{"status", m.Status},
		{"round", strconv.Itoa(m.CurrentRound)},
		{"finish_reason", m.FinishReason},
		{"questions_asked", strconv.Itoa(len(m.AskedQuestions))},
		{"created_at", m.CreatedAt.UTC().Format(time.RFC3339)},
		{"finished_at", finished},
		{"winner", winner},
	}
}

// writeCSV emits the metadata as key,value records, a blank line, then the ranking table.
func writeCSV(w io.Writer, m domain.Match, st domain.Standings) error {
	cw := csv.NewWriter(w)
	for _, kv := range metadata(m, st) {
		if err := cw.Write(kv[:]); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{""}); err != nil {
		return err
	}
	if err := cw.Write([]string{"rank", "team_id", "team", "score", "skips_used"}); err != nil {
		return err
	}
	for _, e := range st.Entries {
		record := []string{strconv.Itoa(e.Rank), e.TeamID, e.Name, strconv.Itoa(e.Score), strconv.Itoa(e.SkipsUsed)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, m domain.Match, st domain.Standings) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, kv := range metadata(m, st) {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", kv[0], kv[1])
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "#\tTEAM\tSCORE\tSKIPS")
	for _, e := range st.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", e.Rank, e.Name, e.Score, e.SkipsUsed)
	}
	return tw.Flush()
}
