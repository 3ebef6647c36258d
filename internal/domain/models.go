package domain

import "time"

// Question kinds.
const (
	KindMultipleChoice = "multiple_choice"
	KindOpen           = "open"
)

// Difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Fixed catalog categories. Anything else used as a match filter is treated as a
// book/reference prefix.
const (
	CategoryOldTestament = "old_testament"
	CategoryNewTestament = "new_testament"
	CategoryCharacters   = "characters"
	CategoryMiracles     = "miracles"
	CategoryParables     = "parables"
	CategoryBooks        = "books"
)

var categories = map[string]struct{}{
	CategoryOldTestament: {},
	CategoryNewTestament: {},
	CategoryCharacters:   {},
	CategoryMiracles:     {},
	CategoryParables:     {},
	CategoryBooks:        {},
}

// IsCategory reports whether c is one of the six fixed categories.
func IsCategory(c string) bool {
	_, ok := categories[c]
	return ok
}

// Question is an immutable catalog entry.
type Question struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Kind          string    `json:"kind"`
	Difficulty    string    `json:"difficulty"`
	Category      string    `json:"category"`
	CorrectAnswer string    `json:"correct_answer"`
	Options       []string  `json:"options"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuestionPatch carries a partial update; nil fields are left untouched.
type QuestionPatch struct {
	Text          *string   `json:"text,omitempty"`
	Kind          *string   `json:"kind,omitempty"`
	Difficulty    *string   `json:"difficulty,omitempty"`
	Category      *string   `json:"category,omitempty"`
	CorrectAnswer *string   `json:"correct_answer,omitempty"`
	Options       *[]string `json:"options,omitempty"`
	Reference     *string   `json:"reference,omitempty"`
}

// Apply returns a copy of q with the patch applied.
func (p QuestionPatch) Apply(q Question) Question {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Kind != nil {
		q.Kind = *p.Kind
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.Category != nil {
		q.Category = *p.Category
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.Options != nil {
		q.Options = append([]string(nil), (*p.Options)...)
	}
	if p.Reference != nil {
		q.Reference = *p.Reference
	}
	return q
}

// QuestionFilter narrows ListQuestions. Zero values mean "no constraint".
type QuestionFilter struct {
	Category   string
	Difficulty string
	Search     string
	Limit      int
}

// Team is a reusable identity, independent of any match.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchTeam is a frozen copy of a Team with its scoring record inside one match.
type MatchTeam struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Score     int    `json:"score"`
	SkipsUsed int    `json:"skips_used"`
}

// Match modes.
const (
	ModeQuick        = "quick"
	ModeClassic      = "classic"
	ModeSpeed        = "speed"
	ModeChampionship = "championship"
	ModeThematic     = "thematic"
	ModeCustom       = "custom"
)

// Match statuses. Transitions only move forward.
const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Reasons a match reached StatusFinished.
const (
	FinishTargetScore = "target_score"
	FinishMaxRounds   = "max_rounds"
	FinishEnded       = "ended"
	FinishExhausted   = "exhausted"
)

// Match is the session aggregate owned by the engine. Zero TargetScore, MaxRounds,
// TimeLimit and SkipsAllowed mean the setting is off.
type Match struct {
	ID                string      `json:"id"`
	Mode              string      `json:"mode"`
	Status            string      `json:"status"`
	CurrentRound      int         `json:"current_round"`
	TargetScore       int         `json:"target_score,omitempty"`
	MaxRounds         int         `json:"max_rounds,omitempty"`
	TimeLimit         int         `json:"time_limit,omitempty"`
	SkipsAllowed      int         `json:"skips_allowed,omitempty"`
	CategoryFilter    string      `json:"category_filter,omitempty"`
	Teams             []MatchTeam `json:"teams"`
	AskedQuestions    []string    `json:"asked_questions"`
	TurnIndex         int         `json:"turn_index"`
	CurrentQuestionID string      `json:"current_question_id,omitempty"`
	FinishReason      string      `json:"finish_reason,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	FinishedAt        *time.Time  `json:"finished_at,omitempty"`
}

// Clone returns a deep copy so stores never share slices with callers.
func (m Match) Clone() Match {
	c := m
	c.Teams = append([]MatchTeam(nil), m.Teams...)
	c.AskedQuestions = append([]string(nil), m.AskedQuestions...)
	if m.FinishedAt != nil {
		t := *m.FinishedAt
		c.FinishedAt = &t
	}
	return c
}

// Finished reports whether the match reached its terminal state.
func (m Match) Finished() bool {
	return m.Status == StatusFinished
}

// CurrentTeam returns the team on turn.
func (m Match) CurrentTeam() MatchTeam {
	return m.Teams[m.TurnIndex]
}

// HasAsked reports whether id was already drawn in this match.
func (m Match) HasAsked(id string) bool {
	for _, asked := range m.AskedQuestions {
		if asked == id {
			return true
		}
	}
	return false
}

// MatchOptions are the user-configurable settings passed to CreateMatch.
type MatchOptions struct {
	TargetScore    int    `json:"target_score,omitempty"`
	MaxRounds      int    `json:"max_rounds,omitempty"`
	TimeLimit      int    `json:"time_limit,omitempty"`
	SkipsAllowed   int    `json:"skips_allowed,omitempty"`
	CategoryFilter string `json:"category_filter,omitempty"`
}

// ScoreOutcome summarizes the effect of one SubmitAnswer call.
type ScoreOutcome struct {
	MatchID       string `json:"match_id"`
	QuestionID    string `json:"question_id"`
	TeamID        string `json:"team_id"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Awarded       int    `json:"awarded"`
	TeamScore     int    `json:"team_score"`
	Round         int    `json:"round"`
	NextTeamID    string `json:"next_team_id,omitempty"`
	Finished      bool   `json:"finished"`
	FinishReason  string `json:"finish_reason,omitempty"`
}

// Standing is one row of the ranked scoreboard.
type Standing struct {
	Rank      int    `json:"rank"`
	TeamID    string `json:"team_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Score     int    `json:"score"`
	SkipsUsed int    `json:"skips_used"`
}

// Standings is the ranked scoreboard of a match.
type Standings struct {
	MatchID string     `json:"match_id"`
	Status  string     `json:"status"`
	Round   int        `json:"round"`
	Entries []Standing `json:"entries"`
	Draw    bool       `json:"draw"`
}

// Winner returns the leading entry, or false on a draw or an empty board.
func (s Standings) Winner() (Standing, bool) {
	if len(s.Entries) == 0 || s.Draw {
		return Standing{}, false
	}
	return s.Entries[0], true
}
