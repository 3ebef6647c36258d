package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{
		ID:            "q1",
		Text:          "Quem construiu a arca?",
		Kind:          KindMultipleChoice,
		Difficulty:    DifficultyEasy,
		Category:      CategoryOldTestament,
		CorrectAnswer: "Noé",
		Options:       []string{"Moisés", "Noé", "Abraão", "Davi"},
		Reference:     "Gênesis 6:14",
	}
}

func TestValidateQuestion(t *testing.T) {
	require.NoError(t, ValidateQuestion(validQuestion()))

	cases := map[string]func(q *Question){
		"blank text":          func(q *Question) { q.Text = "  " },
		"bad difficulty":      func(q *Question) { q.Difficulty = "extreme" },
		"bad category":        func(q *Question) { q.Category = "psalms" },
		"missing answer":      func(q *Question) { q.CorrectAnswer = "" },
		"answer not offered":  func(q *Question) { q.CorrectAnswer = "Jonas" },
		"three options":       func(q *Question) { q.Options = q.Options[:3] },
		"duplicate option":    func(q *Question) { q.Options[0] = "Noé" },
		"unknown kind":        func(q *Question) { q.Kind = "essay" },
		"open with options":   func(q *Question) { q.Kind = KindOpen },
		"blank option string": func(q *Question) { q.Options[3] = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := validQuestion()
			q.Options = append([]string(nil), q.Options...)
			mutate(&q)
			err := ValidateQuestion(q)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	john := Question{Category: CategoryNewTestament, Reference: "João 3:16"}
	matthew := Question{Category: CategoryNewTestament, Reference: "Mateus 5:1"}

	assert.True(t, MatchesFilter(john, ""))
	assert.True(t, MatchesFilter(john, "João"))
	assert.False(t, MatchesFilter(matthew, "João"))
	assert.True(t, MatchesFilter(matthew, CategoryNewTestament))
	assert.False(t, MatchesFilter(matthew, CategoryOldTestament))
	assert.True(t, MatchesFilter(Question{Category: "João"}, "João"))
}

func TestApplyPreset(t *testing.T) {
	user := MatchOptions{TargetScore: 50, MaxRounds: 7, TimeLimit: 30, SkipsAllowed: 2}

	quick, err := ApplyPreset(ModeQuick, user)
	require.NoError(t, err)
	assert.Equal(t, 10, quick.MaxRounds)
	assert.Equal(t, 0, quick.TargetScore)
	assert.Equal(t, 30, quick.TimeLimit)

	classic, err := ApplyPreset(ModeClassic, user)
	require.NoError(t, err)
	assert.Equal(t, 20, classic.MaxRounds)

	speed, err := ApplyPreset(ModeSpeed, user)
	require.NoError(t, err)
	assert.Equal(t, 15, speed.MaxRounds)
	assert.Equal(t, SpeedTimeLimit, speed.TimeLimit)

	champ, err := ApplyPreset(ModeChampionship, user)
	require.NoError(t, err)
	assert.Equal(t, 0, champ.MaxRounds)
	assert.Equal(t, 50, champ.TargetScore)

	custom, err := ApplyPreset(ModeCustom, user)
	require.NoError(t, err)
	assert.Equal(t, user, custom)

	_, err = ApplyPreset("blitz", user)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ApplyPreset(ModeCustom, MatchOptions{MaxRounds: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStandingsWinner(t *testing.T) {
	_, ok := Standings{}.Winner()
	assert.False(t, ok)

	s := Standings{Entries: []Standing{{TeamID: "a", Score: 20}, {TeamID: "b", Score: 10}}}
	w, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, "a", w.TeamID)

	s.Draw = true
	_, ok = s.Winner()
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrMatchNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrStaleSubmission, ErrState)
	assert.ErrorIs(t, ErrSkipsUnavailable, ErrQuotaExceeded)
	assert.Equal(t, "match not found", ErrMatchNotFound.Error())
}
