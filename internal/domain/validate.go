package domain

import "strings"

// ChoiceCount is the number of options a multiple-choice question carries.
const ChoiceCount = 4

// ValidateQuestion checks the catalog invariants of q.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return Validationf("question text is required")
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return Validationf("unknown difficulty %q", q.Difficulty)
	}
	if !IsCategory(q.Category) {
		return Validationf("unknown category %q", q.Category)
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return Validationf("correct answer is required")
	}

	switch q.Kind {
	case KindMultipleChoice:
		if len(q.Options) != ChoiceCount {
			return Validationf("multiple choice needs %d options, got %d", ChoiceCount, len(q.Options))
		}
		seen := make(map[string]struct{}, len(q.Options))
		found := false
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return Validationf("options must not be blank")
			}
			if _, dup := seen[opt]; dup {
				return Validationf("duplicate option %q", opt)
			}
			seen[opt] = struct{}{}
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			return Validationf("correct answer %q is not among the options", q.CorrectAnswer)
		}
	case KindOpen:
		if len(q.Options) != 0 {
			return Validationf("open questions take no options")
		}
	default:
		return Validationf("unknown question kind %q", q.Kind)
	}
	return nil
}

// ValidateTeamName rejects blank team names.
func ValidateTeamName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Validationf("team name is required")
	}
	return nil
}

// MatchesFilter applies the draw filter: a fixed category is matched exactly, anything
// else is a book prefix matched against category or reference.
func MatchesFilter(q Question, filter string) bool {
	if filter == "" {
		return true
	}
	if IsCategory(filter) {
		return q.Category == filter
	}
	return q.Category == filter || strings.HasPrefix(q.Reference, filter)
}
