package domain

// SpeedTimeLimit is the per-question time forced by speed mode, in seconds.
const SpeedTimeLimit = 15

// ApplyPreset resolves the effective settings of a mode. User values survive unless the
// mode overrides them.
func ApplyPreset(mode string, opts MatchOptions) (MatchOptions, error) {
	if opts.TargetScore < 0 || opts.MaxRounds < 0 || opts.TimeLimit < 0 || opts.SkipsAllowed < 0 {
		return MatchOptions{}, Validationf("match settings must not be negative")
	}

	out := opts
	switch mode {
	case ModeQuick:
		out.MaxRounds = 10
		out.TargetScore = 0
	case ModeClassic:
		out.MaxRounds = 20
		out.TargetScore = 0
	case ModeSpeed:
		out.MaxRounds = 15
		out.TargetScore = 0
		out.TimeLimit = SpeedTimeLimit
	case ModeChampionship:
		out.MaxRounds = 0
	case ModeThematic, ModeCustom:
	default:
		return MatchOptions{}, Validationf("unknown mode %q", mode)
	}
	return out, nil
}
