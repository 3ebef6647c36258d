package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gincana-service/internal/domain"
	"gincana-service/internal/metrics"
)

// DefaultPointsPerCorrect is the flat award for a correct answer.
const DefaultPointsPerCorrect = 10

// QuestionSource is what the engine needs from the catalog.
type QuestionSource interface {
	Draw(ctx context.Context, exclude map[string]struct{}, categoryFilter string) (domain.Question, error)
	Get(ctx context.Context, id string) (domain.Question, error)
}

// TeamSource resolves team ids when a match is created.
type TeamSource interface {
	Get(ctx context.Context, id string) (domain.Team, error)
}

// MatchServiceOptions configures the engine.
type MatchServiceOptions struct {
	PointsPerCorrect int
	Now              func() time.Time
}

// MatchService is the match session engine. Each operation is a single atomic
// read-modify-write on the match repository; the engine keeps no per-match state of
// its own, so a reloaded session resumes exactly where it stopped.
type MatchService struct {
	matches   MatchRepository
	teams     TeamSource
	questions QuestionSource
	feed      *MatchFeed
	points    int
	now       func() time.Time
	logger    zerolog.Logger
}

func NewMatchService(matches MatchRepository, teams TeamSource, questions QuestionSource, feed *MatchFeed, opts MatchServiceOptions, logger zerolog.Logger) *MatchService {
	points := opts.PointsPerCorrect
	if points <= 0 {
		points = DefaultPointsPerCorrect
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if feed == nil {
		feed = NewMatchFeed()
	}
	return &MatchService{
		matches:   matches,
		teams:     teams,
		questions: questions,
		feed:      feed,
		points:    points,
		now:       now,
		logger:    logger.With().Str("component", "engine").Logger(),
	}
}

// CreateMatch snapshots the teams, applies the mode preset and stores an active match.
func (s *MatchService) CreateMatch(ctx context.Context, mode string, teamIDs []string, opts domain.MatchOptions) (domain.Match, error) {
	if len(teamIDs) == 0 {
		return domain.Match{}, domain.Validationf("a match needs at least one team")
	}
	settings, err := domain.ApplyPreset(mode, opts)
	if err != nil {
		return domain.Match{}, err
	}

	seen := make(map[string]struct{}, len(teamIDs))
	teams := make([]domain.MatchTeam, 0, len(teamIDs))
	for _, id := range teamIDs {
		if _, dup := seen[id]; dup {
			return domain.Match{}, domain.Validationf("team %q listed twice", id)
		}
		seen[id] = struct{}{}

		team, err := s.teams.Get(ctx, id)
		if err != nil {
			return domain.Match{}, err
		}
		teams = append(teams, domain.MatchTeam{ID: team.ID, Name: team.Name, Color: team.Color})
	}

	match := domain.Match{
		ID:             uuid.NewString(),
		Mode:           mode,
		Status:         domain.StatusActive,
		CurrentRound:   1,
		TargetScore:    settings.TargetScore,
		MaxRounds:      settings.MaxRounds,
		TimeLimit:      settings.TimeLimit,
		SkipsAllowed:   settings.SkipsAllowed,
		CategoryFilter: settings.CategoryFilter,
		Teams:          teams,
		AskedQuestions: []string{},
		CreatedAt:      s.now().UTC(),
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return domain.Match{}, err
	}

	metrics.MatchCreated(mode)
	s.logger.Info().
		Str("match_id", match.ID).
		Str("mode", mode).
		Int("teams", len(teams)).
		Int("max_rounds", match.MaxRounds).
		Int("target_score", match.TargetScore).
		Msg("match created")
	s.feed.Publish(match)
	return match, nil
}

// DrawNextQuestion draws an unseen question for the team on turn and records it as asked.
// When the filtered catalog is used up it returns domain.ErrExhausted and leaves the
// match untouched; ending the match is the caller's decision.
func (s *MatchService) DrawNextQuestion(ctx context.Context, matchID string) (domain.Question, error) {
	var drawn domain.Question
	updated, err := s.matches.Update(ctx, matchID, func(m *domain.Match) error {
		if m.Finished() {
			return domain.ErrMatchFinished
		}
		if m.CurrentQuestionID != "" {
			return domain.ErrDrawPending
		}
		exclude := make(map[string]struct{}, len(m.AskedQuestions))
		for _, id := range m.AskedQuestions {
			exclude[id] = struct{}{}
		}
		q, err := s.questions.Draw(ctx, exclude, m.CategoryFilter)
		if err != nil {
			return err
		}
		m.AskedQuestions = append(m.AskedQuestions, q.ID)
		m.CurrentQuestionID = q.ID
		drawn = q
		return nil
	})
	if errors.Is(err, domain.ErrExhausted) {
		metrics.QuestionDrawn(true)
		s.logger.Info().Str("match_id", matchID).Msg("question pool exhausted")
		return domain.Question{}, err
	}
	if err != nil {
		return domain.Question{}, err
	}

	metrics.QuestionDrawn(false)
	s.logger.Debug().
		Str("match_id", matchID).
		Str("question_id", drawn.ID).
		Str("team_id", updated.CurrentTeam().ID).
		Msg("question drawn")
	s.feed.Publish(updated)
	return drawn, nil
}

// CurrentQuestion returns the drawn question still awaiting an answer or skip.
func (s *MatchService) CurrentQuestion(ctx context.Context, matchID string) (domain.Question, error) {
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return domain.Question{}, err
	}
	if m.CurrentQuestionID == "" {
		return domain.Question{}, domain.ErrNoPendingDraw
	}
	return s.questions.Get(ctx, m.CurrentQuestionID)
}

// SubmitAnswer scores the answer of the team on turn for the active draw. questionID must
// name that draw; a stale or repeated submission fails with domain.ErrStaleSubmission and
// changes nothing.
func (s *MatchService) SubmitAnswer(ctx context.Context, matchID, questionID, chosen string) (domain.ScoreOutcome, error) {
	var outcome domain.ScoreOutcome
	updated, err := s.matches.Update(ctx, matchID, func(m *domain.Match) error {
		if m.Finished() {
			return domain.ErrMatchFinished
		}
		if m.CurrentQuestionID == "" {
			return domain.ErrNoPendingDraw
		}
		if questionID != m.CurrentQuestionID {
			return domain.ErrStaleSubmission
		}
		// A pending question deleted from the catalog scores as a miss so the turn still
		// moves on.
		q, err := s.questions.Get(ctx, questionID)
		switch {
		case errors.Is(err, domain.ErrQuestionNotFound):
			s.logger.Warn().
				Str("match_id", m.ID).
				Str("question_id", questionID).
				Msg("pending question left the catalog, scoring as incorrect")
			q = domain.Question{ID: questionID}
		case err != nil:
			return err
		}

		correct := q.CorrectAnswer != "" && chosen == q.CorrectAnswer
		awarded := 0
		if correct {
			awarded = s.points
		}
		outcome = s.applyAnswer(m, awarded)
		outcome.MatchID = m.ID
		outcome.QuestionID = q.ID
		outcome.Correct = correct
		outcome.CorrectAnswer = q.CorrectAnswer
		return nil
	})
	if err != nil {
		return domain.ScoreOutcome{}, err
	}

	metrics.AnswerSubmitted(outcome.Correct)
	if outcome.Finished {
		s.finished(updated)
	}
	s.feed.Publish(updated)
	return outcome, nil
}

// applyAnswer credits the team on turn, then evaluates the win conditions and rotates
// the turn. The round advances exactly when the rotation wraps back to the first team.
func (s *MatchService) applyAnswer(m *domain.Match, awarded int) domain.ScoreOutcome {
	team := &m.Teams[m.TurnIndex]
	team.Score += awarded
	m.CurrentQuestionID = ""

	outcome := domain.ScoreOutcome{
		TeamID:    team.ID,
		Awarded:   awarded,
		TeamScore: team.Score,
	}

	if m.TargetScore > 0 && team.Score >= m.TargetScore {
		s.finish(m, domain.FinishTargetScore)
		outcome.Round = m.CurrentRound
		outcome.Finished = true
		outcome.FinishReason = m.FinishReason
		return outcome
	}

	next := (m.TurnIndex + 1) % len(m.Teams)
	if next == 0 {
		m.CurrentRound++
	}
	outcome.Round = m.CurrentRound
	if m.MaxRounds > 0 && m.CurrentRound > m.MaxRounds {
		s.finish(m, domain.FinishMaxRounds)
		outcome.Finished = true
		outcome.FinishReason = m.FinishReason
		return outcome
	}

	m.TurnIndex = next
	outcome.NextTeamID = m.Teams[next].ID
	return outcome
}

// Skip forfeits the pending question for zero points. The same team keeps the turn and
// the skipped question stays in the asked history. Without a pending draw there is
// nothing to forfeit and domain.ErrNoPendingDraw is returned.
func (s *MatchService) Skip(ctx context.Context, matchID string) (domain.Match, error) {
	updated, err := s.matches.Update(ctx, matchID, func(m *domain.Match) error {
		if m.Finished() {
			return domain.ErrMatchFinished
		}
		if m.SkipsAllowed <= 0 {
			return domain.ErrSkipsUnavailable
		}
		team := &m.Teams[m.TurnIndex]
		if team.SkipsUsed >= m.SkipsAllowed {
			return domain.ErrQuotaExceeded
		}
		if m.CurrentQuestionID == "" {
			return domain.ErrNoPendingDraw
		}
		team.SkipsUsed++
		m.CurrentQuestionID = ""
		return nil
	})
	if err != nil {
		return domain.Match{}, err
	}

	metrics.SkipGranted()
	s.feed.Publish(updated)
	return updated, nil
}

// EndMatch finishes the match unconditionally. Ending a finished match is a no-op.
func (s *MatchService) EndMatch(ctx context.Context, matchID string) (domain.Match, error) {
	return s.endWith(ctx, matchID, domain.FinishEnded)
}

// EndExhausted finishes the match because no question remains; it is what presenters
// call after DrawNextQuestion reports domain.ErrExhausted.
func (s *MatchService) EndExhausted(ctx context.Context, matchID string) (domain.Match, error) {
	return s.endWith(ctx, matchID, domain.FinishExhausted)
}

func (s *MatchService) endWith(ctx context.Context, matchID, reason string) (domain.Match, error) {
	changed := false
	updated, err := s.matches.Update(ctx, matchID, func(m *domain.Match) error {
		changed = false
		if m.Finished() {
			return nil
		}
		s.finish(m, reason)
		changed = true
		return nil
	})
	if err != nil {
		return domain.Match{}, err
	}
	if changed {
		s.finished(updated)
		s.feed.Publish(updated)
	}
	return updated, nil
}

func (s *MatchService) finish(m *domain.Match, reason string) {
	now := s.now().UTC()
	m.Status = domain.StatusFinished
	m.FinishReason = reason
	m.FinishedAt = &now
	m.CurrentQuestionID = ""
}

func (s *MatchService) finished(m domain.Match) {
	metrics.MatchFinished(m.FinishReason)
	s.logger.Info().
		Str("match_id", m.ID).
		Str("reason", m.FinishReason).
		Int("round", m.CurrentRound).
		Msg("match finished")
}

// GetStandings ranks the teams by score. Ties keep the match team order and share a rank.
func (s *MatchService) GetStandings(ctx context.Context, matchID string) (domain.Standings, error) {
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return domain.Standings{}, err
	}
	return RankTeams(m), nil
}

// RankTeams derives the standings of m.
func RankTeams(m domain.Match) domain.Standings {
	teams := append([]domain.MatchTeam(nil), m.Teams...)
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Score > teams[j].Score
	})

	entries := make([]domain.Standing, len(teams))
	for i, t := range teams {
		rank := i + 1
		if i > 0 && t.Score == teams[i-1].Score {
			rank = entries[i-1].Rank
		}
		entries[i] = domain.Standing{
			Rank:      rank,
			TeamID:    t.ID,
			Name:      t.Name,
			Color:     t.Color,
			Score:     t.Score,
			SkipsUsed: t.SkipsUsed,
		}
	}
	return domain.Standings{
		MatchID: m.ID,
		Status:  m.Status,
		Round:   m.CurrentRound,
		Entries: entries,
		Draw:    len(entries) > 1 && entries[0].Score == entries[1].Score,
	}
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (domain.Match, error) {
	return s.matches.Get(ctx, matchID)
}

// ListMatches returns the match history, newest first.
func (s *MatchService) ListMatches(ctx context.Context) ([]domain.Match, error) {
	ms, err := s.matches.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].CreatedAt.After(ms[j].CreatedAt)
	})
	return ms, nil
}

// DeleteMatch removes a match record from the history and disconnects its observers.
func (s *MatchService) DeleteMatch(ctx context.Context, matchID string) error {
	if err := s.matches.Delete(ctx, matchID); err != nil {
		return err
	}
	s.feed.Close(matchID)
	return nil
}

// Subscribe streams match snapshots, starting with the current one. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *MatchService) Subscribe(ctx context.Context, matchID string) (<-chan domain.Match, func(), error) {
	ch, cancel := s.feed.subscribe(matchID)
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	s.feed.offer(ch, m)
	return ch, cancel, nil
}
