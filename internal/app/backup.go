package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gincana-service/internal/domain"
)

// SnapshotVersion is bumped whenever the backup layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is a whole-catalog backup of questions, teams and matches.
type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Questions []domain.Question `json:"questions"`
	Teams     []domain.Team     `json:"teams"`
	Matches   []domain.Match    `json:"matches"`
}

// BackupService snapshots and restores every collection.
type BackupService struct {
	questions QuestionRepository
	teams     TeamRepository
	matches   MatchRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewBackupService(questions QuestionRepository, teams TeamRepository, matches MatchRepository, logger zerolog.Logger) *BackupService {
	return &BackupService{
		questions: questions,
		teams:     teams,
		matches:   matches,
		logger:    logger.With().Str("component", "backup").Logger(),
		now:       time.Now,
	}
}

func (s *BackupService) Export(ctx context.Context) (Snapshot, error) {
	qs, err := s.questions.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list questions: %w", err)
	}
	ts, err := s.teams.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list teams: %w", err)
	}
	ms, err := s.matches.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list matches: %w", err)
	}
	return Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: s.now().UTC(),
		Questions: qs,
		Teams:     ts,
		Matches:   ms,
	}, nil
}

// Restore replaces all three collections with the snapshot content. The snapshot is
// validated up front; an invalid snapshot replaces nothing. Matches go first and the
// catalog last; when a later step fails the collections already replaced are put back
// from a snapshot taken just before.
func (s *BackupService) Restore(ctx context.Context, snap Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	prev, err := s.Export(ctx)
	if err != nil {
		return fmt.Errorf("snapshot before restore: %w", err)
	}

	if err := s.matches.ReplaceAll(ctx, snap.Matches); err != nil {
		return fmt.Errorf("restore matches: %w", err)
	}
	if err := s.teams.ReplaceAll(ctx, snap.Teams); err != nil {
		s.rollback(ctx, prev, false)
		return fmt.Errorf("restore teams: %w", err)
	}
	if err := s.questions.ReplaceAll(ctx, snap.Questions); err != nil {
		s.rollback(ctx, prev, true)
		return fmt.Errorf("restore questions: %w", err)
	}
	s.logger.Info().
		Int("questions", len(snap.Questions)).
		Int("teams", len(snap.Teams)).
		Int("matches", len(snap.Matches)).
		Msg("backup restored")
	return nil
}

func (s *BackupService) rollback(ctx context.Context, prev Snapshot, teams bool) {
	if err := s.matches.ReplaceAll(ctx, prev.Matches); err != nil {
		s.logger.Error().Err(err).Msg("rollback matches after failed restore")
	}
	if !teams {
		return
	}
	if err := s.teams.ReplaceAll(ctx, prev.Teams); err != nil {
		s.logger.Error().Err(err).Msg("rollback teams after failed restore")
	}
}

func validateSnapshot(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return domain.Validationf("unsupported backup version %d", snap.Version)
	}

	ids := make(map[string]struct{}, len(snap.Questions))
	for i, q := range snap.Questions {
		if q.ID == "" {
			return domain.Validationf("question %d has no id", i)
		}
		if _, dup := ids[q.ID]; dup {
			return domain.Validationf("question id %q appears twice", q.ID)
		}
		ids[q.ID] = struct{}{}
		if err := domain.ValidateQuestion(q); err != nil {
			return fmt.Errorf("question %q: %w", q.ID, err)
		}
	}

	teamIDs := make(map[string]struct{}, len(snap.Teams))
	for _, t := range snap.Teams {
		if t.ID == "" {
			return domain.Validationf("team without id")
		}
		if _, dup := teamIDs[t.ID]; dup {
			return domain.Validationf("team id %q appears twice", t.ID)
		}
		teamIDs[t.ID] = struct{}{}
		if err := domain.ValidateTeamName(t.Name); err != nil {
			return fmt.Errorf("team %q: %w", t.ID, err)
		}
	}

	matchIDs := make(map[string]struct{}, len(snap.Matches))
	for _, m := range snap.Matches {
		if m.ID == "" {
			return domain.Validationf("match without id")
		}
		if _, dup := matchIDs[m.ID]; dup {
			return domain.Validationf("match id %q appears twice", m.ID)
		}
		matchIDs[m.ID] = struct{}{}
		if len(m.Teams) == 0 {
			return domain.Validationf("match %q has no teams", m.ID)
		}
		if m.TurnIndex < 0 || m.TurnIndex >= len(m.Teams) {
			return domain.Validationf("match %q has turn index out of range", m.ID)
		}
		if m.CurrentRound < 1 {
			return domain.Validationf("match %q has round %d", m.ID, m.CurrentRound)
		}
		switch m.Status {
		case domain.StatusWaiting, domain.StatusActive, domain.StatusFinished:
		default:
			return domain.Validationf("match %q has unknown status %q", m.ID, m.Status)
		}
	}
	return nil
}
