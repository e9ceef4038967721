package progress

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/metrics"
)

var (
	ErrMissingFields = errors.New("phase and score are required")
	ErrInvalidPhase  = errors.New("valid phase is required")
	ErrPhaseLocked   = errors.New("phase is locked")
	ErrDeprecated    = errors.New("this endpoint is deprecated; use /api/evaluate")
)

// ProgressService applies progression rules on top of a Store.
// The store is fixed at construction, which also fixes offline/online mode.
type ProgressService struct {
	store Store
}

func NewProgressService(store Store) *ProgressService {
	return &ProgressService{store: store}
}

// GetProgress returns the user's record.
func (s *ProgressService) GetProgress(ctx context.Context, userID string) (*UserProgress, error) {
	return s.store.Find(ctx, userID)
}

// RecordEvaluation records one scored attempt for phase and unlocks the
// next phase when the score completes it.
func (s *ProgressService) RecordEvaluation(ctx context.Context, userID, phase string, score *float64) (*EvaluationResult, error) {
	if phase == "" || score == nil {
		return nil, ErrMissingFields
	}
	p, ok := ParsePhase(phase)
	if !ok {
		return nil, ErrInvalidPhase
	}

	var result *EvaluationResult
	_, err := s.store.Mutate(ctx, userID, func(up *UserProgress) error {
		result = applyEvaluation(up, p, *score)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordEvaluation(string(p), result.Completed)
	if result.PhaseUnlocked != nil {
		metrics.RecordUnlock(string(*result.PhaseUnlocked))
	}
	slog.Info("evaluation recorded",
		"user_id", userID,
		"phase", p,
		"action", "record_evaluation",
		"score", *score,
		"attempts", result.Attempts,
		"best_score", result.BestScore,
		"completed", result.Completed,
		"phase_unlocked", result.PhaseUnlocked,
	)
	return result, nil
}

// applyEvaluation mutates up for one attempt. Completed tracks only the latest
// score, not whether the phase was ever completed. A PhaseState missing from
// the record is created unlocked.
func applyEvaluation(up *UserProgress, p Phase, score float64) *EvaluationResult {
	if up.PhaseProgress == nil {
		up.PhaseProgress = make(PhaseProgress)
	}
	st, ok := up.PhaseProgress[p]
	if !ok {
		st = PhaseState{}
	}

	st.Attempts++
	if score > st.BestScore {
		st.BestScore = score
	}
	st.Completed = score >= CompletionScore
	up.PhaseProgress[p] = st

	result := &EvaluationResult{
		Phase:     p,
		Attempts:  st.Attempts,
		BestScore: st.BestScore,
		Completed: st.Completed,
	}

	if st.Completed {
		if next, ok := NextPhase(p); ok {
			if ns, exists := up.PhaseProgress[next]; exists && ns.Locked {
				ns.Locked = false
				up.PhaseProgress[next] = ns
				result.PhaseUnlocked = &next
			}
		}
	}
	return result
}

// ChangePhase makes phase the user's current phase unless it is locked.
func (s *ProgressService) ChangePhase(ctx context.Context, userID, phase string) (*UserProgress, error) {
	p, ok := ParsePhase(phase)
	if !ok {
		metrics.RecordPhaseChange("invalid", "invalid")
		return nil, ErrInvalidPhase
	}

	saved, err := s.store.Mutate(ctx, userID, func(up *UserProgress) error {
		if st, ok := up.PhaseProgress[p]; ok && st.Locked {
			return ErrPhaseLocked
		}
		up.CurrentPhase = p
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPhaseLocked):
			metrics.RecordPhaseChange(string(p), "locked")
		case errors.Is(err, ErrUserNotFound):
			metrics.RecordPhaseChange(string(p), "not_found")
		default:
			metrics.RecordPhaseChange(string(p), "error")
		}
		return nil, err
	}

	metrics.RecordPhaseChange(string(p), "ok")
	slog.Info("phase changed", "user_id", userID, "phase", p, "action", "change_phase")
	return saved, nil
}

// CompleteOnboarding sets the onboarding flag. Repeated calls are no-ops.
func (s *ProgressService) CompleteOnboarding(ctx context.Context, userID string) (*UserProgress, error) {
	saved, err := s.store.Mutate(ctx, userID, func(up *UserProgress) error {
		up.OnboardingCompleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("onboarding completed", "user_id", userID, "action", "complete_onboarding")
	return saved, nil
}

// UpdateProgress is the retired direct-update operation.
func (s *ProgressService) UpdateProgress() error {
	return ErrDeprecated
}

// Provision creates a default record for userID if none exists.
func (s *ProgressService) Provision(ctx context.Context, userID string) error {
	return s.store.Create(ctx, userID)
}
