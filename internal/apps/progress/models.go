package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PhaseState struct {
	Attempts  int     `json:"attempts"`
	BestScore float64 `json:"bestScore"`
	Completed bool    `json:"completed"`
	Locked    bool    `json:"locked"`
}

type PhaseProgress map[Phase]PhaseState

// UserProgress is one user's progression record.
type UserProgress struct {
	UserID              string        `json:"-"`
	CurrentPhase        Phase         `json:"currentPhase"`
	PhaseProgress       PhaseProgress `json:"phaseProgress"`
	OnboardingCompleted bool          `json:"onboardingCompleted"`
}

// NewUserProgress returns the default record: first phase current and unlocked,
// every later phase locked.
func NewUserProgress(userID string) *UserProgress {
	pp := make(PhaseProgress, len(PhaseOrder))
	for i, p := range PhaseOrder {
		pp[p] = PhaseState{Locked: i > 0}
	}
	return &UserProgress{
		UserID:        userID,
		CurrentPhase:  PhaseOrder[0],
		PhaseProgress: pp,
	}
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	cp.PhaseProgress = make(PhaseProgress, len(p.PhaseProgress))
	for k, v := range p.PhaseProgress {
		cp.PhaseProgress[k] = v
	}
	return &cp
}

// ProgressRecord is the persisted form of UserProgress.
type ProgressRecord struct {
	ID                  uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              string                            `gorm:"size:100;not null;uniqueIndex" json:"user_id"`
	CurrentPhase        string                            `gorm:"size:20;not null" json:"current_phase"`
	PhaseProgress       datatypes.JSONType[PhaseProgress] `gorm:"type:jsonb" json:"phase_progress"`
	OnboardingCompleted bool                              `gorm:"default:false" json:"onboarding_completed"`
	CreatedAt           time.Time                         `json:"created_at"`
	UpdatedAt           time.Time                         `json:"updated_at"`
}

func (r *ProgressRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ProgressRecord) TableName() string {
	return "user_progress"
}

func newRecord(p *UserProgress) ProgressRecord {
	var rec ProgressRecord
	rec.UserID = p.UserID
	rec.apply(p)
	return rec
}

func (r *ProgressRecord) apply(p *UserProgress) {
	r.CurrentPhase = string(p.CurrentPhase)
	r.PhaseProgress = datatypes.NewJSONType(p.PhaseProgress)
	r.OnboardingCompleted = p.OnboardingCompleted
}

func (r *ProgressRecord) toProgress() *UserProgress {
	pp := r.PhaseProgress.Data()
	if pp == nil {
		pp = make(PhaseProgress)
	}
	return &UserProgress{
		UserID:              r.UserID,
		CurrentPhase:        Phase(r.CurrentPhase),
		PhaseProgress:       pp,
		OnboardingCompleted: r.OnboardingCompleted,
	}
}

// --- DTOs ---

type EvaluationRequest struct {
	Phase  string   `json:"phase"`
	Score  *float64 `json:"score"`
	UserID string   `json:"userId"`
}

type PhaseChangeRequest struct {
	Phase string `json:"phase"`
}

type EvaluationResult struct {
	Phase         Phase   `json:"phase"`
	Attempts      int     `json:"attempts"`
	BestScore     float64 `json:"bestScore"`
	Completed     bool    `json:"completed"`
	PhaseUnlocked *Phase  `json:"phaseUnlocked"`
}

type PhaseChangeResponse struct {
	CurrentPhase  Phase         `json:"currentPhase"`
	PhaseProgress PhaseProgress `json:"phaseProgress"`
}

type OnboardingResponse struct {
	OnboardingCompleted bool `json:"onboardingCompleted"`
}
