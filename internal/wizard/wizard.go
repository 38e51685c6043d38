// Package wizard implements the linear guided-creation flow used for
// composite entities. A session is an ordered list of named steps, a
// cursor, and a per-step accumulator of validated values. Sessions are
// process-local and never persisted.
package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session status values
const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusCancelled  = "cancelled"
)

// FieldError describes one per-field validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Step declares one wizard step: its name, the fields that must be present
// before advancing, and an optional cross-field validator.
type Step struct {
	Name     string
	Required []string
	Validate func(values map[string]interface{}) []FieldError
}

// Session is one in-flight creation flow. ID, Kind and OwnerID are fixed at
// creation; everything else mutates under mu because concurrent requests
// can hit the same session id.
type Session struct {
	ID      string
	Kind    string
	OwnerID uint

	mu          sync.Mutex
	Steps       []Step
	CurrentStep int
	Status      string
	StagedIDs   []uint // staged attachment rows collected during the session
	CreatedAt   time.Time
	UpdatedAt   time.Time

	values []map[string]interface{}
}

// NewSession opens a session at step zero
func NewSession(kind string, ownerID uint, steps []Step) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		OwnerID:   ownerID,
		Steps:     steps,
		Status:    StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
		values:    make([]map[string]interface{}, len(steps)),
	}
}

// Advance validates the submitted values against the current step, merges
// them into the accumulator and moves the cursor forward. It returns
// done=true when the session was already on the last step, signalling that
// the caller should submit. On validation failure the cursor does not move
// and the per-field errors are returned.
func (s *Session) Advance(values map[string]interface{}) (done bool, errs []FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return false, []FieldError{{Field: "", Message: "session is " + s.Status}}
	}

	step := s.Steps[s.CurrentStep]

	merged := s.stepValues(s.CurrentStep)
	for k, v := range values {
		merged[k] = v
	}

	for _, field := range step.Required {
		if isEmpty(merged[field]) {
			errs = append(errs, FieldError{Field: field, Message: field + " is required"})
		}
	}
	if len(errs) == 0 && step.Validate != nil {
		errs = step.Validate(merged)
	}
	if len(errs) > 0 {
		return false, errs
	}

	s.values[s.CurrentStep] = merged
	s.UpdatedAt = time.Now()

	if s.CurrentStep == len(s.Steps)-1 {
		return true, nil
	}
	s.CurrentStep++
	return false, nil
}

// Retreat moves the cursor back one step. Values already entered are kept,
// so returning to a step shows what was entered before.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusInProgress {
		return fmt.Errorf("session is %s", s.Status)
	}
	if s.CurrentStep == 0 {
		return fmt.Errorf("already on the first step")
	}
	s.CurrentStep--
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel terminates the session; staged uploads recorded on it are the
// caller's to reclaim
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusCancelled
	s.UpdatedAt = time.Now()
}

// MarkSubmitted finalizes the session after a successful create
func (s *Session) MarkSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = StatusSubmitted
	s.UpdatedAt = time.Now()
}

// CurrentStatus reads the session status
func (s *Session) CurrentStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status
}

// Payload assembles the full accumulator into one creation payload
func (s *Session) Payload() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := make(map[string]interface{})
	for _, stepValues := range s.values {
		for k, v := range stepValues {
			payload[k] = v
		}
	}
	return payload
}

// StepValues returns a copy of the values recorded for one step
func (s *Session) StepValues(index int) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.values) {
		return map[string]interface{}{}
	}
	return s.stepValues(index)
}

// Progress reports the cursor position and the step count
func (s *Session) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CurrentStep, len(s.Steps)
}

// StepName returns the name of the current step
func (s *Session) StepName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Steps[s.CurrentStep].Name
}

// AddStagedID records a staged attachment created during the session.
// Re-registering an id a retried request already carried is a no-op, so a
// submit promotes each attachment once.
func (s *Session) AddStagedID(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.StagedIDs {
		if existing == id {
			return
		}
	}
	s.StagedIDs = append(s.StagedIDs, id)
}

// StagedAttachments returns a copy of the staged attachment ids recorded
// on the session
func (s *Session) StagedAttachments() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, len(s.StagedIDs))
	copy(ids, s.StagedIDs)
	return ids
}

// idleSince reports whether the session has not been touched since the
// cutoff, used by the store's expiry scan
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt.Before(cutoff)
}

func (s *Session) stepValues(index int) map[string]interface{} {
	copied := make(map[string]interface{}, len(s.values[index]))
	for k, v := range s.values[index] {
		copied[k] = v
	}
	return copied
}

func isEmpty(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case []interface{}:
		return len(value) == 0
	default:
		return false
	}
}
