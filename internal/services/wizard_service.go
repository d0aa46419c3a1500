package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conformly/internal/api"
	"conformly/internal/events"
	"conformly/internal/models"
)

// SystemCreator is the slice of the compliance API the wizard needs.
type SystemCreator interface {
	CreateSystem(ctx context.Context, req api.CreateSystemRequest) (*api.CreateSystemResponse, error)
}

// WizardService drives the five-step onboarding flow. Every mutation is merged
// into the session immediately and autosaved, so navigating back and forth
// never loses entered data and a reload resumes at the last step.
type WizardService struct {
	mu         sync.Mutex
	session    *models.OnboardingSession
	completed  bool
	store      DraftStoreService
	systems    SystemCreator
	correlator *IdentityCorrelator
	log        *zap.Logger
}

func NewWizardService(store DraftStoreService, systems SystemCreator, correlator *IdentityCorrelator, log *zap.Logger) *WizardService {
	return &WizardService{
		session:    models.NewOnboardingSession(),
		store:      store,
		systems:    systems,
		correlator: correlator,
		log:        log,
	}
}

// Startup restores a persisted session if one exists. A missing or corrupt
// draft silently starts a fresh session at step 1.
func (w *WizardService) Startup(ctx context.Context) error {
	restored, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load onboarding draft: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if restored == nil {
		w.session = models.NewOnboardingSession()
		return nil
	}
	w.session = restored
	for i := range restored.Systems {
		draft := &restored.Systems[i]
		w.correlator.Register(draft.LocalID)
		if draft.ServerID != nil {
			if err := w.correlator.Resolve(draft.LocalID, *draft.ServerID); err != nil {
				return err
			}
		}
	}
	w.log.Info("resumed onboarding draft",
		zap.Int("step", restored.CurrentStep),
		zap.Int("systems", len(restored.Systems)))
	return nil
}

// Session returns a copy of the current session for display.
func (w *WizardService) Session() models.OnboardingSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.copySessionLocked()
}

func (w *WizardService) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.CurrentStep
}

func (w *WizardService) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

// SetCompany merges the step-1 answers into the session.
func (w *WizardService) SetCompany(ctx context.Context, company models.CompanyProfile) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	copied := company
	w.session.Company = &copied
	w.autosaveLocked(ctx)
	return nil
}

// AddSystem declares a new AI system. The local id is assigned here and stays
// stable for the whole session; the server id arrives later via step-2 creation.
func (w *WizardService) AddSystem(ctx context.Context, draft models.SystemDraft) (*models.SystemDraft, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("system name is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	draft.LocalID = uuid.NewString()
	draft.ServerID = nil
	w.session.Systems = append(w.session.Systems, draft)
	w.correlator.Register(draft.LocalID)
	w.autosaveLocked(ctx)

	added := w.session.Systems[len(w.session.Systems)-1]
	return &added, nil
}

// UpdateSystem replaces the business fields of a declared system. LocalID and
// ServerID are never touched.
func (w *WizardService) UpdateSystem(ctx context.Context, localID string, fields models.SystemDraft) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	draft := w.session.SystemByLocalID(localID)
	if draft == nil {
		return fmt.Errorf("no system with local id %s", localID)
	}
	draft.Name = fields.Name
	draft.Purpose = fields.Purpose
	draft.Domain = fields.Domain
	draft.RiskCategory = fields.RiskCategory
	draft.OwnerEmail = fields.OwnerEmail
	w.autosaveLocked(ctx)
	return nil
}

// RemoveSystem drops a declared system from the session.
func (w *WizardService) RemoveSystem(ctx context.Context, localID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.session.Systems {
		if w.session.Systems[i].LocalID == localID {
			w.session.Systems = append(w.session.Systems[:i], w.session.Systems[i+1:]...)
			w.correlator.Unregister(localID)
			w.autosaveLocked(ctx)
			return nil
		}
	}
	return fmt.Errorf("no system with local id %s", localID)
}

func (w *WizardService) SetRisks(ctx context.Context, payload models.StepPayload) error {
	return w.setPayload(ctx, payload, func(s *models.OnboardingSession, p models.StepPayload) { s.Risks = p })
}

func (w *WizardService) SetOversight(ctx context.Context, payload models.StepPayload) error {
	return w.setPayload(ctx, payload, func(s *models.OnboardingSession, p models.StepPayload) { s.Oversight = p })
}

func (w *WizardService) SetMonitoring(ctx context.Context, payload models.StepPayload) error {
	return w.setPayload(ctx, payload, func(s *models.OnboardingSession, p models.StepPayload) { s.Monitoring = p })
}

func (w *WizardService) setPayload(ctx context.Context, payload models.StepPayload, assign func(*models.OnboardingSession, models.StepPayload)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	assign(w.session, payload)
	w.autosaveLocked(ctx)
	return nil
}

// Next advances one step. The active step must be complete, and leaving the
// systems step first registers every still-unregistered system with the
// platform; individual create failures are tolerated and surfaced later at
// generation time.
func (w *WizardService) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.completed {
		return fmt.Errorf("onboarding is already completed")
	}
	if w.session.CurrentStep >= models.StepLast {
		return fmt.Errorf("final step completes through document generation")
	}
	if err := w.stepCompleteLocked(w.session.CurrentStep); err != nil {
		return err
	}
	if w.session.CurrentStep == models.StepSystems {
		w.createPendingSystemsLocked(ctx)
	}
	w.session.CurrentStep++
	w.autosaveLocked(ctx)
	return nil
}

// Back moves one step towards the start. No side effects besides the pointer.
func (w *WizardService) Back(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session.CurrentStep <= models.StepFirst {
		return fmt.Errorf("already at the first step")
	}
	w.session.CurrentStep--
	w.autosaveLocked(ctx)
	return nil
}

// GoTo jumps directly to a step. Jumping backwards is always allowed; jumping
// forwards requires every step along the way to be complete, and crossing the
// systems step triggers the same creation side effect as Next.
func (w *WizardService) GoTo(ctx context.Context, step int) error {
	if step < models.StepFirst || step > models.StepLast {
		return fmt.Errorf("step %d is out of range", step)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.completed {
		return fmt.Errorf("onboarding is already completed")
	}
	if step <= w.session.CurrentStep {
		w.session.CurrentStep = step
		w.autosaveLocked(ctx)
		return nil
	}
	for s := w.session.CurrentStep; s < step; s++ {
		if err := w.stepCompleteLocked(s); err != nil {
			return err
		}
	}
	if w.session.CurrentStep <= models.StepSystems && step > models.StepSystems {
		w.createPendingSystemsLocked(ctx)
	}
	w.session.CurrentStep = step
	w.autosaveLocked(ctx)
	return nil
}

// Restart throws away the whole session, in memory and on disk.
func (w *WizardService) Restart(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.session = models.NewOnboardingSession()
	w.completed = false
	w.correlator.Reset()
	if err := w.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear onboarding draft: %w", err)
	}
	return nil
}

// MarkCompleted transitions the wizard to its terminal state and erases the
// persisted draft. Called by the orchestrator once generation succeeds.
func (w *WizardService) MarkCompleted(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.completed = true
	if err := w.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear onboarding draft: %w", err)
	}
	return nil
}

// stepCompleteLocked checks required-field completeness for one step.
func (w *WizardService) stepCompleteLocked(step int) error {
	switch step {
	case models.StepCompany:
		c := w.session.Company
		if c == nil || strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.ContactEmail) == "" {
			return fmt.Errorf("company name and contact email are required")
		}
	case models.StepSystems:
		if len(w.session.Systems) == 0 {
			return fmt.Errorf("declare at least one AI system")
		}
		for _, d := range w.session.Systems {
			if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Purpose) == "" {
				return fmt.Errorf("every system needs a name and a purpose")
			}
		}
	case models.StepRisks:
		if len(w.session.Risks) == 0 {
			return fmt.Errorf("risk answers are required")
		}
	case models.StepOversight:
		if len(w.session.Oversight) == 0 {
			return fmt.Errorf("oversight answers are required")
		}
	case models.StepMonitoring:
		if len(w.session.Monitoring) == 0 {
			return fmt.Errorf("monitoring answers are required")
		}
	}
	return nil
}

// createPendingSystemsLocked registers every system that has no server id yet.
// A failing create never blocks the others or forward navigation; the missing
// server id is reported at generation time.
func (w *WizardService) createPendingSystemsLocked(ctx context.Context) {
	for i := range w.session.Systems {
		draft := &w.session.Systems[i]
		if draft.ServerID != nil {
			continue
		}

		resp, err := w.systems.CreateSystem(ctx, api.CreateSystemRequest{
			Name:         draft.Name,
			Purpose:      draft.Purpose,
			Domain:       draft.Domain,
			RiskCategory: draft.RiskCategory,
			OwnerEmail:   draft.OwnerEmail,
		})
		if err != nil {
			w.log.Warn("system create failed",
				zap.String("localId", draft.LocalID),
				zap.String("name", draft.Name),
				zap.Error(err))
			evt := events.NewGenerationEvent(events.EventWarn, fmt.Sprintf("could not register %q: %v", draft.Name, err))
			evt.SystemLocalID = draft.LocalID
			evt.SystemName = draft.Name
			events.Emit(ctx, events.TopicSystemCreate, evt)
			continue
		}

		if err := w.correlator.Resolve(draft.LocalID, resp.ID); err != nil {
			w.log.Error("identity resolution failed", zap.String("localId", draft.LocalID), zap.Error(err))
			continue
		}
		id := resp.ID
		draft.ServerID = &id
		evt := events.NewGenerationEvent(events.EventSuccess, fmt.Sprintf("registered %q", draft.Name))
		evt.SystemLocalID = draft.LocalID
		evt.SystemName = draft.Name
		events.Emit(ctx, events.TopicSystemCreate, evt)
	}
}

// autosaveLocked persists the session after a mutation. Persistence problems
// are logged but never block navigation.
func (w *WizardService) autosaveLocked(ctx context.Context) {
	snapshot := w.copySessionLocked()
	if err := w.store.Save(ctx, &snapshot); err != nil {
		w.log.Error("autosave failed", zap.Error(err))
	}
}

func (w *WizardService) copySessionLocked() models.OnboardingSession {
	copied := *w.session
	copied.Systems = append([]models.SystemDraft(nil), w.session.Systems...)
	if w.session.Company != nil {
		company := *w.session.Company
		copied.Company = &company
	}
	return copied
}
