package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"conformly/internal/api"
	"conformly/internal/events"
	"conformly/internal/models"
)

// DocumentGenerator is the slice of the compliance API the orchestrator needs.
type DocumentGenerator interface {
	GenerateDocuments(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error)
}

// OrchestratorService fans document generation out across every declared
// system and aggregates one tagged outcome per system. Per-system failures are
// isolated; only the overall verdict is escalated.
type OrchestratorService struct {
	generator  DocumentGenerator
	correlator *IdentityCorrelator
	wizard     *WizardService
	log        *zap.Logger
}

func NewOrchestratorService(generator DocumentGenerator, correlator *IdentityCorrelator, wizard *WizardService, log *zap.Logger) *OrchestratorService {
	return &OrchestratorService{
		generator:  generator,
		correlator: correlator,
		wizard:     wizard,
		log:        log,
	}
}

// Run executes generation for the given session. Systems without a resolved
// server id are reported as creation_failed without any call. The report has
// exactly one outcome per declared system, in declaration order, and Success
// is true iff at least one system generated a positive number of documents.
// On success the persisted draft is cleared and the wizard is completed.
func (o *OrchestratorService) Run(ctx context.Context, session *models.OnboardingSession) (*models.GenerationReport, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}

	genCtx := &api.GenerationContext{
		Company:    session.Company,
		Risks:      session.Risks,
		Oversight:  session.Oversight,
		Monitoring: session.Monitoring,
	}

	outcomes := make([]models.GenerationOutcome, len(session.Systems))
	g, groupCtx := errgroup.WithContext(ctx)

	for i := range session.Systems {
		draft := session.Systems[i]
		serverID, resolved := o.correlator.ServerIDFor(draft.LocalID)
		if !resolved {
			outcomes[i] = models.GenerationOutcome{
				SystemLocalID: draft.LocalID,
				SystemName:    draft.Name,
				Status:        models.OutcomeCreationFailed,
				Detail:        "system was never registered with the platform",
			}
			o.emit(ctx, events.EventError, draft, "registration missing, skipping generation")
			continue
		}

		idx := i
		g.Go(func() error {
			outcomes[idx] = o.generateOne(groupCtx, draft, serverID, genCtx)
			// Failures are recorded in the outcome, never returned: one bad
			// system must not cancel the others.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.GenerationReport{Outcomes: outcomes}
	for _, out := range outcomes {
		if out.Status == models.OutcomeDocumentsGenerated && out.GeneratedDocuments > 0 {
			report.Success = true
			break
		}
	}

	if report.Success {
		if err := o.wizard.MarkCompleted(ctx); err != nil {
			return report, err
		}
		events.Emit(ctx, events.TopicGenerationDone,
			events.NewGenerationEvent(events.EventSuccess, "document generation completed"))
	} else {
		events.Emit(ctx, events.TopicGenerationDone,
			events.NewGenerationEvent(events.EventError, "document generation produced nothing"))
	}
	return report, nil
}

func (o *OrchestratorService) generateOne(ctx context.Context, draft models.SystemDraft, serverID int64, genCtx *api.GenerationContext) models.GenerationOutcome {
	outcome := models.GenerationOutcome{
		SystemLocalID: draft.LocalID,
		SystemName:    draft.Name,
	}

	resp, err := o.generator.GenerateDocuments(ctx, serverID, genCtx)
	if err != nil {
		o.log.Warn("generation failed",
			zap.String("localId", draft.LocalID),
			zap.Int64("systemId", serverID),
			zap.Error(err))
		outcome.Status = models.OutcomeGenerationFailed
		outcome.Detail = err.Error()
		o.emit(ctx, events.EventError, draft, fmt.Sprintf("generation failed: %v", err))
		return outcome
	}

	outcome.Status = models.OutcomeDocumentsGenerated
	outcome.GeneratedDocuments = resp.GeneratedDocuments
	switch {
	case resp.GeneratedDocuments == 0:
		outcome.Detail = "no documents generated"
		o.emit(ctx, events.EventWarn, draft, "no documents generated")
	case resp.Status == api.StatusSuccessWithWarnings && len(resp.Warnings) > 0:
		outcome.Detail = fmt.Sprintf("%d documents generated (warnings: %s)",
			resp.GeneratedDocuments, strings.Join(resp.Warnings, "; "))
		o.emit(ctx, events.EventSuccess, draft, outcome.Detail)
	default:
		outcome.Detail = fmt.Sprintf("%d documents generated", resp.GeneratedDocuments)
		o.emit(ctx, events.EventSuccess, draft, outcome.Detail)
	}
	return outcome
}

func (o *OrchestratorService) emit(ctx context.Context, eventType events.EventType, draft models.SystemDraft, message string) {
	evt := events.NewGenerationEvent(eventType, message)
	evt.SystemLocalID = draft.LocalID
	evt.SystemName = draft.Name
	events.Emit(ctx, events.TopicGeneration, evt)
}
