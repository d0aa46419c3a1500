package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conformly/internal/api"
	"conformly/internal/models"
)

func orchestratorUnderTest(gen *generatorFake) (*OrchestratorService, *IdentityCorrelator, *slotRepoFake) {
	repo := newSlotRepoFake()
	store := NewDraftStoreService(repo, zap.NewNop())
	correlator := NewIdentityCorrelator()
	wizard := NewWizardService(store, sequentialCreator(), correlator, zap.NewNop())
	orch := NewOrchestratorService(gen, correlator, wizard, zap.NewNop())
	return orch, correlator, repo
}

func sessionWithSystems(drafts ...models.SystemDraft) *models.OnboardingSession {
	return &models.OnboardingSession{
		CurrentStep: models.StepMonitoring,
		Company:     &models.CompanyProfile{Name: "Acme Analytics", ContactEmail: "c@acme.example"},
		Systems:     drafts,
		Risks:       models.StepPayload{"assessed": "yes"},
		Oversight:   models.StepPayload{"human_in_loop": "yes"},
		Monitoring:  models.StepPayload{"plan": "quarterly"},
	}
}

func TestOrchestrator_GenerationOnlyForResolvedSystems(t *testing.T) {
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			return &api.GenerateDocumentsResponse{Status: api.StatusSuccess, GeneratedDocuments: 3}, nil
		},
	}
	orch, correlator, _ := orchestratorUnderTest(gen)
	ctx := context.Background()

	correlator.Register("resolved")
	require.NoError(t, correlator.Resolve("resolved", 11))
	correlator.Register("unresolved")

	session := sessionWithSystems(
		models.SystemDraft{LocalID: "resolved", Name: "Credit Scorer"},
		models.SystemDraft{LocalID: "unresolved", Name: "Support Bot"},
	)

	report, err := orch.Run(ctx, session)
	require.NoError(t, err)

	assert.Equal(t, []int64{11}, gen.calls(), "only the resolved system is attempted")
	require.Len(t, report.Outcomes, 2)

	byLocalID := outcomesByLocalID(report)
	assert.Equal(t, models.OutcomeDocumentsGenerated, byLocalID["resolved"].Status)
	assert.Equal(t, 3, byLocalID["resolved"].GeneratedDocuments)
	assert.Equal(t, models.OutcomeCreationFailed, byLocalID["unresolved"].Status)
	assert.True(t, report.Success)
}

func TestOrchestrator_PartialFailureIsolation(t *testing.T) {
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			if systemID == 22 {
				return nil, fmt.Errorf("generation blew up")
			}
			return &api.GenerateDocumentsResponse{Status: api.StatusSuccess, GeneratedDocuments: 2}, nil
		},
	}
	orch, correlator, _ := orchestratorUnderTest(gen)
	ctx := context.Background()

	for localID, serverID := range map[string]int64{"a": 21, "b": 22, "c": 23} {
		correlator.Register(localID)
		require.NoError(t, correlator.Resolve(localID, serverID))
	}

	session := sessionWithSystems(
		models.SystemDraft{LocalID: "a", Name: "A"},
		models.SystemDraft{LocalID: "b", Name: "B"},
		models.SystemDraft{LocalID: "c", Name: "C"},
	)

	report, err := orch.Run(ctx, session)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3, "one outcome per declared system")
	assert.Len(t, gen.calls(), 3, "every resolved system is attempted despite failures")

	byLocalID := outcomesByLocalID(report)
	assert.Equal(t, models.OutcomeGenerationFailed, byLocalID["b"].Status)
	assert.Contains(t, byLocalID["b"].Detail, "generation blew up")
	assert.Equal(t, models.OutcomeDocumentsGenerated, byLocalID["a"].Status)
	assert.Equal(t, models.OutcomeDocumentsGenerated, byLocalID["c"].Status)
	assert.True(t, report.Success)
}

func TestOrchestrator_VerdictWithMixedCreationFailures(t *testing.T) {
	// 3 systems, 2 never created, 1 generates 2 documents: overall success.
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			return &api.GenerateDocumentsResponse{Status: api.StatusSuccess, GeneratedDocuments: 2}, nil
		},
	}
	orch, correlator, repo := orchestratorUnderTest(gen)
	ctx := context.Background()

	correlator.Register("ok")
	require.NoError(t, correlator.Resolve("ok", 31))
	correlator.Register("failed-1")
	correlator.Register("failed-2")

	session := sessionWithSystems(
		models.SystemDraft{LocalID: "failed-1", Name: "F1"},
		models.SystemDraft{LocalID: "ok", Name: "OK"},
		models.SystemDraft{LocalID: "failed-2", Name: "F2"},
	)

	// Pretend the draft is persisted, as it would be mid-wizard.
	repo.rows[sessionSlotKey] = "{}"

	report, err := orch.Run(ctx, session)
	require.NoError(t, err)
	assert.True(t, report.Success)
	require.Len(t, report.Outcomes, 3)
	assert.Empty(t, repo.rows, "success clears the persisted draft")
}

func TestOrchestrator_ZeroDocumentsIsNotSuccess(t *testing.T) {
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			return &api.GenerateDocumentsResponse{Status: api.StatusSuccess, GeneratedDocuments: 0}, nil
		},
	}
	orch, correlator, repo := orchestratorUnderTest(gen)
	ctx := context.Background()

	correlator.Register("x")
	require.NoError(t, correlator.Resolve("x", 41))
	session := sessionWithSystems(models.SystemDraft{LocalID: "x", Name: "X"})

	repo.rows[sessionSlotKey] = "{}"

	report, err := orch.Run(ctx, session)
	require.NoError(t, err)
	assert.False(t, report.Success)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.OutcomeDocumentsGenerated, report.Outcomes[0].Status)
	assert.Equal(t, "no documents generated", report.Outcomes[0].Detail)
	assert.NotEmpty(t, repo.rows, "a failed batch keeps the draft for retry")
}

func TestOrchestrator_NoSystemsMeansFailure(t *testing.T) {
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			t.Fatal("no generation call expected")
			return nil, nil
		},
	}
	orch, _, _ := orchestratorUnderTest(gen)

	report, err := orch.Run(context.Background(), sessionWithSystems())
	require.NoError(t, err)
	assert.False(t, report.Success)
	assert.Empty(t, report.Outcomes)
}

func TestOrchestrator_WarningsKeptInDetail(t *testing.T) {
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			return &api.GenerateDocumentsResponse{
				Status:             api.StatusSuccessWithWarnings,
				GeneratedDocuments: 4,
				Warnings:           []string{"missing oversight evidence"},
			}, nil
		},
	}
	orch, correlator, _ := orchestratorUnderTest(gen)

	correlator.Register("x")
	require.NoError(t, correlator.Resolve("x", 51))

	report, err := orch.Run(context.Background(), sessionWithSystems(models.SystemDraft{LocalID: "x", Name: "X"}))
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Contains(t, report.Outcomes[0].Detail, "missing oversight evidence")
}

func TestOrchestrator_ContextPassthrough(t *testing.T) {
	var seen *api.GenerationContext
	gen := &generatorFake{
		GenerateFunc: func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
			seen = genCtx
			return &api.GenerateDocumentsResponse{Status: api.StatusSuccess, GeneratedDocuments: 1}, nil
		},
	}
	orch, correlator, _ := orchestratorUnderTest(gen)

	correlator.Register("x")
	require.NoError(t, correlator.Resolve("x", 61))
	session := sessionWithSystems(models.SystemDraft{LocalID: "x", Name: "X"})

	_, err := orch.Run(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, session.Company, seen.Company)
	assert.Equal(t, session.Risks, seen.Risks)
	assert.Equal(t, session.Oversight, seen.Oversight)
	assert.Equal(t, session.Monitoring, seen.Monitoring)
}

func outcomesByLocalID(report *models.GenerationReport) map[string]models.GenerationOutcome {
	out := make(map[string]models.GenerationOutcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		out[o.SystemLocalID] = o
	}
	return out
}
