package models

// Wizard step numbers. The onboarding flow is a fixed five-step sequence;
// CurrentStep always points at one of these.
const (
	StepCompany    = 1
	StepSystems    = 2
	StepRisks      = 3
	StepOversight  = 4
	StepMonitoring = 5

	StepFirst = StepCompany
	StepLast  = StepMonitoring
)

// CompanyProfile holds the organisation details collected in step 1.
type CompanyProfile struct {
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	Size         string `json:"size"`
	Country      string `json:"country"`
	ContactEmail string `json:"contactEmail"`
}

// SystemDraft is one user-declared AI system. LocalID is assigned client-side
// when the draft is added and never changes; ServerID stays nil until the
// create call for this draft succeeds, and never changes afterwards.
type SystemDraft struct {
	LocalID      string `json:"localId"`
	ServerID     *int64 `json:"serverId,omitempty"`
	Name         string `json:"name"`
	Purpose      string `json:"purpose"`
	Domain       string `json:"domain"`
	RiskCategory string `json:"riskCategory"`
	OwnerEmail   string `json:"ownerEmail"`
}

// StepPayload carries the risk/oversight/monitoring answers for one step.
// The remote API defines the field set; the client stores and forwards it opaquely.
type StepPayload map[string]any

// OnboardingSession is the single unit of persistence for the wizard: one
// in-progress onboarding, overwritten wholesale on every mutation and deleted
// on successful completion or explicit restart.
type OnboardingSession struct {
	CurrentStep int             `json:"currentStep"`
	Company     *CompanyProfile `json:"company,omitempty"`
	Systems     []SystemDraft   `json:"systems"`
	Risks       StepPayload     `json:"risks,omitempty"`
	Oversight   StepPayload     `json:"oversight,omitempty"`
	Monitoring  StepPayload     `json:"monitoring,omitempty"`
}

// NewOnboardingSession returns an empty session positioned at step 1.
func NewOnboardingSession() *OnboardingSession {
	return &OnboardingSession{CurrentStep: StepFirst}
}

// SystemByLocalID returns the draft with the given local id, or nil.
func (s *OnboardingSession) SystemByLocalID(localID string) *SystemDraft {
	for i := range s.Systems {
		if s.Systems[i].LocalID == localID {
			return &s.Systems[i]
		}
	}
	return nil
}
