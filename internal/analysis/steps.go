package analysis

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/skills"
)

const (
	StepFit          = "fit"
	StepModelFit     = "model_fit"
	StepAttribution  = "attribution"
	StepImprovements = "improvements"
	StepEmail        = "email"
	StepCategories   = "categories"
)

var errNoAssistant = errors.New("language model is not configured")

// toggle keeps the enabled state shared by the model-backed steps.
type toggle struct {
	name    string
	enabled bool
	reason  string
}

func (t *toggle) Name() string { return t.name }

func (t *toggle) Disable(reason string) {
	t.enabled = false
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return t.enabled }

func (t *toggle) Status() Status {
	return Status{Name: t.name, Enabled: t.enabled, Reason: t.reason}
}

// AllSteps returns every step in execution order, all enabled.
func AllSteps() []Step {
	return []Step{
		NewFit(),
		NewModelFit(),
		NewAttribution(),
		NewImprovements(),
		NewEmail(),
		NewCategories(),
	}
}

// DefaultSteps is AllSteps with the model fit estimate disabled unless asked for.
func DefaultSteps() []Step {
	steps := AllSteps()
	DisableByName(steps, StepModelFit, "informational only, enable with analysis.steps.model-fit")
	return steps
}

type fitStep struct{}

// NewFit creates the local skill overlap step. It cannot be disabled.
func NewFit() Step { return &fitStep{} }

func (f *fitStep) Name() string { return StepFit }

func (f *fitStep) Disable(string) {}

func (f *fitStep) IsEnabled() bool { return true }

func (f *fitStep) Apply(_ context.Context, deps Deps, s *Subject) error {
	s.Report.Fit = skills.ComputeFit(s.Resume.Skills, s.Job.Skills)
	s.Report.Missing = skills.Missing(s.Resume.Skills, s.Job.Skills)
	s.Report.Verdict = skills.Verdict(s.Report.Fit, deps.Threshold)

	deps.Logger.Info("skill fit",
		zap.Float64("fit_percentage", s.Report.Fit.FitPercentage),
		zap.Int("matched", len(s.Report.Fit.MatchedSkills)),
		zap.Int("missing", len(s.Report.Missing)),
		zap.String("verdict", s.Report.Verdict),
	)
	return nil
}

type modelFitStep struct{ toggle }

// NewModelFit asks the model for its own fit estimate.
func NewModelFit() Step {
	return &modelFitStep{toggle{name: StepModelFit, enabled: true}}
}

func (f *modelFitStep) Apply(ctx context.Context, deps Deps, s *Subject) error {
	if deps.Assistant == nil {
		return errNoAssistant
	}

	fit, err := deps.Assistant.MatchSkills(ctx, s.Resume.Skills, s.Job.Skills)
	if err != nil {
		return err
	}

	s.Report.ModelFit = fit
	return nil
}

type attributionStep struct{ toggle }

// NewAttribution explains where each job skill shows up in the resume.
func NewAttribution() Step {
	return &attributionStep{toggle{name: StepAttribution, enabled: true}}
}

func (f *attributionStep) Apply(ctx context.Context, deps Deps, s *Subject) error {
	if deps.Assistant == nil {
		return errNoAssistant
	}

	attribution, err := deps.Assistant.ExplainSkillMatch(ctx, s.Resume.Text, s.Job.Skills)
	if err != nil {
		return err
	}

	s.Report.Attribution = attribution
	return nil
}

type improvementsStep struct{ toggle }

func NewImprovements() Step {
	return &improvementsStep{toggle{name: StepImprovements, enabled: true}}
}

func (f *improvementsStep) Apply(ctx context.Context, deps Deps, s *Subject) error {
	if deps.Assistant == nil {
		return errNoAssistant
	}

	improvement, err := deps.Assistant.ImproveResume(ctx, s.Resume.Text, s.Job.Description, s.Job.Skills)
	if err != nil {
		return err
	}

	s.Report.Improvement = improvement
	return nil
}

type emailStep struct{ toggle }

func NewEmail() Step {
	return &emailStep{toggle{name: StepEmail, enabled: true}}
}

func (f *emailStep) Apply(ctx context.Context, deps Deps, s *Subject) error {
	if deps.Assistant == nil {
		return errNoAssistant
	}

	email, err := deps.Assistant.WriteEmail(ctx, s.Job, s.Resume.Text)
	if err != nil {
		return err
	}

	s.Report.Email = email
	return nil
}

type categoriesStep struct{ toggle }

// NewCategories rates the resume per category. The scores do not depend on
// the job.
func NewCategories() Step {
	return &categoriesStep{toggle{name: StepCategories, enabled: true}}
}

func (f *categoriesStep) Apply(ctx context.Context, deps Deps, s *Subject) error {
	if deps.Assistant == nil {
		return errNoAssistant
	}

	scores, err := deps.Assistant.AnalyzeCategories(ctx, s.Resume.Text, s.Resume.Skills)
	if err != nil {
		return err
	}

	s.Report.Categories = scores
	return nil
}
