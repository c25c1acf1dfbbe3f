package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/skills"
)

const (
	DefaultHighFitThreshold = 70
	DefaultConcurrency      = 2
)

// Step is a single stage of the per-job analysis.
type Step interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, s *Subject) error
}

// Deps aggregates dependencies shared across all steps.
type Deps struct {
	Assistant ai.Assistant
	Logger    *zap.Logger
	// Threshold is the fit percentage at which a job counts as a high fit.
	Threshold float64
}

// Status represents runtime information about a step.
type Status struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

// Resume is the candidate side of every analysis.
type Resume struct {
	Text    string            `json:"-"`
	Profile *ai.ResumeProfile `json:"profile,omitempty"`
	// Skills are the labels scored against each job.
	Skills []string `json:"skills"`
	// SkillsSource tells whether Skills came from the model or the vocabulary scan.
	SkillsSource string   `json:"skills_source"`
	Sections     []string `json:"sections"`
}

const (
	SkillsFromModel      = "model"
	SkillsFromVocabulary = "vocabulary"
)

// NewResume prepares the resume for analysis. The model-extracted skills are
// used when present, otherwise the text is scanned for well-known skills.
func NewResume(text string, profile *ai.ResumeProfile) Resume {
	r := Resume{Text: text, Profile: profile, SkillsSource: SkillsFromModel}
	if profile != nil {
		r.Skills = skills.Display(profile.Skills)
	}
	if len(r.Skills) == 0 {
		r.Skills = skills.ExtractKnown(text)
		r.SkillsSource = SkillsFromVocabulary
	}

	r.Sections = make([]string, 0, 4)
	found := resume.Sections(text)
	for _, name := range []string{resume.SectionExperience, resume.SectionEducation, resume.SectionSkills, resume.SectionProjects} {
		if strings.TrimSpace(found[name]) != "" {
			r.Sections = append(r.Sections, name)
		}
	}
	return r
}

// Subject is what the steps work on: one job against the resume.
type Subject struct {
	Resume Resume
	Job    ai.Job
	Report *JobReport
}

// JobReport collects everything learned about a single job.
type JobReport struct {
	Index   int              `json:"index"`
	Job     ai.Job           `json:"job"`
	Fit     skills.FitResult `json:"fit"`
	Missing []string         `json:"missing_skills"`
	Verdict string           `json:"verdict"`

	// ModelFit is the model's own estimate. It never replaces Fit.
	ModelFit    *ai.ModelFit      `json:"model_fit,omitempty"`
	Attribution *ai.Attribution   `json:"attribution,omitempty"`
	Improvement *ai.Improvement   `json:"improvement,omitempty"`
	Email       string            `json:"email,omitempty"`
	Categories  ai.CategoryScores `json:"categories,omitempty"`

	// Errors maps a step name to the reason it produced nothing.
	Errors map[string]string `json:"errors,omitempty"`
}

func (r *JobReport) fail(step string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[step] = err.Error()
}

// DisableByName marks a step with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Step, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Describe returns status entries for the provided steps.
func Describe(steps []Step) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(interface{ Status() Status }); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{Name: step.Name(), Enabled: step.IsEnabled()})
	}
	return statuses
}

// Analyzer runs the configured steps against every job.
type Analyzer struct {
	steps       []Step
	deps        Deps
	concurrency int
	now         func() time.Time
}

func New(steps []Step, deps Deps, concurrency int) *Analyzer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if deps.Threshold <= 0 {
		deps.Threshold = DefaultHighFitThreshold
	}
	deps.Logger = logger.WithFields(deps.Logger)

	return &Analyzer{
		steps:       steps,
		deps:        deps,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Analyze runs the enabled steps sequentially for one job. A failing step is
// recorded in the report and does not stop the following steps.
func (a *Analyzer) Analyze(ctx context.Context, index int, r Resume, job ai.Job) *JobReport {
	log := logger.WithFields(a.deps.Logger, logger.JobFields(index, job.Role)...)
	deps := a.deps
	deps.Logger = log

	subject := &Subject{
		Resume: r,
		Job:    job,
		Report: &JobReport{Index: index, Job: job},
	}

	for _, step := range a.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := ctx.Err(); err != nil {
			subject.Report.fail(step.Name(), err)
			continue
		}

		started := time.Now()
		if err := step.Apply(ctx, deps, subject); err != nil {
			log.Warn("analysis step failed",
				zap.String(logger.FieldStep, step.Name()),
				zap.Error(err),
			)
			subject.Report.fail(step.Name(), err)
			continue
		}

		log.Debug("analysis step",
			zap.String(logger.FieldStep, step.Name()),
			zap.Duration("took", time.Since(started)),
		)
	}

	return subject.Report
}

// AnalyzeAll analyses the jobs concurrently. Job reports keep the input order
// and are numbered from 1.
func (a *Analyzer) AnalyzeAll(ctx context.Context, r Resume, jobs []ai.Job) (*Report, error) {
	for _, step := range a.steps {
		if !step.IsEnabled() {
			a.deps.Logger.Info("analysis step disabled", zap.String(logger.FieldStep, step.Name()))
		}
	}

	reports := make([]*JobReport, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			reports[i] = a.Analyze(gctx, i+1, r, job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	a.deps.Logger.Info("analysis finished", zap.Int("jobs", len(jobs)))

	return newReport(a.now(), r, a.deps.Threshold, Describe(a.steps), reports), nil
}

// SimulatedEmail drafts an email as if the resume consisted of the given skills.
func (a *Analyzer) SimulatedEmail(ctx context.Context, job ai.Job, resumeSkills []string) (string, error) {
	if a.deps.Assistant == nil {
		return "", errNoAssistant
	}
	return a.deps.Assistant.WriteEmail(ctx, job, strings.Join(resumeSkills, "; "))
}
