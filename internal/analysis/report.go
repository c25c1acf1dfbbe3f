package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/spigell/resumatch/internal/skills"
)

// Report is the outcome of analysing one resume against the jobs of a page.
type Report struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Resume    Resume       `json:"resume"`
	Threshold float64      `json:"high_fit_threshold"`
	Steps     []Status     `json:"steps"`
	Jobs      []*JobReport `json:"jobs"`
}

func newReport(now time.Time, r Resume, threshold float64, steps []Status, jobs []*JobReport) *Report {
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Resume:    r,
		Threshold: threshold,
		Steps:     steps,
		Jobs:      jobs,
	}
}

// Job returns the report of the job with the given 1-based index.
func (r *Report) Job(index int) (*JobReport, error) {
	if index < 1 || index > len(r.Jobs) {
		return nil, fmt.Errorf("job #%d does not exist (report has %d jobs)", index, len(r.Jobs))
	}
	return r.Jobs[index-1], nil
}

// Simulation is a what-if fit with hypothetical skills added to the resume.
type Simulation struct {
	Added  []string         `json:"added_skills"`
	Skills []string         `json:"resume_skills"`
	Before skills.FitResult `json:"before"`
	After  skills.FitResult `json:"after"`
}

// Simulate recomputes the fit of a job as if the added skills were on the resume.
func (r *Report) Simulate(index int, added []string) (*Simulation, error) {
	job, err := r.Job(index)
	if err != nil {
		return nil, err
	}

	combined := skills.Display(append(append([]string{}, r.Resume.Skills...), added...))

	return &Simulation{
		Added:  skills.Display(added),
		Skills: combined,
		Before: job.Fit,
		After:  skills.Simulate(r.Resume.Skills, added, job.Job.Skills),
	}, nil
}

// Candidates lists the skills worth simulating for a job: the unmatched skills
// from the attribution when available, otherwise the locally missing ones.
func (j *JobReport) Candidates() []string {
	if unmatched := j.Attribution.UnmatchedSkills(); len(unmatched) > 0 {
		return unmatched
	}
	return j.Missing
}

// ToFile writes the report as indented JSON, replacing the file content.
func (r *Report) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	return r.encode(file)
}

func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "resumatch_report_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := r.encode(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (r *Report) encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	high    lipgloss.Style
	low     lipgloss.Style
	muted   lipgloss.Style
	failure lipgloss.Style
}

func newStyles(w io.Writer) styles {
	renderer := lipgloss.NewRenderer(w)
	return styles{
		title:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:   renderer.NewStyle().Bold(true),
		high:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("34")),
		low:     renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
		failure: renderer.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

// Render prints a human readable summary of the report.
func (r *Report) Render(w io.Writer) error {
	st := newStyles(w)
	p := &printer{w: w}

	p.text(st.title.Render("Resume"))
	p.line("%s %s %s", st.label.Render("Skills:"), joinOrNone(r.Resume.Skills), st.muted.Render("(from "+r.Resume.SkillsSource+")"))
	p.line("%s %s", st.label.Render("Sections found:"), joinOrNone(r.Resume.Sections))

	if len(r.Jobs) == 0 {
		p.text("")
		p.text("No job postings were found on the page.")
	}

	for _, job := range r.Jobs {
		p.text("")
		r.renderJob(p, st, job)
	}

	return p.err
}

func (r *Report) renderJob(p *printer, st styles, job *JobReport) {
	role := job.Job.Role
	if role == "" {
		role = "N/A"
	}
	p.text(st.title.Render(fmt.Sprintf("Job #%d: %s", job.Index, role)))
	if job.Job.Experience != "" {
		p.line("%s %s", st.label.Render("Experience:"), job.Job.Experience)
	}

	banner := st.low.Render("[NEEDS IMPROVEMENT]")
	if job.Verdict == skills.VerdictHighFit {
		banner = st.high.Render("[HIGH FIT]")
	}
	p.line("%s %s%% %s", st.label.Render("Skill fit:"), formatPercent(job.Fit.FitPercentage), banner)
	p.line("%s %s", st.label.Render("Matched:"), joinOrNone(job.Fit.MatchedSkills))
	p.line("%s %s", st.label.Render("Missing:"), joinOrNone(job.Missing))

	if job.ModelFit != nil {
		p.line("%s %s%% %s", st.label.Render("Model estimate:"), formatPercent(job.ModelFit.FitPercentage), st.muted.Render("(informational, not used for the verdict)"))
	}

	if a := job.Attribution; a != nil && (len(a.Matched) > 0 || len(a.Unmatched) > 0) {
		p.text(st.label.Render("Skill attribution:"))
		for _, m := range a.Matched {
			p.line("  + %s: found in %s", m.Skill, m.Location)
		}
		for _, u := range a.Unmatched {
			p.line("  - %s: %s", u.Skill, u.Suggestion)
		}
	}

	if imp := job.Improvement; imp != nil {
		p.list(st, "Missing skills (model):", imp.MissingSkills)
		p.list(st, "Suggested changes:", imp.SuggestedChanges)
		p.list(st, "New section ideas:", imp.NewSectionIdeas)
	}

	if len(job.Categories) > 0 {
		p.text(st.label.Render("Resume strength:"))
		names := make([]string, 0, len(job.Categories))
		width := 0
		for name := range job.Categories {
			names = append(names, name)
			width = max(width, len(name))
		}
		sort.Strings(names)
		for _, name := range names {
			score := job.Categories[name]
			p.line("  %-*s %s %s/10", width, name, bar(score), formatPercent(score))
		}
	}

	if job.Email != "" {
		p.text(st.label.Render("Cold email:"))
		for _, line := range strings.Split(job.Email, "\n") {
			p.line("  %s", line)
		}
	}

	if len(job.Errors) > 0 {
		steps := make([]string, 0, len(job.Errors))
		for step := range job.Errors {
			steps = append(steps, step)
		}
		sort.Strings(steps)
		for _, step := range steps {
			p.text(st.failure.Render(fmt.Sprintf("%s failed: %s", step, job.Errors[step])))
		}
	}
}

// RenderSimulation prints a what-if result.
func RenderSimulation(w io.Writer, sim *Simulation) error {
	st := newStyles(w)
	p := &printer{w: w}

	p.line("%s %s", st.label.Render("Added skills:"), joinOrNone(sim.Added))
	p.line("%s %s%% -> %s%%", st.label.Render("Simulated fit:"), formatPercent(sim.Before.FitPercentage), formatPercent(sim.After.FitPercentage))
	p.line("%s %s", st.label.Render("Matched with simulation:"), joinOrNone(sim.After.MatchedSkills))
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) text(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) line(format string, args ...any) {
	p.text(fmt.Sprintf(format, args...))
}

func (p *printer) list(st styles, title string, items []string) {
	if len(items) == 0 {
		return
	}
	p.text(st.label.Render(title))
	for _, item := range items {
		p.line("  - %s", item)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*100)/100)
}

// bar draws a 0..10 score as a ten cell gauge.
func bar(score float64) string {
	filled := int(math.Round(math.Min(math.Max(score, 0), 10)))
	return strings.Repeat("#", filled) + strings.Repeat(".", 10-filled)
}
