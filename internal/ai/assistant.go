package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse is returned when the model output cannot be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrEmptyResponse is returned when the model produced no usable output.
	ErrEmptyResponse = errors.New("empty model response")
)

// Job is a job posting as extracted by the model from a scraped page.
type Job struct {
	Role        string   `json:"role" mapstructure:"role"`
	Experience  string   `json:"experience" mapstructure:"experience"`
	Description string   `json:"description" mapstructure:"description"`
	Skills      []string `json:"skills" mapstructure:"skills"`
}

// ResumeProfile holds the structured sections the model extracted from resume text.
type ResumeProfile struct {
	Name           string   `json:"name" mapstructure:"name"`
	Email          string   `json:"email" mapstructure:"email"`
	Phone          string   `json:"phone" mapstructure:"phone"`
	Skills         []string `json:"skills" mapstructure:"skills"`
	Education      []string `json:"education" mapstructure:"education"`
	Experience     []string `json:"experience" mapstructure:"experience"`
	Certifications []string `json:"certifications" mapstructure:"certifications"`
	Projects       []string `json:"projects" mapstructure:"projects"`
}

type SkillLocation struct {
	Skill    string `json:"skill" mapstructure:"skill"`
	Location string `json:"location" mapstructure:"location"`
}

type SkillSuggestion struct {
	Skill      string `json:"skill" mapstructure:"skill"`
	Suggestion string `json:"suggestion" mapstructure:"suggestion"`
}

// Attribution explains where each job skill shows up in the resume.
type Attribution struct {
	Matched   []SkillLocation   `json:"matched_skills" mapstructure:"matched_skills"`
	Unmatched []SkillSuggestion `json:"unmatched_skills" mapstructure:"unmatched_skills"`
}

// UnmatchedSkills returns the skill names of the unmatched entries.
func (a *Attribution) UnmatchedSkills() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.Unmatched))
	for _, u := range a.Unmatched {
		if u.Skill != "" {
			out = append(out, u.Skill)
		}
	}
	return out
}

// Improvement lists resume changes suggested for a job.
type Improvement struct {
	MissingSkills    []string `json:"missing_skills" mapstructure:"missing_skills"`
	SuggestedChanges []string `json:"suggested_changes" mapstructure:"suggested_changes"`
	NewSectionIdeas  []string `json:"new_section_ideas" mapstructure:"new_section_ideas"`
}

// CategoryScores maps a resume category to a strength score in [0, 10].
type CategoryScores map[string]float64

// ModelFit is the model's own opinion on the skill overlap.
// It is informational only: the authoritative score is skills.ComputeFit.
type ModelFit struct {
	FitPercentage float64  `json:"fit_percentage" mapstructure:"fit_percentage"`
	MatchedSkills []string `json:"matched_skills" mapstructure:"matched_skills"`
}

// Assistant is the structured extraction service backed by a language model.
// Every method either returns a fully decoded result or an error; results are
// never partially trusted.
type Assistant interface {
	ExtractJobs(ctx context.Context, pageText string) ([]Job, error)
	ExtractResume(ctx context.Context, resumeText string) (*ResumeProfile, error)
	WriteEmail(ctx context.Context, job Job, resumeText string) (string, error)
	ExplainSkillMatch(ctx context.Context, resumeText string, jobSkills []string) (*Attribution, error)
	ImproveResume(ctx context.Context, resumeText, jobDescription string, jobSkills []string) (*Improvement, error)
	AnalyzeCategories(ctx context.Context, resumeText string, skills []string) (CategoryScores, error)
	MatchSkills(ctx context.Context, resumeSkills, jobSkills []string) (*ModelFit, error)
}

// ResponseError describes a model response that failed validation.
type ResponseError struct {
	Operation string
	Raw       string
	Err       error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// Malformed wraps a decoding failure of the named operation.
func Malformed(operation, raw string, err error) error {
	return &ResponseError{
		Operation: operation,
		Raw:       raw,
		Err:       fmt.Errorf("%w: %v", ErrMalformedResponse, err),
	}
}
