package gemini

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	jsonCalls  int
	textCalls  int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.textCalls++
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.jsonCalls++
	s.lastPrompt = prompt
	return s.response, s.err
}

func newStubAssistant(response string) (*Assistant, *stubGenerator) {
	stub := &stubGenerator{response: response}
	return NewAssistant(stub, 0, zap.NewNop()), stub
}

func TestExtractJobsAcceptsListObjectAndWrapper(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"list":    `[{"role": "Data Scientist", "experience": "3 years", "description": "Build models", "skills": ["Python", "SQL"]}]`,
		"object":  `{"role": "Data Scientist", "experience": "3 years", "description": "Build models", "skills": ["Python", "SQL"]}`,
		"wrapper": "```json\n{\"jobs\": [{\"role\": \"Data Scientist\", \"experience\": 3, \"description\": \"Build models\", \"skills\": \"Python, SQL\"}]}\n```",
	}

	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assistant, stub := newStubAssistant(response)
			jobs, err := assistant.ExtractJobs(context.Background(), "careers page text")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(jobs) != 1 {
				t.Fatalf("expected 1 job, got %d", len(jobs))
			}
			if jobs[0].Role != "Data Scientist" {
				t.Fatalf("unexpected role: %q", jobs[0].Role)
			}
			if !reflect.DeepEqual(jobs[0].Skills, []string{"Python", "SQL"}) {
				t.Fatalf("unexpected skills: %v", jobs[0].Skills)
			}
			if stub.jsonCalls != 1 {
				t.Fatalf("expected json generation, got %d calls", stub.jsonCalls)
			}
			if !strings.Contains(stub.lastPrompt, "careers page text") {
				t.Fatalf("expected page text in prompt")
			}
		})
	}
}

func TestExtractJobsRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, response := range []string{"I cannot help with that", `[]`, `[{"role": ""}]`} {
		assistant, _ := newStubAssistant(response)
		_, err := assistant.ExtractJobs(context.Background(), "page")
		if !errors.Is(err, ai.ErrMalformedResponse) {
			t.Fatalf("expected malformed response for %q, got %v", response, err)
		}

		var respErr *ai.ResponseError
		if !errors.As(err, &respErr) || respErr.Raw != response {
			t.Fatalf("expected raw response to be kept, got %+v", respErr)
		}
	}
}

func TestExtractJobsRequiresText(t *testing.T) {
	t.Parallel()

	assistant, stub := newStubAssistant("[]")
	if _, err := assistant.ExtractJobs(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty page")
	}
	if stub.jsonCalls != 0 {
		t.Fatal("model must not be called for empty page")
	}
}

func TestExtractResumeFlattensNestedEntries(t *testing.T) {
	t.Parallel()

	response := `{
		"name": " Jane Doe ",
		"email": "jane@example.com",
		"phone": 5551234,
		"skills": ["Python", " ", "Docker"],
		"education": [{"degree": "BSc Computer Science", "institute": "MIT", "years": "2015-2019"}],
		"experience": ["Data Engineer, Acme, 2019-2023"],
		"certifications": null,
		"projects": "Churn model"
	}`

	assistant, _ := newStubAssistant(response)
	profile, err := assistant.ExtractResume(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Name != "Jane Doe" {
		t.Fatalf("unexpected name: %q", profile.Name)
	}
	if profile.Phone != "5551234" {
		t.Fatalf("unexpected phone: %q", profile.Phone)
	}
	if !reflect.DeepEqual(profile.Skills, []string{"Python", "Docker"}) {
		t.Fatalf("unexpected skills: %v", profile.Skills)
	}
	wantEducation := []string{"degree: BSc Computer Science, institute: MIT, years: 2015-2019"}
	if !reflect.DeepEqual(profile.Education, wantEducation) {
		t.Fatalf("unexpected education: %v", profile.Education)
	}
	if len(profile.Certifications) != 0 {
		t.Fatalf("expected no certifications, got %v", profile.Certifications)
	}
	if !reflect.DeepEqual(profile.Projects, []string{"Churn model"}) {
		t.Fatalf("unexpected projects: %v", profile.Projects)
	}
}

func TestExtractResumeRejectsList(t *testing.T) {
	t.Parallel()

	assistant, _ := newStubAssistant(`["Python"]`)
	if _, err := assistant.ExtractResume(context.Background(), "resume"); !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestWriteEmailUsesTextGeneration(t *testing.T) {
	t.Parallel()

	assistant, stub := newStubAssistant("Dear Hiring Manager,\n\nI am excited to apply.")
	job := ai.Job{Role: "Data Scientist", Skills: []string{"Python"}}

	email, err := assistant.WriteEmail(context.Background(), job, "my resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(email, "Dear Hiring Manager") {
		t.Fatalf("unexpected email: %q", email)
	}
	if stub.textCalls != 1 || stub.jsonCalls != 0 {
		t.Fatalf("expected a single text generation call")
	}
	if !strings.Contains(stub.lastPrompt, `"role": "Data Scientist"`) || !strings.Contains(stub.lastPrompt, "my resume") {
		t.Fatalf("expected job and resume in prompt: %s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("unrendered placeholder in prompt: %s", stub.lastPrompt)
	}
}

func TestGeneratorErrorIsWrapped(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{err: ai.ErrEmptyResponse}
	assistant := NewAssistant(stub, 10, nil)

	_, err := assistant.WriteEmail(context.Background(), ai.Job{}, "resume")
	if !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), opWriteEmail) {
		t.Fatalf("expected operation prefix, got %v", err)
	}
}

func TestExplainSkillMatch(t *testing.T) {
	t.Parallel()

	response := `{
		"matched_skills": [{"skill": "Python", "location": "Experience"}, {"skill": "", "location": "nowhere"}],
		"unmatched_skills": [{"skill": "TensorFlow", "suggestion": "Add a deep learning project"}]
	}`
	assistant, stub := newStubAssistant(response)

	got, err := assistant.ExplainSkillMatch(context.Background(), "resume", []string{"Python", "TensorFlow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Matched) != 1 || got.Matched[0].Location != "Experience" {
		t.Fatalf("unexpected matched: %+v", got.Matched)
	}
	if !reflect.DeepEqual(got.UnmatchedSkills(), []string{"TensorFlow"}) {
		t.Fatalf("unexpected unmatched: %+v", got.Unmatched)
	}
	if !strings.Contains(stub.lastPrompt, `["Python","TensorFlow"]`) {
		t.Fatalf("expected job skills in prompt: %s", stub.lastPrompt)
	}
}

func TestImproveResume(t *testing.T) {
	t.Parallel()

	response := `{"missing_skills": ["TensorFlow"], "suggested_changes": ["Add a project", ""], "new_section_ideas": "Publications"}`
	assistant, _ := newStubAssistant(response)

	got, err := assistant.ImproveResume(context.Background(), "resume", "Build models", []string{"TensorFlow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &ai.Improvement{
		MissingSkills:    []string{"TensorFlow"},
		SuggestedChanges: []string{"Add a project"},
		NewSectionIdeas:  []string{"Publications"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestAnalyzeCategoriesClampsAndCoerces(t *testing.T) {
	t.Parallel()

	response := `{"Technical Skills": 8, "Experience": "6", "Education": 14, "Projects": -1, "Leadership": "strong"}`
	assistant, _ := newStubAssistant(response)

	got, err := assistant.AnalyzeCategories(context.Background(), "resume", []string{"Python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ai.CategoryScores{"Technical Skills": 8, "Experience": 6, "Education": 10, "Projects": 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	assistant, _ = newStubAssistant(`{"categories": {"Experience": 7}}`)
	got, err = assistant.AnalyzeCategories(context.Background(), "resume", nil)
	if err != nil || got["Experience"] != 7 {
		t.Fatalf("expected nested categories to be read, got %v (%v)", got, err)
	}

	assistant, _ = newStubAssistant(`{"Experience": "n/a"}`)
	if _, err := assistant.AnalyzeCategories(context.Background(), "resume", nil); !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestMatchSkillsClampsPercentage(t *testing.T) {
	t.Parallel()

	assistant, _ := newStubAssistant(`{"fit_percentage": "85%", "matched_skills": ["Python"]}`)
	got, err := assistant.MatchSkills(context.Background(), []string{"Python"}, []string{"Python", "SQL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FitPercentage != 85 {
		t.Fatalf("expected 85, got %v", got.FitPercentage)
	}

	assistant, _ = newStubAssistant(`{"fit_percentage": 140, "matched_skills": []}`)
	got, err = assistant.MatchSkills(context.Background(), nil, nil)
	if err != nil || got.FitPercentage != 100 {
		t.Fatalf("expected clamp to 100, got %+v (%v)", got, err)
	}
}

func TestPromptsRender(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"extract_jobs", "extract_resume", "write_email", "explain_match", "improve_resume", "categories", "match_skills"} {
		prompt, err := render(name, map[string]string{})
		if err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		if !strings.Contains(prompt, "[Inputs") {
			t.Fatalf("prompt %s has no inputs block", name)
		}
	}

	if _, err := render("absent", nil); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestRenderKeepsPlaceholdersInValues(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"JOB_JSON":    `{"description": "paste {{RESUME_TEXT}} here"}`,
		"RESUME_TEXT": "SECRET RESUME",
	}

	for i := 0; i < 50; i++ {
		prompt, err := render("write_email", vars)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if n := strings.Count(prompt, "SECRET RESUME"); n != 1 {
			t.Fatalf("resume text substituted %d times", n)
		}
		if !strings.Contains(prompt, "paste {{RESUME_TEXT}} here") {
			t.Fatal("placeholder inside a value must stay literal")
		}
	}
}
