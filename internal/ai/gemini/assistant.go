package gemini

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/utils"
)

const (
	defaultMaxLogLength = 200

	opExtractJobs       = "extract jobs"
	opExtractResume     = "extract resume"
	opWriteEmail        = "write email"
	opExplainSkillMatch = "explain skill match"
	opImproveResume     = "improve resume"
	opAnalyzeCategories = "analyze categories"
	opMatchSkills       = "match skills"
)

//go:embed prompts/*.md
var prompts embed.FS

type textGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Assistant implements ai.Assistant on top of a Gemini text generator.
type Assistant struct {
	generator textGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Assistant = (*Assistant)(nil)

func NewAssistant(generator textGenerator, maxLogLength int, log *zap.Logger) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Assistant{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

func (a *Assistant) ExtractJobs(ctx context.Context, pageText string) ([]ai.Job, error) {
	if strings.TrimSpace(pageText) == "" {
		return nil, errors.New("page text is required")
	}

	raw, data, err := a.askJSON(ctx, opExtractJobs, "extract_jobs", map[string]string{
		"PAGE_TEXT": pageText,
	})
	if err != nil {
		return nil, err
	}

	// A single posting may come back as a bare object or wrapped in {"jobs": [...]}.
	if obj, ok := data.(map[string]any); ok {
		if list, ok := obj["jobs"].([]any); ok {
			data = list
		} else {
			data = []any{obj}
		}
	}

	var jobs []ai.Job
	if err := decodeInto(data, &jobs); err != nil {
		return nil, ai.Malformed(opExtractJobs, raw, err)
	}

	out := make([]ai.Job, 0, len(jobs))
	for _, job := range jobs {
		job.Skills = compact(job.Skills)
		if job.Role == "" && job.Description == "" && len(job.Skills) == 0 {
			continue
		}
		out = append(out, job)
	}

	if len(out) == 0 {
		return nil, ai.Malformed(opExtractJobs, raw, errors.New("no job postings in response"))
	}

	return out, nil
}

func (a *Assistant) ExtractResume(ctx context.Context, resumeText string) (*ai.ResumeProfile, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.New("resume text is required")
	}

	raw, data, err := a.askJSON(ctx, opExtractResume, "extract_resume", map[string]string{
		"RESUME_TEXT": resumeText,
	})
	if err != nil {
		return nil, err
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return nil, ai.Malformed(opExtractResume, raw, fmt.Errorf("expected an object, got %T", data))
	}

	var profile ai.ResumeProfile
	if err := decodeInto(obj, &profile); err != nil {
		return nil, ai.Malformed(opExtractResume, raw, err)
	}

	profile.Skills = compact(profile.Skills)
	profile.Education = compact(profile.Education)
	profile.Experience = compact(profile.Experience)
	profile.Certifications = compact(profile.Certifications)
	profile.Projects = compact(profile.Projects)

	return &profile, nil
}

func (a *Assistant) WriteEmail(ctx context.Context, job ai.Job, resumeText string) (string, error) {
	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	prompt, err := render("write_email", map[string]string{
		"JOB_JSON":    string(jobJSON),
		"RESUME_TEXT": resumeText,
	})
	if err != nil {
		return "", err
	}

	raw, err := a.ask(ctx, opWriteEmail, prompt, a.generator.GenerateContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.Trim(raw, "`")), nil
}

func (a *Assistant) ExplainSkillMatch(ctx context.Context, resumeText string, jobSkills []string) (*ai.Attribution, error) {
	raw, data, err := a.askJSON(ctx, opExplainSkillMatch, "explain_match", map[string]string{
		"JOB_SKILLS":  skillList(jobSkills),
		"RESUME_TEXT": resumeText,
	})
	if err != nil {
		return nil, err
	}

	var attribution ai.Attribution
	if err := decodeInto(data, &attribution); err != nil {
		return nil, ai.Malformed(opExplainSkillMatch, raw, err)
	}

	matched := attribution.Matched[:0]
	for _, m := range attribution.Matched {
		if m.Skill != "" {
			matched = append(matched, m)
		}
	}
	attribution.Matched = matched

	unmatched := attribution.Unmatched[:0]
	for _, u := range attribution.Unmatched {
		if u.Skill != "" {
			unmatched = append(unmatched, u)
		}
	}
	attribution.Unmatched = unmatched

	return &attribution, nil
}

func (a *Assistant) ImproveResume(ctx context.Context, resumeText, jobDescription string, jobSkills []string) (*ai.Improvement, error) {
	raw, data, err := a.askJSON(ctx, opImproveResume, "improve_resume", map[string]string{
		"JOB_DESCRIPTION": jobDescription,
		"JOB_SKILLS":      skillList(jobSkills),
		"RESUME_TEXT":     resumeText,
	})
	if err != nil {
		return nil, err
	}

	var improvement ai.Improvement
	if err := decodeInto(data, &improvement); err != nil {
		return nil, ai.Malformed(opImproveResume, raw, err)
	}

	improvement.MissingSkills = compact(improvement.MissingSkills)
	improvement.SuggestedChanges = compact(improvement.SuggestedChanges)
	improvement.NewSectionIdeas = compact(improvement.NewSectionIdeas)

	return &improvement, nil
}

func (a *Assistant) AnalyzeCategories(ctx context.Context, resumeText string, skills []string) (ai.CategoryScores, error) {
	raw, data, err := a.askJSON(ctx, opAnalyzeCategories, "categories", map[string]string{
		"SKILLS":      skillList(skills),
		"RESUME_TEXT": resumeText,
	})
	if err != nil {
		return nil, err
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return nil, ai.Malformed(opAnalyzeCategories, raw, fmt.Errorf("expected an object, got %T", data))
	}
	if nested, ok := obj["categories"].(map[string]any); ok {
		obj = nested
	}

	scores := make(ai.CategoryScores, len(obj))
	for category, value := range obj {
		category = strings.TrimSpace(category)
		score := coerceFloat(value)
		if category == "" || math.IsNaN(score) {
			continue
		}
		scores[category] = clamp(score, 0, 10)
	}

	if len(scores) == 0 {
		return nil, ai.Malformed(opAnalyzeCategories, raw, errors.New("no numeric category scores"))
	}

	return scores, nil
}

func (a *Assistant) MatchSkills(ctx context.Context, resumeSkills, jobSkills []string) (*ai.ModelFit, error) {
	raw, data, err := a.askJSON(ctx, opMatchSkills, "match_skills", map[string]string{
		"RESUME_SKILLS": skillList(resumeSkills),
		"JOB_SKILLS":    skillList(jobSkills),
	})
	if err != nil {
		return nil, err
	}

	var fit ai.ModelFit
	if err := decodeInto(data, &fit); err != nil {
		return nil, ai.Malformed(opMatchSkills, raw, err)
	}

	fit.FitPercentage = clamp(fit.FitPercentage, 0, 100)
	fit.MatchedSkills = compact(fit.MatchedSkills)

	return &fit, nil
}

func (a *Assistant) askJSON(ctx context.Context, op, template string, vars map[string]string) (string, any, error) {
	prompt, err := render(template, vars)
	if err != nil {
		return "", nil, err
	}

	raw, err := a.ask(ctx, op, prompt, a.generator.GenerateJSON)
	if err != nil {
		return "", nil, err
	}

	data, err := parseJSON(raw)
	if err != nil {
		return raw, nil, ai.Malformed(op, raw, err)
	}

	return raw, data, nil
}

func (a *Assistant) ask(ctx context.Context, op, prompt string, generate func(context.Context, string) (string, error)) (string, error) {
	a.logger.Debug("gemini generate content request",
		zap.String("operation", op),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	a.logger.Debug("gemini generate content response",
		zap.String("operation", op),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	if strings.TrimSpace(raw) == "" {
		return "", &ai.ResponseError{Operation: op, Err: ai.ErrEmptyResponse}
	}

	return raw, nil
}

func render(name string, vars map[string]string) (string, error) {
	tmpl, err := prompts.ReadFile("prompts/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}

	// One pass, so placeholders inside substituted values stay literal.
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(string(tmpl)), nil
}

func skillList(skills []string) string {
	data, err := json.Marshal(compact(skills))
	if err != nil {
		return "[]"
	}
	return string(data)
}
