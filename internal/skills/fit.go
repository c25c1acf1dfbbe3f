package skills

import (
	"math"
	"sort"
)

const (
	VerdictHighFit          = "high fit"
	VerdictNeedsImprovement = "needs improvement"
)

// FitResult is the overlap of a resume skill set with a job skill set.
type FitResult struct {
	// FitPercentage is in [0, 100], rounded to two decimals.
	FitPercentage float64 `json:"fit_percentage"`
	// MatchedSkills holds normalized labels. Order carries no meaning.
	MatchedSkills []string `json:"matched_skills"`
}

// ComputeFit scores how many of the job skills are covered by the resume.
// The denominator is the number of distinct job skills, so the score is not
// symmetric in its arguments. An empty job skill set scores 0.
func ComputeFit(resumeSkills, jobSkills []string) FitResult {
	resumeSet := NewSet(resumeSkills)
	jobSet := NewSet(jobSkills)

	matched := make([]string, 0, min(len(resumeSet), len(jobSet)))
	for label := range jobSet {
		if _, ok := resumeSet[label]; ok {
			matched = append(matched, label)
		}
	}
	sort.Strings(matched)

	return FitResult{
		FitPercentage: percentage(len(matched), len(jobSet)),
		MatchedSkills: matched,
	}
}

// Missing returns the normalized job skills the resume does not cover.
func Missing(resumeSkills, jobSkills []string) []string {
	resumeSet := NewSet(resumeSkills)

	missing := Set{}
	for _, label := range jobSkills {
		if !resumeSet.Has(label) {
			missing[Normalize(label)] = struct{}{}
		}
	}
	return missing.Sorted()
}

// Simulate scores the resume as if the added skills were listed on it.
func Simulate(resumeSkills, added, jobSkills []string) FitResult {
	combined := make([]string, 0, len(resumeSkills)+len(added))
	combined = append(combined, resumeSkills...)
	combined = append(combined, added...)
	return ComputeFit(combined, jobSkills)
}

// Verdict labels a fit for presentation.
func Verdict(fit FitResult, threshold float64) string {
	if fit.FitPercentage >= threshold {
		return VerdictHighFit
	}
	return VerdictNeedsImprovement
}

// percentage rounds to two decimals, halves to even.
func percentage(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.RoundToEven(float64(matched)/float64(total)*100*100) / 100
}
