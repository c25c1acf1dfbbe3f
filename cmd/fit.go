package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spigell/resumatch/internal/analysis"
	"github.com/spigell/resumatch/internal/skills"
	"github.com/spigell/resumatch/internal/utils"
)

var fitCmd = &cobra.Command{
	Use:     "fit",
	Short:   "Score resume skills against job skills without calling any model",
	Example: `  resumatch fit --resume-skills "Python,SQL,Docker" --job-skills "python,docker,kubernetes"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		resumeSkills, _ := cmd.Flags().GetString("resume-skills")
		jobSkills, _ := cmd.Flags().GetString("job-skills")
		threshold, _ := cmd.Flags().GetFloat64("high-threshold")

		return writeFit(cmd.OutOrStdout(), utils.SplitList(resumeSkills), utils.SplitList(jobSkills), threshold)
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().String("resume-skills", "", "comma separated resume skills")
	fitCmd.Flags().String("job-skills", "", "comma separated job skills")
	fitCmd.Flags().Float64("high-threshold", analysis.DefaultHighFitThreshold, "fit percentage counted as a high fit")
}

type fitOutput struct {
	skills.FitResult
	MissingSkills []string `json:"missing_skills"`
	Verdict       string   `json:"verdict"`
}

func writeFit(w io.Writer, resumeSkills, jobSkills []string, threshold float64) error {
	if err := validateThreshold(threshold); err != nil {
		return fmt.Errorf("high-threshold: %w", err)
	}

	fit := skills.ComputeFit(resumeSkills, jobSkills)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fitOutput{
		FitResult:     fit,
		MissingSkills: skills.Missing(resumeSkills, jobSkills),
		Verdict:       skills.Verdict(fit, threshold),
	})
}
