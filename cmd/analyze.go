package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resumatch/internal/ai"
	"github.com/spigell/resumatch/internal/ai/gemini"
	"github.com/spigell/resumatch/internal/analysis"
	"github.com/spigell/resumatch/internal/jobpage"
	"github.com/spigell/resumatch/internal/logger"
	"github.com/spigell/resumatch/internal/resume"
	"github.com/spigell/resumatch/internal/secrets"
)

const (
	PromptShowReport   = "Show report"
	PromptSimulate     = "What-if skill simulator"
	PromptReportToFile = "Dump report to file"
	PromptExit         = "Exit"
	PromptBack         = "back"
	PromptDone         = "done"
	PromptYes          = "Yes"
	PromptNo           = "No"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptSimulate, PromptReportToFile, PromptExit},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse a resume against the job postings found at a URL",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx, txt or md)")
	analyzeCmd.Flags().StringP("url", "u", "", "job posting or careers page URL")
	analyzeCmd.Flags().StringP("output", "o", "", "also write the JSON report to this file")
	analyzeCmd.Flags().BoolP("yes", "y", false, "print the report and exit without the interactive menu")

	viper.BindPFlag("resume", analyzeCmd.Flags().Lookup("resume"))
	viper.BindPFlag("url", analyzeCmd.Flags().Lookup("url"))
	viper.BindPFlag("output", analyzeCmd.Flags().Lookup("output"))
}

// analyze is the main command for the cli.
func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resumatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Resume == "" {
		logger.Fatal("resume file is required", zap.String("hint", "pass --resume or set 'resume' in the configuration file"))
	}
	if config.URL == "" {
		logger.Fatal("job page url is required", zap.String("hint", "pass --url or set 'url' in the configuration file"))
	}

	resumeText, err := resume.ReadFile(config.Resume)
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err), zap.String("hint", "supported formats are pdf, docx, txt and md"))
	}
	logger.Info("resume loaded", zap.String("file", config.Resume), zap.Int("length", len(resumeText)))

	assistant, err := newAssistant(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the language model client",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	page, err := jobpage.New(logger, config.UserAgent).Fetch(ctx, config.URL)
	if err != nil {
		logger.Fatal("fetching the job page", zap.Error(err), zap.String("url", config.URL))
	}
	pageText := jobpage.Clean(jobpage.Text(page))
	logger.Debug("job page cleaned", zap.Int("length", len(pageText)))

	profile, jobs, err := extract(ctx, assistant, resumeText, pageText, logger)
	if err != nil {
		logger.Fatal("extracting job postings", zap.Error(err))
	}
	logger.Info("job postings extracted", zap.Int("count", len(jobs)))

	analyzer := analysis.New(prepareSteps(config.Analysis), analysis.Deps{
		Assistant: assistant,
		Logger:    logger,
		Threshold: config.Fit.HighThreshold,
	}, config.Analysis.Concurrency)

	report, err := analyzer.AnalyzeAll(ctx, analysis.NewResume(resumeText, profile), jobs)
	if err != nil {
		logger.Fatal("analysis failed", zap.Error(err))
	}

	if err := report.Render(os.Stdout); err != nil {
		logger.Fatal("rendering the report", zap.Error(err))
	}

	if config.Output != "" {
		if err := report.ToFile(config.Output); err != nil {
			logger.Fatal("writing the report", zap.Error(err), zap.String("filename", config.Output))
		}
		logger.Info("report written", zap.String("filename", config.Output))
	}

	if cmd.Flag("yes").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, analyzer, report, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// extract asks the model for the resume profile and the job postings in parallel.
// A missing profile is not fatal: resume skills then come from the vocabulary scan.
func extract(ctx context.Context, assistant ai.Assistant, resumeText, pageText string, logger *zap.Logger) (*ai.ResumeProfile, []ai.Job, error) {
	var (
		profile *ai.ResumeProfile
		jobs    []ai.Job
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = assistant.ExtractResume(gctx, resumeText)
		if err != nil {
			logger.Warn("resume profile extraction failed, falling back to known skills", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		jobs, err = assistant.ExtractJobs(gctx, pageText)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return profile, jobs, nil
}

func handleAction(ctx context.Context, action string, analyzer *analysis.Analyzer, report *analysis.Report, logger *zap.Logger) error {
	switch action {
	case PromptShowReport:
		return report.Render(os.Stdout)
	case PromptSimulate:
		return simulate(ctx, analyzer, report, logger)
	case PromptReportToFile:
		filename, err := report.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// simulate lets the user add missing skills to a job and see the new fit.
func simulate(ctx context.Context, analyzer *analysis.Analyzer, report *analysis.Report, logger *zap.Logger) error {
	if len(report.Jobs) == 0 {
		logger.Info("nothing to simulate", zap.String("reason", "no job postings"))
		return nil
	}

	items := make([]string, 0, len(report.Jobs)+1)
	for _, job := range report.Jobs {
		items = append(items, fmt.Sprintf("#%d %s (%g%%)", job.Index, job.Job.Role, job.Fit.FitPercentage))
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: append(items, PromptBack),
	}
	idx, selected, err := jobPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	job, err := report.Job(idx + 1)
	if err != nil {
		return err
	}

	added, err := pickSkills(job.Candidates())
	if err != nil {
		return err
	}
	if len(added) == 0 {
		logger.Info("no skills added")
		return nil
	}

	sim, err := report.Simulate(job.Index, added)
	if err != nil {
		return err
	}
	if err := analysis.RenderSimulation(os.Stdout, sim); err != nil {
		return err
	}

	confirm := promptui.Select{
		Label: "Draft an email with the simulated skills?",
		Items: []string{PromptNo, PromptYes},
	}
	_, answer, err := confirm.Run()
	if err != nil {
		return err
	}
	if answer != PromptYes {
		return nil
	}

	email, err := analyzer.SimulatedEmail(ctx, job.Job, sim.Skills)
	if err != nil {
		logger.Warn("simulated email failed", zap.Error(err))
		return nil
	}
	return printEmail(os.Stdout, email)
}

// pickSkills repeats a single choice prompt until the user is done.
func pickSkills(candidates []string) ([]string, error) {
	left := append([]string{}, candidates...)
	var added []string

	for len(left) > 0 {
		skillPrompt := promptui.Select{
			Label: fmt.Sprintf("Add a hypothetical skill (added: %s)", strings.Join(added, ", ")),
			Items: append(append([]string{}, left...), PromptDone),
		}
		idx, selected, err := skillPrompt.Run()
		if err != nil {
			return nil, err
		}
		if selected == PromptDone {
			break
		}

		added = append(added, selected)
		left = append(left[:idx], left[idx+1:]...)
	}

	return added, nil
}

func printEmail(w io.Writer, email string) error {
	_, err := fmt.Fprintf(w, "\nSimulated cold email:\n%s\n", email)
	return err
}

// prepareSteps builds the analysis steps with the configured ones switched off.
func prepareSteps(cfg *AnalysisConfig) []analysis.Step {
	steps := analysis.AllSteps()

	toggles := StepsConfig{}
	if cfg != nil && cfg.Steps != nil {
		toggles = *cfg.Steps
	}

	for name, enabled := range map[string]bool{
		analysis.StepModelFit:     toggles.ModelFit,
		analysis.StepAttribution:  toggles.Attribution,
		analysis.StepImprovements: toggles.Improvements,
		analysis.StepEmail:        toggles.Email,
		analysis.StepCategories:   toggles.Categories,
	} {
		if !enabled {
			analysis.DisableByName(steps, name, "disabled in config")
		}
	}

	return steps
}

func newAssistant(ctx context.Context, cfg *AIConfig, baseLogger *zap.Logger) (ai.Assistant, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := baseLogger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	assistantLogger := logger.WithFields(baseLogger, logger.ProviderFields(gemini.Provider, generator.Model())...)

	return gemini.NewAssistant(generator, cfg.Gemini.MaxLogLength, assistantLogger), nil
}
