package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resumatch/internal/analysis"
)

const (
	app = "resumatch"
)

type Config struct {
	Resume    string          `mapstructure:"resume"`
	URL       string          `mapstructure:"url"`
	UserAgent string          `mapstructure:"user-agent"`
	Output    string          `mapstructure:"output"`
	Fit       *FitConfig      `mapstructure:"fit"`
	Analysis  *AnalysisConfig `mapstructure:"analysis"`
	AI        *AIConfig       `mapstructure:"ai"`
}

type FitConfig struct {
	HighThreshold float64 `mapstructure:"high-threshold"`
}

type AnalysisConfig struct {
	Concurrency int          `mapstructure:"concurrency"`
	Steps       *StepsConfig `mapstructure:"steps"`
}

// StepsConfig toggles the model-backed analysis steps. The local fit is always computed.
type StepsConfig struct {
	ModelFit     bool `mapstructure:"model-fit"`
	Attribution  bool `mapstructure:"attribution"`
	Improvements bool `mapstructure:"improvements"`
	Email        bool `mapstructure:"email"`
	Categories   bool `mapstructure:"categories"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resumatch matches a resume against the job postings of a careers page",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"user-agent":             "RESUMATCH_USER_AGENT",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resumatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fit.high-threshold", analysis.DefaultHighFitThreshold)
	v.SetDefault("analysis.concurrency", analysis.DefaultConcurrency)
	v.SetDefault("analysis.steps.model-fit", false)
	v.SetDefault("analysis.steps.attribution", true)
	v.SetDefault("analysis.steps.improvements", true)
	v.SetDefault("analysis.steps.email", true)
	v.SetDefault("analysis.steps.categories", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// Variables from .env are visible to viper's env bindings. A missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	// Only the analyze command reads the config file.
	if analyzeCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without --config the file is optional: flags and env are enough.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}

	if config.Fit != nil {
		if err := validateThreshold(config.Fit.HighThreshold); err != nil {
			return config, fmt.Errorf("fit.high-threshold: %w", err)
		}
	}

	return config, nil
}

// validateThreshold keeps both commands on the same range of high fit
// thresholds.
func validateThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 100 {
		return fmt.Errorf("threshold must be in (0, 100], got %v", threshold)
	}
	return nil
}
