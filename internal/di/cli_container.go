package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/adapters/huggingface"
	"github.com/adityaparmar/onebox/internal/config"
	"github.com/adityaparmar/onebox/internal/core"
	"github.com/adityaparmar/onebox/internal/logging"
)

// CLIFlags contains all command line flags for the categorize tool
type CLIFlags struct {
	// Classifier flags
	ClassifierURL   string
	ClassifierToken string

	// Input flags
	InputFile  string
	Verbose    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.ClassifierURL, "classifier-url", "", "Zero-shot classifier endpoint (defaults to configuration)")
	flag.StringVar(&flags.ClassifierToken, "classifier-token", "", "Bearer token for the classifier endpoint")

	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI tool
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.Classifier {
		classifierCfg := cfg.GetClassifier()
		return huggingface.NewClient(classifierCfg.APIURL, classifierCfg.APIToken, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	if flags.ClassifierURL != "" {
		v.Set("classifier.api_url", flags.ClassifierURL)
	}
	if flags.ClassifierToken != "" {
		v.Set("classifier.api_token", flags.ClassifierToken)
	}

	return config.NewFromViper(v)
}
