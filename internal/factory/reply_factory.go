package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/adapters/bedrock"
	"github.com/adityaparmar/onebox/internal/adapters/gemini"
	"github.com/adityaparmar/onebox/internal/adapters/openai"
	"github.com/adityaparmar/onebox/internal/config"
	"github.com/adityaparmar/onebox/internal/core"
	"github.com/adityaparmar/onebox/internal/utils"
)

// ReplyFactory creates reply generators
type ReplyFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewReplyFactory creates a new reply generator factory
func NewReplyFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ReplyFactory {
	return &ReplyFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReplyGenerator creates a reply generator based on the
// configured provider.
func (f *ReplyFactory) CreateReplyGenerator() (core.ReplyGenerator, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReplyGenerator()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReplyGenerator()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReplyGenerator()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
