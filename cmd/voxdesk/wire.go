package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/voxdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/voxdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/voxdesk/internal/adapters/driven/fetch/headless"
	"github.com/custodia-labs/voxdesk/internal/adapters/driven/fetch/web"
	"github.com/custodia-labs/voxdesk/internal/adapters/driven/speech/azure"
	openaispeech "github.com/custodia-labs/voxdesk/internal/adapters/driven/speech/openai"
	"github.com/custodia-labs/voxdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/voxdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
	"github.com/custodia-labs/voxdesk/internal/core/services"
	"github.com/custodia-labs/voxdesk/internal/logger"
	"github.com/custodia-labs/voxdesk/internal/normalisers"
	"github.com/custodia-labs/voxdesk/internal/postprocessors"
	"github.com/custodia-labs/voxdesk/internal/postprocessors/chunker"
)

// Subdirectories of the config directory.
const (
	promptsDir = "prompts"
	dataDir    = "data"
)

// bootstrap wires the application services from the stored settings.
//
//nolint:gocyclo // Linear wiring; each step depends on the previous one.
func bootstrap(ctx context.Context, configDir string) (*cli.Services, func(), error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locate config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(configDir, promptsDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	pipeline, err := buildPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		return nil, nil, err
	}

	loader := services.NewDocumentLoader(
		normalisers.NewDefaultRegistry(),
		web.New(web.Config{
			Timeout:           settings.Loader.FetchTimeout,
			UserAgent:         settings.Loader.UserAgent,
			RequestsPerSecond: settings.Loader.RequestsPerSecond,
		}),
		headless.New(headless.Config{
			BodyWait:    settings.Loader.BodyWait,
			SettleDelay: settings.Loader.SettleDelay,
			UserAgent:   settings.Loader.UserAgent,
			NavTimeout:  settings.Loader.FetchTimeout,
		}),
	)

	store := memory.NewKnowledgeStore()
	answerer := services.NewRetrievalAnswerer(store,
		services.WithTopK(settings.Assistant.TopK),
		services.WithGenerateOptions(driven.GenerateOptions{
			Temperature: settings.LLM.Temperature,
			MaxTokens:   settings.LLM.MaxTokens,
		}),
	)
	answerer.SetPromptStore(prompts)

	knowledge := services.NewKnowledgeService(
		loader, pipeline, store, answerer, ai.NewFactory(), settingsService.LLMConfig(),
	)

	var closers []func()
	snapshots, err := sqlite.NewStore(filepath.Join(configDir, dataDir))
	if err != nil {
		logger.Warn("Knowledge base will not persist: %v", err)
	} else {
		closers = append(closers, func() { _ = snapshots.Close() })
		knowledge.SetSnapshotStore(snapshots)
		if err := knowledge.Restore(ctx); err != nil {
			logger.Warn("Restoring knowledge base: %v", err)
		}
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		llm = nil
	}
	if llm != nil {
		closers = append(closers, func() { _ = llm.Close() })
	}
	conversation := services.NewConversationManager(llm, knowledge,
		services.WithSystemPrompt(settings.Assistant.SystemPrompt),
		services.WithRAGEnabled(settings.Assistant.RAGEnabled),
		services.WithChatOptions(driven.ChatOptions{
			Temperature: settings.LLM.Temperature,
			MaxTokens:   settings.LLM.MaxTokens,
		}),
	)
	conversation.SetPromptStore(prompts)

	speech := newSpeech(settings.Speech)
	session := services.NewSpeechSession(speech.transcriber, driven.RecognitionOptions{
		Language:            settings.Speech.Language,
		SegmentationSilence: settings.Speech.SegmentationSilence,
		InitialSilence:      settings.Speech.InitialSilence,
	}, services.WithStopWait(settings.Recording.StopWait))

	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	return &cli.Services{
		Settings:     settingsService,
		Knowledge:    knowledge,
		Conversation: conversation,
		Voice:        services.NewVoiceAssistant(conversation, speech.synthesizer),
		Recognition:  session,
		Prompts:      prompts,
		AudioFiles:   speech.files,
		Recording:    settings.Recording,
	}, release, nil
}

// buildPipeline creates the post-processor pipeline named in cfg. An empty
// list falls back to the paragraph chunker.
func buildPipeline(cfg domain.PipelineConfig) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	pipeline := postprocessors.NewPipeline()
	for _, name := range cfg.Processors {
		p, err := registry.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		pipeline.Add(p)
	}
	if pipeline.Len() == 0 {
		pipeline.Add(chunker.New())
	}
	return pipeline, nil
}

// speechAdapters are the adapters for the configured speech provider. Any
// of them may be nil.
type speechAdapters struct {
	transcriber driven.SpeechTranscriber
	synthesizer driven.SpeechSynthesizer
	files       cli.AudioFileSource
}

func newSpeech(s domain.SpeechSettings) speechAdapters {
	var out speechAdapters
	if !s.IsConfigured() {
		return out
	}

	switch s.Provider {
	case domain.SpeechProviderAzure:
		cfg := azure.Config{Key: s.Key, Region: s.Region, Voice: s.Voice}
		if t, err := azure.NewTranscriber(cfg); err == nil {
			out.transcriber = t
		} else {
			logSpeechError("recognition", err)
		}
		if syn, err := azure.NewSynthesizer(cfg); err == nil {
			out.synthesizer = syn
		} else {
			logSpeechError("synthesis", err)
		}

	case domain.SpeechProviderOpenAI:
		cfg := openaispeech.Config{APIKey: s.Key, Voice: s.Voice}
		if t, err := openaispeech.NewTranscriber(cfg); err == nil {
			out.transcriber = t
			out.files = t
		} else {
			logSpeechError("recognition", err)
		}
		if syn, err := openaispeech.NewSynthesizer(cfg); err == nil {
			out.synthesizer = syn
		} else {
			logSpeechError("synthesis", err)
		}
	}
	return out
}

func logSpeechError(what string, err error) {
	if errors.Is(err, domain.ErrSpeechUnavailable) {
		logger.Debug("Speech %s unavailable: %v", what, err)
		return
	}
	logger.Warn("Speech %s unavailable: %v", what, err)
}
