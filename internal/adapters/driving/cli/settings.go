package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, speech provider, system prompt and
knowledge base defaults. Settings are stored in ~/.voxdesk/config.toml;
environment variables (and a .env file) override them without being saved.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Choose the LLM that writes replies: Azure OpenAI, OpenAI, Anthropic or a local Ollama.`,
	RunE:  runSettingsLLM,
}

var settingsSpeechCmd = &cobra.Command{
	Use:   "speech",
	Short: "Configure speech provider",
	Long: `Choose the speech backend. Azure Speech provides live microphone
recognition and neural voices; OpenAI provides Whisper transcription of
recorded files and text-to-speech.`,
	RunE: runSettingsSpeech,
}

var (
	promptReset     bool
	promptTemplates bool
)

var settingsPromptCmd = &cobra.Command{
	Use:   "prompt [text]",
	Short: "Show or set the system prompt",
	Long: `Without arguments, prints the system prompt. With text, stores it as the
system prompt for new conversations. --reset restores the default.

--templates lists the prompt template files, which can be edited to change
how knowledge base answers are worded.`,
	RunE: runSettingsPrompt,
}

var settingsRAGCmd = &cobra.Command{
	Use:       "rag on|off",
	Short:     "Set whether conversations use the knowledge base by default",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runSettingsRAG,
}

func init() {
	settingsPromptCmd.Flags().BoolVar(&promptReset, "reset", false, "restore the default system prompt")
	settingsPromptCmd.Flags().BoolVar(&promptTemplates, "templates", false, "list prompt template files")
	settingsCmd.AddCommand(settingsShowCmd, settingsLLMCmd, settingsSpeechCmd, settingsPromptCmd, settingsRAGCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider == domain.AIProviderAzure {
		cmd.Printf("  API Version: %s\n", settings.LLM.APIVersion)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(settings.LLM.APIKey))
	}
	cmd.Printf("  Temperature: %.1f, Max Tokens: %d\n", settings.LLM.Temperature, settings.LLM.MaxTokens)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Speech]")
	cmd.Printf("  Provider: %s\n", settings.Speech.Provider.Description())
	if settings.Speech.Provider != domain.SpeechProviderNone {
		cmd.Printf("  Key: %s\n", maskOrUnset(settings.Speech.Key))
		if settings.Speech.Provider == domain.SpeechProviderAzure {
			cmd.Printf("  Region: %s\n", settings.Speech.Region)
		}
		cmd.Printf("  Language: %s, Voice: %s\n", settings.Speech.Language, settings.Speech.Voice)
		cmd.Printf("  Status: %s\n", configuredStatus(settings.Speech.IsConfigured()))
	}
	cmd.Println()

	cmd.Println("[Recording]")
	cmd.Printf("  Max Duration: %s, Poll Interval: %s\n",
		settings.Recording.MaxDuration, settings.Recording.PollInterval)
	cmd.Println()

	cmd.Println("[Assistant]")
	cmd.Printf("  Knowledge Base Answers: %s\n", onOff(settings.Assistant.RAGEnabled))
	cmd.Printf("  Chunks Per Answer: %d\n", settings.Assistant.TopK)
	if settings.Assistant.SystemPrompt != "" {
		cmd.Printf("  System Prompt: %s\n", snippet(settings.Assistant.SystemPrompt, 80))
	} else {
		cmd.Println("  System Prompt: (default)")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'voxdesk settings llm' or 'voxdesk settings speech' to fix, or set them in .env.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsSpeech(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureSpeechProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsPrompt(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	switch {
	case promptTemplates:
		if promptEditor == nil {
			return errors.New("prompt templates not configured")
		}
		cmd.Printf("Prompt templates in %s:\n", promptEditor.Dir())
		for _, name := range driven.DefaultPromptNames() {
			cmd.Printf("  %-12s %s\n", name, promptEditor.Path(name))
		}
		return nil

	case promptReset:
		if err := settingsService.SetSystemPrompt(""); err != nil {
			return err
		}
		cmd.Println("System prompt restored to the default.")
		return nil

	case len(args) > 0:
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if err := settingsService.SetSystemPrompt(prompt); err != nil {
			return err
		}
		cmd.Println("System prompt saved.")
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	prompt := settings.Assistant.SystemPrompt
	if prompt == "" && promptEditor != nil {
		prompt, _ = promptEditor.Load(driven.PromptSystem) //nolint:errcheck // Falls back to the built-in default.
	}
	if prompt == "" {
		prompt, _ = driven.DefaultPrompt(driven.PromptSystem)
	}
	cmd.Println(prompt)
	return nil
}

func runSettingsRAG(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}
	if err := settingsService.SetRAGEnabled(enabled); err != nil {
		return err
	}
	cmd.Printf("Knowledge base answers %s for new conversations.\n", onOff(enabled))
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	label := "model name"
	if selectedProvider == domain.AIProviderAzure {
		label = "deployment name"
	}
	cmd.Printf("Enter %s [%s]: ", label, defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var baseURL string
	switch {
	case selectedProvider.RequiresBaseURL():
		cmd.Print("Enter endpoint (https://<resource>.openai.azure.com/): ")
		baseURL = readLine(reader)
		if baseURL == "" {
			return errors.New("endpoint is required for this provider")
		}
	case selectedProvider.IsLocal():
		cmd.Print("Enter Ollama URL [http://localhost:11434]: ")
		baseURL = readLine(reader)
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readSecret(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey, baseURL); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

func configureSpeechProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Speech Provider")
	providers := domain.AllSpeechProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	var key, region string
	if selectedProvider != domain.SpeechProviderNone {
		cmd.Print("Enter key (empty to use the environment): ")
		key = readSecret(cmd.InOrStdin(), reader)
		cmd.Println()
	}
	if selectedProvider == domain.SpeechProviderAzure {
		cmd.Print("Enter region (e.g. westeurope): ")
		region = readLine(reader)
	}

	if err := settingsService.SetSpeechProvider(selectedProvider, key, region); err != nil {
		return fmt.Errorf("failed to configure speech provider: %w", err)
	}
	cmd.Printf("Speech provider configured: %s\n", selectedProvider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when in is a terminal, otherwise a line
// from reader.
func readSecret(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
