// Package cli implements the voxdesk command line with cobra.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=v1.2.3".
var version = "dev"

// skipBootstrap marks commands that run without application services.
const skipBootstrap = "skip-bootstrap"

// PromptEditor manages the editable prompt templates on disk.
type PromptEditor interface {
	Dir() string
	Path(name string) string
	Load(name string) (string, error)
	Save(name, content string) error
	Reset(name string) error
}

// AudioFileSource is implemented by transcribers that read recorded audio
// instead of a microphone.
type AudioFileSource interface {
	UseFile(path string)
}

// Services are the application services the commands drive.
type Services struct {
	Settings     driving.SettingsService
	Knowledge    driving.KnowledgeService
	Conversation driving.ConversationService
	Voice        driving.VoiceService
	Recognition  driving.RecognitionService
	Prompts      PromptEditor
	AudioFiles   AudioFileSource
	Recording    domain.RecordingSettings
}

// Bootstrap builds the services once flags are parsed. The returned
// function releases resources and is called after the command finishes.
type Bootstrap func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	settingsService     driving.SettingsService
	knowledgeService    driving.KnowledgeService
	conversationService driving.ConversationService
	voiceService        driving.VoiceService
	recognitionService  driving.RecognitionService
	promptEditor        PromptEditor
	audioFiles          AudioFileSource
	recordingSettings   = domain.DefaultAppSettings().Recording

	bootstrap Bootstrap
	cleanup   func()

	verboseFlag bool
	configDir   string
)

var rootCmd = &cobra.Command{
	Use:   "voxdesk",
	Short: "Voice support assistant grounded in your documents",
	Long: `voxdesk answers customer questions by voice or text.

Load product documents and help-centre pages into a knowledge base, then ask
questions in a chat, from the terminal UI, over MCP, or by speaking into the
microphone. Replies can be synthesised to audio.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "trace pipeline stages to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.voxdesk)")
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	settingsService = s.Settings
	knowledgeService = s.Knowledge
	conversationService = s.Conversation
	voiceService = s.Voice
	recognitionService = s.Recognition
	promptEditor = s.Prompts
	audioFiles = s.AudioFiles
	if s.Recording.MaxDuration > 0 {
		recordingSettings = s.Recording
	}
}

// SetBootstrap sets the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	services, release, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = release
	return nil
}

// Execute runs the root command. SIGTERM cancels the command's context;
// Ctrl+C is scoped to single steps with interruptContext.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()

	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// interruptContext returns a child of parent that Ctrl+C cancels. Call stop
// as soon as the step ends so a later Ctrl+C reaches the next step.
var interruptContext = func(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// commandContext returns the command's context, or Background for a command
// invoked directly rather than through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
