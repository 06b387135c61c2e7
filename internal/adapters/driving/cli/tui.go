package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the full-screen chat interface.

Controls:
  Enter    - Send question
  Ctrl+R   - Start / stop a voice recording
  Ctrl+L   - Reset the conversation
  Ctrl+G   - Toggle knowledge base grounding
  PgUp/Dn  - Scroll the transcript
  F1       - Toggle help
  Ctrl+C   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts builds the TUI ports from the configured services.
func newTUIPorts() (*tui.Ports, error) {
	if voiceService == nil || conversationService == nil {
		return nil, errors.New("assistant services not configured")
	}
	ports := tui.NewPorts(voiceService, conversationService)
	ports.Knowledge = knowledgeService
	ports.Recognition = recognitionService
	if recordingSettings.MaxDuration > 0 {
		ports.Recording = recordingSettings
	}
	return ports, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Recover so a rendering bug leaves a stack trace instead of a garbled terminal.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports, err := newTUIPorts()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if err := app.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
