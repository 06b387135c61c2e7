package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/voxdesk/internal/core/services"
)

var chatTUI bool

const chatCommands = `Commands:
  /rag on|off     - ground replies in the knowledge base
  /prompt <text>  - replace the system prompt for this conversation
  /listen         - speak the next message instead of typing it
  /history        - print the conversation so far
  /reset          - start a new conversation
  /quit           - leave (also: exit, Ctrl+D)`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: "Starts a line-mode conversation with the assistant.\n\n" + chatCommands +
		"\n\nUse --tui for the full-screen interface.",
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatTUI, "tui", false, "use the full-screen terminal UI")
	rootCmd.AddCommand(chatCmd)
}

// chatPalette holds the REPL colours. fatih/color disables them when the
// output is not a terminal.
type chatPalette struct {
	user      func(a ...any) string
	assistant func(a ...any) string
	notice    func(a ...any) string
	warn      func(a ...any) string
}

func newChatPalette() chatPalette {
	return chatPalette{
		user:      color.New(color.FgGreen, color.Bold).SprintFunc(),
		assistant: color.New(color.FgCyan, color.Bold).SprintFunc(),
		notice:    color.New(color.FgHiBlack).SprintFunc(),
		warn:      color.New(color.FgYellow).SprintFunc(),
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatTUI {
		return runTUI(cmd, args)
	}
	if voiceService == nil || conversationService == nil {
		return errors.New("assistant not configured")
	}

	p := newChatPalette()
	out := cmd.OutOrStdout()
	interactive := isTerminal(cmd.InOrStdin())

	fmt.Fprintln(out, p.user("voxdesk support chat"))
	fmt.Fprintf(out, "Knowledge base: %s\n", ragStatus())
	fmt.Fprintln(out, p.notice("Type a message and press Enter. /quit to leave, /help for commands."))
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if interactive {
			fmt.Fprint(out, p.user("You: "))
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") || line == "exit" {
			quit, err := handleChatCommand(cmd, p, line)
			if err != nil {
				fmt.Fprintln(out, p.warn(err.Error()))
			}
			if quit {
				break
			}
			continue
		}

		chatReply(cmd, p, line)
	}
	return scanner.Err()
}

// chatReply sends one message and prints the answer. Errors are shown and
// the conversation continues; Ctrl+C abandons only this reply.
func chatReply(cmd *cobra.Command, p chatPalette, text string) {
	out := cmd.OutOrStdout()
	ctx, stop := interruptContext(commandContext(cmd))
	defer stop()
	reply, err := voiceService.Query(ctx, text, false)
	if err != nil {
		fmt.Fprintln(out, p.warn("Error: "+err.Error()))
		return
	}
	fmt.Fprintf(out, "%s %s\n\n", p.assistant("Assistant:"), reply.Text)
}

//nolint:gocyclo // Flat command switch.
func handleChatCommand(cmd *cobra.Command, p chatPalette, line string) (bool, error) {
	out := cmd.OutOrStdout()
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit", "exit":
		return true, nil

	case "/help":
		fmt.Fprintln(out, chatCommands)

	case "/reset":
		conversationService.Reset()
		fmt.Fprintln(out, p.notice("Conversation reset."))

	case "/rag":
		switch arg {
		case "on":
			if knowledgeService != nil && !knowledgeService.Stats().IsReady() {
				fmt.Fprintln(out, p.warn("The knowledge base is empty; run 'voxdesk ingest' first."))
			}
			conversationService.SetRAGEnabled(true)
		case "off":
			conversationService.SetRAGEnabled(false)
		default:
			return false, errors.New("usage: /rag on|off")
		}
		fmt.Fprintf(out, "%s\n", p.notice("Knowledge base: "+ragStatus()))

	case "/prompt":
		if err := conversationService.SetSystemPrompt(arg); err != nil {
			return false, err
		}
		fmt.Fprintln(out, p.notice("System prompt updated."))

	case "/history":
		for _, turn := range conversationService.History() {
			fmt.Fprintf(out, "%s: %s\n", turn.Role, turn.Content)
		}

	case "/listen":
		text, err := recordOnce(cmd)
		if err != nil {
			return false, err
		}
		if text == "" {
			fmt.Fprintln(out, p.notice("No speech recognised."))
			return false, nil
		}
		fmt.Fprintf(out, "%s %s\n", p.user("You said:"), text)
		chatReply(cmd, p, text)

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return false, nil
}

// recordOnce records one utterance with the configured auto-stop. Ctrl+C
// ends the recording and keeps what was heard.
func recordOnce(cmd *cobra.Command) (string, error) {
	if recognitionService == nil || !recognitionService.Available() {
		return "", errors.New("speech recognition is not configured")
	}
	ctx, stop := interruptContext(commandContext(cmd))
	defer stop()
	handle, err := recognitionService.Start(ctx)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listening for up to %s...\n", recordingSettings.MaxDuration)

	result, err := services.PollRecording(ctx, recognitionService, handle, services.PollConfig{
		Interval:    recordingSettings.PollInterval,
		MaxDuration: recordingSettings.MaxDuration,
	}, func(transcript string, elapsed time.Duration) {
		if transcript != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\r[%4.1fs] %s", elapsed.Seconds(), transcript)
		}
	})
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if result.LastError != nil {
		return result.Text, result.LastError
	}
	return result.Text, nil
}

func ragStatus() string {
	if conversationService == nil || !conversationService.RAGEnabled() {
		return "off"
	}
	if knowledgeService == nil {
		return "on"
	}
	return fmt.Sprintf("on (%d chunks)", knowledgeService.Stats().Count)
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
