package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askAudioPath string
	askRAG       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a single question",
	Long: `Sends one question to the assistant and prints the reply.

With --rag the reply is grounded in the knowledge base built by 'voxdesk ingest'.
With --audio the reply is also synthesised and written to the given file.`,
	Example: `  voxdesk ask "What is your refund policy?"
  voxdesk ask --rag --audio reply.mp3 "How do I reset my password?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askAudioPath, "audio", "a", "", "write the spoken reply to this file")
	askCmd.Flags().BoolVar(&askRAG, "rag", false, "ground the reply in the knowledge base")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if voiceService == nil || conversationService == nil {
		return errors.New("assistant not configured")
	}
	question := strings.TrimSpace(strings.Join(args, " "))

	if cmd.Flags().Changed("rag") {
		conversationService.SetRAGEnabled(askRAG)
	}

	withAudio := askAudioPath != ""
	ctx, stop := interruptContext(commandContext(cmd))
	defer stop()
	reply, err := voiceService.Query(ctx, question, withAudio)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(reply.Text)

	if withAudio {
		if reply.AudioErr != nil {
			cmd.PrintErrf("Audio unavailable: %v\n", reply.AudioErr)
			return nil
		}
		if err := writeAudio(askAudioPath, reply.Audio); err != nil {
			return err
		}
		cmd.Printf("Audio saved to %s\n", askAudioPath)
	}
	return nil
}

// writeAudio saves synthesised audio, creating or truncating path.
func writeAudio(path string, audio []byte) error {
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}
