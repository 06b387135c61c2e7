package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var speakOutput string

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Synthesise text to an audio file",
	Long: `Converts text to speech with the configured speech provider.
The file extension defaults to the provider's format (wav for Azure, mp3 for OpenAI).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "", "output file (default speech.<format>)")
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	if voiceService == nil {
		return errors.New("voice service not configured")
	}
	if !voiceService.CanSpeak() {
		return errors.New("speech synthesis is not configured; run 'voxdesk settings speech'")
	}

	ctx, stop := interruptContext(commandContext(cmd))
	defer stop()
	audio, err := voiceService.Speak(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("speak failed: %w", err)
	}

	path := speakOutput
	if path == "" {
		path = "speech." + voiceService.AudioFormat()
	}
	if err := writeAudio(path, audio); err != nil {
		return err
	}
	cmd.Printf("Wrote %d bytes to %s\n", len(audio), path)
	return nil
}
