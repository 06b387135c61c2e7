package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxdesk/internal/core/services"
)

var (
	listenFile  string
	listenMax   time.Duration
	listenAsk   bool
	listenAudio string
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Transcribe speech from the microphone",
	Long: `Records from the default microphone and prints the live transcript.
Recording stops after a pause in speech, after --max, or on Ctrl+C.

With the OpenAI speech provider there is no microphone input; pass a
recorded file with --file instead.

With --ask the transcript is sent to the assistant and the reply printed.`,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVarP(&listenFile, "file", "f", "", "transcribe a recorded audio file")
	listenCmd.Flags().DurationVar(&listenMax, "max", 0, "maximum recording length (default from settings)")
	listenCmd.Flags().BoolVar(&listenAsk, "ask", false, "send the transcript to the assistant")
	listenCmd.Flags().StringVar(&listenAudio, "audio", "", "with --ask, write the spoken reply to this file")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	if recognitionService == nil || !recognitionService.Available() {
		return errors.New("speech recognition is not configured; run 'voxdesk settings speech'")
	}
	if listenFile != "" {
		if audioFiles == nil {
			return errors.New("--file needs the openai speech provider")
		}
		audioFiles.UseFile(listenFile)
	}

	ctx, stopRecording := interruptContext(commandContext(cmd))
	defer stopRecording()
	handle, err := recognitionService.Start(ctx)
	if err != nil {
		return fmt.Errorf("listen failed: %w", err)
	}

	maxDuration := listenMax
	if maxDuration <= 0 {
		maxDuration = recordingSettings.MaxDuration
	}
	cmd.Printf("Listening for up to %s... (Ctrl+C to stop)\n", maxDuration)

	result, err := services.PollRecording(ctx, recognitionService, handle, services.PollConfig{
		Interval:    recordingSettings.PollInterval,
		MaxDuration: maxDuration,
	}, func(transcript string, elapsed time.Duration) {
		if transcript != "" {
			cmd.Printf("\r[%4.1fs] %s", elapsed.Seconds(), transcript)
		}
	})
	stopRecording()
	cmd.Println()
	if err != nil {
		return fmt.Errorf("stop recording: %w", err)
	}
	if result.LastError != nil {
		cmd.PrintErrf("Recognition error: %v\n", result.LastError)
	}
	if result.AutoStopped {
		cmd.Printf("Stopped after %s.\n", maxDuration)
	}

	if result.Text == "" {
		cmd.Println("No speech recognised.")
		return nil
	}
	cmd.Printf("You said: %s\n", result.Text)

	if !listenAsk {
		return nil
	}
	if voiceService == nil {
		return errors.New("assistant not configured")
	}
	askCtx, stopAsk := interruptContext(commandContext(cmd))
	defer stopAsk()
	reply, err := voiceService.Query(askCtx, result.Text, listenAudio != "")
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Printf("Assistant: %s\n", reply.Text)
	if listenAudio != "" {
		if reply.AudioErr != nil {
			cmd.PrintErrf("Audio unavailable: %v\n", reply.AudioErr)
			return nil
		}
		if err := writeAudio(listenAudio, reply.Audio); err != nil {
			return err
		}
		cmd.Printf("Audio saved to %s\n", listenAudio)
	}
	return nil
}
