package services

import (
	"context"
	"time"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/logger"
)

// Default recording policy used when PollConfig leaves a field unset.
const (
	DefaultPollInterval   = 300 * time.Millisecond
	DefaultMaxRecordLimit = 10 * time.Second
)

// PollConfig configures the caller-side recording loop.
type PollConfig struct {
	// Interval is the refresh period. Ignored when Ticks is set.
	Interval time.Duration

	// MaxDuration is the auto-stop ceiling measured from the handle's start.
	MaxDuration time.Duration

	// Now is the clock used to measure elapsed time. Defaults to time.Now.
	Now func() time.Time

	// Ticks, when set, drives the loop instead of an internal ticker.
	Ticks <-chan time.Time
}

// PollResult is the outcome of a polled recording.
type PollResult struct {
	// Text is the final transcript returned by Stop.
	Text string

	// AutoStopped is true when MaxDuration was reached.
	AutoStopped bool

	// Ended is true when the recogniser stopped on its own.
	Ended bool

	// Interrupted is true when ctx was cancelled before either.
	Interrupted bool

	// Elapsed is the recording length at the moment it was stopped.
	Elapsed time.Duration

	// LastError is a recogniser failure reported by a terminal event.
	LastError error
}

// PollRecording watches a recording until it ends, hits MaxDuration or ctx
// is cancelled, then stops it. onUpdate, if non-nil, receives the live
// transcript on every tick.
func PollRecording(
	ctx context.Context,
	rec driving.RecognitionService,
	handle domain.RecognitionHandle,
	cfg PollConfig,
	onUpdate func(transcript string, elapsed time.Duration),
) (PollResult, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultMaxRecordLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ticks := cfg.Ticks
	if ticks == nil {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	var result PollResult
	for {
		select {
		case <-ctx.Done():
			result.Interrupted = true
		case <-ticks:
		}

		status := rec.Status()
		result.Elapsed = cfg.Now().Sub(handle.StartedAt)
		result.LastError = status.LastError

		if !result.Interrupted {
			if onUpdate != nil {
				onUpdate(status.Transcript, result.Elapsed)
			}
			switch {
			case !status.Active || status.Handle.ID != handle.ID:
				result.Ended = true
			case result.Elapsed >= cfg.MaxDuration:
				result.AutoStopped = true
				logger.Debug("Recording reached %s, stopping", cfg.MaxDuration)
			default:
				continue
			}
		}

		text, err := rec.Stop(context.WithoutCancel(ctx), handle)
		result.Text = text
		return result, err
	}
}
