package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Feed delivers decoded Samples to the caller-supplied callback until the
// source is exhausted or ctx is cancelled. Implementations own reconnect and
// pacing; the callback must not be invoked concurrently.
type Feed interface {
	Run(ctx context.Context, fn func(Sample)) error
}

// ReplayFeed reads JSON-lines Sample records from a file and replays them at
// a fixed rate. Blank lines are skipped; a malformed line is logged and
// skipped rather than aborting the replay, matching the engine's stance that
// a bad upstream tick is never fatal.
type ReplayFeed struct {
	path string
	rate int // samples per second; <= 0 means as fast as possible
}

// NewReplayFeed creates a feed replaying path at rate samples per second.
func NewReplayFeed(path string, rate int) *ReplayFeed {
	return &ReplayFeed{path: path, rate: rate}
}

// Run replays the recording once, invoking fn for each decoded Sample.
// It returns nil when the file is exhausted, or ctx.Err() on cancellation.
func (f *ReplayFeed) Run(ctx context.Context, fn func(Sample)) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("telemetry: open replay file: %w", err)
	}
	defer file.Close()

	var ticker *time.Ticker
	if f.rate > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(f.rate))
		defer ticker.Stop()
	}

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		var s Sample
		if err := json.Unmarshal(raw, &s); err != nil {
			slog.Warn("telemetry: skipping malformed replay line",
				"path", f.path, "line", line, "err", err)
			continue
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		fn(s)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("telemetry: read replay file: %w", err)
	}
	return nil
}

// WriteRecording appends samples to w as JSON lines in the format ReplayFeed
// reads back. Used by capture tooling and tests.
func WriteRecording(w io.Writer, samples []Sample) error {
	enc := json.NewEncoder(w)
	for i, s := range samples {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("telemetry: encode sample %d: %w", i, err)
		}
	}
	return nil
}
