package agent

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"
)

const (
	defaultInterval = 30 * time.Second
	defaultJitter   = 3 * time.Second
)

// Applier applies a verified artifact. The SDK downloads and checks the
// artifact; everything after that (unpacking, service restart, health probe,
// local rollback) belongs to the consumer. A nil error marks the update
// successful, anything else is reported to the server as a failure.
type Applier interface {
	Apply(ctx context.Context, artifactPath string, instruction *CheckinResult) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(ctx context.Context, artifactPath string, instruction *CheckinResult) error

func (f ApplierFunc) Apply(ctx context.Context, artifactPath string, instruction *CheckinResult) error {
	return f(ctx, artifactPath, instruction)
}

// Poller runs the agent loop: check in, download and verify when the server
// hands out an update, apply it, report the outcome, sleep, repeat.
type Poller struct {
	client      *Client
	applier     Applier
	interval    time.Duration
	jitter      time.Duration
	downloadDir string
	versionFn   func() string
	statusFn    func() string
	logf        func(format string, args ...any)
}

// PollerOption is a function that configures the Poller.
type PollerOption func(*Poller)

// WithInterval sets the base sleep between polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithJitter sets the upper bound of the random delay added to each sleep.
func WithJitter(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.jitter = d
	}
}

// WithDownloadDir sets the directory artifacts are downloaded into.
// Defaults to the system temp directory.
func WithDownloadDir(dir string) PollerOption {
	return func(p *Poller) {
		p.downloadDir = dir
	}
}

// WithVersionFunc sets the provider of the currently installed version,
// called before every poll.
func WithVersionFunc(fn func() string) PollerOption {
	return func(p *Poller) {
		p.versionFn = fn
	}
}

// WithStatusFunc sets the provider of the self-reported status string sent
// with every poll.
func WithStatusFunc(fn func() string) PollerOption {
	return func(p *Poller) {
		p.statusFn = fn
	}
}

// WithLogf sets the logging function. Defaults to discarding.
func WithLogf(fn func(format string, args ...any)) PollerOption {
	return func(p *Poller) {
		p.logf = fn
	}
}

// NewPoller creates a Poller. The applier must not be nil.
func NewPoller(client *Client, applier Applier, opts ...PollerOption) *Poller {
	p := &Poller{
		client:      client,
		applier:     applier,
		interval:    defaultInterval,
		jitter:      defaultJitter,
		downloadDir: os.TempDir(),
		logf:        func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. Poll errors are logged and the loop
// keeps going; the only way out is cancellation.
func (p *Poller) Run(ctx context.Context) error {
	for {
		p.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.sleepFor()):
		}
	}
}

// PollOnce performs a single check-in cycle, including any update the server
// hands out. Exposed for consumers driving their own schedule.
func (p *Poller) PollOnce(ctx context.Context) {
	p.pollOnce(ctx)
}

func (p *Poller) pollOnce(ctx context.Context) {
	var req CheckinRequest
	if p.versionFn != nil {
		req.CurrentVersion = p.versionFn()
	}
	if p.statusFn != nil {
		req.Status = p.statusFn()
	}

	result, err := p.client.Checkin(ctx, req)
	if err != nil {
		p.logf("checkin failed: %v", err)
		return
	}

	if result.Action != ActionUpdate {
		return
	}

	p.logf("update available: %s", result.TargetVersion)

	applyErr := p.performUpdate(ctx, result)

	// Skip reporting when the loop is shutting down; the attempt will be
	// handed out again on the next run.
	if ctx.Err() != nil {
		return
	}

	report := ReportResultRequest{
		Success: applyErr == nil,
		Version: result.TargetVersion,
	}
	if applyErr != nil {
		p.logf("update failed: %v", applyErr)
		report.ErrorMessage = applyErr.Error()
	} else {
		p.logf("update completed: %s", result.TargetVersion)
	}

	if _, err := p.client.ReportResult(ctx, report); err != nil {
		p.logf("failed to report result: %v", err)
	}
}

// performUpdate downloads and verifies the artifact, then hands it to the
// applier. The downloaded file is removed before returning.
func (p *Poller) performUpdate(ctx context.Context, instruction *CheckinResult) error {
	f, err := os.CreateTemp(p.downloadDir, "drover-artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	_, err = p.client.DownloadArtifact(ctx, instruction.ArtifactURL, instruction.Checksum, f)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("download artifact: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close artifact file: %w", closeErr)
	}

	return p.applier.Apply(ctx, path, instruction)
}

func (p *Poller) sleepFor() time.Duration {
	d := p.interval
	if p.jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.jitter)))
	}
	return d
}
