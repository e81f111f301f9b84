// Package service orchestrates a single job against the generation service:
// probe, optional upload, submit, then bounded polling of the job's history.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/target/promptwait/internal/comfy"
	"github.com/target/promptwait/internal/core"
	apperrors "github.com/target/promptwait/internal/errors"
	"github.com/target/promptwait/internal/observability/metrics"
	"github.com/target/promptwait/internal/observability/notify"
	"github.com/target/promptwait/internal/observability/statsd"
	"github.com/target/promptwait/internal/poll"
)

// OutcomeNotifier receives terminal outcomes. *notifier.Service implements it.
type OutcomeNotifier interface {
	NotifyOutcome(ctx context.Context, payload notify.OutcomePayload)
}

// RunnerConfig holds the values a run needs beyond its collaborators.
type RunnerConfig struct {
	// OutputDir is where the service host writes artifacts.
	OutputDir string
	// Wait bounds the polling loop.
	Wait poll.Options
	// Metadata is attached to every notified outcome (for example the service address).
	Metadata map[string]string
}

// RunnerObservers groups the optional side channels of a run.
type RunnerObservers struct {
	Logger   *slog.Logger
	Metrics  statsd.Sink
	Notifier OutcomeNotifier
}

// RunnerOptions groups dependencies for Runner.
type RunnerOptions struct {
	API       core.ComfyAPI // Required: generation service
	Config    RunnerConfig
	Observers RunnerObservers // Optional
}

// Runner drives jobs through the generation service.
type Runner struct {
	api       core.ComfyAPI
	outputDir string
	wait      poll.Options
	logger    *slog.Logger
	metrics   statsd.Sink
	notifier  OutcomeNotifier
	metadata  map[string]string
	now       func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.API == nil {
		return nil, errors.New("ComfyAPI is required")
	}
	if opts.Config.Wait.Interval <= 0 || opts.Config.Wait.MaxWait <= 0 {
		return nil, apperrors.Validationf("wait interval and max wait must be positive (got %s and %s)",
			opts.Config.Wait.Interval, opts.Config.Wait.MaxWait)
	}

	logger := opts.Observers.Logger
	if logger == nil {
		logger = slog.Default().With("component", "runner")
	}
	clock := opts.Config.Wait.Clock
	if clock == nil {
		clock = poll.RealClock{}
		opts.Config.Wait.Clock = clock
	}

	return &Runner{
		api:       opts.API,
		outputDir: opts.Config.OutputDir,
		wait:      opts.Config.Wait,
		logger:    logger,
		metrics:   opts.Observers.Metrics,
		notifier:  opts.Observers.Notifier,
		metadata:  opts.Config.Metadata,
		now:       clock.Now,
	}, nil
}

// ImageUpload is a local image sent to the service before submission.
type ImageUpload struct {
	Name    string
	Body    io.Reader
	Options comfy.UploadOptions
}

// RunRequest describes what to submit. Either Job or Template must be set.
type RunRequest struct {
	Job      comfy.JobDescription
	Template *comfy.Template
	Params   comfy.TemplateParams
	// Image, when set, is uploaded first and its reference becomes Params.Image.
	Image *ImageUpload
}

// Submission is what Launch hands back once the service accepted a job.
type Submission struct {
	PromptID comfy.PromptID
	Stats    *comfy.SystemStats
	Uploaded *comfy.UploadedImage
	// Metadata describes how the job was built: template name and input image.
	Metadata map[string]string
}

// Probe checks that the service is reachable.
func (r *Runner) Probe(ctx context.Context) (*comfy.SystemStats, error) {
	start := r.now()
	stats, err := r.api.SystemStats(ctx)
	metrics.EmitPhase(r.metrics, metrics.PhaseMetric{Phase: metrics.PhaseProbe, Duration: r.now().Sub(start), Err: err})
	if err != nil {
		r.logger.ErrorContext(ctx, "service probe failed", "error", err)
		return nil, err
	}
	r.logger.DebugContext(ctx, "service reachable")
	return stats, nil
}

// Launch probes the service, uploads the input image when requested, and submits the job once.
// Nothing is submitted when the probe fails.
func (r *Runner) Launch(ctx context.Context, req RunRequest) (*Submission, error) {
	stats, err := r.Probe(ctx)
	if err != nil {
		return nil, err
	}
	sub := &Submission{Stats: stats, Metadata: map[string]string{}}
	if req.Template != nil {
		sub.Metadata["template"] = req.Template.Name
	}

	params := req.Params
	if req.Image != nil {
		uploaded, upErr := r.upload(ctx, req.Image)
		if upErr != nil {
			return nil, upErr
		}
		sub.Uploaded = &uploaded
		params.Image = uploaded.Reference()
		sub.Metadata["input_image"] = params.Image
	}

	job, err := resolveJob(req, params)
	if err != nil {
		return nil, err
	}

	start := r.now()
	id, err := r.api.Submit(ctx, job)
	metrics.EmitPhase(r.metrics, metrics.PhaseMetric{Phase: metrics.PhaseSubmit, Duration: r.now().Sub(start), Err: err})
	if err != nil {
		r.logger.ErrorContext(ctx, "job submission failed", "error", err)
		return nil, err
	}
	r.logger.InfoContext(ctx, "job submitted", "prompt_id", id, "client_id", r.api.ClientID())
	sub.PromptID = id
	return sub, nil
}

func (r *Runner) upload(ctx context.Context, img *ImageUpload) (comfy.UploadedImage, error) {
	start := r.now()
	uploaded, err := r.api.UploadImage(ctx, img.Name, img.Body, img.Options)
	metrics.EmitPhase(r.metrics, metrics.PhaseMetric{Phase: metrics.PhaseUpload, Duration: r.now().Sub(start), Err: err})
	if err != nil {
		r.logger.ErrorContext(ctx, "image upload failed", "name", img.Name, "error", err)
		return comfy.UploadedImage{}, err
	}
	r.logger.InfoContext(ctx, "image uploaded", "name", uploaded.Name, "subfolder", uploaded.Subfolder)
	return uploaded, nil
}

func resolveJob(req RunRequest, params comfy.TemplateParams) (comfy.JobDescription, error) {
	if req.Template != nil {
		job, err := req.Template.Build(params)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "build template")
		}
		return job, nil
	}
	if len(req.Job) == 0 {
		return nil, apperrors.Validation("job description is empty")
	}
	return req.Job, nil
}

// Run launches the job and waits for it. The returned Outcome is non-nil whenever
// the job was submitted, including failed and timed-out jobs.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Outcome, error) {
	sub, err := r.Launch(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := r.waitFor(ctx, sub.PromptID, sub.Metadata)
	if out != nil {
		out.Stats = sub.Stats
	}
	return out, err
}

// Wait polls the job's history until it completes, fails, or the wait budget runs out.
// Transport failures while polling end the wait with ServiceUnavailable.
func (r *Runner) Wait(ctx context.Context, id comfy.PromptID) (*Outcome, error) {
	return r.waitFor(ctx, id, nil)
}

func (r *Runner) waitFor(ctx context.Context, id comfy.PromptID, extra map[string]string) (*Outcome, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, apperrors.Validation("prompt id is required")
	}

	res, err := poll.Until(ctx, r.wait, r.historyStep(id))
	metrics.EmitPhase(r.metrics, metrics.PhaseMetric{Phase: metrics.PhaseWait, Duration: res.Elapsed, Err: err})

	out := &Outcome{
		PromptID: id,
		ClientID: r.api.ClientID(),
		Polls:    res.Attempts,
		Elapsed:  res.Elapsed,
		Record:   res.Value,
		Metadata: r.outcomeMetadata(extra),
	}

	switch {
	case err == nil:
		out.State = StateCompleted
		out.Artifacts = r.artifacts(res.Value)
		r.logger.InfoContext(ctx, "job completed",
			"prompt_id", id, "polls", res.Attempts, "elapsed", res.Elapsed, "artifacts", len(out.Artifacts))
	case errors.Is(err, poll.ErrTimeout):
		err = apperrors.TimedOut(err, "job %s did not finish within %s", id, r.wait.MaxWait)
		out.State = StateTimedOut
		out.Err = err
		r.logger.WarnContext(ctx, "job timed out", "prompt_id", id, "polls", res.Attempts, "elapsed", res.Elapsed)
	case apperrors.IsJobFailed(err):
		out.State = StateFailed
		out.Err = err
		r.logger.ErrorContext(ctx, "job failed", "prompt_id", id, "polls", res.Attempts, "error", err)
	default:
		// Hard errors (transport, malformed history, cancellation) are not job outcomes.
		r.logger.ErrorContext(ctx, "waiting for job aborted", "prompt_id", id, "polls", res.Attempts, "error", err)
		return nil, err
	}

	metrics.EmitOutcome(r.metrics, metrics.OutcomeMetric{State: out.State, Polls: out.Polls, Elapsed: out.Elapsed})
	if r.notifier != nil {
		r.notifier.NotifyOutcome(context.WithoutCancel(ctx), out.Payload(r.now()))
	}
	return out, out.Err
}

func (r *Runner) outcomeMetadata(extra map[string]string) map[string]string {
	if len(r.metadata) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.metadata)+len(extra))
	for k, v := range r.metadata {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (r *Runner) historyStep(id comfy.PromptID) poll.StepFunc[*comfy.JobRecord] {
	return func(ctx context.Context, attempt int) (*comfy.JobRecord, bool, error) {
		rec, found, err := r.api.History(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if !found {
			r.logger.DebugContext(ctx, "job not in history yet", "prompt_id", id, "attempt", attempt)
			return nil, false, nil
		}
		if rec.HasOutputs() || rec.IsCompleted() {
			return rec, true, nil
		}
		if desc, failed := rec.ErrorDescription(); failed {
			return rec, false, apperrors.JobFailed(string(id), desc)
		}
		r.logger.DebugContext(ctx, "job pending", "prompt_id", id, "attempt", attempt)
		return rec, false, nil
	}
}

func (r *Runner) artifacts(rec *comfy.JobRecord) []ArtifactReport {
	nodes := rec.Artifacts()
	out := make([]ArtifactReport, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ArtifactReport{
			NodeID:    n.NodeID,
			Filename:  n.Filename,
			Subfolder: n.Subfolder,
			Type:      n.Type,
			Path:      n.Path(r.outputDir),
			URL:       r.api.ViewURL(n.Artifact),
		})
	}
	return out
}
