package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/forPelevin/clipideas/internal/apierr"
	"github.com/forPelevin/clipideas/internal/domain/ideas"
	"github.com/forPelevin/clipideas/internal/domain/prompt"
	"github.com/forPelevin/clipideas/internal/domain/videoid"
	"github.com/forPelevin/clipideas/internal/platform/logger"
	"github.com/forPelevin/clipideas/internal/ports"
	"github.com/forPelevin/clipideas/internal/types"
)

const TranscriptSource = "youtube-captions"

type Deps struct {
	Transcripts ports.TranscriptFetcher
	Model       ports.ModelClient
	Limiter     ports.RateLimiter
	Prompt      prompt.Builder
	Log         *logger.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return Usecase{d: d}
}

type Input struct {
	Request  types.Request
	ClientIP string
}

// Result carries the quota left for the caller. Remaining is meaningful
// whenever the limiter was consulted, including on later failures.
type Result struct {
	Response   types.SuccessResponse
	Remaining  int
	Transcript types.Transcript
}

var tracer = otel.Tracer("github.com/forPelevin/clipideas/internal/usecase")

// Run executes one pipeline pass. Every returned error is an *apierr.Error;
// nothing is retried.
func (u Usecase) Run(ctx context.Context, in Input) (res Result, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "clipideas.run", trace.WithAttributes(
		attribute.String("video_id", in.Request.VideoID),
	))
	log := u.d.Log.With("video_id", in.Request.VideoID, "client_ip", in.ClientIP)

	defer func() {
		ae := apierr.From(err)
		if ae != nil {
			err = ae
			span.RecordError(ae)
			span.SetStatus(codes.Error, string(ae.Code))
			fields := []interface{}{"code", ae.Code, "error", ae.Error(), "duration_ms", time.Since(started).Milliseconds()}
			if ae.Code.Status() >= 500 {
				log.Error("clip ideas failed", fields...)
			} else {
				log.Warn("clip ideas rejected", fields...)
			}
		} else {
			log.Info("clip ideas generated", "duration_ms", time.Since(started).Milliseconds())
		}
		span.End()
	}()

	req, err := normalizeRequest(in.Request)
	if err != nil {
		return Result{}, err
	}

	allowed, remaining := u.d.Limiter.CheckAndIncrement(in.ClientIP)
	if !allowed {
		return Result{}, apierr.New(apierr.RateLimited, apierr.MsgRateLimited, nil)
	}

	tr, err := u.fetchTranscript(ctx, req)
	if err != nil {
		return Result{Remaining: remaining}, err
	}

	raw, err := u.generate(ctx, tr, req)
	if err != nil {
		return Result{Remaining: remaining}, err
	}

	batch, err := ideas.Validate(raw, tr)
	if err != nil {
		span.AddEvent("validation rejected")
		return Result{Remaining: remaining}, apierr.New(apierr.OpenAIError, "Failed to generate ideas: "+reason(err), err)
	}

	return Result{
		Response: types.SuccessResponse{
			VideoID: req.VideoID,
			Ideas:   batch,
			Meta: types.Meta{
				TranscriptLanguage: tr.Language,
				TranscriptSource:   TranscriptSource,
				Model:              u.d.Model.Model(),
			},
		},
		Remaining:  remaining,
		Transcript: tr,
	}, nil
}

func normalizeRequest(r types.Request) (types.Request, error) {
	r.VideoID = strings.TrimSpace(r.VideoID)
	if r.VideoID == "" && strings.TrimSpace(r.VideoURL) != "" {
		if id, err := videoid.Extract(r.VideoURL); err == nil {
			r.VideoID = id
		}
	}
	r.Mode = strings.TrimSpace(r.Mode)
	r.LanguageHint = strings.TrimSpace(r.LanguageHint)
	if r.Mode == "" {
		r.Mode = prompt.ModeShorts
	}
	if !videoid.Valid(r.VideoID) {
		return r, apierr.New(apierr.InvalidInput, "Invalid video ID provided.", nil)
	}
	if r.Mode != prompt.ModeShorts {
		return r, apierr.New(apierr.InvalidInput, "Only 'shorts' mode is supported.", nil)
	}
	return r, nil
}

func (u Usecase) fetchTranscript(ctx context.Context, req types.Request) (types.Transcript, error) {
	ctx, span := tracer.Start(ctx, "clipideas.transcript")
	defer span.End()

	tr, err := u.d.Transcripts.Fetch(ctx, req.VideoID, req.LanguageHint)
	if err != nil {
		span.RecordError(err)
		return types.Transcript{}, apierr.New(apierr.TranscriptNotAvailable, apierr.MsgTranscriptNotAvailable, err)
	}
	if len(tr.Entries) == 0 {
		return types.Transcript{}, apierr.New(apierr.TranscriptNotAvailable, apierr.MsgTranscriptNotAvailable, errors.New("empty transcript"))
	}
	span.SetAttributes(
		attribute.Int("transcript.entries", len(tr.Entries)),
		attribute.String("transcript.language", tr.Language),
	)
	return tr, nil
}

func (u Usecase) generate(ctx context.Context, tr types.Transcript, req types.Request) (string, error) {
	p := u.d.Prompt.Build(tr, req.Mode, req.LanguageHint)

	ctx, span := tracer.Start(ctx, "clipideas.generate", trace.WithAttributes(
		attribute.String("model", u.d.Model.Model()),
		attribute.Int("prompt.bytes", len(p)),
	))
	defer span.End()

	raw, err := u.d.Model.Generate(ctx, p)
	if err != nil {
		span.RecordError(err)
		return "", apierr.New(apierr.OpenAIError, "Failed to generate ideas: model provider request failed", err)
	}
	return raw, nil
}

func reason(err error) string {
	if ideas.IsValidationError(err) {
		return err.Error()
	}
	return "invalid model output"
}
