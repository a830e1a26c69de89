package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/domain"
	"github.com/couchcryptid/avi-report-etl/internal/observability"
)

// ErrPartialReport is returned by Transform for reports with unresolved times
// when partial reports are not published.
var ErrPartialReport = errors.New("report times partially resolved")

// ReportTransformer implements Transformer by completing every time field of
// the decoded report.
type ReportTransformer struct {
	bounds       domain.ValidityBounds
	allowPartial bool
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewTransformer creates a ReportTransformer. With allowPartial set, reports
// whose times only partly resolved are still published, flagged by the
// times_complete header.
func NewTransformer(bounds domain.ValidityBounds, allowPartial bool, logger *slog.Logger, metrics *observability.Metrics) *ReportTransformer {
	return &ReportTransformer{
		bounds:       bounds,
		allowPartial: allowPartial,
		logger:       logger,
		metrics:      metrics,
	}
}

func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.OutputEvent{}, err
	}

	parsed, err := domain.ParseRawEvent(raw)
	if err != nil {
		t.metrics.ReportsProcessed.WithLabelValues("unknown", observability.OutcomeInvalid).Inc()
		return domain.OutputEvent{}, err
	}

	res, err := t.complete(parsed)
	var pce *domain.PartialCompletionError
	switch {
	case errors.As(err, &pce) && !t.allowPartial:
		t.record(res.ReportType, observability.OutcomeSkipped)
		return domain.OutputEvent{}, fmt.Errorf("%w: %s %s: %v", ErrPartialReport, res.ReportType, res.ReportID, pce.Paths())
	case err != nil && pce == nil:
		t.record(parsed.Report.Kind(), observability.OutcomeInvalid)
		return domain.OutputEvent{}, err
	}

	t.recordOutcome(res)
	return domain.SerializeResult(res)
}

// CompleteDocument completes an envelope received outside Kafka. A non-empty
// referenceTime (RFC 3339) is used when the envelope carries none. The result
// is returned even when some fields failed; err is then a
// *domain.PartialCompletionError.
func (t *ReportTransformer) CompleteDocument(ctx context.Context, body []byte, referenceTime string) (domain.CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.CompletionResult{}, err
	}

	raw := domain.RawEvent{Value: body}
	if referenceTime != "" {
		raw.Headers = map[string]string{domain.HeaderReferenceTime: referenceTime}
	}
	parsed, err := domain.ParseRawEvent(raw)
	if err != nil {
		t.metrics.ReportsProcessed.WithLabelValues("unknown", observability.OutcomeInvalid).Inc()
		return domain.CompletionResult{}, err
	}

	res, err := t.complete(parsed)
	var pce *domain.PartialCompletionError
	if err != nil && !errors.As(err, &pce) {
		t.record(parsed.Report.Kind(), observability.OutcomeInvalid)
		return domain.CompletionResult{}, err
	}
	t.recordOutcome(res)
	return res, err
}

func (t *ReportTransformer) complete(parsed domain.ParsedReport) (domain.CompletionResult, error) {
	start := time.Now()
	completed, err := domain.CompleteAllTimes(parsed.Report, parsed.ReferenceTime, t.bounds)
	t.metrics.CompletionDuration.Observe(time.Since(start).Seconds())

	var pce *domain.PartialCompletionError
	if err != nil && !errors.As(err, &pce) {
		return domain.CompletionResult{}, err
	}

	res := domain.NewCompletionResult(parsed, completed, err)
	kind := string(res.ReportType)
	for _, f := range res.Failures {
		t.metrics.FieldFailures.WithLabelValues(kind, domain.FailureKind(f.Err)).Inc()
	}

	if pce != nil {
		t.logger.Warn("report times partially resolved",
			"report_id", res.ReportID,
			"report_type", kind,
			"reference_time", parsed.ReferenceTime,
			"anchor_source", parsed.AnchorSource,
			"failed_fields", pce.Paths(),
		)
		return res, err
	}

	t.logger.Debug("report times resolved",
		"report_id", res.ReportID,
		"report_type", kind,
		"anchor_source", parsed.AnchorSource,
	)
	return res, nil
}

func (t *ReportTransformer) recordOutcome(res domain.CompletionResult) {
	outcome := observability.OutcomeComplete
	if !res.TimesComplete {
		outcome = observability.OutcomePartial
	}
	t.record(res.ReportType, outcome)
}

func (t *ReportTransformer) record(kind domain.Kind, outcome string) {
	t.metrics.ReportsProcessed.WithLabelValues(string(kind), outcome).Inc()
}
