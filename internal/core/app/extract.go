package app

import (
	"context"
	"time"

	"declschema/internal/core/errors"
	"declschema/internal/engine/extract"
	"declschema/internal/schema"
	"declschema/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ExtractFile parses path and returns its declaration schema. Any failure
// aborts the file; no partial schema is returned.
func (a *App) ExtractFile(ctx context.Context, path string) (schema.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, p := a.snapshot()

	_, parseSpan := observability.Tracer.Start(ctx, "parse", trace.WithAttributes(attribute.String("path", path)))
	parseStart := time.Now()
	unit, err := p.ParseFile(path)
	if err != nil {
		endSpan(parseSpan, err)
		return nil, a.failure(err, path, "parse")
	}
	defer unit.Close()
	observability.ParsingDuration.WithLabelValues(unit.Language).Observe(time.Since(parseStart).Seconds())
	parseSpan.SetAttributes(attribute.String("language", unit.Language))
	endSpan(parseSpan, nil)

	if unit.SyntaxErrors {
		observability.SyntaxErrorsTotal.Inc()
		a.Logger.Warn("source has syntax errors, extracting from the recovered tree", "path", path)
	}

	_, extractSpan := observability.Tracer.Start(ctx, "extract", trace.WithAttributes(
		attribute.String("path", path),
		attribute.String("language", unit.Language),
	))
	extractStart := time.Now()
	s, err := extract.ExtractUnit(unit, extract.Options{ToplevelKey: cfg.Output.ToplevelKey})
	elapsed := time.Since(extractStart)
	if err != nil {
		endSpan(extractSpan, err)
		return nil, a.failure(err, path, "extract")
	}
	observability.ExtractionDuration.WithLabelValues(unit.Language).Observe(elapsed.Seconds())

	total := 0
	for kind, n := range s.Count() {
		observability.DeclarationsTotal.WithLabelValues(string(kind)).Add(float64(n))
		total += n
	}
	observability.FilesProcessedTotal.Inc()
	extractSpan.SetAttributes(attribute.Int("declarations", total))
	endSpan(extractSpan, nil)

	a.Logger.Debug("file extracted",
		"path", path,
		"language", unit.Language,
		"namespaces", len(s),
		"declarations", total,
		"duration", elapsed,
	)
	return s, nil
}

func (a *App) failure(err error, path, operation string) error {
	observability.ExtractionFailuresTotal.WithLabelValues(string(errors.CodeOf(err))).Inc()
	err = errors.AddContext(err, errors.CtxPath, path)
	return errors.AddContext(err, errors.CtxOperation, operation)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
