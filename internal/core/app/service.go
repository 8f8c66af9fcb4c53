package app

import (
	"context"
	"fmt"

	"declschema/internal/core/ports"
	"declschema/internal/schema"
	"declschema/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type extractionService struct {
	app *App
}

var _ ports.ExtractionService = (*extractionService)(nil)

func NewExtractionService(app *App) ports.ExtractionService {
	return &extractionService{app: app}
}

func (a *App) ExtractionService() ports.ExtractionService {
	return NewExtractionService(a)
}

func (s *extractionService) Extract(ctx context.Context, path string) (schema.Schema, error) {
	if s.app == nil {
		return nil, fmt.Errorf("app is required")
	}
	return s.app.ExtractFile(ctx, path)
}

func (s *extractionService) Run(ctx context.Context, req ports.ExtractRequest) (ports.ExtractResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "extractionService.Run",
		trace.WithAttributes(attribute.String("path", req.Path)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.ExtractResult{}, err
	}
	if s.app == nil {
		return ports.ExtractResult{}, fmt.Errorf("app is required")
	}
	result, err := s.app.Run(ctx, req)
	span.SetAttributes(
		attribute.Int("files", result.Files),
		attribute.Int("declarations", result.Declarations),
	)
	if err != nil {
		span.RecordError(err)
	}
	return result, err
}

func (s *extractionService) Watch(ctx context.Context, req ports.ExtractRequest) error {
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	return s.app.Watch(ctx, req)
}

func (s *extractionService) Close(ctx context.Context) error {
	if s == nil || s.app == nil {
		return nil
	}
	return s.app.Close(ctx)
}
