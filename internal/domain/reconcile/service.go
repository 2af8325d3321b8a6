package reconcile

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/range-tracker/internal/domain/plan/catalog"
	"github.com/FACorreiaa/range-tracker/pkg/metrics"
	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

// SnapshotFetcher returns the current-season style snapshot.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, kind plm.SnapshotKind) ([]plm.Style, error)
}

// Service reconciles the loaded catalog against fresh PLM snapshots.
// Fetch failures are returned as-is and never retried here.
type Service struct {
	catalog catalog.Reader
	fetcher SnapshotFetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewService creates a new reconciliation service
func NewService(cat catalog.Reader, fetcher SnapshotFetcher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		catalog: cat,
		fetcher: fetcher,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("github.com/FACorreiaa/range-tracker/internal/domain/reconcile"),
	}
}

// ReconcileSegments returns one result per segment plan row, in catalog order.
// An empty plan returns no rows without calling PLM.
func (s *Service) ReconcileSegments(ctx context.Context) (results []Result, err error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.segments")
	defer func() { s.finish(span, "segment", err) }()

	rows := s.catalog.Current().Segments
	if len(rows) == 0 {
		s.logger.Warn("segment plan is empty, nothing to reconcile")
		return []Result{}, nil
	}

	snapshot, err := s.fetcher.FetchSnapshot(ctx, plm.SnapshotSegments)
	if err != nil {
		s.logger.Error("segment reconciliation failed", slog.Any("error", err))
		return nil, err
	}

	results = MatchSegments(rows, snapshot)
	span.SetAttributes(
		attribute.Int("plan.rows", len(rows)),
		attribute.Int("plm.styles", len(snapshot)),
	)
	s.logger.Info("segments reconciled",
		slog.Int("rows", len(results)),
		slog.Int("styles", len(snapshot)),
	)
	return results, nil
}

// ReconcileThemes returns one result per theme target followed by the
// SeasonAverage and Reference rows. An empty theme plan returns only the two
// synthetic rows without calling PLM.
func (s *Service) ReconcileThemes(ctx context.Context) (results []Result, err error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.themes")
	defer func() { s.finish(span, "theme", err) }()

	targets := s.catalog.Current().Themes
	if len(targets) == 0 {
		s.logger.Warn("theme plan is empty, nothing to reconcile")
		return MatchThemes(nil, nil), nil
	}

	snapshot, err := s.fetcher.FetchSnapshot(ctx, plm.SnapshotThemes)
	if err != nil {
		s.logger.Error("theme reconciliation failed", slog.Any("error", err))
		return nil, err
	}

	results = MatchThemes(targets, snapshot)
	span.SetAttributes(
		attribute.Int("plan.themes", len(targets)),
		attribute.Int("plm.styles", len(snapshot)),
	)
	s.logger.Info("themes reconciled",
		slog.Int("themes", len(targets)),
		slog.Int("styles", len(snapshot)),
	)
	return results, nil
}

// Banner reconciles both dimensions concurrently and returns their headlines.
// The theme headline counts real themes only.
func (s *Service) Banner(ctx context.Context) (*Banner, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.banner")
	defer span.End()

	var segments, themes []Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segments, err = s.ReconcileSegments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		themes, err = s.ReconcileThemes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &Banner{
		Segments: headline(segments),
		Themes:   headline(RealThemes(themes)),
	}, nil
}

func (s *Service) finish(span trace.Span, kind string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	s.metrics.IncReconcile(kind, err)
}
