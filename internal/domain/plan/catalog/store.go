package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/range-tracker/pkg/metrics"
)

// Reader is the read side of a Store.
type Reader interface {
	Current() *Catalog
}

// Store holds the current catalog. Reload swaps in a complete new catalog,
// so a reader sees either the old rows or the new ones, never a mix.
type Store struct {
	current  atomic.Pointer[Catalog]
	source   Source
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewStore creates a store holding an empty catalog. Call Reload to populate it.
func NewStore(source Source, logger *slog.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		source:   source,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
	s.current.Store(Empty())
	return s
}

// Current never returns nil.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Reload reads both plan sets from the source. A set that fails to load is left
// empty and the error is returned; the store stays usable either way.
func (s *Store) Reload(ctx context.Context) error {
	segments, segErr := s.source.LoadSegments(ctx)
	if segErr != nil {
		segErr = fmt.Errorf("load segment plan: %w", segErr)
		s.logger.Error("segment plan failed to load, continuing with an empty set", slog.Any("error", segErr))
		segments = nil
	}

	themes, themeErr := s.source.LoadThemes(ctx)
	if themeErr != nil {
		themeErr = fmt.Errorf("load theme targets: %w", themeErr)
		s.logger.Error("theme targets failed to load, continuing with an empty set", slog.Any("error", themeErr))
		themes = nil
	}

	next := &Catalog{
		Segments: s.validSegments(segments),
		Themes:   s.validThemes(themes),
		LoadedAt: s.now(),
		Source:   s.source.Name(),
	}
	s.current.Store(next)

	s.metrics.SetCatalogRows("segment", len(next.Segments))
	s.metrics.SetCatalogRows("theme", len(next.Themes))
	s.logger.Info("plan catalog loaded",
		slog.String("source", next.Source),
		slog.Int("segments", len(next.Segments)),
		slog.Int("themes", len(next.Themes)),
	)

	return errors.Join(segErr, themeErr)
}

func (s *Store) validSegments(rows []PlanRow) []PlanRow {
	out := make([]PlanRow, 0, len(rows))
	for i, r := range rows {
		if err := s.validate.Struct(r); err != nil {
			s.logger.Warn("dropping invalid plan row",
				slog.Int("index", i),
				slog.String("segment", r.SegmentLabel),
				slog.Any("fields", fieldErrors(err)),
			)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) validThemes(targets []ThemeTarget) []ThemeTarget {
	out := make([]ThemeTarget, 0, len(targets))
	for i, t := range targets {
		if err := s.validate.Struct(t); err != nil {
			s.logger.Warn("dropping invalid theme target",
				slog.Int("index", i),
				slog.String("theme", t.ThemeName),
				slog.Any("fields", fieldErrors(err)),
			)
			continue
		}
		out = append(out, t)
	}
	return out
}

// fieldErrors flattens validator output to field -> failed tag.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
