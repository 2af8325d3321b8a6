package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/range-tracker/internal/domain/plan/catalog"
)

// PostgresCatalogRepository serves plan rows from the plan_segments and
// plan_themes tables. It implements catalog.Source.
type PostgresCatalogRepository struct {
	db DB
}

// NewPostgresCatalogRepository creates a new PostgreSQL-backed catalog source
func NewPostgresCatalogRepository(db DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) Name() string { return "postgres" }

// LoadSegments returns segment targets in sheet order.
func (r *PostgresCatalogRepository) LoadSegments(ctx context.Context) ([]catalog.PlanRow, error) {
	query := `
		SELECT brand_id, brand_label, category_id, category_label,
		       segment_id, segment_label, subgroup_id, subgroup_label,
		       theme_id, planned_count
		FROM plan_segments
		ORDER BY sort_order, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan segments: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.PlanRow, 0)
	for rows.Next() {
		var p catalog.PlanRow
		if err := rows.Scan(
			&p.BrandID, &p.BrandLabel, &p.CategoryID, &p.CategoryLabel,
			&p.SegmentID, &p.SegmentLabel, &p.SubgroupID, &p.SubgroupLabel,
			&p.ThemeID, &p.PlannedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan segment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plan segments: %w", err)
	}
	return out, nil
}

// LoadThemes returns theme targets in sheet order.
func (r *PostgresCatalogRepository) LoadThemes(ctx context.Context) ([]catalog.ThemeTarget, error) {
	query := `
		SELECT theme_id, theme_name, planned_count
		FROM plan_themes
		ORDER BY sort_order, theme_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan themes: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.ThemeTarget, 0)
	for rows.Next() {
		var t catalog.ThemeTarget
		if err := rows.Scan(&t.ThemeID, &t.ThemeName, &t.PlannedCount); err != nil {
			return nil, fmt.Errorf("failed to scan plan theme: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plan themes: %w", err)
	}
	return out, nil
}

// ReplaceCatalog swaps the stored catalog for the given rows in one transaction.
// Row order is kept through sort_order.
func (r *PostgresCatalogRepository) ReplaceCatalog(ctx context.Context, segments []catalog.PlanRow, themes []catalog.ThemeTarget) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM plan_segments`); err != nil {
		return fmt.Errorf("failed to clear plan segments: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM plan_themes`); err != nil {
		return fmt.Errorf("failed to clear plan themes: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"plan_segments"},
		[]string{
			"brand_id", "brand_label", "category_id", "category_label",
			"segment_id", "segment_label", "subgroup_id", "subgroup_label",
			"theme_id", "planned_count", "sort_order",
		},
		pgx.CopyFromSlice(len(segments), func(i int) ([]any, error) {
			s := segments[i]
			return []any{
				s.BrandID, s.BrandLabel, s.CategoryID, s.CategoryLabel,
				s.SegmentID, s.SegmentLabel, s.SubgroupID, s.SubgroupLabel,
				s.ThemeID, s.PlannedCount, i,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy plan segments: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"plan_themes"},
		[]string{"theme_id", "theme_name", "planned_count", "sort_order"},
		pgx.CopyFromSlice(len(themes), func(i int) ([]any, error) {
			t := themes[i]
			return []any{t.ThemeID, t.ThemeName, t.PlannedCount, i}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy plan themes: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}
