// Package pastseason looks up a style's previous-season counterpart and its
// performance metrics.
package pastseason

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

// StyleLookup fetches a single style from PLM.
type StyleLookup interface {
	GetStyle(ctx context.Context, styleID int) (*plm.StyleSummary, error)
}

// MetricsProvider supplies last-season metrics for a style that has a
// previous-season code.
type MetricsProvider interface {
	Metrics(ctx context.Context, style plm.StyleSummary) (Metrics, error)
}

// Metrics are the sales and cost figures of the previous-season style.
type Metrics struct {
	Sellout        int     `json:"sellout"`
	Markdown       float64 `json:"markdown"`
	ROS            float64 `json:"ros"`
	FOBCostUSD     float64 `json:"fobCostUSD"`
	FabricCost     float64 `json:"fabricCost"`
	TrimCost       float64 `json:"trimCost"`
	LaborCost      float64 `json:"laborCost"`
	EmbroideryCost float64 `json:"embroideryCost"`
}

// Result is the past-season view of one style.
type Result struct {
	StyleID                 int     `json:"styleId"`
	StyleCode               string  `json:"styleCode"`
	PreviousSeasonStyleCode *string `json:"previousSeasonStyleCode"`
	HasData                 bool    `json:"hasData"`
	Data                    Metrics `json:"data"`
}

type Service struct {
	styles   StyleLookup
	provider MetricsProvider
	logger   *slog.Logger
}

// NewService creates a past-season service. provider may be nil, in which case
// styles with a previous-season code report zero metrics.
func NewService(styles StyleLookup, provider MetricsProvider, logger *slog.Logger) *Service {
	return &Service{styles: styles, provider: provider, logger: logger}
}

// Get returns the past-season view of styleID. plm.ErrStyleNotFound is
// returned unchanged when PLM has no such style.
func (s *Service) Get(ctx context.Context, styleID int) (*Result, error) {
	style, err := s.styles.GetStyle(ctx, styleID)
	if err != nil {
		return nil, err
	}

	res := &Result{StyleID: style.StyleID, StyleCode: style.StyleCode}
	if style.PreviousSeasonCode == nil || strings.TrimSpace(*style.PreviousSeasonCode) == "" {
		s.logger.Debug("style has no previous season code", slog.Int("style_id", styleID))
		return res, nil
	}

	code := *style.PreviousSeasonCode
	res.PreviousSeasonStyleCode = &code
	res.HasData = true

	if s.provider == nil {
		return res, nil
	}

	m, err := s.provider.Metrics(ctx, *style)
	if err != nil {
		return nil, fmt.Errorf("failed to get past season metrics for style %d: %w", styleID, err)
	}
	res.Data = m
	return res, nil
}
