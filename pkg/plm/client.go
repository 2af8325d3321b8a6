package plm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/range-tracker/pkg/metrics"
)

// SnapshotKind selects which colorway projection a snapshot carries.
type SnapshotKind string

const (
	SnapshotSegments SnapshotKind = "segment"
	SnapshotThemes   SnapshotKind = "theme"
)

const (
	styleSelect           = "StyleId,StyleCode,BrandId,DivisionId,ProductSubSubCategoryId,Status,SeasonId"
	segmentColorwayExpand = "StyleColorways($select=Code,Name,ColorwayUserField4)"
	themeColorwayExpand   = "StyleColorways($select=Code,Name,ColorwayUserField4,ThemeId)"
	summarySelect         = "StyleId,StyleCode,UserDefinedField7Id"

	maxErrorBody = 500
)

// Authorizer produces the Authorization header for one outbound call.
type Authorizer interface {
	AuthorizationHeader(ctx context.Context) (string, error)
}

// ClientConfig configures the OData client.
type ClientConfig struct {
	BaseURL        string
	TenantID       string
	SeasonID       int
	ArchivedStatus int
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
}

// Client fetches style snapshots from the PLM OData endpoint.
type Client struct {
	baseURL        string
	tenantID       string
	seasonID       int
	archivedStatus int

	http    *http.Client
	auth    Authorizer
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a PLM client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg ClientConfig, auth Authorizer, httpClient *http.Client, logger *slog.Logger, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		tenantID:       cfg.TenantID,
		seasonID:       cfg.SeasonID,
		archivedStatus: cfg.ArchivedStatus,
		http:           httpClient,
		auth:           auth,
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger,
		metrics:        m,
	}
}

// FetchSnapshot returns all current-season, non-archived styles with their colorways.
func (c *Client) FetchSnapshot(ctx context.Context, kind SnapshotKind) ([]Style, error) {
	expand := segmentColorwayExpand
	if kind == SnapshotThemes {
		expand = themeColorwayExpand
	}

	query := [][2]string{
		{"$filter", fmt.Sprintf("SeasonId eq %d and Status ne %d", c.seasonID, c.archivedStatus)},
		{"$select", styleSelect},
		{"$expand", expand},
	}

	c.logger.Info("fetching style snapshot from PLM", slog.String("kind", string(kind)))

	var body struct {
		Value []Style `json:"value"`
	}
	if err := c.get(ctx, "snapshot_"+string(kind), "Style", query, &body); err != nil {
		return nil, err
	}
	if body.Value == nil {
		body.Value = []Style{}
	}

	c.metrics.SetSnapshotSize(string(kind), len(body.Value))
	c.logger.Info("fetched style snapshot from PLM",
		slog.String("kind", string(kind)),
		slog.Int("styles", len(body.Value)),
	)
	return body.Value, nil
}

// GetStyle looks up one style by its identifier.
func (c *Client) GetStyle(ctx context.Context, styleID int) (*StyleSummary, error) {
	query := [][2]string{
		{"$filter", "StyleId eq " + strconv.Itoa(styleID)},
		{"$select", summarySelect},
	}

	var body struct {
		Value []StyleSummary `json:"value"`
	}
	if err := c.get(ctx, "style", "STYLE", query, &body); err != nil {
		return nil, err
	}
	if len(body.Value) == 0 {
		return nil, fmt.Errorf("%w: StyleId=%d", ErrStyleNotFound, styleID)
	}
	return &body.Value[0], nil
}

func (c *Client) entityURL(entity string) string {
	return fmt.Sprintf("%s/%s/FASHIONPLM/odata2/api/odata2/%s", c.baseURL, c.tenantID, entity)
}

func (c *Client) get(ctx context.Context, operation, entity string, query [][2]string, out any) (err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveFetch(operation, started, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	authHeader, err := c.auth.AuthorizationHeader(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.entityURL(entity)+"?"+encodeQuery(query), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("PLM request failed", slog.String("operation", operation), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
		c.logger.Error("PLM request returned an error status",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode),
			slog.String("body", statusErr.Body),
		)
		return fmt.Errorf("%w: %w", ErrFetchFailed, statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrFetchFailed, err)
	}
	return nil
}

// encodeQuery keeps OData system option names ($filter, $select) literal.
func encodeQuery(params [][2]string) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p[0]+"="+strings.ReplaceAll(url.QueryEscape(p[1]), "+", "%20"))
	}
	return strings.Join(parts, "&")
}
