package plm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/range-tracker/pkg/metrics"
)

// TokenConfig holds the OAuth2 password-grant settings for the ION API.
type TokenConfig struct {
	TokenURL     string
	RevokeURL    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// Margin is how long before expiry a token is treated as stale.
	Margin time.Duration
	// DefaultTTL applies when neither expires_in nor a JWT exp claim is present.
	DefaultTTL time.Duration
}

// TokenManager caches one access token and refreshes it at most once at a time.
type TokenManager struct {
	cfg    TokenConfig
	oauth  oauth2.Config
	store  TokenStore
	http   *http.Client
	group  singleflight.Group
	logger *slog.Logger

	metrics *metrics.Metrics
	now     func() time.Time
}

// NewTokenManager builds a manager. A nil store keeps the token in memory.
func NewTokenManager(cfg TokenConfig, store TokenStore, httpClient *http.Client, logger *slog.Logger, m *metrics.Metrics) *TokenManager {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Margin <= 0 {
		cfg.Margin = 5 * time.Minute
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}

	return &TokenManager{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:   store,
		http:    httpClient,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// AccessToken returns a token valid for at least the configured margin.
// Concurrent callers that find the cache stale share one token request.
func (m *TokenManager) AccessToken(ctx context.Context) (*Token, error) {
	tok, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("token store read failed, requesting a new token", slog.Any("error", err))
	}
	if tok.validFor(m.now(), m.cfg.Margin) {
		return tok, nil
	}

	// The shared request must not die with the first caller's context.
	ch := m.group.DoChan("refresh", func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Token), nil
	}
}

// AuthorizationHeader implements Authorizer.
func (m *TokenManager) AuthorizationHeader(ctx context.Context) (string, error) {
	tok, err := m.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.Header(), nil
}

// Refresh discards the cached token and obtains a new one.
func (m *TokenManager) Refresh(ctx context.Context) (*Token, error) {
	if err := m.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("%w: clear cached token: %w", ErrTokenUnavailable, err)
	}
	return m.AccessToken(ctx)
}

// Info describes the cached token. It never returns the token itself.
func (m *TokenManager) Info(ctx context.Context) (TokenInfo, error) {
	tok, err := m.store.Load(ctx)
	if err != nil {
		return TokenInfo{}, err
	}
	if tok == nil || tok.AccessToken == "" {
		return TokenInfo{}, nil
	}

	expiry := tok.Expiry
	return TokenInfo{
		HasToken:   true,
		IsValid:    tok.validFor(m.now(), m.cfg.Margin),
		ExpiryTime: &expiry,
		TokenType:  tok.TokenType,
	}, nil
}

// Revoke asks the provider to revoke the cached token and clears the cache.
// The cache is cleared even when the provider call fails.
func (m *TokenManager) Revoke(ctx context.Context) error {
	tok, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	var revokeErr error
	if tok != nil && tok.AccessToken != "" {
		revokeErr = m.revokeRemote(ctx, tok.AccessToken)
	}

	if err := m.store.Clear(ctx); err != nil {
		return errors.Join(revokeErr, err)
	}
	if revokeErr != nil {
		m.logger.Error("token revocation failed", slog.Any("error", revokeErr))
		return revokeErr
	}

	m.logger.Info("access token revoked")
	return nil
}

func (m *TokenManager) revokeRemote(ctx context.Context, accessToken string) error {
	form := url.Values{
		"token":           {accessToken},
		"token_type_hint": {"access_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(m.cfg.ClientID, m.cfg.ClientSecret)

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w", ErrTokenUnavailable, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	return nil
}

func (m *TokenManager) refresh(ctx context.Context) (*Token, error) {
	if locker, ok := m.store.(RefreshLocker); ok {
		unlock, err := locker.LockRefresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release token refresh lock", slog.Any("error", err))
			}
		}()
	}

	// A previous flight or another replica may have refreshed already.
	if cached, err := m.store.Load(ctx); err == nil && cached.validFor(m.now(), m.cfg.Margin) {
		return cached, nil
	}

	m.logger.Info("requesting new PLM access token")

	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, m.http)
	raw, err := m.oauth.PasswordCredentialsToken(oauthCtx, m.cfg.Username, m.cfg.Password)
	m.metrics.IncTokenRefresh(err)
	if err != nil {
		m.logger.Error("token request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}

	tok := &Token{
		AccessToken: raw.AccessToken,
		TokenType:   raw.TokenType,
		Expiry:      m.expiryOf(raw),
	}
	if err := m.store.Save(ctx, tok); err != nil {
		m.logger.Warn("failed to persist access token", slog.Any("error", err))
	}

	m.logger.Info("PLM access token obtained", slog.Time("expiry", tok.Expiry))
	return tok, nil
}

// expiryOf prefers expires_in, then the JWT exp claim, then the default lifetime.
func (m *TokenManager) expiryOf(raw *oauth2.Token) time.Time {
	if !raw.Expiry.IsZero() {
		return raw.Expiry
	}
	if exp, ok := jwtExpiry(raw.AccessToken); ok {
		return exp
	}
	return m.now().Add(m.cfg.DefaultTTL)
}

func jwtExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
