package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// OAuthConfig describes one provider's refresh-token endpoint
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// TokenManager hands out valid access tokens per tenant and provider,
// refreshing them through the provider's OAuth endpoint when they are within
// integration.RefreshBuffer of expiry. Refreshes for the same tenant and
// provider are serialized, so concurrent callers in one process refresh once.
type TokenManager struct {
	repo       integration.TokenRepository
	logger     *zap.Logger
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	configs map[integration.Provider]*oauth2.Config
	locks   map[string]*sync.Mutex
}

// TokenManagerOption configures a TokenManager
type TokenManagerOption func(*TokenManager)

// WithTokenHTTPClient sets the client used for token exchanges
func WithTokenHTTPClient(c *http.Client) TokenManagerOption {
	return func(m *TokenManager) {
		m.httpClient = c
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a token manager backed by repo
func NewTokenManager(repo integration.TokenRepository, logger *zap.Logger, opts ...TokenManagerOption) *TokenManager {
	m := &TokenManager{
		repo:       repo,
		logger:     logger.Named("token_manager"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		configs:    make(map[integration.Provider]*oauth2.Config),
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register enables refreshing for a provider. Client credentials travel in
// the Basic authorization header, as Bling requires.
func (m *TokenManager) Register(provider integration.Provider, cfg OAuthConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[provider] = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Connect stores an initial token pair for a tenant
func (m *TokenManager) Connect(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, accessToken, refreshToken string, expiresIn time.Duration) (*integration.ProviderToken, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, fmt.Errorf("%w: access and refresh tokens are required", integration.ErrPlatformAuthFailed)
	}
	lock := m.lockFor(tenantID, provider)
	lock.Lock()
	defer lock.Unlock()

	now := m.now().UTC()
	token := &integration.ProviderToken{
		TenantID:     tenantID,
		Provider:     provider,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(expiresIn),
		UpdatedAt:    now,
	}
	if err := m.repo.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// AccessToken returns a token valid for at least integration.RefreshBuffer
func (m *TokenManager) AccessToken(ctx context.Context, tenantID uuid.UUID, provider integration.Provider) (string, error) {
	return m.get(ctx, tenantID, provider, "")
}

// ForceRefresh exchanges the refresh token regardless of expiry, unless the
// stored access token is no longer the rejected one. Callers that got a 401
// with the same token queue on the tenant lock and the first one refreshes.
func (m *TokenManager) ForceRefresh(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, rejected string) (string, error) {
	return m.get(ctx, tenantID, provider, rejected)
}

// get returns a usable token. A non-empty rejected marks that access token
// as refused by the provider.
func (m *TokenManager) get(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, rejected string) (string, error) {
	lock := m.lockFor(tenantID, provider)
	lock.Lock()
	defer lock.Unlock()

	stored, err := m.repo.Find(ctx, tenantID, provider)
	if err != nil {
		return "", err
	}
	stale := rejected != "" && stored.AccessToken == rejected
	if !stale && !stored.NeedsRefresh(m.now()) {
		if rejected != "" {
			m.logger.Debug("token already rotated by another caller",
				zap.String("tenant_id", tenantID.String()),
				zap.String("provider", provider.String()))
		}
		return stored.AccessToken, nil
	}

	refreshed, err := m.refresh(ctx, stored)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// refresh exchanges the stored refresh token and persists the new pair
// before returning it. Caller holds the tenant+provider lock.
func (m *TokenManager) refresh(ctx context.Context, stored *integration.ProviderToken) (*integration.ProviderToken, error) {
	m.mu.Lock()
	cfg, ok := m.configs[stored.Provider]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no token endpoint for %s", integration.ErrProviderNotConfigured, stored.Provider)
	}

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	// An empty, expired token forces the source to use the refresh grant.
	src := cfg.TokenSource(exchangeCtx, &oauth2.Token{
		RefreshToken: stored.RefreshToken,
		Expiry:       time.Unix(1, 0),
	})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			m.logger.Warn("refresh token rejected",
				zap.String("tenant_id", stored.TenantID.String()),
				zap.String("provider", stored.Provider.String()),
				zap.Int("status", retrieveErr.Response.StatusCode),
				zap.String("error_code", retrieveErr.ErrorCode),
			)
			return nil, fmt.Errorf("%w: refresh rejected: %s", integration.ErrPlatformAuthFailed, retrieveErr.ErrorCode)
		}
		return nil, fmt.Errorf("%w: refresh: %v", integration.ErrPlatformUnavailable, err)
	}

	now := m.now().UTC()
	next := *stored
	next.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		next.ExpiresAt = tok.Expiry.UTC()
	} else {
		next.ExpiresAt = now.Add(time.Hour)
	}
	next.UpdatedAt = now

	if err := m.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save refreshed token: %w", err)
	}

	m.logger.Info("provider token refreshed",
		zap.String("tenant_id", stored.TenantID.String()),
		zap.String("provider", stored.Provider.String()),
		zap.Time("expires_at", next.ExpiresAt),
	)
	return &next, nil
}

func (m *TokenManager) lockFor(tenantID uuid.UUID, provider integration.Provider) *sync.Mutex {
	key := tenantID.String() + ":" + provider.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

var _ integration.TokenSource = (*TokenManager)(nil)
