package integration

import (
	"context"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// blingTokenLifetime is what Bling grants an access token
const blingTokenLifetime = 6 * time.Hour

// TokenConnector stores an initial OAuth token pair
type TokenConnector interface {
	Connect(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, accessToken, refreshToken string, expiresIn time.Duration) (*integration.ProviderToken, error)
}

// ConnectionService links tenants to OAuth providers
type ConnectionService struct {
	tokens TokenConnector
	logger *zap.Logger
}

// NewConnectionService creates a ConnectionService
func NewConnectionService(tokens TokenConnector, logger *zap.Logger) *ConnectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{tokens: tokens, logger: logger.Named("connection")}
}

// ConnectBling stores the token pair from the Bling consent flow
func (s *ConnectionService) ConnectBling(ctx context.Context, tenantID uuid.UUID, in ConnectInput) (*Connection, error) {
	if s.tokens == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	lifetime := blingTokenLifetime
	if in.ExpiresIn > 0 {
		lifetime = time.Duration(in.ExpiresIn) * time.Second
	}
	token, err := s.tokens.Connect(ctx, tenantID, integration.ProviderBling, in.AccessToken, in.RefreshToken, lifetime)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bling connected",
		zap.String("tenant_id", tenantID.String()),
		zap.Time("expires_at", token.ExpiresAt))
	return &Connection{Provider: token.Provider, ExpiresAt: token.ExpiresAt}, nil
}
