package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
)

func TestGormMessageLogRepository(t *testing.T) {
	repo := NewGormMessageLogRepository(newSQLiteDB(t))
	ctx := context.Background()

	msg, err := messaging.NewMessageLog(uuid.New(), messaging.ChannelEmail, "ana@igreja.org", "order_confirmation", "Pedido #1001")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, msg))

	msg.MarkSent("re_123")
	msg.RecordOpen(time.Now().UTC())
	msg.RecordClick(time.Now().UTC(), "https://loja.example/pedido")
	require.NoError(t, repo.Update(ctx, msg))

	got, err := repo.FindByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, messaging.StatusSent, got.Status)
	assert.Equal(t, "re_123", got.ProviderID)
	assert.Equal(t, 1, got.OpenCount)
	assert.Equal(t, 1, got.ClickCount)
	assert.NotNil(t, got.OpenedAt)
	assert.Equal(t, "https://loja.example/pedido", got.LastClicked)
	assert.Equal(t, msg.TenantID, got.TenantID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, messaging.ErrMessageNotFound)

	failed, err := messaging.NewMessageLog(uuid.New(), messaging.ChannelWhatsApp, "5511999999999", "", "")
	require.NoError(t, err)
	failed.MarkFailed(errors.New("boom"))
	assert.ErrorIs(t, repo.Update(ctx, failed), messaging.ErrMessageNotFound)
}
