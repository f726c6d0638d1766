package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

func TestGormERPOrderRepository_UpsertIsIdempotent(t *testing.T) {
	repo := NewGormERPOrderRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	remote := integration.RemoteOrder{
		ExternalID: "101", Number: "55", ProviderStatus: "em_aberto",
		State: integration.SyncStatePending, Total: decimal.RequireFromString("150.90"),
	}
	order, err := integration.NewERPOrder(tenantID, integration.ProviderBling, remote)
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, order))
	require.NoError(t, repo.Upsert(ctx, order))

	remote.State = integration.SyncStateApproved
	remote.ProviderStatus = "atendido"
	order.Apply(remote)
	require.NoError(t, repo.Upsert(ctx, order))

	orders, total, err := repo.FindAll(ctx, tenantID, integration.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, integration.SyncStateApproved, orders[0].State)
	assert.Equal(t, "atendido", orders[0].ProviderStatus)

	// same external id under another provider is a different row
	shop, err := integration.NewERPOrder(tenantID, integration.ProviderShopify, remote)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, shop))

	_, total, err = repo.FindAll(ctx, tenantID, integration.OrderFilter{Provider: integration.ProviderShopify})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	got, err := repo.FindByExternalID(ctx, tenantID, integration.ProviderBling, "101")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("150.90").Equal(got.Total))

	_, err = repo.FindByExternalID(ctx, tenantID, integration.ProviderBling, "999")
	assert.ErrorIs(t, err, integration.ErrOrderNotFound)
}

func TestGormInvoiceRepository_Upsert(t *testing.T) {
	repo := NewGormInvoiceRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	inv, err := integration.NewInvoice(tenantID, integration.ProviderBling, integration.RemoteInvoice{
		ExternalID: "9001", Number: "123", Series: "1",
		State: integration.SyncStateAuthorized, XMLURL: "https://bling/xml/9001",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, inv))

	inv.ArchiveKey = inv.ArchivePath()
	require.NoError(t, repo.Upsert(ctx, inv))

	got, err := repo.FindByExternalID(ctx, tenantID, integration.ProviderBling, "9001")
	require.NoError(t, err)
	assert.Equal(t, inv.ArchivePath(), got.ArchiveKey)
	assert.False(t, got.NeedsArchive())

	_, err = repo.FindByExternalID(ctx, uuid.New(), integration.ProviderBling, "9001")
	assert.ErrorIs(t, err, integration.ErrInvoiceNotFound)
}

func TestGormPaymentRepository_ListOpen(t *testing.T) {
	repo := NewGormPaymentRepository(newSQLiteDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	states := []integration.SyncState{
		integration.SyncStatePending,
		integration.SyncStateApproved,
		integration.SyncStateProcessing,
		integration.SyncStateError,
		integration.SyncStateRejected,
	}
	for i, st := range states {
		p, err := integration.NewPaymentRecord(tenantID, integration.ProviderMercadoPago, integration.RemotePayment{
			ExternalID: uuid.NewString(), State: st, Amount: decimal.NewFromInt(int64(i + 1)),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, p))
	}

	open, total, err := repo.ListOpen(ctx, tenantID, integration.ProviderMercadoPago, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, open, 2)

	rest, _, err := repo.ListOpen(ctx, tenantID, integration.ProviderMercadoPago, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	for _, p := range append(open, rest...) {
		assert.False(t, p.State.IsTerminal())
	}
}
