package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/scheduler"
)

var _ scheduler.PageSyncer = (*ReconcileService)(nil)

type reconcileFixture struct {
	erp      *mockERP
	payments *mockPayments
	orders   *fakeOrderRepo
	invoices *fakeInvoiceRepo
	pays     *fakePaymentRepo
	storage  *fakeStorage
	svc      *ReconcileService
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		erp:      new(mockERP),
		payments: new(mockPayments),
		orders:   newFakeOrderRepo(),
		invoices: newFakeInvoiceRepo(),
		pays:     newFakePaymentRepo(),
		storage:  &fakeStorage{},
	}
	f.svc = NewReconcileService(ReconcileConfig{
		ERP:         f.erp,
		Payments:    f.payments,
		Orders:      f.orders,
		Invoices:    f.invoices,
		PaymentRepo: f.pays,
		Archive:     f.storage,
		Signer:      fakeSigner{},
	})
	return f
}

func remoteOrder(id string, state integration.SyncState) *integration.RemoteOrder {
	return &integration.RemoteOrder{
		ExternalID:     id,
		Number:         "PV-" + id,
		ProviderStatus: string(state),
		State:          state,
		CustomerName:   "Igreja Batista Central",
		Total:          decimal.RequireFromString("150.00"),
	}
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func TestSyncOrders_PartialFailure(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()

	f.erp.On("ListSalesOrders", mock.Anything, tenantID, mock.Anything).Return(&integration.OrderPage{
		Orders:  []integration.RemoteOrder{{ExternalID: "1"}, {ExternalID: "2"}, {ExternalID: "3"}},
		HasMore: true,
	}, nil)
	f.erp.On("GetSalesOrder", mock.Anything, tenantID, "1").Return(remoteOrder("1", integration.SyncStateProcessing), nil)
	f.erp.On("GetSalesOrder", mock.Anything, tenantID, "2").Return(nil, integration.ErrPlatformUnavailable)
	f.erp.On("GetSalesOrder", mock.Anything, tenantID, "3").Return(remoteOrder("3", integration.SyncStateApproved), nil)

	result, err := f.svc.SyncOrders(context.Background(), tenantID, integration.PageRequest{})
	require.NoError(t, err)

	assert.Equal(t, integration.SyncStatusPartial, result.Status)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.FailedItems, 1)
	assert.Equal(t, "2", result.FailedItems[0].ExternalID)
	assert.True(t, result.HasMore)
	assert.Equal(t, "2", result.NextCursor)
	assert.Equal(t, int64(-1), result.Remaining)

	_, ok := f.orders.get(tenantID, integration.ProviderBling, "1")
	assert.True(t, ok)
	_, ok = f.orders.get(tenantID, integration.ProviderBling, "2")
	assert.False(t, ok)
}

func TestSyncOrders_LastPageHasNoCursor(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()

	f.erp.On("ListSalesOrders", mock.Anything, tenantID, integration.PageRequest{Cursor: "4", Limit: integration.DefaultPageSize}).
		Return(&integration.OrderPage{}, nil)

	result, err := f.svc.SyncOrders(context.Background(), tenantID, integration.PageRequest{Cursor: "4"})
	require.NoError(t, err)
	assert.False(t, result.HasMore)
	assert.Empty(t, result.NextCursor)
	assert.Equal(t, integration.SyncStatusSuccess, result.Status)
}

func TestSyncOrders_ListErrorIsPageError(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()
	f.erp.On("ListSalesOrders", mock.Anything, tenantID, mock.Anything).Return(nil, integration.ErrPlatformAuthFailed)

	result, err := f.svc.SyncOrders(context.Background(), tenantID, integration.PageRequest{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, integration.ErrPlatformAuthFailed)
}

func TestSyncOrders_IdempotentUpsert(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()
	f.erp.On("ListSalesOrders", mock.Anything, tenantID, mock.Anything).Return(&integration.OrderPage{
		Orders: []integration.RemoteOrder{{ExternalID: "10"}},
	}, nil)
	f.erp.On("GetSalesOrder", mock.Anything, tenantID, "10").Return(remoteOrder("10", integration.SyncStateProcessing), nil)

	for range 2 {
		_, err := f.svc.SyncOrders(context.Background(), tenantID, integration.PageRequest{})
		require.NoError(t, err)
	}

	all, total, err := f.orders.FindAll(context.Background(), tenantID, integration.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "PV-10", all[0].Number)
}

func TestSyncOrders_TerminalStateNotDowngraded(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()

	existing, err := integration.NewERPOrder(tenantID, integration.ProviderBling, *remoteOrder("7", integration.SyncStateApproved))
	require.NoError(t, err)
	require.NoError(t, f.orders.Upsert(context.Background(), existing))

	f.erp.On("ListSalesOrders", mock.Anything, tenantID, mock.Anything).Return(&integration.OrderPage{
		Orders: []integration.RemoteOrder{{ExternalID: "7"}},
	}, nil)
	f.erp.On("GetSalesOrder", mock.Anything, tenantID, "7").Return(remoteOrder("7", integration.SyncStatePending), nil)

	_, err = f.svc.SyncOrders(context.Background(), tenantID, integration.PageRequest{})
	require.NoError(t, err)

	stored, ok := f.orders.get(tenantID, integration.ProviderBling, "7")
	require.True(t, ok)
	assert.Equal(t, integration.SyncStateApproved, stored.State)
	assert.Equal(t, "pending", stored.ProviderStatus)
}

func TestSyncOrders_FailureMarksExistingOrder(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()

	existing, err := integration.NewERPOrder(tenantID, integration.ProviderBling, *remoteOrder("8", integration.SyncStateProcessing))
	require.NoError(t, err)
	require.NoError(t, f.orders.Upsert(context.Background(), existing))

	f.erp.On("ListSalesOrders", mock.Anything, tenantID, mock.Anything).Return(&integration.OrderPage{
		Orders: []integration.RemoteOrder{{ExternalID: "8"}},
	}, nil)
	f.erp.On("GetSalesOrder", mock.Anything, tenantID, "8").Return(nil, integration.ErrPlatformUnavailable)

	result, err := f.svc.SyncOrders(context.Background(), tenantID, integration.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatusFailed, result.Status)

	stored, _ := f.orders.get(tenantID, integration.ProviderBling, "8")
	assert.Equal(t, integration.SyncStateError, stored.State)
	assert.Contains(t, stored.LastError, "unavailable")
}

func TestSyncOrders_NotConfigured(t *testing.T) {
	svc := NewReconcileService(ReconcileConfig{Orders: newFakeOrderRepo()})
	_, err := svc.SyncOrders(context.Background(), uuid.New(), integration.PageRequest{})
	assert.ErrorIs(t, err, integration.ErrProviderNotConfigured)
}

func TestListOrders_ClampsLimit(t *testing.T) {
	f := newReconcileFixture()
	list, err := f.svc.ListOrders(context.Background(), uuid.New(), integration.OrderFilter{Offset: -3, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Offset)
	assert.Equal(t, integration.MaxPageSize, list.Limit)
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

func authorizedInvoice(id string) *integration.RemoteInvoice {
	return &integration.RemoteInvoice{
		ExternalID: id,
		Number:     "000123",
		Series:     "1",
		State:      integration.SyncStateAuthorized,
		Total:      decimal.RequireFromString("89.90"),
		XMLURL:     "https://bling.example/nfe/" + id + ".xml",
	}
}

func TestSyncInvoices_ArchivesAuthorizedXML(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()
	xml := []byte("<nfeProc/>")

	f.erp.On("ListInvoices", mock.Anything, tenantID, mock.Anything).Return(&integration.InvoicePage{
		Invoices: []integration.RemoteInvoice{{ExternalID: "55"}},
	}, nil)
	f.erp.On("GetInvoice", mock.Anything, tenantID, "55").Return(authorizedInvoice("55"), nil)
	f.erp.On("DownloadInvoiceXML", mock.Anything, tenantID, "https://bling.example/nfe/55.xml").Return(xml, nil).Once()

	result, err := f.svc.SyncInvoices(context.Background(), tenantID, integration.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	wantKey := "nfe/" + tenantID.String() + "/000123.xml"
	assert.Equal(t, xml, f.storage.objects[wantKey])
	inv, err := f.invoices.FindByExternalID(context.Background(), tenantID, integration.ProviderBling, "55")
	require.NoError(t, err)
	assert.Equal(t, wantKey, inv.ArchiveKey)

	// a second pass finds it archived and does not download again
	_, err = f.svc.SyncInvoices(context.Background(), tenantID, integration.PageRequest{})
	require.NoError(t, err)
	f.erp.AssertNumberOfCalls(t, "DownloadInvoiceXML", 1)
}

func TestSyncInvoices_ArchiveFailureIsItemFailure(t *testing.T) {
	f := newReconcileFixture()
	f.storage.err = errUpstream
	tenantID := uuid.New()

	f.erp.On("ListInvoices", mock.Anything, tenantID, mock.Anything).Return(&integration.InvoicePage{
		Invoices: []integration.RemoteInvoice{{ExternalID: "56"}},
	}, nil)
	f.erp.On("GetInvoice", mock.Anything, tenantID, "56").Return(authorizedInvoice("56"), nil)
	f.erp.On("DownloadInvoiceXML", mock.Anything, tenantID, mock.Anything).Return([]byte("<x/>"), nil)

	result, err := f.svc.SyncInvoices(context.Background(), tenantID, integration.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedCount)

	inv, err := f.invoices.FindByExternalID(context.Background(), tenantID, integration.ProviderBling, "56")
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStateAuthorized, inv.State)
	assert.Empty(t, inv.ArchiveKey)
	assert.NotEmpty(t, inv.LastError)
	assert.True(t, inv.NeedsArchive())
}

func TestInvoiceDownloadURL(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	pending, err := integration.NewInvoice(tenantID, integration.ProviderBling, *authorizedInvoice("60"))
	require.NoError(t, err)
	require.NoError(t, f.invoices.Upsert(ctx, pending))

	_, err = f.svc.InvoiceDownloadURL(ctx, tenantID, "60")
	assert.ErrorIs(t, err, integration.ErrInvoiceNotFound)

	pending.ArchiveKey = pending.ArchivePath()
	require.NoError(t, f.invoices.Upsert(ctx, pending))

	dl, err := f.svc.InvoiceDownloadURL(ctx, tenantID, "60")
	require.NoError(t, err)
	assert.Contains(t, dl.URL, pending.ArchiveKey)
	assert.True(t, dl.ExpiresAt.After(pending.SyncedAt))

	_, err = f.svc.InvoiceDownloadURL(ctx, tenantID, "missing")
	assert.ErrorIs(t, err, integration.ErrInvoiceNotFound)
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

func openPayment(t *testing.T, tenantID uuid.UUID, id string) integration.PaymentRecord {
	t.Helper()
	p, err := integration.NewPaymentRecord(tenantID, integration.ProviderMercadoPago, integration.RemotePayment{
		ExternalID:     id,
		ProviderStatus: "pending",
		State:          integration.SyncStatePending,
		Amount:         decimal.RequireFromString("42.00"),
	})
	require.NoError(t, err)
	return *p
}

func TestSyncPayments_AdvancesPastStillOpen(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()
	f.pays.open = []integration.PaymentRecord{
		openPayment(t, tenantID, "p1"),
		openPayment(t, tenantID, "p2"),
		openPayment(t, tenantID, "p3"),
	}
	f.pays.total = 5

	f.payments.On("GetPayment", mock.Anything, tenantID, "p1").Return(&integration.RemotePayment{
		ExternalID: "p1", ProviderStatus: "approved", State: integration.SyncStateApproved, Amount: decimal.NewFromInt(42),
	}, nil)
	f.payments.On("GetPayment", mock.Anything, tenantID, "p2").Return(&integration.RemotePayment{
		ExternalID: "p2", ProviderStatus: "in_process", State: integration.SyncStateProcessing, Amount: decimal.NewFromInt(42),
	}, nil)
	f.payments.On("GetPayment", mock.Anything, tenantID, "p3").Return(nil, integration.ErrPlatformRequestFailed)

	result, err := f.svc.SyncPayments(context.Background(), tenantID, integration.PageRequest{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.True(t, result.HasMore)
	assert.Equal(t, int64(2), result.Remaining)
	// p1 left the open set, p2 and p3 did not
	assert.Equal(t, "2", result.NextCursor)

	p1, err := f.pays.FindByExternalID(context.Background(), tenantID, integration.ProviderMercadoPago, "p1")
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStateApproved, p1.State)
	p3, err := f.pays.FindByExternalID(context.Background(), tenantID, integration.ProviderMercadoPago, "p3")
	require.NoError(t, err)
	assert.NotEmpty(t, p3.LastError)
}

func TestSyncPayment_CreatesThenUpdates(t *testing.T) {
	f := newReconcileFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	f.payments.On("GetPayment", mock.Anything, tenantID, "900").Return(&integration.RemotePayment{
		ExternalID: "900", ExternalReference: "sale-1", ProviderStatus: "pending", State: integration.SyncStatePending,
	}, nil).Once()
	f.payments.On("GetPayment", mock.Anything, tenantID, "900").Return(&integration.RemotePayment{
		ExternalID: "900", ProviderStatus: "approved", State: integration.SyncStateApproved,
	}, nil).Once()

	p, err := f.svc.SyncPayment(ctx, tenantID, "900")
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStatePending, p.State)

	p, err = f.svc.SyncPayment(ctx, tenantID, "900")
	require.NoError(t, err)
	assert.Equal(t, integration.SyncStateApproved, p.State)
	assert.Equal(t, "sale-1", p.ExternalReference)
	assert.Len(t, f.pays.rows, 1)
}

func TestSyncPayment_Validation(t *testing.T) {
	f := newReconcileFixture()
	_, err := f.svc.SyncPayment(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, integration.ErrMissingExternalID)

	svc := NewReconcileService(ReconcileConfig{PaymentRepo: newFakePaymentRepo()})
	_, err = svc.SyncPayment(context.Background(), uuid.New(), "1")
	assert.ErrorIs(t, err, integration.ErrProviderNotConfigured)
}
