package integration

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Gateway mocks
// ---------------------------------------------------------------------------

type mockERP struct{ mock.Mock }

func (m *mockERP) ListSalesOrders(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.OrderPage, error) {
	args := m.Called(ctx, tenantID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.OrderPage), args.Error(1)
}

func (m *mockERP) GetSalesOrder(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.RemoteOrder, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteOrder), args.Error(1)
}

func (m *mockERP) CreateSalesOrder(ctx context.Context, tenantID uuid.UUID, order integration.RemoteOrder, contactID string) (string, error) {
	args := m.Called(ctx, tenantID, order, contactID)
	return args.String(0), args.Error(1)
}

func (m *mockERP) ListInvoices(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.InvoicePage, error) {
	args := m.Called(ctx, tenantID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.InvoicePage), args.Error(1)
}

func (m *mockERP) GetInvoice(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.RemoteInvoice, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteInvoice), args.Error(1)
}

func (m *mockERP) FindContactByDocument(ctx context.Context, tenantID uuid.UUID, document string) (*integration.Contact, error) {
	args := m.Called(ctx, tenantID, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Contact), args.Error(1)
}

func (m *mockERP) CreateContact(ctx context.Context, tenantID uuid.UUID, contact integration.Contact) (string, error) {
	args := m.Called(ctx, tenantID, contact)
	return args.String(0), args.Error(1)
}

func (m *mockERP) DownloadInvoiceXML(ctx context.Context, tenantID uuid.UUID, xmlURL string) ([]byte, error) {
	args := m.Called(ctx, tenantID, xmlURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) GetPayment(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.RemotePayment, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemotePayment), args.Error(1)
}

func (m *mockPayments) CreatePreference(ctx context.Context, tenantID uuid.UUID, req integration.PreferenceRequest) (*integration.Preference, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Preference), args.Error(1)
}

type mockCommerce struct{ mock.Mock }

func (m *mockCommerce) GetOrder(ctx context.Context, tenantID uuid.UUID, orderID string) (*integration.RemoteOrder, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteOrder), args.Error(1)
}

func (m *mockCommerce) ListFulfillments(ctx context.Context, tenantID uuid.UUID, orderID string) ([]integration.Fulfillment, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Get(0).([]integration.Fulfillment), args.Error(1)
}

func (m *mockCommerce) GetMetafields(ctx context.Context, tenantID uuid.UUID, ownerResource, ownerID string) ([]integration.Metafield, error) {
	args := m.Called(ctx, tenantID, ownerResource, ownerID)
	return args.Get(0).([]integration.Metafield), args.Error(1)
}

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

func key(tenantID uuid.UUID, provider integration.Provider, externalID string) string {
	return tenantID.String() + "/" + string(provider) + "/" + externalID
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	rows    map[string]integration.ERPOrder
	upserts int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{rows: map[string]integration.ERPOrder{}}
}

func (r *fakeOrderRepo) FindByExternalID(_ context.Context, tenantID uuid.UUID, provider integration.Provider, externalID string) (*integration.ERPOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[key(tenantID, provider, externalID)]
	if !ok {
		return nil, integration.ErrOrderNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter integration.OrderFilter) ([]integration.ERPOrder, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []integration.ERPOrder
	for _, o := range r.rows {
		if o.TenantID == tenantID && (filter.Provider == "" || o.Provider == filter.Provider) {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Upsert(_ context.Context, order *integration.ERPOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.rows[key(order.TenantID, order.Provider, order.ExternalID)] = *order
	return nil
}

func (r *fakeOrderRepo) get(tenantID uuid.UUID, provider integration.Provider, externalID string) (integration.ERPOrder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[key(tenantID, provider, externalID)]
	return o, ok
}

type fakeInvoiceRepo struct {
	rows map[string]integration.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{rows: map[string]integration.Invoice{}}
}

func (r *fakeInvoiceRepo) FindByExternalID(_ context.Context, tenantID uuid.UUID, provider integration.Provider, externalID string) (*integration.Invoice, error) {
	inv, ok := r.rows[key(tenantID, provider, externalID)]
	if !ok {
		return nil, integration.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (r *fakeInvoiceRepo) Upsert(_ context.Context, inv *integration.Invoice) error {
	r.rows[key(inv.TenantID, inv.Provider, inv.ExternalID)] = *inv
	return nil
}

type fakePaymentRepo struct {
	open  []integration.PaymentRecord
	total int64
	rows  map[string]integration.PaymentRecord
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{rows: map[string]integration.PaymentRecord{}}
}

func (r *fakePaymentRepo) FindByExternalID(_ context.Context, tenantID uuid.UUID, provider integration.Provider, externalID string) (*integration.PaymentRecord, error) {
	p, ok := r.rows[key(tenantID, provider, externalID)]
	if !ok {
		return nil, integration.ErrPaymentNotFound
	}
	return &p, nil
}

func (r *fakePaymentRepo) ListOpen(_ context.Context, _ uuid.UUID, _ integration.Provider, _, _ int) ([]integration.PaymentRecord, int64, error) {
	out := make([]integration.PaymentRecord, len(r.open))
	copy(out, r.open)
	return out, r.total, nil
}

func (r *fakePaymentRepo) Upsert(_ context.Context, p *integration.PaymentRecord) error {
	r.rows[key(p.TenantID, p.Provider, p.ExternalID)] = *p
	return nil
}

// ---------------------------------------------------------------------------
// Storage and idempotency
// ---------------------------------------------------------------------------

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if s.err != nil {
		return s.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return nil
}

type fakeSigner struct{}

func (fakeSigner) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://files.example.com/" + key + "?sig=x", time.Now().Add(expiresIn), nil
}

type fakeIdempotency struct {
	seen      map[string]bool
	forgotten []string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{seen: map[string]bool{}}
}

func (s *fakeIdempotency) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	if s.seen[id] {
		return false, nil
	}
	s.seen[id] = true
	return true, nil
}

func (s *fakeIdempotency) Forget(_ context.Context, id string) error {
	delete(s.seen, id)
	s.forgotten = append(s.forgotten, id)
	return nil
}

func (s *fakeIdempotency) IsProcessed(_ context.Context, id string) (bool, error) {
	return s.seen[id], nil
}

func (s *fakeIdempotency) Close() error { return nil }

var errUpstream = errors.New("upstream exploded")
