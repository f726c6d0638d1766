package commission

import (
	"testing"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesFor(tenant, beneficiary uuid.UUID, totals ...string) []Sale {
	out := make([]Sale, 0, len(totals))
	for _, total := range totals {
		s := Sale{
			TenantEntity:    shared.NewTenantEntity(tenant),
			BeneficiaryID:   beneficiary,
			CommissionTotal: decimal.RequireFromString(total),
		}
		out = append(out, s)
	}
	return out
}

func TestNewPayoutBatch(t *testing.T) {
	tenant, seller := uuid.New(), uuid.New()

	t.Run("sums member sales", func(t *testing.T) {
		b, err := NewPayoutBatch(tenant, salesFor(tenant, seller, "10.50", "4.25"))
		require.NoError(t, err)
		assert.Equal(t, PayoutStatusPending, b.Status)
		assert.Len(t, b.SaleIDs, 2)
		assert.True(t, decimal.RequireFromString("14.75").Equal(b.Total))
	})

	t.Run("duplicate sale counted once", func(t *testing.T) {
		sales := salesFor(tenant, seller, "10")
		sales = append(sales, sales[0])
		b, err := NewPayoutBatch(tenant, sales)
		require.NoError(t, err)
		assert.Len(t, b.SaleIDs, 1)
		assert.True(t, decimal.NewFromInt(10).Equal(b.Total))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewPayoutBatch(tenant, nil)
		assert.ErrorIs(t, err, ErrEmptyPayout)
	})

	t.Run("mixed beneficiaries", func(t *testing.T) {
		sales := append(salesFor(tenant, seller, "1"), salesFor(tenant, uuid.New(), "2")...)
		_, err := NewPayoutBatch(tenant, sales)
		assert.ErrorIs(t, err, ErrMixedBeneficiaries)
	})

	t.Run("foreign tenant sale", func(t *testing.T) {
		_, err := NewPayoutBatch(tenant, salesFor(uuid.New(), seller, "1"))
		assert.ErrorIs(t, err, ErrSaleNotFound)
	})
}

func TestPayoutBatch_StateMachine(t *testing.T) {
	tenant, seller := uuid.New(), uuid.New()
	newBatch := func() *PayoutBatch {
		b, err := NewPayoutBatch(tenant, salesFor(tenant, seller, "10"))
		require.NoError(t, err)
		return b
	}

	t.Run("pending -> approved -> paid", func(t *testing.T) {
		b := newBatch()
		require.NoError(t, b.Approve())
		assert.NotNil(t, b.ApprovedAt)
		require.NoError(t, b.MarkPaid("PIX-123"))
		assert.Equal(t, PayoutStatusPaid, b.Status)
		assert.Equal(t, "PIX-123", b.Reference)
		assert.True(t, b.Status.IsTerminal())
	})

	t.Run("pending cannot be paid", func(t *testing.T) {
		b := newBatch()
		assert.ErrorIs(t, b.MarkPaid("x"), shared.ErrInvalidState)
	})

	t.Run("approved can be cancelled", func(t *testing.T) {
		b := newBatch()
		require.NoError(t, b.Approve())
		require.NoError(t, b.Cancel("duplicated request"))
		assert.Equal(t, PayoutStatusCancelled, b.Status)
		assert.False(t, b.Status.IsOpen())
	})

	t.Run("terminal states reject everything", func(t *testing.T) {
		b := newBatch()
		require.NoError(t, b.Cancel(""))
		assert.ErrorIs(t, b.Approve(), shared.ErrInvalidState)
		assert.ErrorIs(t, b.MarkPaid(""), shared.ErrInvalidState)
		assert.ErrorIs(t, b.Cancel(""), shared.ErrInvalidState)

		paid := newBatch()
		require.NoError(t, paid.Approve())
		require.NoError(t, paid.MarkPaid("ref"))
		assert.ErrorIs(t, paid.Cancel(""), shared.ErrInvalidState)
		assert.ErrorIs(t, paid.Approve(), shared.ErrInvalidState)
	})
}
