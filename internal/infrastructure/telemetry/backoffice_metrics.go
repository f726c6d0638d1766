package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when NewBackofficeMetrics gets no meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys
var (
	AttrSyncKind   = attribute.Key("sync.kind")
	AttrSyncResult = attribute.Key("sync.result")
	AttrJobStatus  = attribute.Key("job.status")
	AttrProvider   = attribute.Key("provider")
	AttrOutcome    = attribute.Key("outcome")
	AttrChannel    = attribute.Key("channel")
	AttrStatus     = attribute.Key("status")
)

// BackofficeMetrics counts reconcile work, webhook deliveries, outbound
// messages and payout movements. A nil *BackofficeMetrics records nothing.
type BackofficeMetrics struct {
	syncItems         *Counter
	syncJobDuration   *Histogram
	webhookDeliveries *Counter
	messages          *Counter
	payoutTransitions *Counter
	payoutPaidCents   *Counter
}

// NewBackofficeMetrics registers every instrument on meter
func NewBackofficeMetrics(meter metric.Meter) (*BackofficeMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &BackofficeMetrics{}
	var err error
	if m.syncItems, err = NewCounter(meter, "ebd_sync_items_total",
		"Provider records reconciled, by kind and result", "{items}"); err != nil {
		return nil, err
	}
	if m.syncJobDuration, err = NewHistogram(meter, "ebd_sync_job_duration_seconds",
		"Wall time of reconcile jobs", "s", SyncDurationBuckets...); err != nil {
		return nil, err
	}
	if m.webhookDeliveries, err = NewCounter(meter, "ebd_webhook_deliveries_total",
		"Inbound provider notifications, by provider and outcome", "{deliveries}"); err != nil {
		return nil, err
	}
	if m.messages, err = NewCounter(meter, "ebd_messages_total",
		"Outbound email and WhatsApp messages, by channel and status", "{messages}"); err != nil {
		return nil, err
	}
	if m.payoutTransitions, err = NewCounter(meter, "ebd_payout_transitions_total",
		"Payout batch status changes, by target status", "{batches}"); err != nil {
		return nil, err
	}
	if m.payoutPaidCents, err = NewCounter(meter, "ebd_payout_paid_amount_total",
		"Commission and royalty paid out, in cents of BRL", "{centavos}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSyncPage counts the items of one reconcile page
func (m *BackofficeMetrics) RecordSyncPage(ctx context.Context, kind string, success, failed int) {
	if m == nil {
		return
	}
	if success > 0 {
		m.syncItems.Add(ctx, int64(success), AttrSyncKind.String(kind), AttrSyncResult.String("success"))
	}
	if failed > 0 {
		m.syncItems.Add(ctx, int64(failed), AttrSyncKind.String(kind), AttrSyncResult.String("failed"))
	}
}

// RecordSyncJob records how long a reconcile job ran and how it ended
func (m *BackofficeMetrics) RecordSyncJob(ctx context.Context, kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.syncJobDuration.RecordDuration(ctx, d, AttrSyncKind.String(kind), AttrJobStatus.String(status))
}

// RecordWebhook counts one delivery; outcome is processed, duplicate,
// ignored or rejected.
func (m *BackofficeMetrics) RecordWebhook(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.Inc(ctx, AttrProvider.String(provider), AttrOutcome.String(outcome))
}

// RecordMessage counts one send attempt
func (m *BackofficeMetrics) RecordMessage(ctx context.Context, channel, status string) {
	if m == nil {
		return
	}
	m.messages.Inc(ctx, AttrChannel.String(channel), AttrStatus.String(status))
}

// RecordPayoutTransition counts a batch status change; paid batches also
// add their total.
func (m *BackofficeMetrics) RecordPayoutTransition(ctx context.Context, status string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.payoutTransitions.Inc(ctx, AttrStatus.String(status))
	if status == "paid" {
		m.payoutPaidCents.Add(ctx, total.Shift(2).Round(0).IntPart())
	}
}
