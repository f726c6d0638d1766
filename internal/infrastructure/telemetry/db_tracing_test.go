package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/telemetry"
)

type payoutRow struct {
	ID     uint `gorm:"primaryKey"`
	Status string
}

func (payoutRow) TableName() string { return "payout_batches" }

func newTracedDB(t *testing.T, cfg telemetry.DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&payoutRow{}))

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg.DBSystem = "sqlite"
	cfg.TracerProvider = tp
	require.NoError(t, telemetry.NewDBTracing(cfg, zap.NewNop()).Register(db))
	return db, recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]any {
	out := map[string]any{}
	for _, kv := range s.Attributes() {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestDBTracing_Disabled(t *testing.T) {
	db, recorder := newTracedDB(t, telemetry.DBTracingConfig{Enabled: false})

	require.NoError(t, db.Create(&payoutRow{Status: "pending"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestDBTracing_SpansCarryTable(t *testing.T) {
	db, recorder := newTracedDB(t, telemetry.DBTracingConfig{Enabled: true, SlowQueryThreshold: time.Hour})

	require.NoError(t, db.WithContext(context.Background()).Create(&payoutRow{Status: "approved"}).Error)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	attrs := spanAttrs(spans[len(spans)-1])
	assert.Equal(t, "payout_batches", attrs["db.sql.table"])
	assert.Equal(t, int64(1), attrs["db.rows_affected"])
	assert.NotContains(t, attrs, "db.slow_query")
}

func TestDBTracing_FlagsSlowQueries(t *testing.T) {
	db, recorder := newTracedDB(t, telemetry.DBTracingConfig{Enabled: true, SlowQueryThreshold: time.Nanosecond})

	var rows []payoutRow
	require.NoError(t, db.WithContext(context.Background()).Where("status = ?", "paid").Find(&rows).Error)

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	attrs := spanAttrs(spans[len(spans)-1])
	assert.Equal(t, true, attrs["db.slow_query"])
}
