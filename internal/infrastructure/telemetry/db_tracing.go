package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the GORM span plugin.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound variables in db.statement. Leave off outside dev:
	// CPF/CNPJ and e-mail addresses travel as query arguments.
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	DBSystem           string
	// TracerProvider overrides the global provider; tests use it.
	TracerProvider trace.TracerProvider
}

// DBTracing registers otelgorm plus a callback that tags slow or failed
// statements on the span otelgorm opened.
type DBTracing struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracing creates a DBTracing
func NewDBTracing(cfg DBTracingConfig, logger *zap.Logger) *DBTracing {
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracing{config: cfg, logger: logger}
}

type queryStartKey struct{}

// Register installs the plugin on db. It is a no-op when disabled.
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.config.Enabled {
		t.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(t.config.DBSystem)}
	if !t.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if t.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(t.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// The annotate hooks must run before otelgorm ends the span.
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("ebd:before_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("ebd:before_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("ebd:before_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("ebd:before_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("ebd:before_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("ebd:before_raw", markQueryStart),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("ebd:after_create", t.annotate),
		cb.Query().After("gorm:query").Before("otel:after:query").Register("ebd:after_query", t.annotate),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("ebd:after_update", t.annotate),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("ebd:after_delete", t.annotate),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("ebd:after_row", t.annotate),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("ebd:after_raw", t.annotate),
	)
	if err != nil {
		return err
	}

	t.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", t.config.LogFullSQL),
		zap.Duration("slow_query_threshold", t.config.SlowQueryThreshold),
		zap.String("db_system", t.config.DBSystem),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *DBTracing) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > t.config.SlowQueryThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", t.config.SlowQueryThreshold.Milliseconds()),
		))
	}
}
