package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestRegisterOtelGorm_Disabled(t *testing.T) {
	db := newTestDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zaptest.NewLogger(t))

	require.NoError(t, plugin.RegisterOtelGorm(db))

	// Disabled tracing must not install any callbacks
	assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
}

func TestRegisterOtelGorm_Enabled(t *testing.T) {
	db := newTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zaptest.NewLogger(t))

	require.NoError(t, plugin.RegisterOtelGorm(db))

	assert.NotNil(t, db.Callback().Create().Get("otel_timing:before_create"))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:before_query"))
	assert.NotNil(t, db.Callback().Create().Get("otel_slow_query:create"))
	assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))
	assert.NotNil(t, db.Callback().Update().Get("otel_slow_query:update"))
	assert.NotNil(t, db.Callback().Delete().Get("otel_slow_query:delete"))
	assert.NotNil(t, db.Callback().Row().Get("otel_slow_query:row"))
	assert.NotNil(t, db.Callback().Raw().Get("otel_slow_query:raw"))
}

func TestRegisterOtelGorm_QueriesStillWork(t *testing.T) {
	type receiptLog struct {
		ID  uint `gorm:"primarykey"`
		Key string
	}

	db := newTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(db))

	require.NoError(t, db.AutoMigrate(&receiptLog{}))
	require.NoError(t, db.Create(&receiptLog{Key: "receipts/2026/08/VST-20260828-0042.pdf"}).Error)

	var got receiptLog
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "receipts/2026/08/VST-20260828-0042.pdf", got.Key)
}

func TestSlowQueryCallback_AnnotatesSpan(t *testing.T) {
	recorder := setupTestTracer(t)

	db := newTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = 1 * time.Nanosecond
	plugin := NewDBTracingPlugin(cfg, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(db))

	type probe struct {
		ID uint `gorm:"primarykey"`
	}
	require.NoError(t, db.AutoMigrate(&probe{}))

	ctx, span := StartSpan(t.Context(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&probe{}).Error)
	span.End()

	var slowEvents int
	for _, ended := range recorder.Ended() {
		for _, ev := range ended.Events() {
			if ev.Name == "slow_query_warning" {
				slowEvents++
			}
		}
	}
	assert.Greater(t, slowEvents, 0)
}
