package configs

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormLogger "gorm.io/gorm/logger"
)

// unset: hapus ENV selama tes (dipulihkan oleh t.Setenv saat cleanup).
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, "STORE_DRIVER", "PROMOTION_WRITES_PER_SEC", "PROMOTION_TIMEOUT", "S3_REGION")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 10.0, cfg.PromotionWritesSec)
	assert.Equal(t, 2*time.Minute, cfg.PromotionTimeout)
	assert.Equal(t, "auto", cfg.S3.Region)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PROMOTION_WRITES_PER_SEC", "5.5")
	t.Setenv("PROMOTION_TIMEOUT", "90s")
	t.Setenv("ORPHAN_SWEEP_BATCH", "abc")
	t.Setenv("IMAGE_WEBP_MAX_W", "800")
	t.Setenv("MIDTRANS_USE_PROD", "true")

	cfg := Load()
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5.5, cfg.PromotionWritesSec)
	assert.Equal(t, 90*time.Second, cfg.PromotionTimeout)
	assert.Equal(t, 200, cfg.OrphanSweepBatch, "invalid falls back")
	assert.Equal(t, 800, cfg.WebP.MaxW)
	assert.True(t, cfg.MidtransUseProd)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("EDU_X", "1")
	assert.Equal(t, "1", GetEnv("EDU_X", "2"))
	unset(t, "EDU_MISSING_KEY")
	assert.Equal(t, "2", GetEnv("EDU_MISSING_KEY", "2"))
	assert.Equal(t, "", GetEnv("EDU_MISSING_KEY"))
}

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core)).(*GormLogger)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 0, logs.Len(), "fast query below warn level")

	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT pg_sleep(1)", 1 }, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "slow sql", logs.All()[0].Message)

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT x", 0 }, gormLogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len(), "not found is not an error")

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT x", 0 }, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())

	silent := l.LogMode(gormLogger.Silent)
	silent.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT x", 0 }, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.id", "https://b.id"}, splitList(" https://a.id, ,https://b.id "))
	assert.Nil(t, splitList(""))
}
