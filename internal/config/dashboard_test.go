package config

import (
	"testing"
	"time"
)

func TestValidateDashboardConfigDefaults(t *testing.T) {
	if err := validateDashboardConfig(DefaultDashboardConfig()); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if ttl := DefaultDashboardConfig().CacheTTL; ttl != 0 {
		t.Fatalf("live views must not be memoized by default, got ttl %s", ttl)
	}
}

func TestValidateDashboardConfigRejectsBadValues(t *testing.T) {
	cases := map[string]DashboardConfig{
		"zero top":       {TopProductsLimit: 0, DailyTrendDays: 7, MaxTrendDays: 30, SnapshotTrendDays: 7},
		"zero daily":     {TopProductsLimit: 10, DailyTrendDays: 0, MaxTrendDays: 30, SnapshotTrendDays: 7},
		"max below days": {TopProductsLimit: 10, DailyTrendDays: 7, MaxTrendDays: 3, SnapshotTrendDays: 7},
		"zero snapshot":  {TopProductsLimit: 10, DailyTrendDays: 7, MaxTrendDays: 30, SnapshotTrendDays: 0},
		"negative ttl":   {TopProductsLimit: 10, DailyTrendDays: 7, MaxTrendDays: 30, SnapshotTrendDays: 7, CacheTTL: -time.Second},
	}
	for name, cfg := range cases {
		if err := validateDashboardConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestDashboardConfigHolderNilFallsBackToDefaults(t *testing.T) {
	var holder *DashboardConfigHolder
	if got := holder.Get(); got != DefaultDashboardConfig() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoadReadsImportSettings(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "250")
	t.Setenv("IMPORT_DATE_POLICY", "SOURCE")
	t.Setenv("IMPORT_LOCK_TTL", "5m")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	if cfg.Import.BatchSize != 250 {
		t.Fatalf("expected batch size 250, got %d", cfg.Import.BatchSize)
	}
	if cfg.Import.DatePolicy != "source" {
		t.Fatalf("expected lower-cased date policy, got %q", cfg.Import.DatePolicy)
	}
	if cfg.Import.LockTTL != 5*time.Minute {
		t.Fatalf("expected 5m lock ttl, got %s", cfg.Import.LockTTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("expected redis disabled without REDIS_ADDR")
	}
}
