package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type DashboardConfig struct {
	TopProductsLimit  int `mapstructure:"topProductsLimit"`
	DailyTrendDays    int `mapstructure:"dailyTrendDays"`
	MaxTrendDays      int `mapstructure:"maxTrendDays"`
	SnapshotTrendDays int `mapstructure:"snapshotTrendDays"`
	// CacheTTL memoizes live views in the API process. Imports run in other
	// processes, so a positive value lets totals lag an import by up to it.
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		TopProductsLimit:  10,
		DailyTrendDays:    7,
		MaxTrendDays:      365,
		SnapshotTrendDays: 7,
		CacheTTL:          0,
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder pins a config without touching the filesystem.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder() (*DashboardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/salesdash")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SALESDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.topProductsLimit", defaults.TopProductsLimit)
	v.SetDefault("dashboard.dailyTrendDays", defaults.DailyTrendDays)
	v.SetDefault("dashboard.maxTrendDays", defaults.MaxTrendDays)
	v.SetDefault("dashboard.snapshotTrendDays", defaults.SnapshotTrendDays)
	v.SetDefault("dashboard.cacheTTL", defaults.CacheTTL)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log := zap.L().Named("config.dashboard")
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateDashboardConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	if h == nil {
		return DefaultDashboardConfig()
	}
	cfg, ok := h.current.Load().(DashboardConfig)
	if !ok {
		return DefaultDashboardConfig()
	}
	return cfg
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.TopProductsLimit <= 0 {
		return errors.New("dashboard.topProductsLimit must be positive")
	}
	if cfg.DailyTrendDays <= 0 {
		return errors.New("dashboard.dailyTrendDays must be positive")
	}
	if cfg.MaxTrendDays < cfg.DailyTrendDays {
		return errors.New("dashboard.maxTrendDays must be >= dailyTrendDays")
	}
	if cfg.SnapshotTrendDays <= 0 {
		return errors.New("dashboard.snapshotTrendDays must be positive")
	}
	if cfg.CacheTTL < 0 {
		return errors.New("dashboard.cacheTTL cannot be negative")
	}
	return nil
}
