package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PrepaidConfig holds operator-tunable presentation settings.
type PrepaidConfig struct {
	// Labels overrides the display label per payment-method category.
	Labels map[string]string `mapstructure:"labels"`
	// DiscrepancyWarnThreshold logs a warning when the record and contract
	// totals differ by more than this amount. Zero disables the warning.
	DiscrepancyWarnThreshold float64 `mapstructure:"discrepancyWarnThreshold"`
}

func DefaultPrepaidConfig() PrepaidConfig {
	return PrepaidConfig{
		Labels:                   map[string]string{},
		DiscrepancyWarnThreshold: 0.01,
	}
}

type PrepaidConfigHolder struct {
	current atomic.Value // holds PrepaidConfig
}

// NewStaticPrepaidConfigHolder returns a holder that never reloads.
func NewStaticPrepaidConfigHolder(cfg PrepaidConfig) *PrepaidConfigHolder {
	holder := &PrepaidConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPrepaidConfigHolder(appCfg Config, log *zap.Logger) (*PrepaidConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("prepaid.config")

	v := viper.New()
	if path := strings.TrimSpace(appCfg.Prepaid.ConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("prepaid")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/prepaid")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PREPAID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPrepaidConfig()
	v.SetDefault("prepaid.labels", defaults.Labels)
	v.SetDefault("prepaid.discrepancyWarnThreshold", defaults.DiscrepancyWarnThreshold)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	cfg, err := decodePrepaidConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPrepaidConfigHolder(cfg)
	if !found {
		log.Info("prepaid config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePrepaidConfig(v)
		if err != nil {
			log.Warn("prepaid config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("prepaid config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PrepaidConfigHolder) Get() PrepaidConfig {
	if h == nil {
		return DefaultPrepaidConfig()
	}
	cfg, ok := h.current.Load().(PrepaidConfig)
	if !ok {
		return DefaultPrepaidConfig()
	}
	return cfg
}

// Label returns the configured label for a category key, or "" when unset.
func (h *PrepaidConfigHolder) Label(category string) string {
	return strings.TrimSpace(h.Get().Labels[strings.ToLower(category)])
}

func decodePrepaidConfig(v *viper.Viper) (PrepaidConfig, error) {
	var cfg PrepaidConfig
	if err := v.UnmarshalKey("prepaid", &cfg); err != nil {
		return PrepaidConfig{}, err
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
	if err := validatePrepaidConfig(cfg); err != nil {
		return PrepaidConfig{}, err
	}
	return cfg, nil
}

var labelKeys = map[string]struct{}{
	"som_cash":    {},
	"som_card":    {},
	"dollar_cash": {},
	"dollar_card": {},
}

func validatePrepaidConfig(cfg PrepaidConfig) error {
	if cfg.DiscrepancyWarnThreshold < 0 {
		return errors.New("prepaid.discrepancyWarnThreshold cannot be negative")
	}
	for key := range cfg.Labels {
		if _, ok := labelKeys[strings.ToLower(key)]; !ok {
			return errors.New("prepaid.labels has unknown category " + key)
		}
	}
	return nil
}
