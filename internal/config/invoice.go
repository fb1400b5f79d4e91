package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/format"
	"github.com/spf13/viper"
)

// InvoiceConfig holds the seller-facing invoice settings that can change
// without a restart.
type InvoiceConfig struct {
	NumberTemplate    string `mapstructure:"numberTemplate"`
	Timezone          string `mapstructure:"timezone"`
	LowStockThreshold int64  `mapstructure:"lowStockThreshold"`
	StrictGSTIN       bool   `mapstructure:"strictGSTIN"`
	StandardSlabsOnly bool   `mapstructure:"standardSlabsOnly"`
	RejectStaleStock  bool   `mapstructure:"rejectStaleStock"`
}

func DefaultInvoiceConfig() InvoiceConfig {
	return InvoiceConfig{
		NumberTemplate:    format.DefaultInvoiceNumberTemplate,
		Timezone:          "Asia/Kolkata",
		LowStockThreshold: 10,
	}
}

type invoiceFile struct {
	Invoice InvoiceConfig `mapstructure:"invoice"`
}

type InvoiceConfigHolder struct {
	current atomic.Value // holds InvoiceConfig
}

// NewInvoiceConfigHolder loads invoice.yml from the standard locations.
func NewInvoiceConfigHolder() (*InvoiceConfigHolder, error) {
	return LoadInvoiceConfig("/var/lib/gstinvoice/config", "/etc/gstinvoice", ".")
}

// NewStaticInvoiceConfig returns a holder that never reloads.
func NewStaticInvoiceConfig(cfg InvoiceConfig) *InvoiceConfigHolder {
	holder := &InvoiceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// LoadInvoiceConfig reads invoice.yml from the first path that has one and
// watches it for changes. Missing files leave the defaults in place.
func LoadInvoiceConfig(paths ...string) (*InvoiceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoice")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("GSTINVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoiceConfig()
	v.SetDefault("invoice.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoice.timezone", defaults.Timezone)
	v.SetDefault("invoice.lowStockThreshold", defaults.LowStockThreshold)
	v.SetDefault("invoice.strictGSTIN", defaults.StrictGSTIN)
	v.SetDefault("invoice.standardSlabsOnly", defaults.StandardSlabsOnly)
	v.SetDefault("invoice.rejectStaleStock", defaults.RejectStaleStock)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeInvoiceConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticInvoiceConfig(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeInvoiceConfig(v)
		if err != nil {
			log.Printf("[invoice-config] reload ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[invoice-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *InvoiceConfigHolder) Get() InvoiceConfig {
	if h == nil {
		return DefaultInvoiceConfig()
	}
	return h.current.Load().(InvoiceConfig)
}

// decodeInvoiceConfig unmarshals the full settings tree so defaults fill
// keys the file leaves out.
func decodeInvoiceConfig(v *viper.Viper) (InvoiceConfig, error) {
	var f invoiceFile
	if err := v.Unmarshal(&f); err != nil {
		return InvoiceConfig{}, err
	}
	if err := validateInvoiceConfig(f.Invoice); err != nil {
		return InvoiceConfig{}, err
	}
	return f.Invoice, nil
}

func validateInvoiceConfig(cfg InvoiceConfig) error {
	if err := format.ValidateTemplate(cfg.NumberTemplate); err != nil {
		return fmt.Errorf("invoice.numberTemplate: %w", err)
	}
	if cfg.LowStockThreshold < 0 {
		return errors.New("invoice.lowStockThreshold cannot be negative")
	}
	return nil
}
