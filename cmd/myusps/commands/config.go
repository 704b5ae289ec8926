package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"myusps/internal/components/configutil"
	"myusps/internal/components/telemetry"
	"myusps/internal/cookiestore"
	"myusps/internal/usps"
)

const configName = "config.json5"

type CacheConfig struct {
	// Enabled defaults to true.
	Enabled    *bool `json:"enabled"`
	TtlSeconds int   `json:"ttl_seconds"`
}

func (c CacheConfig) enabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type Config struct {
	Username string             `json:"username"`
	Password string             `json:"password"`
	Cookies  cookiestore.Config `json:"cookies"`
	Cache    CacheConfig        `json:"cache"`
	// Timezone is an IANA name used for "today" and package timestamps,
	// defaults to the local zone.
	Timezone          string           `json:"timezone"`
	TimeoutSeconds    int              `json:"timeout_seconds"`
	LegacyTokens      bool             `json:"legacy_tokens"`
	SkipSecondaryAuth bool             `json:"skip_secondary_auth"`
	CloudflareBypass  bool             `json:"cloudflare_bypass"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

// readConfig looks for config.json5 in the working directory and its
// parents, credentials may also come from USPS_USERNAME and USPS_PASSWORD.
func readConfig() (Config, error) {
	cfg, _, err := configutil.ReadRecursively[Config](configName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	if username := os.Getenv("USPS_USERNAME"); username != "" {
		cfg.Username = username
	}
	if password := os.Getenv("USPS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if cfg.Username == "" || cfg.Password == "" {
		return Config{}, fmt.Errorf("username and password must be set in %s or through USPS_USERNAME and USPS_PASSWORD", configName)
	}
	return cfg, nil
}

func (c Config) options(store cookiestore.Store, tel telemetry.API) (usps.Options, error) {
	opts := usps.Options{
		Store:             store,
		Cache:             c.Cache.enabled(),
		CacheTTL:          time.Duration(c.Cache.TtlSeconds) * time.Second,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		Telemetry:         tel,
		SkipSecondaryAuth: c.SkipSecondaryAuth,
		LegacyTokens:      c.LegacyTokens,
		CloudflareBypass:  c.CloudflareBypass,
	}
	if c.Timezone != "" {
		clock, err := chronoFor(c.Timezone)
		if err != nil {
			return usps.Options{}, err
		}
		opts.Time = clock
	}
	return opts, nil
}
