// Package config loads the protocol's bootstrap configuration from a TOML
// file with environment-variable overrides.
package config

import (
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/stackmint/amm/x/amm/types"
)

// Env vars use the STACKMINT_AMM_ prefix, e.g. STACKMINT_AMM_PROTOCOL_FEE_BPS.
const envPrefix = "STACKMINT_AMM"

// Load reads a GlobalConfig from path. A missing file is not an error: the
// defaults plus any environment overrides are returned instead, so a bare
// deployment still comes up with the documented fallbacks.
func Load(path string) (types.GlobalConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := types.DefaultGlobalConfig()
	v.SetDefault("protocol-fee-bps", defaults.ProtocolFeeBps)
	v.SetDefault("max-fee-bps", defaults.MaxFeeBps)
	v.SetDefault("dust-threshold", defaults.DustThreshold)
	v.SetDefault("creator-claim-lock-secs", defaults.CreatorClaimLockSecs)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return types.GlobalConfig{}, err
			}
		}
	}

	cfg := types.GlobalConfig{
		Version:              1,
		Admin:                v.GetString("admin"),
		Pauser:               v.GetString("pauser"),
		FeeManager:           v.GetString("fee-manager"),
		Governance:           v.GetString("governance"),
		Treasury:             v.GetString("treasury"),
		ProtocolFeeBps:       cast.ToUint32(v.Get("protocol-fee-bps")),
		MaxFeeBps:            cast.ToUint32(v.Get("max-fee-bps")),
		DustThreshold:        cast.ToUint64(v.Get("dust-threshold")),
		CreatorClaimLockSecs: cast.ToInt64(v.Get("creator-claim-lock-secs")),
	}
	if err := cfg.Validate(); err != nil {
		return types.GlobalConfig{}, err
	}
	return cfg, nil
}
