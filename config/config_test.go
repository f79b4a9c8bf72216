package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackmint/amm/config"
	"github.com/stackmint/amm/x/amm/types"
)

// TestLoad_Defaults tests that a missing file yields the documented fallbacks
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	require.Equal(t, types.FallbackMaxFeeBps, cfg.MaxFeeBps)
	require.Equal(t, types.FallbackDustThreshold, cfg.DustThreshold)
	require.Equal(t, types.FallbackCreatorClaimLockSecs, cfg.CreatorClaimLockSecs)
}

// TestLoad_File tests reading a TOML config
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amm.toml")
	body := `
admin = "alice"
pauser = "bob"
fee-manager = "carol"
governance = "dave"
treasury = "treasury"
protocol-fee-bps = 2500
max-fee-bps = 1000
dust-threshold = 25
creator-claim-lock-secs = 86400
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.Admin)
	require.Equal(t, "bob", cfg.Pauser)
	require.Equal(t, "carol", cfg.FeeManager)
	require.Equal(t, "dave", cfg.Governance)
	require.Equal(t, uint32(2500), cfg.ProtocolFeeBps)
	require.Equal(t, uint32(1000), cfg.MaxFeeBps)
	require.Equal(t, uint64(25), cfg.DustThreshold)
	require.Equal(t, int64(86400), cfg.CreatorClaimLockSecs)
}

// TestLoad_InvalidFee tests bps bound validation at load time
func TestLoad_InvalidFee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amm.toml")
	require.NoError(t, os.WriteFile(path, []byte("protocol-fee-bps = 10001\n"), 0o600))

	_, err := config.Load(path)
	require.ErrorIs(t, err, types.ErrInvalidFee)
}
