package keeper

import (
	"math/big"
	"strconv"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// poolLabel renders a pool ID as a metric label value.
func poolLabel(poolID uint64) string {
	return strconv.FormatUint(poolID, 10)
}

// intGauge converts a big integer amount to a float64 gauge value. Precision
// loss past 2^53 is acceptable for observability.
func intGauge(v math.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}

// AMMMetrics holds all Prometheus metrics for the AMM module
type AMMMetrics struct {
	// Swap metrics
	SwapsTotal        *prometheus.CounterVec
	SwapVolume        *prometheus.CounterVec
	SwapFeesCollected *prometheus.CounterVec
	OracleRejections  *prometheus.CounterVec

	// Liquidity metrics
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	LPTokenSupply    *prometheus.GaugeVec

	// Pool metrics
	PoolsTotal       prometheus.Gauge
	PoolCreationRate prometheus.Counter
	DustSwept        *prometheus.CounterVec

	// Fee metrics
	CreatorFeesClaimed    *prometheus.CounterVec
	ProtocolFeesWithdrawn *prometheus.CounterVec

	// Safety metrics
	ProtocolPaused      prometheus.Gauge
	PoolPaused          *prometheus.GaugeVec
	ReentrancyRejects   *prometheus.CounterVec
	EmergencyWithdrawals *prometheus.CounterVec
}

var (
	ammMetricsOnce sync.Once
	ammMetrics     *AMMMetrics
)

// GetAMMMetrics creates and registers AMM metrics (singleton pattern)
func GetAMMMetrics() *AMMMetrics {
	ammMetricsOnce.Do(func() {
		ammMetrics = &AMMMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_id", "direction"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in normalized units",
				},
				[]string{"pool_id", "direction"},
			),
			SwapFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "swap_fees_collected_total",
					Help:      "Total swap fees collected in normalized input units",
				},
				[]string{"pool_id", "fee_type"},
			),
			OracleRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "oracle_rejections_total",
					Help:      "Swaps rejected by the oracle price deviation guard",
				},
				[]string{"pool_id"},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity provisions",
				},
				[]string{"pool_id"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity removals",
				},
				[]string{"pool_id"},
			),
			LPTokenSupply: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "lp_token_supply",
					Help:      "Outstanding LP token supply per pool",
				},
				[]string{"pool_id"},
			),
			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "pools_total",
					Help:      "Number of pools",
				},
			),
			PoolCreationRate: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "pool_creations_total",
					Help:      "Total pools created",
				},
			),
			DustSwept: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "dust_sweeps_total",
					Help:      "Vault dust sweeps to the treasury",
				},
				[]string{"pool_id", "asset"},
			),
			CreatorFeesClaimed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "creator_fees_claimed_total",
					Help:      "Creator fee claims paid out, native quote units",
				},
				[]string{"pool_id"},
			),
			ProtocolFeesWithdrawn: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "protocol_fees_withdrawn_total",
					Help:      "Protocol fee withdrawals, native quote units",
				},
				[]string{"pool_id"},
			),
			ProtocolPaused: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "protocol_paused",
					Help:      "1 when the protocol-wide pause is active",
				},
			),
			PoolPaused: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "pool_paused",
					Help:      "1 when a pool is individually paused",
				},
				[]string{"pool_id"},
			),
			ReentrancyRejects: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "reentrancy_rejects_total",
					Help:      "Operations rejected by the reentrancy guard",
				},
				[]string{"pool_id"},
			),
			EmergencyWithdrawals: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "stackmint",
					Subsystem: "amm",
					Name:      "emergency_withdrawals_total",
					Help:      "LP emergency withdrawals while paused",
				},
				[]string{"pool_id"},
			),
		}
	})
	return ammMetrics
}
