package sim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pool"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/strategies"
)

func fp(v float64) *float64 { return &v }

// zeroAPYParams returns params with every accrual switched off so tests can
// isolate the pool mechanics.
func zeroAPYParams(leverage float64) Params {
	return Params{
		InitialCapital:   100,
		Leverage:         leverage,
		OpenOnStart:      true,
		RewardTokenPrice: fp(1),
		APYTradingFee:    fp(0),
		APYReward:        fp(0),
		APYBorrowToken0:  fp(0),
		APYBorrowToken1:  fp(0),
	}
}

func constantHistory(t *testing.T, days int, token1Price float64) market.History {
	t.Helper()

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	h := make(market.History, days)
	for i := range h {
		h[i] = market.NewRow(start.AddDate(0, 0, i), 1.0, token1Price)
	}
	return h
}

// smallExample is the canonical 4-record input: open, no change, a 90% drop
// in token1, then a 5x rise over the original price.
func smallExample(t *testing.T) market.History {
	t.Helper()

	h := constantHistory(t, 4, 0.1)
	h[2].Token1Price = 0.01
	h[3].Token1Price = 0.5
	return h
}

func TestRunConstantPriceIsIdempotent(t *testing.T) {
	t.Parallel()

	eng, err := New(zeroAPYParams(1), strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 10, 0.1))
	require.NoError(t, err)
	require.Len(t, res.Records, 10)

	for i, rec := range res.Records {
		assert.InDelta(t, 50.0, rec.Token0SupplyClose, 1e-9, "epoch %d", i)
		assert.InDelta(t, 500.0, rec.Token1SupplyClose, 1e-9, "epoch %d", i)
		assert.Equal(t, 0.0, rec.Token0DebtClose)
		assert.Equal(t, 0.0, rec.Token1DebtClose)
		assert.InDelta(t, 0.0, rec.ILoss, 1e-12, "epoch %d", i)
		assert.InDelta(t, 0.0, rec.ProfitValue, 1e-9, "epoch %d", i)
		assert.False(t, rec.TradeEvent)
	}
	assert.Equal(t, 0, res.TradeEvents)
}

func TestRunSmallExampleBenchmark(t *testing.T) {
	t.Parallel()

	eng, err := New(zeroAPYParams(1), strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(smallExample(t))
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	e1, e2, e3, e4 := res.Records[0], res.Records[1], res.Records[2], res.Records[3]

	// No price move between epochs 1 and 2: supplies are reproduced exactly.
	assert.InDelta(t, e1.Token0SupplyClose, e2.Token0SupplyOpen, 1e-12)
	assert.InDelta(t, e1.Token1SupplyClose, e2.Token1SupplyOpen, 1e-12)
	assert.InDelta(t, 0.0, e2.ILoss, 1e-12)

	// Epoch 3: token1 drops 90%. The pool sheds token0 and accumulates the
	// depreciating token1, and impermanent loss goes negative.
	assert.Less(t, e3.Token0SupplyOpen, e2.Token0SupplyClose)
	assert.Greater(t, e3.Token1SupplyOpen, e2.Token1SupplyClose)
	assert.Negative(t, e3.ILoss)

	// Epoch 4: 5x above the original price, loss in the other direction.
	assert.Greater(t, e4.Token0SupplyOpen, e3.Token0SupplyClose)
	assert.Less(t, e4.Token1SupplyOpen, e3.Token1SupplyClose)
	assert.Negative(t, e4.ILoss)

	// The loss metric matches the pool-vs-HODL value gap at every epoch.
	for i, rec := range res.Records {
		assert.InDelta(t, rec.PoolValue/rec.PositionHODLDollars-1, rec.ILoss, 1e-9, "epoch %d", i)
	}
}

func TestRunRepriceUsesPreviousClose(t *testing.T) {
	t.Parallel()

	// With trading fees growing the pool each epoch, the next epoch's k must
	// come from the grown close, not the original open.
	params := zeroAPYParams(1)
	params.APYTradingFee = fp(0.365250) // 0.1% per day
	eng, err := New(params, strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 3, 0.1))
	require.NoError(t, err)

	growth := 1 + 0.365250/365.25
	assert.InDelta(t, res.Records[0].Token0SupplyClose, 50.0*growth, 1e-9)
	assert.InDelta(t, res.Records[1].Token0SupplyOpen, res.Records[0].Token0SupplyClose, 1e-9)
	assert.InDelta(t, res.Records[1].Token0SupplyClose, 50.0*growth*growth, 1e-9)
}

func TestRunDebtCompoundsContinuously(t *testing.T) {
	t.Parallel()

	params := zeroAPYParams(2)
	params.APYBorrowToken1 = fp(0.2)
	eng, err := New(params, strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 3, 0.1))
	require.NoError(t, err)

	factor := math.Exp(0.2 / 365.25)
	debt0 := 1000.0 // 2x on $100 at p1=0.1 borrows 1000 token1
	for i, rec := range res.Records {
		debt0 *= factor
		assert.InDelta(t, debt0, rec.Token1DebtClose, 1e-9, "epoch %d", i)
		assert.Equal(t, 0.0, rec.Token0DebtClose, "epoch %d", i)
	}
}

func TestRunRewardAccrual(t *testing.T) {
	t.Parallel()

	params := zeroAPYParams(1)
	params.APYReward = fp(0.36525)
	params.RewardTokenPrice = fp(2.0)
	eng, err := New(params, strategies.SellRewards{Fraction: 0.5}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 1, 0.1))
	require.NoError(t, err)

	rec := res.Records[0]
	// $100 pool earning 0.36525/yr accrues $0.10 a day, i.e. 0.05 reward
	// tokens at $2.
	assert.InDelta(t, 0.1, rec.RewardEarningsDollars, 1e-12)
	assert.InDelta(t, 0.05, rec.RewardTokenEarnings, 1e-12)
	assert.InDelta(t, 0.05, rec.CashFromRewards, 1e-12, "half sold at $2")
	assert.InDelta(t, 0.025*2.0, rec.RewardsValue, 1e-12, "half kept as tokens")
	assert.InDelta(t, 0.05, rec.CashValue, 1e-12)
}

func TestRunFeeConservation(t *testing.T) {
	t.Parallel()

	// Every gas event is accounted once: open 2x (4), one reward sell per
	// epoch (1), and on the trigger epoch a full close (2) plus reopen at
	// 2x (4).
	params := Params{
		InitialCapital:   100,
		Leverage:         2,
		FeeGas:           1,
		OpenOnStart:      true,
		RewardTokenPrice: fp(1),
		APYTradingFee:    fp(0),
		APYReward:        fp(0.36525),
		APYBorrowToken0:  fp(0),
		APYBorrowToken1:  fp(0),
	}
	trading, err := strategies.NewRebalance(0.1, 0.1, 2, 1.0, 0, 1)
	require.NoError(t, err)
	eng, err := New(params, strategies.SellRewards{Fraction: 1}, trading)
	require.NoError(t, err)

	hist := constantHistory(t, 4, 0.1)
	hist[2].Token1Price = 0.13
	hist[3].Token1Price = 0.13

	res, err := eng.Run(hist)
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.Records[0].FeesValue)
	assert.Equal(t, 6.0, res.Records[1].FeesValue)
	assert.Equal(t, 13.0, res.Records[2].FeesValue, "sell + close + reopen on the trigger epoch")
	assert.Equal(t, 14.0, res.Records[3].FeesValue)

	assert.False(t, res.Records[0].TradeEvent)
	assert.False(t, res.Records[1].TradeEvent)
	assert.True(t, res.Records[2].TradeEvent, "trade fires exactly when the threshold is crossed")
	assert.False(t, res.Records[3].TradeEvent, "anchor moved to the trigger price")
	assert.Equal(t, 1, res.TradeEvents)
}

func TestRunRebalanceMetadataRecorded(t *testing.T) {
	t.Parallel()

	trading, err := strategies.NewRebalance(0.1, 0.5, 2, 1.0, 0, 0)
	require.NoError(t, err)
	eng, err := New(zeroAPYParams(1), strategies.SellRewards{Fraction: 1}, trading)
	require.NoError(t, err)

	res, err := eng.Run(smallExample(t))
	require.NoError(t, err)

	for i, rec := range res.Records {
		assert.Contains(t, rec.Metadata, "price_delta", "epoch %d", i)
	}
	assert.InDelta(t, 0.0, res.Records[1].Metadata["price_delta"], 1e-12)
	assert.InDelta(t, 0.9, res.Records[2].Metadata["price_delta"], 1e-12)
}

func TestRunDeferredOpenKeepsCash(t *testing.T) {
	t.Parallel()

	params := zeroAPYParams(1)
	params.OpenOnStart = false
	eng, err := New(params, strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 3, 0.1))
	require.NoError(t, err)

	for i, rec := range res.Records {
		assert.Equal(t, 100.0, rec.CashValue, "epoch %d", i)
		assert.Equal(t, 0.0, rec.PoolValue, "epoch %d", i)
		assert.InDelta(t, 0.0, rec.ProfitValue, 1e-12, "epoch %d", i)
		assert.Equal(t, 0.0, rec.PositionHODLDollars, "epoch %d", i)

		// Nothing in the pool: the ratio metrics degrade to IEEE sentinels
		// instead of crashing, and the rest of the record stays usable.
		assert.True(t, math.IsNaN(rec.DebtRatio), "epoch %d", i)
		assert.True(t, math.IsNaN(rec.EffectiveLeverage), "epoch %d", i)
	}
}

// debtMatcher forces supply == debt so the pool equity is exactly zero.
type debtMatcher struct{}

func (debtMatcher) Name() string { return "debt-matcher" }

func (debtMatcher) Execute(supply, debt pool.Pair, hist market.History, cash float64) (pool.Pair, pool.Pair, float64, float64, map[string]float64) {
	return supply, supply, cash, 0, nil
}

func TestRunZeroPoolEquitySentinels(t *testing.T) {
	t.Parallel()

	eng, err := New(zeroAPYParams(1), strategies.SellRewards{Fraction: 1}, debtMatcher{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 2, 0.1))
	require.NoError(t, err)

	for i, rec := range res.Records {
		assert.Equal(t, 0.0, rec.PoolEquity, "epoch %d", i)
		assert.Equal(t, 1.0, rec.DebtRatio, "epoch %d", i)
		assert.True(t, math.IsInf(rec.EffectiveLeverage, 1), "epoch %d", i)
		assert.True(t, rec.TradeEvent, "epoch %d", i)
	}
}

func TestRunAnnualizedAPRUsesDaysElapsed(t *testing.T) {
	t.Parallel()

	params := zeroAPYParams(1)
	params.APYTradingFee = fp(0.1)
	eng, err := New(params, strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 5, 0.1))
	require.NoError(t, err)

	for i, rec := range res.Records {
		expected := math.Pow(1+rec.ROI, 365.0/float64(i+1)) - 1
		assert.InDelta(t, expected, rec.AnnualizedAPR, 1e-12, "epoch %d", i)
	}
}

func TestRunHODLBenchmark(t *testing.T) {
	t.Parallel()

	eng, err := New(zeroAPYParams(2), strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(smallExample(t))
	require.NoError(t, err)

	// 2x on $100 at (1.0, 0.1) holds 100 token0 and 1000 token1; the HODL
	// benchmark is that basket at current prices, per dollar of principal.
	assert.InDelta(t, (100+1000*0.1)/2, res.Records[0].PositionHODLDollars, 1e-9)
	assert.InDelta(t, (100+1000*0.01)/2, res.Records[2].PositionHODLDollars, 1e-9)
	assert.InDelta(t, (100+1000*0.5)/2, res.Records[3].PositionHODLDollars, 1e-9)
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	t.Parallel()

	hold := strategies.Hold{}
	sell := strategies.SellRewards{Fraction: 1}

	_, err := New(Params{InitialCapital: 0, Leverage: 1}, sell, hold)
	assert.ErrorIs(t, err, ErrCapital)

	for _, leverage := range []float64{0, 1.5} {
		params := zeroAPYParams(1)
		params.Leverage = leverage
		_, err := New(params, sell, hold)
		assert.ErrorIs(t, err, pool.ErrLeverage, "leverage %g", leverage)
	}

	params := zeroAPYParams(1)
	params.FeeSwap = 1.0
	_, err = New(params, sell, hold)
	assert.ErrorIs(t, err, ErrFeeSwap)

	params = zeroAPYParams(1)
	params.FeeGas = -1
	_, err = New(params, sell, hold)
	assert.ErrorIs(t, err, ErrFeeGas)

	_, err = New(zeroAPYParams(1), nil, hold)
	assert.ErrorIs(t, err, ErrStrategy)
}

func TestRunMissingColumnsFailFast(t *testing.T) {
	t.Parallel()

	sell := strategies.SellRewards{Fraction: 1}

	// No overrides and a bare price table: fatal before the loop.
	params := Params{InitialCapital: 100, Leverage: 1, OpenOnStart: true}
	eng, err := New(params, sell, strategies.Hold{})
	require.NoError(t, err)

	_, err = eng.Run(constantHistory(t, 2, 0.1))
	assert.ErrorIs(t, err, ErrMissingColumn)

	// Reward accrual enabled but no reward token price anywhere.
	params = zeroAPYParams(1)
	params.APYReward = fp(0.1)
	params.RewardTokenPrice = nil
	eng, err = New(params, sell, strategies.Hold{})
	require.NoError(t, err)

	_, err = eng.Run(constantHistory(t, 2, 0.1))
	assert.ErrorIs(t, err, ErrMissingColumn)

	// Zero reward APY tolerates the missing price column.
	params = zeroAPYParams(1)
	params.RewardTokenPrice = nil
	eng, err = New(params, sell, strategies.Hold{})
	require.NoError(t, err)

	res, err := eng.Run(constantHistory(t, 2, 0.1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Records[0].RewardsValue)
}

func TestRunRejectsBadHistory(t *testing.T) {
	t.Parallel()

	eng, err := New(zeroAPYParams(1), strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	_, err = eng.Run(market.History{})
	assert.ErrorIs(t, err, market.ErrEmpty)

	dup := constantHistory(t, 2, 0.1)
	dup[1].Date = dup[0].Date
	_, err = eng.Run(dup)
	assert.ErrorIs(t, err, market.ErrUnsorted)

	bad := constantHistory(t, 2, 0.1)
	bad[1].Token1Price = -0.1
	_, err = eng.Run(bad)
	assert.ErrorIs(t, err, market.ErrPrice)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	hist := constantHistory(t, 2, 0.1)
	eng, err := New(zeroAPYParams(1), strategies.SellRewards{Fraction: 1}, strategies.Hold{})
	require.NoError(t, err)

	_, err = eng.Run(hist)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(hist[0].APYTradingFee), "overrides applied to a copy only")
}
