package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pool"
)

func TestSellRewardsSellsFraction(t *testing.T) {
	t.Parallel()

	s := SellRewards{Fraction: 0.4}
	remaining, poolTokens, cash, fees := s.Execute(10, 2.0, pool.Pair{}, pool.Pair{1, 1}, 0.01, 0.5)

	assert.InDelta(t, 6.0, remaining, 1e-12, "unsold rewards stay in the balance")
	assert.Equal(t, pool.Pair{}, poolTokens, "pool tokens pass through untouched")
	assert.InDelta(t, 4*0.99*2.0, cash, 1e-12)
	assert.Equal(t, 0.5, fees, "one swap")
}

func TestSellRewardsSellAll(t *testing.T) {
	t.Parallel()

	s := SellRewards{Fraction: 1.0}
	remaining, _, cash, _ := s.Execute(10, 2.0, pool.Pair{}, pool.Pair{1, 1}, 0, 0)

	assert.Equal(t, 0.0, remaining)
	assert.Equal(t, 20.0, cash)
}

func TestSellRewardsZeroFractionIsNoop(t *testing.T) {
	t.Parallel()

	for _, fraction := range []float64{0, -0.5} {
		s := SellRewards{Fraction: fraction}
		remaining, poolTokens, cash, fees := s.Execute(10, 2.0, pool.Pair{1, 2}, pool.Pair{1, 1}, 0.01, 0.5)

		assert.Equal(t, 10.0, remaining)
		assert.Equal(t, pool.Pair{1, 2}, poolTokens)
		assert.Equal(t, 0.0, cash)
		assert.Equal(t, 0.0, fees)
	}
}

func TestSellRewardsNothingEarnedNoGas(t *testing.T) {
	t.Parallel()

	s := SellRewards{Fraction: 1.0}
	_, _, cash, fees := s.Execute(0, 2.0, pool.Pair{}, pool.Pair{1, 1}, 0.01, 0.5)

	assert.Equal(t, 0.0, cash)
	assert.Equal(t, 0.0, fees, "no swap happened, no gas")
}

func TestCompoundRewardsReinvests(t *testing.T) {
	t.Parallel()

	s := CompoundRewards{Fraction: 1.0}
	prices := pool.Pair{1.0, 0.1}
	remaining, poolTokens, cash, fees := s.Execute(10, 2.0, pool.Pair{}, prices, 0.01, 0.5)

	assert.Equal(t, 0.0, remaining)
	assert.Equal(t, 0.0, cash, "compounding emits no net cash")

	// Sell proceeds: 10 * 0.99 * 2 = 19.8, split 50/50, each side pays the
	// swap fee again on the buy.
	half := 0.5 * 19.8 * 0.99
	assert.InDelta(t, half/prices[0], poolTokens[0], 1e-12)
	assert.InDelta(t, half/prices[1], poolTokens[1], 1e-12)

	// One sell swap plus two buys and the LP re-entry.
	assert.Equal(t, 0.5+3*0.5, fees)
}

func TestCompoundRewardsAddsToExistingDelta(t *testing.T) {
	t.Parallel()

	s := CompoundRewards{Fraction: 1.0}
	poolTokens := pool.Pair{5, 50}
	_, updated, _, _ := s.Execute(10, 1.0, poolTokens, pool.Pair{1, 1}, 0, 0)

	assert.Greater(t, updated[0], poolTokens[0])
	assert.Greater(t, updated[1], poolTokens[1])
}

func TestCompoundRewardsZeroFractionIsNoop(t *testing.T) {
	t.Parallel()

	s := CompoundRewards{Fraction: 0}
	remaining, poolTokens, cash, fees := s.Execute(10, 2.0, pool.Pair{1, 1}, pool.Pair{1, 1}, 0.01, 0.5)

	assert.Equal(t, 10.0, remaining)
	assert.Equal(t, pool.Pair{1, 1}, poolTokens)
	assert.Equal(t, 0.0, cash)
	assert.Equal(t, 0.0, fees)
}

func TestRewardsByName(t *testing.T) {
	t.Parallel()

	s, err := RewardsByName("sell", RewardConfig{Fraction: 0.5})
	require.NoError(t, err)
	assert.Equal(t, SellRewards{Fraction: 0.5}, s)

	s, err = RewardsByName("Compound", RewardConfig{Fraction: 1})
	require.NoError(t, err)
	assert.Equal(t, CompoundRewards{Fraction: 1}, s)

	s, err = RewardsByName("none", RewardConfig{})
	require.NoError(t, err)
	assert.Equal(t, SellRewards{}, s)

	_, err = RewardsByName("stake", RewardConfig{})
	assert.Error(t, err)
}
