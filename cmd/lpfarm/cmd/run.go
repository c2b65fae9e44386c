package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/config"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/dataset"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/journal"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pkg/id"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/scenario"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/sim"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation from a config file",
	Long: `Run a yield-farm simulation using settings from a configuration file.

The config file specifies the position (capital, leverage, fees), the reward
and trading strategies, the input history (a synthetic scenario or data files
on disk), and where to journal the results.

Example:
  lpfarm run --config examples/configs/avax-3x.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	hist, err := buildHistory(cfg)
	if err != nil {
		return fmt.Errorf("build history: %w", err)
	}

	engine, err := buildEngine(cfg, hist)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	fmt.Printf("Running simulation with config: %s\n", runConfigPath)
	fmt.Printf("  Position: $%.2f at %gx leverage\n", cfg.Simulation.Capital, cfg.Simulation.Leverage)
	fmt.Printf("  Strategies: rewards=%s trading=%s\n", cfg.Rewards.Strategy, cfg.Trading.Strategy)
	fmt.Printf("  History: %d days (%s to %s)\n\n",
		len(hist),
		hist[0].Date.Format("2006-01-02"),
		hist[len(hist)-1].Date.Format("2006-01-02"))

	result, err := engine.Run(hist)
	if err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}

	final := result.Final()
	fmt.Printf("Final Results:\n")
	fmt.Printf("  Position Value: $%.2f\n", final.PositionValue)
	fmt.Printf("  Equity: $%.2f\n", final.EquityValue)
	fmt.Printf("  Profit/Loss: $%.2f (ROI %.2f%%, annualized %.2f%%)\n",
		result.Profit, result.ROI*100, final.AnnualizedAPR*100)
	fmt.Printf("  Fees Paid: $%.2f\n", result.Fees)
	fmt.Printf("  Trade Events: %d\n", result.TradeEvents)
	fmt.Printf("  Impermanent Loss: %.2f%%\n", final.ILoss*100)

	return journalResult(cfg, result)
}

func journalResult(cfg *config.Config, result *sim.Result) error {
	switch cfg.Journal.Type {
	case "none", "":
		return nil

	case "csv":
		f, err := os.Create(cfg.Journal.CSVPath)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer f.Close()

		if err := journal.WriteCSV(f, result.Records); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.CSVPath)
		return nil

	default:
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer j.Close()

		run := journal.RunRecord{
			ID:              id.New(),
			CreatedAt:       time.Now().UTC(),
			Label:           cfg.Journal.Label,
			Capital:         cfg.Simulation.Capital,
			Leverage:        cfg.Simulation.Leverage,
			RewardStrategy:  cfg.Rewards.Strategy,
			TradingStrategy: cfg.Trading.Strategy,
			Days:            len(result.Records),
			Profit:          result.Profit,
			ROI:             result.ROI,
			Fees:            result.Fees,
			TradeEvents:     result.TradeEvents,
		}
		if err := j.RecordRun(run, result.Records); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		fmt.Printf("\nRun %s saved to: %s\n", run.ID, cfg.Journal.DBPath)
		return nil
	}
}

func buildEngine(cfg *config.Config, hist market.History) (*sim.Engine, error) {
	rewards, err := strategies.RewardsByName(cfg.Rewards.Strategy, strategies.RewardConfig{
		Fraction: cfg.Rewards.Fraction,
	})
	if err != nil {
		return nil, err
	}

	anchor := 0.0
	if cfg.Trading.Anchor != nil {
		anchor = *cfg.Trading.Anchor
	} else if len(hist) > 0 {
		// Rebalancing measures drift from the opening price unless the
		// operator pins a different anchor.
		anchor = hist[0].Token1Price
	}
	trading, err := strategies.TradingByName(cfg.Trading.Strategy, strategies.TradingConfig{
		Anchor:    anchor,
		Threshold: cfg.Trading.Threshold,
		Leverage:  cfg.Simulation.Leverage,
		Amount:    cfg.Trading.Amount,
		FeeSwap:   cfg.Simulation.FeeSwap,
		FeeGas:    cfg.Simulation.FeeGas,
	})
	if err != nil {
		return nil, err
	}

	return sim.New(sim.Params{
		InitialCapital:   cfg.Simulation.Capital,
		Leverage:         cfg.Simulation.Leverage,
		FeeSwap:          cfg.Simulation.FeeSwap,
		FeeGas:           cfg.Simulation.FeeGas,
		OpenOnStart:      cfg.Simulation.OpenOnStart,
		RewardTokenPrice: cfg.Simulation.RewardTokenPrice,
		APYTradingFee:    cfg.Simulation.APYTradingFee,
		APYReward:        cfg.Simulation.APYReward,
		APYBorrowToken0:  cfg.Simulation.APYBorrowToken0,
		APYBorrowToken1:  cfg.Simulation.APYBorrowToken1,
	}, rewards, trading)
}

func buildHistory(cfg *config.Config) (market.History, error) {
	if cfg.Scenario.Name != "" {
		return scenarioHistory(cfg.Scenario)
	}

	switch cfg.Data.Source {
	case "csv":
		f, err := os.Open(cfg.Data.HistoryCSV)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return market.ReadCSV(f)

	case "snapshots":
		return snapshotHistory(cfg.Data)

	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func scenarioHistory(sc config.ScenarioConfig) (market.History, error) {
	start := scenario.DefaultStart

	switch strings.ToLower(sc.Name) {
	case "constant":
		return scenario.Constant(sc.Days, sc.Token0Price, sc.Token1Start, start), nil

	case "small-example", "small":
		return scenario.SmallExample(), nil

	case "linear":
		return scenario.Linear(sc.Days, sc.Token0Price, sc.Token1Start, sc.Token1Stop,
			sc.RewardStart, sc.RewardStop, start), nil

	case "linear-and-back":
		return scenario.LinearAndBack(sc.Days, sc.Token0Price, sc.Token1Start, sc.Token1Stop,
			sc.RewardStart, sc.RewardStop, start), nil

	case "random-walk", "random":
		rng := rand.New(rand.NewSource(sc.Seed))
		return scenario.RandomWalkHistory(sc.Days, sc.Token1Start, sc.Bias, sc.Variance,
			sc.RewardStart, rng, start), nil

	default:
		return nil, fmt.Errorf("unknown scenario %q", sc.Name)
	}
}

func snapshotHistory(data config.DataConfig) (market.History, error) {
	apys, err := dataset.LoadCoindixAPY(data.CoindixPath, data.Chain, data.Protocol, data.Pair)
	if err != nil {
		return nil, err
	}

	borrows, err := dataset.LoadCreamBorrowAPY(data.CreamPath, data.Comptroller,
		data.Token0Symbol, data.Token1Symbol)
	if err != nil {
		return nil, err
	}

	prices, err := dataset.LoadPriceCSV(data.PricesCSV)
	if err != nil {
		return nil, err
	}

	return dataset.BuildHistory(apys, borrows, prices, dataset.BuildOptions{
		RewardAPYRatio: data.RewardAPYRatio,
	})
}
