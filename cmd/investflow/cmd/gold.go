package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/app"
	"github.com/rustyeddy/investflow/report"
	"github.com/spf13/cobra"
)

var goldCmd = &cobra.Command{
	Use:   "gold",
	Short: "Manage the gold savings account",
	Long: `Buy gold from a separate cash balance and project its future value.

Subcommands:
  price     - Show the current gold price
  balance   - Set the gold account's cash balance
  buy       - Spend part of the balance on gold
  summary   - Value the account at the current price
  simulate  - Project the price and sell at the best year
  reset     - Zero the balance and the holding

Examples:
  investflow gold balance 5000
  investflow gold buy 1000
  investflow gold simulate 10`,
}

var goldPriceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show the current gold price",
	Args:  cobra.NoArgs,
	RunE:  runGoldPrice,
}

var goldBalanceCmd = &cobra.Command{
	Use:   "balance <amount>",
	Short: "Set the gold account's cash balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoldBalance,
}

var goldBuyCmd = &cobra.Command{
	Use:   "buy <amount>",
	Short: "Spend amount of the balance on gold",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoldBuy,
}

var goldSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Value the gold account at the current price",
	Args:  cobra.NoArgs,
	RunE:  runGoldSummary,
}

var goldSimulateCmd = &cobra.Command{
	Use:   "simulate <years>",
	Short: "Simulate future gold prices and sell at the best year",
	Long: `Project the gold price forward one year at a time, growing 1% to 5% a
year, and sell the whole holding at the year with the highest profit.`,
	Args: cobra.ExactArgs(1),
	RunE: runGoldSimulate,
}

var goldResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Zero the gold balance and holding",
	Args:  cobra.NoArgs,
	RunE:  runGoldReset,
}

var goldResetYes bool

func init() {
	rootCmd.AddCommand(goldCmd)
	goldCmd.AddCommand(goldPriceCmd)
	goldCmd.AddCommand(goldBalanceCmd)
	goldCmd.AddCommand(goldBuyCmd)
	goldCmd.AddCommand(goldSummaryCmd)
	goldCmd.AddCommand(goldSimulateCmd)
	goldCmd.AddCommand(goldResetCmd)

	goldResetCmd.Flags().BoolVarP(&goldResetYes, "yes", "y", false, "confirm the reset")
}

func runGoldPrice(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		p, err := a.GoldPrice(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Gold: %s / oz\n", report.Money(p, cfg.Account.Currency))
		return nil
	})
}

func runGoldBalance(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := applied(cmd, a.SetGoldBalance(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Gold balance set to %s\n",
			report.Money(a.Gold.State().Balance, cfg.Account.Currency))
		return nil
	})
}

func runGoldBuy(cmd *cobra.Command, args []string) error {
	amount, err := accounting.ParseAmount(args[0])
	if err != nil {
		return fmt.Errorf("buy gold: %w", err)
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		p, err := a.BuyGold(ctx, amount)
		if err := applied(cmd, err); err != nil {
			return err
		}
		cur := cfg.Account.Currency
		fmt.Fprintf(cmd.OutOrStdout(), "Bought %s at %s for %s. Balance: %s\n",
			report.Ounces(p.Units), report.Money(p.Price, cur), report.Money(p.Amount, cur),
			report.Money(a.Gold.State().Balance, cur))
		return nil
	})
}

func runGoldSummary(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		s, err := a.GoldSummary(ctx)
		if err != nil {
			return err
		}
		return render(cmd, formatter().Gold(s))
	})
}

func runGoldSimulate(cmd *cobra.Command, args []string) error {
	years, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("years %q: %w", args[0], err)
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		res, err := a.SimulateGold(ctx, years)
		if err := applied(cmd, err); err != nil {
			return err
		}
		return render(cmd, formatter().Simulation(res))
	})
}

func runGoldReset(cmd *cobra.Command, args []string) error {
	if !goldResetYes {
		return errors.New("refusing to reset the gold account without --yes")
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		if err := applied(cmd, a.ResetGold()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Gold account reset")
		return nil
	})
}
