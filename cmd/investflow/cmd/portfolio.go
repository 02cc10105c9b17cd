package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/app"
	"github.com/rustyeddy/investflow/ledger"
	"github.com/rustyeddy/investflow/report"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show and trade the stock portfolio",
	Long: `Trade stocks with paper cash at the current market price.

Subcommands:
  show    - Value every position at current prices
  buy     - Buy shares at the current price
  sell    - Sell shares at the current price
  export  - Write the portfolio to the export blob

Examples:
  investflow portfolio buy AAPL 10
  investflow portfolio sell AAPL 4
  investflow portfolio show`,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Value the portfolio at current prices",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioShow,
}

var portfolioBuyCmd = &cobra.Command{
	Use:   "buy <symbol> <quantity>",
	Short: "Buy shares at the current price",
	Args:  cobra.ExactArgs(2),
	RunE:  runPortfolioTrade(func(ctx context.Context, a *app.App, sym string, qty float64) (ledger.Fill, error) {
		return a.BuyStock(ctx, sym, qty)
	}),
}

var portfolioSellCmd = &cobra.Command{
	Use:   "sell <symbol> <quantity>",
	Short: "Sell shares at the current price",
	Args:  cobra.ExactArgs(2),
	RunE:  runPortfolioTrade(func(ctx context.Context, a *app.App, sym string, qty float64) (ledger.Fill, error) {
		return a.SellStock(ctx, sym, qty)
	}),
}

var portfolioExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the portfolio snapshot",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioExport,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioBuyCmd)
	portfolioCmd.AddCommand(portfolioSellCmd)
	portfolioCmd.AddCommand(portfolioExportCmd)
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		return render(cmd, formatter().Portfolio(a.PortfolioValue(ctx)))
	})
}

type tradeFunc func(ctx context.Context, a *app.App, sym string, qty float64) (ledger.Fill, error)

func runPortfolioTrade(trade tradeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("%w: quantity %q", accounting.ErrInvalidInput, args[1])
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			fill, err := trade(ctx, a, args[0], qty)
			if err := applied(cmd, err); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter().Fill(fill))
			return nil
		})
	}
}

func runPortfolioExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		snap, err := a.Export(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d positions, cash %s\n",
			len(snap.Positions), report.Money(snap.Cash, cfg.Account.Currency))
		return nil
	})
}
