package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/investflow/app"
	"github.com/rustyeddy/investflow/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
	Long: `Query trade records from the SQLite journal.

Subcommands:
  list   - List recent trades
  trade  - Get details of a specific trade by ID

Examples:
  investflow journal list --account gold
  investflow journal trade <trade-id>`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent trades, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var (
	journalAccount string
	journalLimit   int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalTradeCmd)

	journalListCmd.Flags().StringVarP(&journalAccount, "account", "a", "", "only trades of this account (portfolio or gold)")
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum number of trades (0 for all)")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	switch journalAccount {
	case "", journal.AccountPortfolio, journal.AccountGold:
	default:
		return fmt.Errorf("unknown account %q", journalAccount)
	}
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		recs, err := a.Trades(journalAccount, journalLimit)
		if err != nil {
			return err
		}
		return render(cmd, formatter().Trades(recs))
	})
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		rec, err := a.Trade(args[0])
		if err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
		return render(cmd, formatter().Trades([]journal.TradeRecord{rec}))
	})
}
