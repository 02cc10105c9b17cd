package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/app"
	"github.com/rustyeddy/investflow/pricing"
	"github.com/rustyeddy/investflow/report"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price <symbol>...",
	Short: "Show current prices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrice,
}

var watchCmd = &cobra.Command{
	Use:   "watch [symbol...]",
	Short: "Refresh prices until interrupted",
	Long: `Poll current prices on the configured refresh interval (10s by default)
and print each quote with an arrow against the previous one. Without
arguments the favorites are watched.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(watchCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		syms := make([]string, 0, len(args))
		for _, t := range args {
			sym, err := accounting.NormalizeSymbol(t)
			if err != nil {
				return err
			}
			syms = append(syms, sym)
		}
		prices := a.Prices(ctx, syms)
		for _, sym := range syms {
			p, ok := prices[sym]
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s N/A\n", sym)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", sym, report.Money(p, cfg.Account.Currency))
		}
		return nil
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		r, err := a.Refresher(args)
		if err != nil {
			return err
		}
		if len(r.Symbols()) == 0 {
			return fmt.Errorf("nothing to watch: pass symbols or add favorites")
		}

		f := formatter()
		out := cmd.OutOrStdout()
		r.OnQuote = func(q pricing.Quote) {
			fmt.Fprintf(out, "%s  %s\n", q.Time.Format("15:04:05"), f.Quote(q))
		}
		r.OnError = func(sym string, err error) {
			fmt.Fprintf(out, "%s  %s N/A\n", "--:--:--", sym)
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return r.Run(ctx)
	})
}
