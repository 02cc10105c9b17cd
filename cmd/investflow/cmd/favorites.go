package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/investflow/app"
	"github.com/rustyeddy/investflow/report"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage the favorite tickers",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite tickers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return render(cmd, report.Favorites(a.Favorites.List()))
		})
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <symbol>...",
	Short: "Add tickers to favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			for _, t := range args {
				sym, err := a.Favorites.Add(t)
				if errors.Is(err, app.ErrDuplicateFavorite) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already in favorites\n", sym)
					continue
				}
				if err := applied(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", sym)
			}
			return nil
		})
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <symbol>...",
	Aliases: []string{"rm"},
	Short:   "Remove tickers from favorites",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			for _, t := range args {
				sym, err := a.Favorites.Remove(t)
				if errors.Is(err, app.ErrNotFavorite) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not in favorites\n", sym)
					continue
				}
				if err := applied(cmd, err); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", sym)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
}
