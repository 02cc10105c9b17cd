package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/rustyeddy/investflow/app"
	"github.com/rustyeddy/investflow/config"
	"github.com/rustyeddy/investflow/internal/logger"
	"github.com/rustyeddy/investflow/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "investflow",
	Short: "A paper-trading portfolio and gold savings simulator",
	Long: `Investflow tracks a simulated stock portfolio and a gold savings account.

It provides tools for:
  - Buying and selling stocks at live market prices with paper cash
  - Valuing the portfolio against current quotes
  - Buying gold from a separate balance and projecting its future price
  - Watching live prices for a list of favorite tickers
  - Keeping a journal of every executed trade

State is saved after every change to the configured store (JSON files
by default).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	cfgFile  string
	dataDir  string
	logLevel string
	plain    bool

	cfg *config.Config
	log *zap.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults and INVESTFLOW_* env vars apply")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for saved state (overrides storage.dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides log.level)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print raw markdown instead of styled output")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err = logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

// withApp opens the application state, runs fn and saves everything.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Open(ctx, cfg, app.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn("closing state failed", zap.Error(cerr))
		}
		_ = log.Sync()
	}()

	return fn(ctx, a)
}

// applied lets a change through when only saving it failed. The change is
// live in memory and gets saved again on close.
func applied(cmd *cobra.Command, err error) error {
	if errors.Is(err, accounting.ErrPersistence) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	return err
}

func formatter() report.Formatter {
	return report.Formatter{Currency: cfg.Account.Currency}
}

func render(cmd *cobra.Command, md string) error {
	out, err := report.Render(md, plain)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
