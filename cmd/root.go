package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hakniyev/cauchysolver/internal/store"
)

var (
	logLevel     string
	dataDir      string
	storeBackend string
)

var rootCmd = &cobra.Command{
	Use:   "cauchysolver",
	Short: "Laguerre spectral solver for nonlinear Cauchy problems",
	Long: `cauchysolver solves y' = f(x, y), y(0) = y0 on [0, 1) by expanding the
solution in Sobolev-Laguerre functions and running Picard iteration on the
expansion coefficients with Gauss-Laguerre quadrature.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		// Logs go to stderr so command output can be piped.
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "Directory for stored results and traces")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", store.BackendFS, "Result store backend (fs, sqlite)")
}

// openStore opens the result store selected by the global flags.
func openStore() (store.Store, error) {
	return store.Open(storeBackend, dataDir)
}
