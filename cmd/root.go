package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/config"
	"github.com/abhisek/wordiz/internal/logger"
	"github.com/abhisek/wordiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "wordiz",
	Short: "Vocabulary trainer for the terminal",
	Long:  "Wordiz is a terminal client for learning vocabulary from a word-store server. It can also read any text aloud word by word.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WORDIZ_DB_PATH)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("api", "", "Word-store base URL (overrides WORDIZ_API_BASE_URL)")

	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the layered configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: file})
	if err != nil {
		return nil, err
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.SetBaseURL(api)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger opens the file logger, falling back to a no-op logger so a
// read-only log directory never blocks the app.
func newLogger(cfg *config.Config) *zap.Logger {
	l, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		return zap.NewNop()
	}
	return l
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured db.path (WORDIZ_DB_PATH), then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}
