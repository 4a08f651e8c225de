package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ktanaka/shucal/internal/config"
	"github.com/ktanaka/shucal/internal/logger"
	"github.com/ktanaka/shucal/internal/store"
	"github.com/ktanaka/shucal/internal/ui"
)

var (
	cfgFile    string
	ownerFlag  string
	localFlag  string
	storeFlag  string
	localeFlag string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shucal",
	Short: "A terminal calendar for job-hunting schedules",
	Long: `Shucal is a terminal calendar that tracks job-hunting schedules
(ES deadlines, tests, interview rounds) against a schedule store, with
deadline reminders and iCalendar export.`,
	RunE: runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&ownerFlag, "owner", "u", "", "User id whose schedules to show")
	rootCmd.PersistentFlags().StringVarP(&localFlag, "local", "f", "", "Local JSON schedule file to use alongside the remote store")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store-url", "", "Base URL of the schedule store API")
	rootCmd.PersistentFlags().StringVar(&localeFlag, "locale", "", "Display language: ja or ko")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if storeFlag != "" {
		cfg.StoreURL = storeFlag
	}
	if localFlag != "" {
		cfg.LocalStore = localFlag
	}
	if localeFlag != "" {
		cfg.Locale = localeFlag
	}
	if ownerFlag != "" && ownerFlag != cfg.OwnerID {
		// Remember the last-used id for next time.
		if err := config.SaveOwner(cfgFile, cfg, ownerFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist owner id: %v\n", err)
		}
	}
	cfg.Normalize()
}

// buildStore assembles the store stack: the remote HTTP store, optionally
// merged with a watched local JSON file. Reads prefer the remote store;
// creates go to it too.
func buildStore(log *zap.Logger) store.Store {
	remote := store.NewHTTPStore(cfg.StoreURL, log)
	if cfg.LocalStore == "" {
		return remote
	}
	return store.NewComposite(remote, store.NewFileStore(cfg.LocalStore, log))
}

func newLogger() *zap.Logger {
	log, err := logger.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		return zap.NewNop()
	}
	return log
}

func runTUI(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	if cfg.OwnerID == "" {
		fmt.Fprintln(os.Stderr, "Warning: no owner id set; pass --owner or set owner_id in the config")
	}

	st := buildStore(log)
	defer st.StopWatching()

	model := ui.NewModel(cfg, st, log)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
