package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ktanaka/shucal/internal/notify"
	"github.com/ktanaka/shucal/internal/schedule"
)

var notifyOnce bool

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run the deadline reminder sweep",
	Long: `Notify sends countdown reminders (D-10, D-5, D-3, D-1 by default)
for upcoming schedules. Without --once it keeps running and sweeps on the
configured cron schedule; each reminder is sent at most once.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().BoolVar(&notifyOnce, "once", false, "Sweep once and exit instead of running on a schedule")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	if cfg.OwnerID == "" {
		return errors.New("no owner id set; pass --owner or set owner_id in the config")
	}

	log := newLogger()
	defer log.Sync()

	st := buildStore(log)
	defer st.StopWatching()

	locale := schedule.Locale(cfg.Locale)
	sink := notify.SinkFunc(func(_ string, r notify.Reminder) error {
		_, err := fmt.Println(r.Text(locale))
		return err
	})

	n := notify.New(st, sink, log, cfg.OwnerID, locale,
		cfg.Notify.Offsets, cfg.Notify.StateFile)

	if notifyOnce {
		return n.Sweep(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return n.Run(ctx, cfg.Notify.Cron)
}
