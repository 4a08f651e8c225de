package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ktanaka/shucal/internal/export"
	"github.com/ktanaka/shucal/internal/schedule"
)

var (
	exportMonth string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month's schedules as iCalendar",
	Long: `Export writes the given month (default: the current month) as an
iCalendar stream for import into other calendar applications.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportMonth, "month", "m", "", "Month to export as YYYY-MM (default: current month)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if cfg.OwnerID == "" {
		return errors.New("no owner id set; pass --owner or set owner_id in the config")
	}

	month := exportMonth
	if month == "" {
		month = schedule.MonthKey(time.Now())
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}

	log := newLogger()
	defer log.Sync()

	st := buildStore(log)
	defer st.StopWatching()

	records, err := st.Schedules(context.Background(), cfg.OwnerID, month)
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return export.WriteICS(out, records, schedule.Locale(cfg.Locale))
}
