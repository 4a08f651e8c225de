package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ktanaka/shucal/internal/parser"
	"github.com/ktanaka/shucal/internal/schedule"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a schedule from free-form text",
	Long: `Add parses a schedule out of a short Japanese phrase, for example:

  shucal add "4/15 トヨタ自動車 一次面接"
  shucal add "明日 ソニー 説明会"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if cfg.OwnerID == "" {
		return errors.New("no owner id set; pass --owner or set owner_id in the config")
	}

	text := strings.Join(args, " ")
	result, err := parser.Parse(text)
	if err != nil {
		if errors.Is(err, parser.ErrNoDate) {
			return fmt.Errorf("could not find a date in %q", text)
		}
		return err
	}

	log := newLogger()
	defer log.Sync()

	st := buildStore(log)
	defer st.StopWatching()

	rec := schedule.Record{
		OwnerID:     cfg.OwnerID,
		Type:        result.Type,
		CompanyName: result.CompanyName,
		Date:        result.Date,
	}
	if err := st.Create(context.Background(), rec); err != nil {
		return err
	}

	info, _ := schedule.TypeByCode(result.Type)
	name := info.Name(schedule.Locale(cfg.Locale))
	if name == "" {
		name = string(result.Type)
	}
	fmt.Printf("✅ %s %s (%s)\n", schedule.DateKey(result.Date), result.CompanyName, name)
	return nil
}
