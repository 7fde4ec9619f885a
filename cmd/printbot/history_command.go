package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"printbot/internal/config"
	"printbot/internal/storage"
	logx "printbot/pkg/logx"
)

func newHistoryCommand(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent dispatches from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigManager(*configPath).Parse()
			if err != nil {
				return err
			}
			busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, time.Second)
			if err != nil {
				return err
			}
			st, err := storage.Open(storage.Config{
				Driver:      cfg.Storage.Driver,
				Path:        cfg.Storage.Path,
				BusyTimeout: busy,
			}, logx.Nop())
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("dispatch journal disabled (storage.driver)")
			}
			defer st.Close()

			recs, err := st.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dispatches recorded")
				return nil
			}
			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				status := "sent"
				if r.Error != "" {
					status = "failed: " + r.Error
				}
				rows = append(rows, []string{
					humanize.Time(r.At),
					r.Kind,
					r.Title,
					fmt.Sprintf("%d/%d", r.Embeds, r.Files),
					status,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"When", "Kind", "Title", "Embeds/Files", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of dispatches to show")
	return cmd
}
