package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"printbot/internal/notify"
	"printbot/internal/spool"
)

func newPreviewCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "preview <request.json>",
		Short: "Show how a spool request would be rendered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req, err := spool.Decode(data)
			if err != nil {
				return err
			}
			c := notify.Composer{Style: notify.DefaultStyle()}
			drafts, err := c.Compose(req)
			if err != nil {
				return err
			}
			rendered := renderDrafts(drafts, time.Now())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rendered)
			}

			var rows [][]string
			for i, d := range drafts {
				for j, e := range d.Builder.Embeds() {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						string(d.Kind),
						strconv.Itoa(j + 1),
						e.Title(),
						strconv.Itoa(e.Len()),
						strconv.Itoa(len(e.Fields())),
						e.Image(),
					})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Message", "Kind", "Embed", "Title", "Length", "Fields", "Image"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			for i, r := range rendered {
				if len(r.Files) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "message %d attachments: %v\n", i+1, r.Files)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the rendered payloads as JSON")
	return cmd
}
