package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"printbot/internal/notify"
)

func newEmbedCommand() *cobra.Command {
	var (
		req    notify.Request
		color  string
		fields []string
		image  string
		dump   bool
	)
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Render a notification from flags without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Fields, err = parseFields(fields); err != nil {
				return err
			}
			if color != "" {
				c, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(color, "#"), "0x"), 16, 32)
				if err != nil {
					return fmt.Errorf("invalid color %q: %w", color, err)
				}
				req.Color = int(c)
			}
			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return err
				}
				req.Image = base64.StdEncoding.EncodeToString(data)
				req.ImageName = filepath.Base(image)
			}

			c := notify.Composer{Style: notify.DefaultStyle()}
			drafts, err := c.Compose(req)
			if err != nil {
				return err
			}
			if dump {
				for _, d := range drafts {
					fmt.Fprint(cmd.OutOrStdout(), d.Builder.String())
				}
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), renderDrafts(drafts, time.Now()))
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Kind, "kind", "info", "Notification kind: info, success, error, progress")
	f.StringVar(&req.Title, "title", "", "Embed title")
	f.StringVar(&req.Description, "description", "", "Embed description")
	f.StringVar(&req.Author, "author", "", "Author shown on every embed")
	f.StringVar(&color, "color", "", "Accent color as hex (e.g. 00ae86)")
	f.StringArrayVar(&fields, "field", nil, "Field as name=value; suffix the name with ! for inline (repeatable)")
	f.StringVar(&image, "image", "", "Image file to attach")
	f.StringVar(&req.File, "file", "", "File to upload alongside")
	f.BoolVar(&dump, "dump", false, "Print a readable dump instead of JSON")
	return cmd
}
