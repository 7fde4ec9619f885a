package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"printbot/pkg/upload"
)

func newUploadCommand() *cobra.Command {
	var (
		out      string
		partSize int64
		tempDir  string
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Split a file into attachment-sized parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := upload.Splitter{MaxPartSize: partSize, TempDir: tempDir}
			files, b, err := s.Split(args[0], "")
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				dst := filepath.Join(out, f.Name)
				n, err := copyTo(dst, f.Reader)
				if err != nil {
					return err
				}
				rows = append(rows, []string{f.Name, humanize.IBytes(uint64(n))})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, b.Embeds()[0].Title())
			fmt.Fprintln(w, renderTable([]string{"Part", "Size"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "Directory receiving the parts")
	cmd.Flags().Int64Var(&partSize, "part-size", 0, "Maximum part size in bytes (default and cap: 5 MiB)")
	cmd.Flags().StringVar(&tempDir, "temp-dir", "", "Directory for the intermediate archive")
	return cmd
}

func copyTo(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
