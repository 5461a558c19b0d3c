package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <page>",
		Short: "Export a list screen to a spreadsheet",
		Long: `Walk every page of records matching the filters and write them to an
xlsx workbook, flattened and filtered the way the web export is.

Unlike the web export, which covers the page on screen, this follows the
cursor chain to the end unless --limit stops it first.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	addQueryFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default: the export file name)")
	cmd.Flags().Int("limit", 0, "Stop after this many records (0 = no limit)")
	cmd.Flags().Bool("visible-only", false, "Leave hidden columns out")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	def, err := core.MustGet(args[0])
	if err != nil {
		return err
	}
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := cmd.Context()
	cfg, pool, svc, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	start := time.Now()
	var rows []grid.RawRow
	err = svc.StreamPage(ctx, def.Info.Key, q, func(page *core.PageResult) error {
		rows = append(rows, page.Rows...)
		logger.Debug("page streamed", "page", def.Info.Key, "rows", len(page.Rows), "total", len(rows))
		if limit > 0 && len(rows) >= limit {
			rows = rows[:limit]
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return err
	}

	visibleOnly, _ := cmd.Flags().GetBool("visible-only")
	exporter := grid.NewExporter(grid.ExportOptions{
		Prefix:        cfg.Export.Prefix,
		IncludeHidden: cfg.Export.IncludeHidden && !visibleOnly,
	})
	table := grid.NewTable(grid.NewStore(time.Now()), exporter)
	filter, _ := cmd.Flags().GetString("filter")
	table.Store().SetFilterText(filter)

	p := props(cfg, def, rows, nil, q)
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = exporter.FileName(def.ExportFileName())
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := table.Export(f, p); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	abs, _ := filepath.Abs(output)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d records to %s (%s)\n",
		paint(okStyle, "exported"), len(table.Project(p)), abs, time.Since(start).Round(time.Millisecond))
	return nil
}

var errLimitReached = errors.New("limit reached")
