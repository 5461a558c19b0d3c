package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// maxCellWidth truncates wide cells in the terminal.
const maxCellWidth = 40

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <page>",
		Short: "Print one page of a list screen",
		Long: `Fetch one page of records and print the visible columns, flattened
and filtered exactly as the web grid shows them.

The end cursor is printed so the next page can be requested with --cursor.`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("all-columns", false, "Include hidden columns")
	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	def, err := core.MustGet(args[0])
	if err != nil {
		return err
	}
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, pool, svc, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	start := time.Now()
	page, err := svc.FetchPage(ctx, def.Info.Key, q)
	if err != nil {
		return err
	}
	logger.Debug("page fetched", "page", def.Info.Key, "rows", len(page.Rows), "duration", time.Since(start))

	table := grid.NewTable(grid.NewStore(time.Now()), nil)
	filter, _ := cmd.Flags().GetString("filter")
	table.Store().SetFilterText(filter)
	if all, _ := cmd.Flags().GetBool("all-columns"); all {
		table.SyncColumns(def.GridColumns())
		grid.ShowAll(table.Store())
	}

	view := table.Render(props(cfg, def, page.Rows, &page.Pagination, q))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, paint(titleStyle, def.Info.Label))
	renderTable(out, view)
	fmt.Fprintln(out, paint(mutedStyle, pageFooter(view, page.Pagination)))
	return nil
}

// renderTable writes the view's visible columns and rows as aligned text.
func renderTable(w io.Writer, view grid.View) {
	widths := make([]int, len(view.Visible))
	cells := make([][]string, len(view.Rows))
	for i, col := range view.Visible {
		widths[i] = lipgloss.Width(col.Name)
	}
	for r, row := range view.Rows {
		cells[r] = make([]string, len(view.Visible))
		for i, col := range view.Visible {
			text := truncate(grid.FormatCell(col, row), maxCellWidth)
			cells[r][i] = text
			widths[i] = max(widths[i], lipgloss.Width(text))
		}
	}

	header := make([]string, len(view.Visible))
	for i, col := range view.Visible {
		header[i] = paint(headerStyle, pad(col.Name, widths[i]))
	}
	fmt.Fprintln(w, strings.Join(header, "  "))

	if len(view.Rows) == 0 {
		fmt.Fprintln(w, paint(mutedStyle, "No rows"))
		return
	}
	for _, row := range cells {
		for i := range row {
			row[i] = pad(row[i], widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(row, "  "), " "))
	}
}

func pageFooter(view grid.View, info grid.PaginationInfo) string {
	parts := []string{fmt.Sprintf("%d of %d rows", len(view.Rows), view.TotalRows)}
	if info.HasNextPage && info.EndCursor != nil {
		parts = append(parts, "next: --cursor "+*info.EndCursor)
	}
	return strings.Join(parts, "  ")
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
