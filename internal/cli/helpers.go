package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fulfillment/internal/config"
	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// connect loads the configuration and opens a pool and a service over it.
// The caller closes the pool.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, *core.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("ping: %w", err)
	}

	svc, err := core.NewService(pool, cfg)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return cfg, pool, svc, nil
}

// addQueryFlags registers the table query flags shared by preview and export.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("sku", "", "SKU filter")
	cmd.Flags().String("from", "", "First day, yyyy/MM/dd")
	cmd.Flags().String("to", "", "Last day, yyyy/MM/dd")
	cmd.Flags().Int("per-page", 0, "Rows per page (10, 25, 50 or 100)")
	cmd.Flags().String("cursor", "", "Start after this cursor")
	cmd.Flags().String("sort", "", "Sort by column id")
	cmd.Flags().Bool("desc", false, "Sort descending")
	cmd.Flags().StringP("filter", "f", "", "Live filter text")
}

// queryFromFlags builds the table query the same way the web layer reads
// it from the address bar.
func queryFromFlags(cmd *cobra.Command) (grid.TableQuery, error) {
	v := url.Values{}
	for flag, param := range map[string]string{
		"sku":    grid.ParamSKU,
		"from":   grid.ParamFrom,
		"to":     grid.ParamTo,
		"cursor": grid.CursorParam,
		"sort":   grid.ParamSort,
	} {
		if s, _ := cmd.Flags().GetString(flag); s != "" {
			v.Set(param, s)
		}
	}
	if n, _ := cmd.Flags().GetInt("per-page"); n > 0 {
		v.Set(grid.ParamPerPage, strconv.Itoa(n))
	}
	if desc, _ := cmd.Flags().GetBool("desc"); desc {
		v.Set(grid.ParamDir, "desc")
	}
	return grid.ParseQuery(v)
}

// props builds table props for def over rows.
func props(cfg *config.Config, def core.PageDefinition, rows []grid.RawRow, info *grid.PaginationInfo, q grid.TableQuery) grid.Props {
	opaque := def.OpaqueSet()
	if opaque == nil {
		opaque = cfg.Table.OpaqueSet()
	}
	return grid.Props{
		Columns:          def.GridColumns(),
		TableData:        grid.TableData{Rows: rows},
		Pagination:       info,
		ExportFileName:   def.ExportFileName(),
		HasDateFilter:    def.Filters.Date,
		HasSkuFilter:     def.Filters.SKU,
		HasPerPageFilter: def.Filters.PerPage,
		OpaqueFields:     opaque,
		Query:            q,
	}
}
