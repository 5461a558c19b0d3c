package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/fulfillment/internal/config"
	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// DefaultPerPage is the page size used when neither the request nor the
// configuration names one.
const DefaultPerPage = 25

// Service fetches records for the list screens.
type Service struct {
	db             DBTX
	defaultPerPage int
	queryTimeout   time.Duration
	exports        *ExportLimiter
}

// NewService creates a new Service instance.
func NewService(db DBTX, cfg *config.Config) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("new service: nil database")
	}

	s := &Service{
		db:             db,
		defaultPerPage: DefaultPerPage,
		exports:        NewExportLimiter(DefaultMaxConcurrentExports, DefaultExportWaitTime),
	}
	if cfg != nil {
		if cfg.Table.DefaultPerPage > 0 {
			s.defaultPerPage = cfg.Table.DefaultPerPage
		}
		s.queryTimeout = cfg.Database.QueryTimeout
		s.exports = NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime)
	}
	return s, nil
}

// DefaultPageSize returns the page size used when a request names none.
func (s *Service) DefaultPageSize() int {
	return s.defaultPerPage
}

// Exports returns the export concurrency limiter.
func (s *Service) Exports() *ExportLimiter {
	return s.exports
}

// FetchPage reads one page of raw records for pageKey, starting after the
// cursor in q. HasNextPage is true when more records follow; HasPreviousPage
// is true whenever the request carried a cursor.
func (s *Service) FetchPage(ctx context.Context, pageKey string, q grid.TableQuery) (*PageResult, error) {
	def, err := MustGet(pageKey)
	if err != nil {
		return nil, err
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = s.defaultPerPage
	}

	query, args, err := buildPageQuery(def, q, perPage)
	if err != nil {
		return nil, err
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var (
		records []grid.RawRow
		ids     []int64
	)
	for rows.Next() {
		var (
			id   int64
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		record, err := decodeRecord(id, data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasNext := len(records) > perPage
	if hasNext {
		records = records[:perPage]
		ids = ids[:perPage]
	}

	result := &PageResult{
		Rows:    records,
		PerPage: perPage,
		Pagination: grid.PaginationInfo{
			HasNextPage:     hasNext,
			HasPreviousPage: q.Cursor != "",
		},
	}
	if len(ids) > 0 {
		end := EncodeCursor(ids[len(ids)-1])
		result.Pagination.EndCursor = &end
	}
	return result, nil
}

// StreamPage walks every page of pageKey matching q, calling fn for each.
// Used by the CLI export, which is not limited to the page on screen.
func (s *Service) StreamPage(ctx context.Context, pageKey string, q grid.TableQuery, fn func(*PageResult) error) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		page, err := s.FetchPage(ctx, pageKey, q)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		if !page.Pagination.HasNextPage || page.Pagination.EndCursor == nil {
			return nil
		}
		q.Cursor = *page.Pagination.EndCursor
	}
}

// buildPageQuery generates the keyset query for one page. It asks for one
// row more than perPage to learn whether a next page exists.
func buildPageQuery(def PageDefinition, q grid.TableQuery, perPage int) (string, []interface{}, error) {
	src := def.Source
	idCol := quoteIdentifier(src.idColumn())

	wb := NewWhereBuilder()
	if q.Cursor != "" {
		after, err := DecodeCursor(q.Cursor)
		if err != nil {
			return "", nil, err
		}
		wb.AddOp(idCol, ">", after)
	}
	if def.Filters.SKU && q.SKU != "" {
		wb.AddContains(quoteIdentifier(src.skuColumn()), q.SKU)
	}
	if def.Filters.Date {
		created := quoteIdentifier(src.createdColumn())
		if q.From != nil {
			wb.AddOp(created, ">=", *q.From)
		}
		if q.To != nil {
			// Inclusive of the whole "to" day.
			wb.AddOp(created, "<", q.To.AddDate(0, 0, 1))
		}
	}

	whereClause, args := wb.Build()
	query := fmt.Sprintf(
		"SELECT %s, %s FROM %s%s ORDER BY %s ASC LIMIT $%d",
		idCol,
		quoteIdentifier(src.dataColumn()),
		quoteIdentifier(src.Table),
		whereClause,
		idCol,
		wb.NextArgIndex(),
	)
	args = append(args, perPage+1)
	return query, args, nil
}

// decodeRecord decodes a jsonb document. The record id is added under "id"
// when the document does not carry one, so link patterns can use it.
func decodeRecord(id int64, data []byte) (grid.RawRow, error) {
	record := grid.RawRow{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", id, err)
		}
		if record == nil {
			record = grid.RawRow{}
		}
	}
	if _, ok := record["id"]; !ok {
		record["id"] = id
	}
	return record, nil
}
