package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pagedetect"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pagedetect.StrategyService = (*StrategyService)(nil)

// StrategyService implements pagedetect.StrategyService using SQLite. The
// pagination and scroll payloads are stored as JSON columns; the queryable
// fields (site URL, method) are promoted to real columns.
type StrategyService struct {
	db *DB
}

// NewStrategyService creates a new StrategyService.
func NewStrategyService(db *DB) *StrategyService {
	return &StrategyService{db: db}
}

// CreateStrategy creates a new strategy, replacing any existing one for the
// same site URL. A re-detection supersedes the old strategy; two strategies
// for one site would be ambiguous at replay time.
func (s *StrategyService) CreateStrategy(ctx context.Context, strategy *pagedetect.Strategy) error {
	if err := strategy.Validate(); err != nil {
		return err
	}

	if strategy.ID == "" {
		strategy.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if strategy.CreatedAt.IsZero() {
		strategy.CreatedAt = now
	}
	strategy.UpdatedAt = now

	pagination, err := marshalNullable(strategy.Pagination)
	if err != nil {
		return err
	}
	scroll, err := marshalNullable(strategy.Scroll)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO strategies (id, site_url, method, source, pagination, scroll, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(site_url) DO UPDATE SET
			id = excluded.id,
			method = excluded.method,
			source = excluded.source,
			pagination = excluded.pagination,
			scroll = excluded.scroll,
			updated_at = excluded.updated_at
	`, strategy.ID, strategy.SiteURL, string(strategy.Method), string(strategy.Source),
		pagination, scroll,
		strategy.CreatedAt.Format(time.RFC3339), strategy.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindStrategyBySiteURL retrieves the strategy stored for a site.
func (s *StrategyService) FindStrategyBySiteURL(ctx context.Context, siteURL string) (*pagedetect.Strategy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, site_url, method, source, pagination, scroll, created_at, updated_at
		FROM strategies
		WHERE site_url = ?
	`, siteURL)

	strategy, err := scanStrategy(row.Scan)
	if err == sql.ErrNoRows {
		return nil, pagedetect.Errorf(pagedetect.ENOTFOUND, "no strategy stored for %q", siteURL)
	}
	return strategy, err
}

// FindStrategies retrieves strategies matching the filter, most recently
// updated first.
func (s *StrategyService) FindStrategies(ctx context.Context, filter pagedetect.StrategyFilter) ([]*pagedetect.Strategy, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, site_url, method, source, pagination, scroll, created_at, updated_at FROM strategies WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.SiteURL != nil {
		query.WriteString(" AND site_url = ?")
		args = append(args, *filter.SiteURL)
	}
	if filter.Method != nil {
		query.WriteString(" AND method = ?")
		args = append(args, string(*filter.Method))
	}

	query.WriteString(" ORDER BY updated_at DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var strategies []*pagedetect.Strategy
	for rows.Next() {
		strategy, err := scanStrategy(rows.Scan)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}

	return strategies, rows.Err()
}

// DeleteStrategy permanently removes a strategy.
func (s *StrategyService) DeleteStrategy(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM strategies WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return pagedetect.Errorf(pagedetect.ENOTFOUND, "strategy not found")
	}
	return nil
}

// scanStrategy reads one strategy row via the given scan function.
func scanStrategy(scan func(dest ...any) error) (*pagedetect.Strategy, error) {
	var strategy pagedetect.Strategy
	var method, source string
	var pagination, scroll sql.NullString
	var createdAt, updatedAt string

	if err := scan(&strategy.ID, &strategy.SiteURL, &method, &source,
		&pagination, &scroll, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	strategy.Method = pagedetect.Method(method)
	strategy.Source = pagedetect.Source(source)

	if pagination.Valid && pagination.String != "" {
		strategy.Pagination = &pagedetect.PaginationInfo{}
		if err := json.Unmarshal([]byte(pagination.String), strategy.Pagination); err != nil {
			return nil, fmt.Errorf("failed to parse pagination payload: %w", err)
		}
	}
	if scroll.Valid && scroll.String != "" {
		strategy.Scroll = &pagedetect.ScrollInfo{}
		if err := json.Unmarshal([]byte(scroll.String), strategy.Scroll); err != nil {
			return nil, fmt.Errorf("failed to parse scroll payload: %w", err)
		}
	}

	var parseErr error
	strategy.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", parseErr)
	}
	strategy.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", parseErr)
	}

	return &strategy, nil
}

// marshalNullable JSON-encodes v, mapping a nil pointer to SQL NULL.
func marshalNullable(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *pagedetect.PaginationInfo:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *pagedetect.ScrollInfo:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
