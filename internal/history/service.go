package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Service stores and lists request submissions.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger *zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Create records a submission.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO request_history (event_type, media_type, tmdb_id, request_id, title, source, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, event_type, media_type, tmdb_id, request_id, title, source, message, created_at`,
		string(input.EventType), input.MediaType, input.TMDBID, input.RequestID,
		input.Title, input.Source, input.Message,
	)

	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create history entry: %w", err)
	}

	s.logger.Debug().
		Int64("id", entry.ID).
		Str("eventType", string(entry.EventType)).
		Str("title", entry.Title).
		Msg("recorded request history")
	return entry, nil
}

// List returns entries newest first, optionally filtered by event or media type.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}

	const filter = `WHERE (? = '' OR event_type = ?) AND (? = '' OR media_type = ?)`
	filterArgs := []any{opts.EventType, opts.EventType, opts.MediaType, opts.MediaType}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM request_history `+filter, filterArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	offset := (opts.Page - 1) * opts.PageSize
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, media_type, tmdb_id, request_id, title, source, message, created_at
		FROM request_history `+filter+`
		ORDER BY id DESC
		LIMIT ? OFFSET ?`,
		append(filterArgs, opts.PageSize, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0, opts.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int(total) / opts.PageSize
	if int(total)%opts.PageSize > 0 {
		totalPages++
	}

	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// DeleteAll deletes all history entries.
func (s *Service) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM request_history`)
	return err
}

// DeleteOlderThan removes entries created more than days ago and returns the
// number removed.
func (s *Service) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM request_history WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Int("retentionDays", days).Msg("cleaned up request history")
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e         Entry
		eventType string
		createdAt time.Time
	)
	if err := row.Scan(&e.ID, &eventType, &e.MediaType, &e.TMDBID, &e.RequestID,
		&e.Title, &e.Source, &e.Message, &createdAt); err != nil {
		return nil, err
	}
	e.EventType = EventType(eventType)
	e.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &e, nil
}
