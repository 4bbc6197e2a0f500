package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Table describes how a record type maps onto a content table.
type Table[T any] struct {
	Name string
	// Columns are the writable columns, in the order Values returns them.
	Columns []string
	// Scan returns destinations for id, Columns, created_at and updated_at.
	Scan func(rec *T) []any
	// Values returns the column values of rec, aligned with Columns.
	Values func(rec *T) []any
}

func (t Table[T]) selectList() string {
	cols := make([]string, 0, len(t.Columns)+3)
	cols = append(cols, "id")
	cols = append(cols, t.Columns...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

func (t Table[T]) sortable(column string) bool {
	switch column {
	case "id", "created_at", "updated_at":
		return true
	}
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ListQuery selects a page of records
type ListQuery struct {
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Records is a CRUD repository over one content table
type Records[T any] struct {
	db    *sql.DB
	table Table[T]
	now   func() time.Time
}

// NewRecords creates a repository for the table
func NewRecords[T any](db *sql.DB, table Table[T]) *Records[T] {
	return &Records[T]{db: db, table: table, now: time.Now}
}

// WithClock replaces the clock used for created_at and updated_at
func (r *Records[T]) WithClock(now func() time.Time) *Records[T] {
	r.now = now
	return r
}

// List returns one page of records and the total row count
func (r *Records[T]) List(ctx context.Context, q ListQuery) ([]T, int, error) {
	if !r.table.sortable(q.OrderBy) {
		return nil, 0, fmt.Errorf("column %q is not sortable on %s", q.OrderBy, r.table.Name)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.table.Name).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.table.Name, err)
	}

	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s %s, id ASC LIMIT $1 OFFSET $2",
		r.table.selectList(), r.table.Name, q.OrderBy, dir)

	rows, err := r.db.QueryContext(ctx, query, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", r.table.Name, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := rows.Scan(r.table.Scan(&rec)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s row: %w", r.table.Name, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating %s: %w", r.table.Name, err)
	}

	return items, total, nil
}

// Get returns one record, or ErrNotFound
func (r *Records[T]) Get(ctx context.Context, id int64) (*T, error) {
	var rec T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.table.selectList(), r.table.Name)
	err := r.db.QueryRowContext(ctx, query, id).Scan(r.table.Scan(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", r.table.Name, id, err)
	}
	return &rec, nil
}

// Create inserts rec and returns the assigned id
func (r *Records[T]) Create(ctx context.Context, rec *T) (int64, error) {
	now := Timestamp(r.now())
	args := append(r.table.Values(rec), now, now)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s, created_at, updated_at) VALUES (%s) RETURNING id",
		r.table.Name, strings.Join(r.table.Columns, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", r.table.Name, err)
	}
	return id, nil
}

// Update overwrites every writable column of the record, or returns ErrNotFound
func (r *Records[T]) Update(ctx context.Context, id int64, rec *T) error {
	args := r.table.Values(rec)

	sets := make([]string, 0, len(r.table.Columns)+1)
	for i, col := range r.table.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, Timestamp(r.now()), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", r.table.Name, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", r.table.Name, id, err)
	}
	return requireAffected(res)
}

// Delete removes the record, or returns ErrNotFound
func (r *Records[T]) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table.Name), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.table.Name, id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
