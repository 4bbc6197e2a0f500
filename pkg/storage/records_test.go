package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/etm-murmansk/site/pkg/storage"
	"github.com/etm-murmansk/site/pkg/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partnerRow struct {
	ID          int64
	Name        string
	LogoURL     string
	Website     string
	Description string
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var partnerTable = storage.Table[partnerRow]{
	Name:    "partners",
	Columns: []string{"name", "logo_url", "website", "description", "sort_order"},
	Scan: func(p *partnerRow) []any {
		return []any{&p.ID, &p.Name, &p.LogoURL, &p.Website, &p.Description, &p.Order, &p.CreatedAt, &p.UpdatedAt}
	},
	Values: func(p *partnerRow) []any {
		return []any{p.Name, p.LogoURL, p.Website, p.Description, p.Order}
	},
}

func TestRecords_CRUD(t *testing.T) {
	db := storagetest.NewDB(t)
	ctx := context.Background()

	clock := time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	repo := storage.NewRecords(db, partnerTable).WithClock(func() time.Time { return clock })

	id, err := repo.Create(ctx, &partnerRow{Name: "Норникель", LogoURL: "https://example.com/n.png", Order: 2})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Норникель", got.Name)
	assert.Equal(t, 2, got.Order)
	assert.True(t, got.CreatedAt.Equal(clock))

	clock = clock.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, id, &partnerRow{Name: "Росатом", LogoURL: "https://example.com/r.png", Order: 1}))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Росатом", got.Name)
	assert.True(t, got.UpdatedAt.Equal(clock))
	assert.True(t, got.CreatedAt.Before(got.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), storage.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, id, &partnerRow{Name: "x"}), storage.ErrNotFound)
}

func TestRecords_ListPagingAndOrder(t *testing.T) {
	db := storagetest.NewDB(t)
	ctx := context.Background()
	repo := storage.NewRecords(db, partnerTable)

	for i, name := range []string{"c", "a", "b"} {
		_, err := repo.Create(ctx, &partnerRow{Name: name, LogoURL: "https://example.com/x.png", Order: 3 - i})
		require.NoError(t, err)
	}

	items, total, err := repo.List(ctx, storage.ListQuery{OrderBy: "sort_order", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{items[0].Name, items[1].Name, items[2].Name})

	items, total, err = repo.List(ctx, storage.ListQuery{OrderBy: "sort_order", Desc: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "total is independent of paging")
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Name)

	items, _, err = repo.List(ctx, storage.ListQuery{OrderBy: "sort_order", Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestRecords_ListRejectsUnknownColumn(t *testing.T) {
	db := storagetest.NewDB(t)
	repo := storage.NewRecords(db, partnerTable)

	_, _, err := repo.List(context.Background(), storage.ListQuery{OrderBy: "name; DROP TABLE partners", Limit: 10})
	assert.Error(t, err)
}

func TestRecords_DatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewRecords(db, partnerTable)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM partners").WillReturnError(errors.New("timeout"))
	_, _, err = repo.List(context.Background(), storage.ListQuery{OrderBy: "sort_order", Limit: 10})
	assert.ErrorContains(t, err, "failed to count partners")

	mock.ExpectExec("DELETE FROM partners WHERE id = \\$1").WithArgs(int64(5)).WillReturnError(errors.New("locked"))
	err = repo.Delete(context.Background(), 5)
	assert.ErrorContains(t, err, "locked")
	assert.NotErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
