package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/models"
)

func testClickEvent() *models.ClickEvent {
	return &models.ClickEvent{
		ID:        "8b0d2c6e-0f5a-4f5e-9a3c-1d2e3f4a5b6c",
		LinkID:    1,
		IP:        "203.0.113.7",
		UserAgent: "curl/8.0",
		Country:   models.GeoUnknown,
		City:      models.GeoUnknown,
		Region:    models.GeoUnknown,
		Device:    models.DeviceUnknown,
		ClickedAt: time.Now(),
	}
}

func TestClickRepository_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("unique visitor bumps both counters", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)
		event := testClickEvent()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO click_events`).
			WithArgs(event.ID, event.LinkID, event.IP, event.UserAgent, event.Referrer,
				event.Country, event.City, event.Region, event.Device, event.IsBot, event.ClickedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE short_links`).
			WithArgs(event.LinkID, 1, event.ClickedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Record(ctx, event, true)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat visitor bumps clicks only", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)
		event := testClickEvent()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO click_events`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE short_links`).
			WithArgs(event.LinkID, 0, event.ClickedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Record(ctx, event, false)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO click_events`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.Record(ctx, testClickEvent(), false)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_HasRecentClick(t *testing.T) {
	ctx := context.Background()
	since := time.Now().Add(-24 * time.Hour)

	t.Run("seen within window", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(1), "203.0.113.7", since).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		seen, err := repo.HasRecentClick(ctx, 1, "203.0.113.7", since)

		require.NoError(t, err)
		assert.True(t, seen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first visit", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(1), "203.0.113.7", since).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		seen, err := repo.HasRecentClick(ctx, 1, "203.0.113.7", since)

		require.NoError(t, err)
		assert.False(t, seen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_Totals(t *testing.T) {
	ctx := context.Background()

	t.Run("link filter", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		linkID := int64(1)
		since := time.Now().Add(-7 * 24 * time.Hour)

		mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, COUNT\(DISTINCT e\.ip\) AS unique_ips`).
			WithArgs(linkID, since).
			WillReturnRows(sqlmock.NewRows([]string{"total", "unique_ips"}).AddRow(42, 17))

		total, uniqueIPs, err := repo.Totals(ctx, database.EventFilter{LinkID: &linkID, Since: since})

		require.NoError(t, err)
		assert.Equal(t, int64(42), total)
		assert.Equal(t, int64(17), uniqueIPs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unbounded owner filter", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		ownerID := int64(7)

		mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, COUNT\(DISTINCT e\.ip\) AS unique_ips`).
			WithArgs(ownerID).
			WillReturnRows(sqlmock.NewRows([]string{"total", "unique_ips"}).AddRow(0, 0))

		total, uniqueIPs, err := repo.Totals(ctx, database.EventFilter{OwnerID: &ownerID})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Zero(t, uniqueIPs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_CountBy(t *testing.T) {
	ctx := context.Background()

	t.Run("grouped by country", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		linkID := int64(1)

		mock.ExpectQuery(`SELECT country AS key, COUNT\(\*\) AS count`).
			WithArgs(linkID).
			WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
				AddRow("Germany", 30).
				AddRow("France", 12))

		buckets, err := repo.CountBy(ctx, database.EventFilter{LinkID: &linkID}, database.ByCountry)

		require.NoError(t, err)
		require.Len(t, buckets, 2)
		assert.Equal(t, models.BucketCount{Key: "Germany", Count: 30}, buckets[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("grouped by date", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		linkID := int64(1)

		mock.ExpectQuery(`SELECT to_char\(clicked_at, 'YYYY-MM-DD'\) AS key`).
			WithArgs(linkID).
			WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("2025-06-01", 5))

		buckets, err := repo.CountBy(ctx, database.EventFilter{LinkID: &linkID}, database.ByDate)

		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, "2025-06-01", buckets[0].Key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_TopLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("ranked by clicks", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		since := time.Now().Add(-30 * 24 * time.Hour)

		mock.ExpectQuery(`SELECT l\.short_code AS short_code, COUNT\(e\.id\) AS clicks`).
			WithArgs(int64(7), &since, 5).
			WillReturnRows(sqlmock.NewRows([]string{"short_code", "clicks"}).
				AddRow("abc12345", 40).
				AddRow("def67890", 2))

		links, err := repo.TopLinks(ctx, 7, since, 5)

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, models.LinkClicks{ShortCode: "abc12345", Clicks: 40}, links[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero window passes null", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewClickRepository(db)

		mock.ExpectQuery(`SELECT l\.short_code AS short_code, COUNT\(e\.id\) AS clicks`).
			WithArgs(int64(7), nil, 5).
			WillReturnRows(sqlmock.NewRows([]string{"short_code", "clicks"}))

		links, err := repo.TopLinks(ctx, 7, time.Time{}, 5)

		require.NoError(t, err)
		assert.Empty(t, links)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
