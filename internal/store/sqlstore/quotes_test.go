package sqlstore

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/listing"
	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newMock(t *testing.T) (*Quotes, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Quotes{DB: db}, mock
}

func TestQuotesQueryCountAndRowsShareThePredicate(t *testing.T) {
	store, mock := newMock(t)

	var crit listing.Criteria
	crit.Contains("author", "Einstein")
	crit.Equals("genre", "SMART")

	where := " WHERE (LOWER(author) LIKE ? AND genre = ?)"
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT(*) FROM quotes"+where).
		WithArgs("%einstein%", "SMART").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery("SELECT "+quoteColumns+" FROM quotes"+where+" ORDER BY id DESC LIMIT ? OFFSET ?").
		WithArgs("%einstein%", "SMART", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "text", "genre", "created_at", "updated_at"}).
			AddRow(5, "Albert Einstein", "Imagination is more important than knowledge.", "SMART", now, now).
			AddRow(3, "Einstein", "Look deep into nature.", "SMART", now, now))

	items, total, err := store.Query(context.Background(), crit.Predicate(), listing.Sort{Field: "id", Desc: true}, 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total=%d items=%d, want 2/2", total, len(items))
	}
	if items[0].ID != 5 || items[0].Genre != models.GenreSmart {
		t.Fatalf("unexpected first row %+v", items[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuotesQueryRejectsUnsupportedPredicate(t *testing.T) {
	store, _ := newMock(t)

	pred := listing.Predicate{Cond: &listing.Condition{Field: "author", Op: listing.Op(42), Text: "x"}}
	_, _, err := store.Query(context.Background(), pred, listing.Sort{}, 0, 20)
	if !domain.IsValidation(err) {
		t.Fatalf("unsupported operator should surface as client input error, got %v", err)
	}
}

func TestQuotesGetByIDNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("SELECT " + quoteColumns + " FROM quotes WHERE id = ?").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetByID(context.Background(), 99)
	if !domain.IsNotFound(err) {
		t.Fatalf("missing row should map to not-found, got %v", err)
	}
}

func TestQuotesCreateDuplicateMapsToConflict(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("INSERT INTO quotes (author, text, genre) VALUES (?, ?, ?)").
		WithArgs("A", "B", models.GenreFunny).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate"})

	_, err := store.Create(context.Background(), models.Quote{Author: "A", Text: "B", Genre: models.GenreFunny})
	if !domain.IsConflict(err) {
		t.Fatalf("duplicate key should map to conflict, got %v", err)
	}
}

func TestQuotesUpdateMissingRowNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("UPDATE quotes SET author = ?, text = ?, genre = ? WHERE id = ?").
		WithArgs("A", "B", models.GenreLove, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), models.Quote{ID: 7, Author: "A", Text: "B", Genre: models.GenreLove})
	if !domain.IsNotFound(err) {
		t.Fatalf("zero affected rows should map to not-found, got %v", err)
	}
}

func TestQuotesChangedSince(t *testing.T) {
	store, mock := newMock(t)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	at := since.Add(time.Hour)

	mock.ExpectQuery("SELECT id, author, updated_at FROM quotes WHERE updated_at > ? ORDER BY updated_at").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "updated_at"}).
			AddRow(11, "Basho", at))

	changes, err := store.ChangedSince(context.Background(), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 || changes[0].ID != 11 || changes[0].Deleted {
		t.Fatalf("unexpected changes %+v", changes)
	}
	if !changes[0].At.Equal(at) {
		t.Fatalf("change timestamp = %v, want %v", changes[0].At, at)
	}
}
