package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/feed"
	"inkwell/internal/listing"
	"inkwell/internal/models"

	"github.com/go-sql-driver/mysql"
)

const quoteColumns = "id, author, text, genre, created_at, updated_at"

// Quotes is the quote store over the shared MySQL pool.
type Quotes struct {
	DB *sql.DB
}

// Query runs the count and row queries off the same rendered predicate so
// total and items describe a single logical read.
func (s Quotes) Query(ctx context.Context, pred listing.Predicate, sort listing.Sort, skip, take int) ([]models.Quote, int, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return nil, 0, err
	}
	order, err := orderBy(sort)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.UnavailableError{Msg: "failed to count quotes", Err: err}
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes"+where+order+" LIMIT ? OFFSET ?",
		append(append([]any{}, args...), take, skip)...)
	if err != nil {
		return nil, 0, domain.UnavailableError{Msg: "failed to list quotes", Err: err}
	}
	defer rows.Close()

	list := []models.Quote{}
	for rows.Next() {
		var q models.Quote
		if err := rows.Scan(&q.ID, &q.Author, &q.Text, &q.Genre, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, domain.UnavailableError{Msg: "failed to scan quote", Err: err}
		}
		list = append(list, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.UnavailableError{Msg: "failed to iterate quotes", Err: err}
	}

	return list, total, nil
}

func (s Quotes) GetByID(ctx context.Context, id int64) (models.Quote, error) {
	var q models.Quote
	err := s.DB.QueryRowContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE id = ?", id,
	).Scan(&q.ID, &q.Author, &q.Text, &q.Genre, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Quote{}, domain.NotFoundError{Resource: "quote", Err: err}
	}
	if err != nil {
		return models.Quote{}, domain.UnavailableError{Msg: "failed to load quote", Err: err}
	}
	return q, nil
}

func (s Quotes) Create(ctx context.Context, q models.Quote) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO quotes (author, text, genre) VALUES (?, ?, ?)",
		q.Author, q.Text, q.Genre)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ConflictError{Resource: "quote", Msg: "quote already exists", Err: err}
		}
		return 0, domain.UnavailableError{Msg: "failed to create quote", Err: err}
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s Quotes) Update(ctx context.Context, q models.Quote) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE quotes SET author = ?, text = ?, genre = ? WHERE id = ?",
		q.Author, q.Text, q.Genre, q.ID)
	if err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "quote", Msg: "quote already exists", Err: err}
		}
		return domain.UnavailableError{Msg: "failed to update quote", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "quote"}
	}
	return nil
}

func (s Quotes) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM quotes WHERE id = ?", id)
	if err != nil {
		return domain.UnavailableError{Msg: "failed to delete quote", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "quote"}
	}
	return nil
}

// Name implements feed.Source.
func (s Quotes) Name() string { return "quote" }

// ChangedSince reports quotes touched after the mark. The quotes table has
// no deletion log, so deletions are not reported for this source.
func (s Quotes) ChangedSince(ctx context.Context, since time.Time) ([]feed.Change, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, author, updated_at FROM quotes WHERE updated_at > ? ORDER BY updated_at", since)
	if err != nil {
		return nil, domain.UnavailableError{Msg: "failed to poll quotes", Err: err}
	}
	defer rows.Close()

	var changes []feed.Change
	for rows.Next() {
		var (
			id     int64
			author string
			at     time.Time
		)
		if err := rows.Scan(&id, &author, &at); err != nil {
			return nil, domain.UnavailableError{Msg: "failed to scan quote change", Err: err}
		}
		changes = append(changes, feed.Change{
			ID:      id,
			At:      at,
			Summary: fmt.Sprintf("quote by %s", author),
		})
	}
	return changes, rows.Err()
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
