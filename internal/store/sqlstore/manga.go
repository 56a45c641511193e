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
)

const mangaColumns = "id, title, author, description, genre, price_cents, stock, created_at, updated_at"

// Manga is the storefront catalog store. Deletes are recorded in
// manga_deletions so the change feed can report them.
type Manga struct {
	DB *sql.DB
}

func (s Manga) Query(ctx context.Context, pred listing.Predicate, sort listing.Sort, skip, take int) ([]models.Manga, int, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return nil, 0, err
	}
	order, err := orderBy(sort)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM manga"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.UnavailableError{Msg: "failed to count manga", Err: err}
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+mangaColumns+" FROM manga"+where+order+" LIMIT ? OFFSET ?",
		append(append([]any{}, args...), take, skip)...)
	if err != nil {
		return nil, 0, domain.UnavailableError{Msg: "failed to list manga", Err: err}
	}
	defer rows.Close()

	list := []models.Manga{}
	for rows.Next() {
		var m models.Manga
		if err := rows.Scan(&m.ID, &m.Title, &m.Author, &m.Description, &m.Genre, &m.PriceCents, &m.Stock, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, domain.UnavailableError{Msg: "failed to scan manga", Err: err}
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.UnavailableError{Msg: "failed to iterate manga", Err: err}
	}

	return list, total, nil
}

func (s Manga) GetByID(ctx context.Context, id int64) (models.Manga, error) {
	var m models.Manga
	err := s.DB.QueryRowContext(ctx,
		"SELECT "+mangaColumns+" FROM manga WHERE id = ?", id,
	).Scan(&m.ID, &m.Title, &m.Author, &m.Description, &m.Genre, &m.PriceCents, &m.Stock, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Manga{}, domain.NotFoundError{Resource: "manga", Err: err}
	}
	if err != nil {
		return models.Manga{}, domain.UnavailableError{Msg: "failed to load manga", Err: err}
	}
	return m, nil
}

func (s Manga) Create(ctx context.Context, m models.Manga) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO manga (title, author, description, genre, price_cents, stock) VALUES (?, ?, ?, ?, ?, ?)",
		m.Title, m.Author, m.Description, m.Genre, m.PriceCents, m.Stock)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ConflictError{Resource: "manga", Msg: "title already in catalog", Err: err}
		}
		return 0, domain.UnavailableError{Msg: "failed to create manga", Err: err}
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s Manga) Update(ctx context.Context, m models.Manga) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE manga SET title = ?, author = ?, description = ?, genre = ?, price_cents = ?, stock = ? WHERE id = ?",
		m.Title, m.Author, m.Description, m.Genre, m.PriceCents, m.Stock, m.ID)
	if err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "manga", Msg: "title already in catalog", Err: err}
		}
		return domain.UnavailableError{Msg: "failed to update manga", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "manga"}
	}
	return nil
}

// Delete removes the row and records it in the deletion log in one
// transaction so a feed tick never sees the delete without its log entry.
func (s Manga) Delete(ctx context.Context, id int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.UnavailableError{Msg: "failed to start delete", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM manga WHERE id = ?", id)
	if err != nil {
		return domain.UnavailableError{Msg: "failed to delete manga", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "manga"}
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO manga_deletions (manga_id) VALUES (?)", id); err != nil {
		return domain.UnavailableError{Msg: "failed to record manga deletion", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return domain.UnavailableError{Msg: "failed to commit delete", Err: err}
	}
	return nil
}

// Name implements feed.Source.
func (s Manga) Name() string { return "manga" }

// ChangedSince reports rows touched after the mark plus logged deletions.
func (s Manga) ChangedSince(ctx context.Context, since time.Time) ([]feed.Change, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, title, updated_at FROM manga WHERE updated_at > ? ORDER BY updated_at", since)
	if err != nil {
		return nil, domain.UnavailableError{Msg: "failed to poll manga", Err: err}
	}
	defer rows.Close()

	var changes []feed.Change
	for rows.Next() {
		var (
			id    int64
			title string
			at    time.Time
		)
		if err := rows.Scan(&id, &title, &at); err != nil {
			return nil, domain.UnavailableError{Msg: "failed to scan manga change", Err: err}
		}
		changes = append(changes, feed.Change{
			ID:      id,
			At:      at,
			Summary: fmt.Sprintf("manga %q", title),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dels, err := s.DB.QueryContext(ctx,
		"SELECT manga_id, deleted_at FROM manga_deletions WHERE deleted_at > ? ORDER BY deleted_at", since)
	if err != nil {
		return nil, domain.UnavailableError{Msg: "failed to poll manga deletions", Err: err}
	}
	defer dels.Close()

	for dels.Next() {
		var (
			id int64
			at time.Time
		)
		if err := dels.Scan(&id, &at); err != nil {
			return nil, domain.UnavailableError{Msg: "failed to scan manga deletion", Err: err}
		}
		changes = append(changes, feed.Change{ID: id, At: at, Deleted: true, Summary: "manga removed from catalog"})
	}
	return changes, dels.Err()
}
