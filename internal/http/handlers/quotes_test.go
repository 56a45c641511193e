package handlers

import (
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	intconfig "inkwell/internal/config"
	"inkwell/internal/http/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func quotesTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		intconfig.DB = nil
	})
	intconfig.DB = db

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Timing())
	r.GET("/api/quotes", middleware.ETag(), GetQuotes)
	return r, mock
}

func expectQuoteList(mock sqlmock.Sqlmock, where string, args []driver.Value, total int, rows *sqlmock.Rows, take, skip int) {
	mock.ExpectQuery("SELECT COUNT(*) FROM quotes" + where).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(total))

	selArgs := append(append([]driver.Value{}, args...), take, skip)
	mock.ExpectQuery("SELECT id, author, text, genre, created_at, updated_at FROM quotes" + where + " ORDER BY id DESC LIMIT ? OFFSET ?").
		WithArgs(selArgs...).
		WillReturnRows(rows)
}

func TestGetQuotesFilteredAndPaginated(t *testing.T) {
	r, mock := quotesTestRouter(t)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "author", "text", "genre", "created_at", "updated_at"}).
		AddRow(5, "Albert Einstein", "Imagination is more important than knowledge.", "SMART", at, at).
		AddRow(3, "Einstein", "Look deep into nature.", "SMART", at, at)

	where := " WHERE (LOWER(author) LIKE ? AND genre = ?)"
	expectQuoteList(mock, where, []driver.Value{"%einstein%", "SMART"}, 2, rows, 3, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes?author=Einstein&genre=SMART&limit=3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var body struct {
		Items       []map[string]any `json:"items"`
		Total       int              `json:"total"`
		CurrentPage int              `json:"currentPage"`
		TotalPages  int              `json:"totalPages"`
		HasNext     bool             `json:"hasNext"`
		HasPrev     bool             `json:"hasPrev"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if body.Total != 2 || len(body.Items) != 2 {
		t.Fatalf("total=%d items=%d, want 2/2", body.Total, len(body.Items))
	}
	if body.TotalPages != 1 || body.HasNext || body.HasPrev {
		t.Fatalf("unexpected page meta: %+v", body)
	}
	if body.Items[0]["author"] != "Albert Einstein" {
		t.Fatalf("default sort order lost: %+v", body.Items[0])
	}

	if w.Header().Get("X-Response-Time") == "" {
		t.Fatalf("missing timing header on API response")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetQuotesSecondCallWithValidatorReturns304(t *testing.T) {
	r, mock := quotesTestRouter(t)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		rows := sqlmock.NewRows([]string{"id", "author", "text", "genre", "created_at", "updated_at"}).
			AddRow(1, "Basho", "An old silent pond...", "WISDOM", at, at)
		expectQuoteList(mock, "", nil, 1, rows, 20, 0)
	}

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("first call status = %d", w1.Code)
	}
	tag := w1.Header().Get("ETag")
	if tag == "" {
		t.Fatalf("first call missing validator")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
	req.Header.Set("If-None-Match", tag)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call status = %d, want 304", w2.Code)
	}
	if w2.Body.Len() != 0 {
		t.Fatalf("304 must have an empty body, got %q", w2.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("handler must run on both calls: %v", err)
	}
}

func TestGetQuotesUnknownGenreRejectedBeforeStore(t *testing.T) {
	r, mock := quotesTestRouter(t)
	// no expectations: the store must not be touched

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes?genre=BOGUS", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error json: %v", err)
	}
	if body["code"] != "validation_error" {
		t.Fatalf("error body should carry the kind, got %v", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store was touched for invalid input: %v", err)
	}
}

func TestGetQuotesNonNumericPageRejected(t *testing.T) {
	r, _ := quotesTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes?page=two", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetQuotesNavLinksKeepFilterContext(t *testing.T) {
	r, mock := quotesTestRouter(t)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "author", "text", "genre", "created_at", "updated_at"}).
		AddRow(4, "Einstein", "Page two content.", "SMART", at, at)

	where := " WHERE LOWER(author) LIKE ?"
	expectQuoteList(mock, where, []driver.Value{"%einstein%"}, 7, rows, 3, 3)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes?author=Einstein&page=2&limit=3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		NextPageLink string `json:"nextPageLink"`
		PrevPageLink string `json:"prevPageLink"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	for _, link := range []string{body.NextPageLink, body.PrevPageLink} {
		if link == "" {
			t.Fatalf("expected both nav links, got %+v", body)
		}
		u, err := url.Parse(link)
		if err != nil {
			t.Fatalf("bad link %q: %v", link, err)
		}
		if u.Query().Get("author") != "Einstein" || u.Query().Get("limit") != "3" {
			t.Fatalf("link %q lost the filter context", link)
		}
	}
}
