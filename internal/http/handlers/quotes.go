package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	intconfig "inkwell/internal/config"
	"inkwell/internal/listing"
	"inkwell/internal/models"
	"inkwell/internal/store/sqlstore"

	"github.com/gin-gonic/gin"
)

const quotesDefaultPageSize = 20

var quoteSortKeys = map[string]string{
	"id":        "id",
	"author":    "author",
	"genre":     "genre",
	"createdAt": "created_at",
}

var quoteDefaultSort = listing.Sort{Field: "id", Desc: true}

type quotePayload struct {
	Author string `json:"author" binding:"required"`
	Text   string `json:"text" binding:"required"`
	Genre  string `json:"genre" binding:"required"`
}

func quoteService() listing.Service[models.Quote] {
	return listing.Service[models.Quote]{
		Store:       sqlstore.Quotes{DB: intconfig.DB},
		DefaultSize: quotesDefaultPageSize,
		DefaultSort: quoteDefaultSort,
	}
}

// quoteCriteria builds the filter tree from query parameters.
// author filters by case-insensitive containment, genre by exact enum
// match (several genre params become a membership filter), and search
// fans out across author and text.
func quoteCriteria(q url.Values) (listing.Criteria, error) {
	var crit listing.Criteria

	crit.Contains("author", q.Get("author"))

	genres := []string{}
	for _, raw := range q["genre"] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		g, err := models.ParseGenre(raw)
		if err != nil {
			return crit, err
		}
		genres = append(genres, string(g))
	}
	switch len(genres) {
	case 0:
	case 1:
		crit.Equals("genre", genres[0])
	default:
		crit.In("genre", genres)
	}

	crit.Search(q.Get("search"), "author", "text")
	return crit, nil
}

// GET /api/quotes?author=&genre=&search=&sort=&order=&page=&limit=
func GetQuotes(c *gin.Context) {
	q := c.Request.URL.Query()

	crit, err := quoteCriteria(q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	req, err := listing.ParsePageRequest(q, quotesDefaultPageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sort := listing.ResolveSort(q.Get("sort"), q.Get("order"), quoteSortKeys, quoteDefaultSort)

	page, err := quoteService().List(c.Request.Context(), crit, req, sort)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	page.AttachLinks(q)

	c.JSON(http.StatusOK, page)
}

// GET /api/quotes/:id
func GetQuoteByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	quote, err := sqlstore.Quotes{DB: intconfig.DB}.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// POST /api/quotes
func CreateQuote(c *gin.Context) {
	var payload quotePayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	quote, err := quoteFromPayload(payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	id, err := sqlstore.Quotes{DB: intconfig.DB}.Create(c.Request.Context(), quote)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// PUT /api/quotes/:id
func UpdateQuote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload quotePayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	quote, err := quoteFromPayload(payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	quote.ID = id

	if err := (sqlstore.Quotes{DB: intconfig.DB}).Update(c.Request.Context(), quote); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quote updated"})
}

// DELETE /api/quotes/:id
func DeleteQuote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := (sqlstore.Quotes{DB: intconfig.DB}).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quote deleted"})
}

func quoteFromPayload(p quotePayload) (models.Quote, error) {
	genre, err := models.ParseGenre(p.Genre)
	if err != nil {
		return models.Quote{}, err
	}
	return models.Quote{
		Author: strings.TrimSpace(p.Author),
		Text:   strings.TrimSpace(p.Text),
		Genre:  genre,
	}, nil
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid id")
		return 0, false
	}
	return id, true
}
