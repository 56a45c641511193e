package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	intconfig "inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/listing"
	"inkwell/internal/models"
	"inkwell/internal/store/sqlstore"

	"github.com/gin-gonic/gin"
)

const mangaDefaultPageSize = 12

var mangaSortKeys = map[string]string{
	"id":        "id",
	"title":     "title",
	"author":    "author",
	"price":     "price_cents",
	"createdAt": "created_at",
}

var mangaDefaultSort = listing.Sort{Field: "id", Desc: true}

type mangaPayload struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Description string `json:"description"`
	Genre       string `json:"genre" binding:"required"`
	PriceCents  int64  `json:"priceCents" binding:"required"`
	Stock       int    `json:"stock"`
}

func mangaService() listing.Service[models.Manga] {
	return listing.Service[models.Manga]{
		Store:       sqlstore.Manga{DB: intconfig.DB},
		DefaultSize: mangaDefaultPageSize,
		DefaultSort: mangaDefaultSort,
	}
}

func mangaCriteria(q url.Values) (listing.Criteria, error) {
	var crit listing.Criteria

	crit.Contains("title", q.Get("title"))
	crit.Contains("author", q.Get("author"))

	genres := []string{}
	for _, raw := range q["genre"] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		g, err := models.ParseMangaGenre(raw)
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

	minPrice, err := floatParam(q, "minPrice")
	if err != nil {
		return crit, err
	}
	maxPrice, err := floatParam(q, "maxPrice")
	if err != nil {
		return crit, err
	}
	crit.Between("price_cents", minPrice, maxPrice)

	crit.Search(q.Get("search"), "title", "description")
	return crit, nil
}

func floatParam(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.ValidationError{Field: key, Msg: "must be a number", Err: err}
	}
	return &f, nil
}

// GET /api/manga?title=&author=&genre=&minPrice=&maxPrice=&search=&sort=&order=&page=&limit=
func GetManga(c *gin.Context) {
	q := c.Request.URL.Query()

	crit, err := mangaCriteria(q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	req, err := listing.ParsePageRequest(q, mangaDefaultPageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sort := listing.ResolveSort(q.Get("sort"), q.Get("order"), mangaSortKeys, mangaDefaultSort)

	page, err := mangaService().List(c.Request.Context(), crit, req, sort)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	page.AttachLinks(q)

	c.JSON(http.StatusOK, page)
}

// GET /api/manga/:id
func GetMangaByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := sqlstore.Manga{DB: intconfig.DB}.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// POST /api/manga
func CreateManga(c *gin.Context) {
	var payload mangaPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	m, err := mangaFromPayload(payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	id, err := sqlstore.Manga{DB: intconfig.DB}.Create(c.Request.Context(), m)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// PUT /api/manga/:id
func UpdateManga(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload mangaPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	m, err := mangaFromPayload(payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	m.ID = id

	if err := (sqlstore.Manga{DB: intconfig.DB}).Update(c.Request.Context(), m); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "manga updated"})
}

// DELETE /api/manga/:id
func DeleteManga(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := (sqlstore.Manga{DB: intconfig.DB}).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "manga deleted"})
}

func mangaFromPayload(p mangaPayload) (models.Manga, error) {
	genre, err := models.ParseMangaGenre(p.Genre)
	if err != nil {
		return models.Manga{}, err
	}
	if p.PriceCents < 0 {
		return models.Manga{}, domain.ValidationError{Field: "priceCents", Msg: "must not be negative"}
	}
	if p.Stock < 0 {
		return models.Manga{}, domain.ValidationError{Field: "stock", Msg: "must not be negative"}
	}
	return models.Manga{
		Title:       strings.TrimSpace(p.Title),
		Author:      strings.TrimSpace(p.Author),
		Description: strings.TrimSpace(p.Description),
		Genre:       genre,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
	}, nil
}
