package handlers

import (
	"net/http"

	"inkwell/internal/http/middleware"
	"inkwell/internal/listing"

	"github.com/gin-gonic/gin"
)

// Rendered pages reuse the same listing service as the API; the only extra
// is the render time exposed to the template via the timing wrapper.

// GET /
func QuotesPage(c *gin.Context) {
	q := c.Request.URL.Query()

	crit, err := quoteCriteria(q)
	if err != nil {
		c.String(http.StatusBadRequest, "bad filter: %s", err.Error())
		return
	}
	req, err := listing.ParsePageRequest(q, quotesDefaultPageSize)
	if err != nil {
		c.String(http.StatusBadRequest, "bad page: %s", err.Error())
		return
	}

	page, err := quoteService().List(c.Request.Context(), crit, req, quoteDefaultSort)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load quotes")
		return
	}
	page.AttachLinks(q)

	c.HTML(http.StatusOK, "quotes.html", gin.H{
		"Page":       page,
		"RenderedIn": middleware.Elapsed(c).String(),
	})
}

// GET /manga
func MangaPage(c *gin.Context) {
	q := c.Request.URL.Query()

	crit, err := mangaCriteria(q)
	if err != nil {
		c.String(http.StatusBadRequest, "bad filter: %s", err.Error())
		return
	}
	req, err := listing.ParsePageRequest(q, mangaDefaultPageSize)
	if err != nil {
		c.String(http.StatusBadRequest, "bad page: %s", err.Error())
		return
	}

	page, err := mangaService().List(c.Request.Context(), crit, req, mangaDefaultSort)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load catalog")
		return
	}
	page.AttachLinks(q)

	c.HTML(http.StatusOK, "manga.html", gin.H{
		"Page":       page,
		"RenderedIn": middleware.Elapsed(c).String(),
	})
}
