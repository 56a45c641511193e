package models

import (
	"strings"
	"time"

	"inkwell/internal/domain"
)

// MangaGenre is the closed set of storefront categories.
type MangaGenre string

const (
	MangaAction  MangaGenre = "ACTION"
	MangaRomance MangaGenre = "ROMANCE"
	MangaFantasy MangaGenre = "FANTASY"
	MangaHorror  MangaGenre = "HORROR"
	MangaComedy  MangaGenre = "COMEDY"
)

var mangaGenres = map[MangaGenre]bool{
	MangaAction:  true,
	MangaRomance: true,
	MangaFantasy: true,
	MangaHorror:  true,
	MangaComedy:  true,
}

func ParseMangaGenre(raw string) (MangaGenre, error) {
	g := MangaGenre(strings.ToUpper(strings.TrimSpace(raw)))
	if !mangaGenres[g] {
		return "", domain.ValidationError{Field: "genre", Msg: "unknown genre " + raw}
	}
	return g, nil
}

type Manga struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	Genre       MangaGenre `json:"genre"`
	PriceCents  int64      `json:"priceCents"`
	Stock       int        `json:"stock"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
