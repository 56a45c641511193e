package models

import (
	"strings"
	"time"

	"inkwell/internal/domain"
)

// Genre is the closed set of quote categories.
type Genre string

const (
	GenreWisdom     Genre = "WISDOM"
	GenreSmart      Genre = "SMART"
	GenreFunny      Genre = "FUNNY"
	GenreLove       Genre = "LOVE"
	GenreMotivation Genre = "MOTIVATION"
)

var quoteGenres = map[Genre]bool{
	GenreWisdom:     true,
	GenreSmart:      true,
	GenreFunny:      true,
	GenreLove:       true,
	GenreMotivation: true,
}

// ParseGenre normalizes and validates a raw genre value.
func ParseGenre(raw string) (Genre, error) {
	g := Genre(strings.ToUpper(strings.TrimSpace(raw)))
	if !quoteGenres[g] {
		return "", domain.ValidationError{Field: "genre", Msg: "unknown genre " + raw}
	}
	return g, nil
}

type Quote struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Genre     Genre     `json:"genre"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
