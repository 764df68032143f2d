package models

import (
	"fmt"
	"strings"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// Other returns the type the navbar toggle switches to.
func (t MediaType) Other() MediaType {
	if t == MediaTypeTV {
		return MediaTypeMovie
	}
	return MediaTypeTV
}

func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown media type %q", s)
	}
	return t, nil
}

type Category string

const (
	CategoryTrending Category = "trending"
	CategoryPopular  Category = "popular"
	CategoryTopRated Category = "top_rated"
	CategoryUpcoming Category = "upcoming"
)

// Categories lists the navbar entries in display order.
var Categories = []Category{CategoryTrending, CategoryPopular, CategoryTopRated, CategoryUpcoming}

func (c Category) Valid() bool {
	switch c {
	case CategoryTrending, CategoryPopular, CategoryTopRated, CategoryUpcoming:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Label is the user-facing name of a category. TV has no "upcoming" listing
// upstream, so the entry is shown as the airing-now list instead.
func (c Category) Label(t MediaType) string {
	switch c {
	case CategoryTrending:
		return "Trending"
	case CategoryPopular:
		return "Popular"
	case CategoryTopRated:
		return "Top Rated"
	case CategoryUpcoming:
		if t == MediaTypeTV {
			return "Airing Today"
		}
		return "Upcoming"
	}
	return string(c)
}

// Item is a single movie or TV show as returned by the metadata API.
// Identity is (Type, ID).
type Item struct {
	ID           int       `json:"id"`
	Type         MediaType `json:"media_type"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	Overview     string    `json:"overview"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
}

// DisplayTitle returns the movie title or, for TV, the show name.
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

func (i Item) Released() string {
	if i.ReleaseDate != "" {
		return i.ReleaseDate
	}
	return i.FirstAirDate
}

func (i Item) Key() string {
	return fmt.Sprintf("%s:%d", i.Type, i.ID)
}

const PosterPlaceholder = "https://via.placeholder.com/300x450?text=No+Image"

// PosterURL joins the poster path onto imageBase, or returns the placeholder
// when the item has no poster.
func (i Item) PosterURL(imageBase string) string {
	if i.PosterPath == "" {
		return PosterPlaceholder
	}
	return strings.TrimRight(imageBase, "/") + i.PosterPath
}

// BackdropURL is empty when the item has no backdrop.
func (i Item) BackdropURL(imageBase string) string {
	if i.BackdropPath == "" {
		return ""
	}
	return strings.TrimRight(imageBase, "/") + i.BackdropPath
}
