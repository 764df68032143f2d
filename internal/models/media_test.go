package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		cat  Category
		typ  MediaType
		want string
	}{
		{CategoryTrending, MediaTypeMovie, "Trending"},
		{CategoryPopular, MediaTypeTV, "Popular"},
		{CategoryTopRated, MediaTypeMovie, "Top Rated"},
		{CategoryUpcoming, MediaTypeMovie, "Upcoming"},
		{CategoryUpcoming, MediaTypeTV, "Airing Today"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cat.Label(tt.typ), "%s/%s", tt.typ, tt.cat)
	}
}

func TestParse(t *testing.T) {
	c, err := ParseCategory(" Top_Rated ")
	require.NoError(t, err)
	assert.Equal(t, CategoryTopRated, c)

	_, err = ParseCategory("now_playing")
	assert.Error(t, err)

	mt, err := ParseMediaType("TV")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTV, mt)
	assert.Equal(t, MediaTypeMovie, mt.Other())

	_, err = ParseMediaType("anime")
	assert.Error(t, err)
}

func TestItemFallbacks(t *testing.T) {
	show := Item{ID: 7, Type: MediaTypeTV, Name: "Show", FirstAirDate: "2020-01-02"}
	assert.Equal(t, "Show", show.DisplayTitle())
	assert.Equal(t, "2020-01-02", show.Released())
	assert.Equal(t, "tv:7", show.Key())
	assert.Equal(t, PosterPlaceholder, show.PosterURL("https://img/t/p/original"))
	assert.Empty(t, show.BackdropURL("https://img/t/p/original"))

	movie := Item{ID: 1, Type: MediaTypeMovie, Title: "Film", Name: "ignored", PosterPath: "/p.jpg", BackdropPath: "/b.jpg"}
	assert.Equal(t, "Film", movie.DisplayTitle())
	assert.Equal(t, "https://img/p.jpg", movie.PosterURL("https://img/"))
	assert.Equal(t, "https://img/b.jpg", movie.BackdropURL("https://img"))
}
