package view

import (
	"fmt"
	"strings"

	"moviehouse/internal/models"
)

// Mode is what the page shows in its main area.
type Mode string

const (
	ModeListing  Mode = "listing"
	ModeSearch   Mode = "search"
	ModePlayback Mode = "playback"
)

const (
	ListingErrorMessage = "Failed to load content"
	SearchErrorMessage  = "Search failed. Please try again."
)

// Effect is a one-shot instruction for the renderer.
type Effect string

const EffectScrollTop Effect = "scroll_top"

// State is the mutable view state owned by a Controller. Only the
// controller's event loop touches it.
type State struct {
	Items         []models.Item
	Featured      *models.Item
	Category      models.Category
	Type          models.MediaType
	Query         string
	SearchResults []models.Item
	IsSearching   bool
	IsLoading     bool
	Error         string
	WatchTarget   *models.Item

	TrailerKey   string
	DetailTarget *models.Item
}

func initialState() State {
	return State{
		Category: models.CategoryTrending,
		Type:     models.MediaTypeMovie,
	}
}

// Mode derives the display mode. Playback wins over everything; otherwise a
// query with any non-blank text selects the search view.
func (s *State) Mode() Mode {
	switch {
	case s.WatchTarget != nil:
		return ModePlayback
	case strings.TrimSpace(s.Query) != "":
		return ModeSearch
	default:
		return ModeListing
	}
}

// View is the render-ready snapshot pushed to the browser.
type View struct {
	Version       uint64           `json:"version"`
	Mode          Mode             `json:"mode"`
	Category      models.Category  `json:"category"`
	CategoryLabel string           `json:"category_label"`
	Categories    []CategoryLink   `json:"categories"`
	Type          models.MediaType `json:"type"`
	ToggleLabel   string           `json:"toggle_label"`
	Query         string           `json:"query"`
	Items         []models.Item    `json:"items"`
	Featured      *models.Item     `json:"featured,omitempty"`
	SearchResults []models.Item    `json:"search_results"`
	IsSearching   bool             `json:"is_searching"`
	IsLoading     bool             `json:"is_loading"`
	Error         string           `json:"error,omitempty"`
	NoResults     bool             `json:"no_results"`
	WatchTarget   *models.Item     `json:"watch_target,omitempty"`
	WatchURL      string           `json:"watch_url,omitempty"`
	TrailerKey    string           `json:"trailer_key,omitempty"`
	TrailerURL    string           `json:"trailer_url,omitempty"`
	Detail        *models.Item     `json:"detail,omitempty"`
	ImageBase     string           `json:"image_base"`
	Placeholder   string           `json:"placeholder"`
	Effects       []Effect         `json:"effects,omitempty"`
}

type CategoryLink struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Active   bool            `json:"active"`
}

// PlaybackURL builds the embed address for an item on the video host.
func PlaybackURL(embedBase string, mediaType models.MediaType, id int) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(embedBase, "/"), mediaType, id)
}

// TrailerEmbedURL builds a muted, looping, control-less YouTube embed.
func TrailerEmbedURL(base, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s?mute=1&controls=0&loop=1&playlist=%s", strings.TrimRight(base, "/"), key, key)
}

func toggleLabel(t models.MediaType) string {
	if t == models.MediaTypeMovie {
		return "TV Shows"
	}
	return "Movies"
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	copy(out, items)
	return out
}

func cloneItem(item *models.Item) *models.Item {
	if item == nil {
		return nil
	}
	cp := *item
	return &cp
}
