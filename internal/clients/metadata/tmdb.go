package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"moviehouse/internal/models"
)

const DefaultTMDBBaseURL = "https://api.themoviedb.org/3"

type TMDBClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu       sync.RWMutex
	apiKey   string
	language string
}

type TMDBOption func(*TMDBClient)

// WithBaseURL points the client at another server, e.g. a local fake.
func WithBaseURL(baseURL string) TMDBOption {
	return func(t *TMDBClient) {
		if baseURL != "" {
			t.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTimeout(timeout time.Duration) TMDBOption {
	return func(t *TMDBClient) {
		if timeout > 0 {
			t.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the cap.
func WithRateLimit(perSecond float64) TMDBOption {
	return func(t *TMDBClient) {
		if perSecond <= 0 {
			t.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithHTTPClient(c *http.Client) TMDBOption {
	return func(t *TMDBClient) {
		if c != nil {
			t.httpClient = c
		}
	}
}

func NewTMDBClient(apiKey, language string, opts ...TMDBOption) *TMDBClient {
	t := &TMDBClient{
		baseURL:  DefaultTMDBBaseURL,
		apiKey:   apiKey,
		language: language,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetCredentials swaps the API key and language used by subsequent requests.
func (t *TMDBClient) SetCredentials(apiKey, language string) {
	t.mu.Lock()
	t.apiKey = apiKey
	t.language = language
	t.mu.Unlock()
}

func (t *TMDBClient) credentials() (string, string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.apiKey, t.language
}

// ListingPath resolves the API path for a category listing. There is no
// upcoming listing for TV upstream; the on-the-air list takes its place.
func ListingPath(mediaType models.MediaType, category models.Category) string {
	switch {
	case category == models.CategoryTrending:
		return fmt.Sprintf("/trending/%s/week", mediaType)
	case mediaType == models.MediaTypeTV && category == models.CategoryUpcoming:
		return "/tv/on_the_air"
	default:
		return fmt.Sprintf("/%s/%s", mediaType, category)
	}
}

func SearchPath(mediaType models.MediaType) string {
	return fmt.Sprintf("/search/%s", mediaType)
}

func VideosPath(mediaType models.MediaType, id int) string {
	return fmt.Sprintf("/%s/%d/videos", mediaType, id)
}

func (t *TMDBClient) Listing(ctx context.Context, mediaType models.MediaType, category models.Category) ([]models.Item, error) {
	op := fmt.Sprintf("tmdb listing %s/%s", mediaType, category)
	body, err := t.get(ctx, op, ListingPath(mediaType, category), nil)
	if err != nil {
		return nil, err
	}
	return decodeResults(op, body, mediaType)
}

func (t *TMDBClient) Search(ctx context.Context, mediaType models.MediaType, query string) ([]models.Item, error) {
	op := fmt.Sprintf("tmdb search %s", mediaType)
	params := url.Values{}
	params.Set("query", query)
	body, err := t.get(ctx, op, SearchPath(mediaType), params)
	if err != nil {
		return nil, err
	}
	return decodeResults(op, body, mediaType)
}

func (t *TMDBClient) Videos(ctx context.Context, mediaType models.MediaType, id int) ([]Video, error) {
	op := fmt.Sprintf("tmdb videos %s/%d", mediaType, id)
	body, err := t.get(ctx, op, VideosPath(mediaType, id), nil)
	if err != nil {
		return nil, err
	}

	var videosResp struct {
		Results []Video `json:"results"`
	}
	if err := json.Unmarshal(body, &videosResp); err != nil {
		return nil, &Error{Op: op, Kind: ErrResponse, Err: fmt.Errorf("failed to decode TMDB response: %w", err)}
	}
	return videosResp.Results, nil
}

func (t *TMDBClient) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	apiKey, language := t.credentials()
	if apiKey == "" {
		return nil, &Error{Op: op, Kind: ErrResponse, Err: fmt.Errorf("TMDB API key is not configured")}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", apiKey)
	if language != "" {
		params.Set("language", language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", t.baseURL, path, params.Encode())

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &Error{Op: op, Kind: ErrNetwork, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrNetwork, Err: fmt.Errorf("failed to create TMDB request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &Error{Op: op, Status: resp.StatusCode, Kind: ErrResponse}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrNetwork, Err: fmt.Errorf("failed to read TMDB response: %w", err)}
	}
	return body, nil
}

type tmdbResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
}

// decodeResults fails only when the body is not a JSON object. A missing or
// malformed results list yields an empty listing.
func decodeResults(op string, body []byte, mediaType models.MediaType) ([]models.Item, error) {
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &Error{Op: op, Kind: ErrResponse, Err: fmt.Errorf("failed to decode TMDB response: %w", err)}
	}

	var results []tmdbResult
	if len(envelope.Results) > 0 {
		if err := json.Unmarshal(envelope.Results, &results); err != nil {
			results = nil
		}
	}

	items := make([]models.Item, 0, len(results))
	for _, r := range results {
		items = append(items, models.Item{
			ID:           r.ID,
			Type:         mediaType,
			Title:        r.Title,
			Name:         r.Name,
			Overview:     r.Overview,
			PosterPath:   r.PosterPath,
			BackdropPath: r.BackdropPath,
			VoteAverage:  r.VoteAverage,
			ReleaseDate:  r.ReleaseDate,
			FirstAirDate: r.FirstAirDate,
		})
	}
	return items, nil
}
