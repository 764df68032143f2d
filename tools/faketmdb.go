package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

var (
	addr     = flag.String("addr", ":8090", "Listen address")
	maxDelay = flag.Duration("delay", 800*time.Millisecond, "Maximum random response delay")
	failRate = flag.Float64("fail", 0, "Fraction of requests answered with HTTP 500")
)

var (
	movieTitles = []string{"The Last Harbor", "Midnight Static", "Paper Moons", "Iron Orchard", "Quiet Engines", "Glass Cartographer", "Northern Fever", "Salt and Cinder"}
	showNames   = []string{"Harbor Lights", "The Understudy", "Deep Field", "Copper Valley", "Night Shift Kitchen", "Lowlands", "The Archive", "Static Bloom"}
)

func main() {
	flag.Parse()

	r := mux.NewRouter()
	r.Use(chaos)
	r.HandleFunc("/trending/{type:movie|tv}/week", listingHandler)
	r.HandleFunc("/tv/on_the_air", listingHandler)
	r.HandleFunc("/search/{type:movie|tv}", searchHandler)
	r.HandleFunc("/{type:movie|tv}/{id:[0-9]+}/videos", videosHandler)
	r.HandleFunc("/{type:movie|tv}/{category}", listingHandler)

	fmt.Println("Fake TMDB server starting on", *addr)
	fmt.Println("Point metadata.base_url at it and use any api key.")
	log.Fatal(http.ListenAndServe(*addr, r))
}

// chaos adds random latency and failures so out-of-order responses and
// error states can be seen in the UI.
func chaos(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request URL: %s", r.URL.String())

		if r.URL.Query().Get("api_key") == "" {
			http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		if *maxDelay > 0 {
			time.Sleep(time.Duration(rand.Int63n(int64(*maxDelay))))
		}
		if rand.Float64() < *failRate {
			http.Error(w, `{"status_message":"Internal error"}`, http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func listingHandler(w http.ResponseWriter, r *http.Request) {
	mediaType := mux.Vars(r)["type"]
	if mediaType == "" {
		mediaType = "tv"
	}

	// Seed on the path so the same listing comes back on every call
	seed := int64(0)
	for _, c := range r.URL.Path {
		seed = seed*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]map[string]interface{}, 0, 20)
	for i := 0; i < 20; i++ {
		results = append(results, generateItem(rng, mediaType, "", rng.Intn(90000)+100))
	}
	writeResults(w, results)
}

func searchHandler(w http.ResponseWriter, r *http.Request) {
	mediaType := mux.Vars(r)["type"]
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	log.Printf("Interpreted search for: '%s' (%s)", query, mediaType)

	// Queries starting with "zz" have no matches
	if strings.HasPrefix(strings.ToLower(query), "zz") {
		writeResults(w, []map[string]interface{}{})
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	results := make([]map[string]interface{}, 0, 8)
	for i := 0; i < rng.Intn(8)+1; i++ {
		results = append(results, generateItem(rng, mediaType, query, rng.Intn(90000)+100))
	}
	writeResults(w, results)
}

func videosHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	videos := []map[string]string{
		{"key": fmt.Sprintf("teaser%d", id), "site": "YouTube", "type": "Teaser"},
	}
	// Every third title has no trailer
	if id%3 != 0 {
		videos = append(videos, map[string]string{"key": "dQw4w9WgXcQ", "site": "YouTube", "type": "Trailer"})
	}
	writeResults(w, videos)
}

func generateItem(rng *rand.Rand, mediaType, query string, id int) map[string]interface{} {
	names := movieTitles
	if mediaType == "tv" {
		names = showNames
	}
	title := names[rng.Intn(len(names))]
	if query != "" {
		title = fmt.Sprintf("%s: %s", query, title)
	}
	date := time.Now().AddDate(0, 0, -rng.Intn(3650)).Format("2006-01-02")

	item := map[string]interface{}{
		"id":            id,
		"overview":      fmt.Sprintf("A generated overview for %s.", title),
		"poster_path":   nil,
		"backdrop_path": nil,
		"vote_average":  float64(rng.Intn(100)) / 10,
	}
	if mediaType == "tv" {
		item["name"] = title
		item["first_air_date"] = date
	} else {
		item["title"] = title
		item["release_date"] = date
	}
	return item
}

func writeResults(w http.ResponseWriter, results interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"page": 1, "results": results})
}
