// Package generator produces synthetic analytics events for parquet test
// files.
package generator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/models"
)

const (
	// DefaultRows is the number of events generated when none is requested.
	DefaultRows = 1000

	// DefaultSeed keeps repeated runs reproducible unless the caller asks
	// for something else.
	DefaultSeed = 42

	// DefaultWindow is the period the timestamps are spread over.
	DefaultWindow = 7 * 24 * time.Hour
)

var (
	browsers     = []string{"chrome", "firefox", "safari"}
	osNames      = []string{"windows", "macos", "linux"}
	screenWidths = []int{1920, 1366, 1440}
)

// Config controls event generation.
type Config struct {
	// Rows is the number of events to generate.
	Rows int

	// Seed feeds the random source so runs are reproducible.
	Seed int64

	// Window is how far into the past timestamps may fall.
	Window time.Duration

	// Now overrides the reference time; zero means time.Now().
	Now time.Time
}

// properties is the free-form metadata payload attached to every event. It
// is serialized to JSON and stored as an opaque string column.
type properties struct {
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	ScreenWidth int    `json:"screen_width"`
	UserAgent   string `json:"user_agent"`
}

// Generate produces cfg.Rows synthetic events. Zero rows is valid and
// yields an empty slice; a negative row count is a configuration error.
func Generate(cfg Config) ([]models.Event, error) {
	if cfg.Rows < 0 {
		return nil, fmt.Errorf("invalid row count %d", cfg.Rows)
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	windowMinutes := int(cfg.Window / time.Minute)

	events := make([]models.Event, cfg.Rows)
	for i := range events {
		props, err := json.Marshal(properties{
			Browser:     pick(rng, browsers),
			OS:          pick(rng, osNames),
			ScreenWidth: screenWidths[rng.Intn(len(screenWidths))],
			UserAgent:   fmt.Sprintf("Mozilla/5.0 (compatible; Bot/%d.0)", rng.Intn(5)+1),
		})
		if err != nil {
			return nil, fmt.Errorf("marshaling properties: %w", err)
		}

		events[i] = models.Event{
			TeamID:     int64(rng.Intn(10) + 1),
			Timestamp:  now.Add(-time.Duration(rng.Intn(windowMinutes+1)) * time.Minute),
			Event:      pick(rng, models.EventTypes),
			DistinctID: uuid.New().String(),
			Properties: string(props),
		}
	}

	return events, nil
}

// Sort orders events by team_id, event, timestamp, distinct_id. Writing
// sorted rows keeps values for the same team and event adjacent, which
// tightens per-row-group statistics.
func Sort(events []models.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		if a.Event != b.Event {
			return a.Event < b.Event
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.DistinctID < b.DistinctID
	})
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
