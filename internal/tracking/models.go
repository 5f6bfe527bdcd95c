package tracking

import (
	"time"

	"github.com/Pritam-2002/firness-track/internal/shared/geo"
)

type StartRequest struct {
	ID string `json:"id"`
}

type DistanceRequest struct {
	Km float64 `json:"km"`
}

type SampleRequest struct {
	geo.Point
	RecordedAt time.Time `json:"recorded_at"`
}

type RestRequest struct {
	Seconds int `json:"seconds"`
}

// Summary is the live view of a run pushed to consumers on every tick.
type Summary struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	ElapsedSec       int       `json:"elapsed_sec"`
	Elapsed          string    `json:"elapsed"`
	DistanceKm       float64   `json:"distance_km"`
	Pace             string    `json:"pace"` // per km
	Samples          int       `json:"samples"`
	Paused           bool      `json:"paused"`
	Resting          bool      `json:"resting"`
	RestRemainingSec int       `json:"rest_remaining_sec"`
}
