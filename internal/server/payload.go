package server

import (
	"fmt"
	"time"

	"github.com/kingrea/trackplan/internal/logbook"
	"github.com/kingrea/trackplan/internal/talk"
)

// ProtocolVersion identifies the API contract version exposed via /health.
const ProtocolVersion = "1.0.0"

// ScheduleRequest is the POST /schedule body.
type ScheduleRequest struct {
	Talks []talk.Talk `json:"talks"`
}

// Catalog validates every talk and returns them in request order.
func (r ScheduleRequest) Catalog() ([]talk.Talk, error) {
	talks := make([]talk.Talk, 0, len(r.Talks))
	for i, raw := range r.Talks {
		tk, err := talk.New(raw.Title, raw.Minutes)
		if err != nil {
			return nil, fmt.Errorf("talks[%d]: %w", i, err)
		}
		talks = append(talks, tk)
	}
	return talks, nil
}

// Recorder stores run summaries and failed runs. *logbook.Logbook satisfies it.
type Recorder interface {
	Record(run logbook.Run)
	Error(format string, args ...any)
}

// Logger records server status information. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type healthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	RouterReady   bool      `json:"router_ready"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	ServerTime    time.Time `json:"server_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}
