package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Version проставляется через -ldflags "-X supplier-match/server/http/handlers.Version=..."
var Version = "dev"

var started = time.Now()

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(started).Truncate(time.Second).String(),
	})
}
