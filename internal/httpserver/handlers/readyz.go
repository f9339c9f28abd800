package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/marketbot/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Gateway bool   `json:"gateway"`
	Redis   string `json:"redis"`
}

// Readyz is 200 only while the gateway session is connected and, when
// Redis is configured, Redis answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Gateway: d.Gateway != nil && d.Gateway.Connected(),
			Redis:   "disabled",
		}
		redisOK := true
		if d.Events != nil {
			ctx, cancel := context.WithTimeout(r.Context(), d.CheckTimeout())
			defer cancel()
			if err := d.Events.Ping(ctx); err != nil {
				redisOK = false
				resp.Redis = "unreachable"
			} else {
				resp.Redis = "ok"
			}
		}
		resp.Ready = resp.Gateway && redisOK

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
