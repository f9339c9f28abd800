package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
	"github.com/MrSnakeDoc/marketbot/internal/httpserver/deps"
)

// recentEvents is how many of the latest events /infra lists.
const recentEvents = 10

type componentStatus struct {
	OK     bool             `json:"ok"`
	Mode   string           `json:"mode,omitempty"`
	Impact string           `json:"impact,omitempty"`
	Error  string           `json:"error,omitempty"`
	Counts map[string]int64 `json:"counts,omitempty"`
}

type infraResponse struct {
	Mode         string                     `json:"mode"`
	Components   map[string]componentStatus `json:"components"`
	RecentEvents []domain.Event             `json:"recent_events,omitempty"`
}

// Infra reports each component and the resulting operating mode.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d.CheckTimeout())
		defer cancel()

		components := map[string]componentStatus{
			"gateway":     checkGateway(d),
			"marketplace": marketplaceStatus(d),
			"redis":       checkRedis(ctx, d),
		}

		resp := infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}
		if d.Events != nil && components["redis"].OK {
			if events, err := d.Events.Recent(ctx, recentEvents); err == nil {
				resp.RecentEvents = events
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func determineMode(components map[string]componentStatus) string {
	// Without the gateway no interaction reaches the bot.
	if gw, ok := components["gateway"]; ok && !gw.OK {
		return "critical"
	}
	// Redis down only loses event publishing.
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "degraded"
	}
	return "operational"
}

func checkGateway(d deps.Deps) componentStatus {
	if d.Gateway == nil || !d.Gateway.Connected() {
		return componentStatus{OK: false, Impact: "interactions-unavailable", Error: "disconnected"}
	}
	return componentStatus{OK: true, Mode: "connected"}
}

func marketplaceStatus(d deps.Deps) componentStatus {
	counts := make(map[string]int64, 3)
	if d.Listings != nil {
		open, claimed := d.Listings.Counts()
		counts["listings_open"] = int64(open)
		counts["listings_claimed"] = int64(claimed)
	}
	if d.Cooldowns != nil {
		counts["sellers_tracked"] = int64(d.Cooldowns.Len())
	}
	return componentStatus{OK: true, Mode: "in-memory", Counts: counts}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Events == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "event-publishing-disabled",
		}
	}

	if err := d.Events.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "event-publishing-failing",
			Error:  err.Error(),
		}
	}

	stats, err := d.Events.Stats(ctx)
	if err != nil {
		return componentStatus{OK: true, Mode: "optimal", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "optimal", Impact: "event-publishing-enabled", Counts: stats}
}
