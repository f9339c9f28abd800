package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marketbot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marketbot/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marketbot/internal/httpserver/mw"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Post("/panel/reload", handlers.PanelReload(d))
}
