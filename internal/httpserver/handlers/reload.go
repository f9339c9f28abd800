package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/marketbot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marketbot/internal/logger"
)

// PanelReload re-reads the dashboard copy file. The previous copy stays in
// use when the file is invalid.
func PanelReload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Panel == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if err := d.Panel.Reload(); err != nil {
			d.Logger.Warn("panel reload failed",
				logger.String("remote_ip", r.RemoteAddr),
				logger.Error(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			if _, werr := w.Write([]byte("❌ Reload failed: " + err.Error() + "\n")); werr != nil {
				d.Logger.Debug("failed to write response", logger.Error(werr))
			}
			return
		}

		d.Logger.Info("panel copy reloaded via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("✅ Panel copy reloaded\n")); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
