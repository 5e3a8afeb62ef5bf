package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/courierdesk-backend/api/responses"
	"github.com/angelmondragon/courierdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
)

const (
	envHeader    = "X-Courierdesk-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency the readiness probe must reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every named dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
