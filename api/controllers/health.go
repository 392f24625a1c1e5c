package controllers

import (
	"context"
	"net/http"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/pkg/config"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

// ReadinessProbe is one named dependency checked by the readiness endpoint.
type ReadinessProbe struct {
	Name string
	Ping func(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Astraline-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, probes ...ReadinessProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Astraline-Env", cfg.App.Env)
		for _, probe := range probes {
			if probe.Ping == nil {
				continue
			}
			if err := probe.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.Name+" unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
