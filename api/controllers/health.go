package controllers

import (
	"context"
	"net/http"

	"github.com/dhiyug/milkdiary-backend/api/responses"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/logger"
)

// Pinger is the readiness contract a backing dependency satisfies.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Live reports process liveness.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready reports whether every named dependency answers a ping.
func Ready(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]string, len(deps))
		for name, dep := range deps {
			if dep == nil {
				status[name] = "missing"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				ctx := logg.WithField(r.Context(), "dependency", name)
				logg.Error(ctx, "readiness probe failed", err)
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			status[name] = "ok"
		}
		responses.WriteSuccess(w, status)
	}
}
