package controllers

import (
	"net/http"

	"github.com/dhiyug/milkdiary-backend/api/middleware"
	"github.com/dhiyug/milkdiary-backend/api/responses"
	"github.com/dhiyug/milkdiary-backend/api/validators"
	"github.com/dhiyug/milkdiary-backend/internal/dashboard"
	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/logger"
)

// Dashboard serves the role-conditional landing view: today's totals
// for admins, the balance and recent activity for customers.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		if middleware.RoleFromContext(r.Context()) == enums.RoleCustomer.String() {
			portalSummary(svc, logg, w, r)
			return
		}

		summary, err := svc.AdminSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CustomerPortal serves the customer-only portal view.
func CustomerPortal(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		portalSummary(svc, logg, w, r)
	}
}

func portalSummary(svc dashboard.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	if customerID == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing"))
		return
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, transactions.PortalListLimit)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	summary, err := svc.PortalSummary(r.Context(), *customerID, transactions.ListParams{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, summary)
}
