package controllers

import (
	"fmt"
	"net/http"

	"github.com/dhiyug/milkdiary-backend/api/middleware"
	"github.com/dhiyug/milkdiary-backend/api/responses"
	"github.com/dhiyug/milkdiary-backend/api/validators"
	"github.com/dhiyug/milkdiary-backend/internal/billing"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/logger"
)

// BillList returns bills newest first. Customer callers only see their
// own.
func BillList(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		if middleware.RoleFromContext(r.Context()) == enums.RoleCustomer.String() {
			customerID := middleware.CustomerIDFromContext(r.Context())
			if customerID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing"))
				return
			}
			result, err := svc.ListForCustomer(r.Context(), *customerID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		result, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BillGenerate runs billing for every customer over the posted window.
func BillGenerate(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var req billing.RangeInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GenerateForRange(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// BillDetail returns one bill with its regenerated breakdown,
// ownership-checked for customer callers.
func BillDetail(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		billID, err := pathID(r, "billID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := billOwnerScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), billID, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// BillPDF streams the printable document for one bill.
func BillPDF(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		billID, err := pathID(r, "billID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := billOwnerScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.RenderPDF(r.Context(), billID, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bill-%d.pdf", billID))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// BillDelete removes an unpaid bill.
func BillDelete(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		billID, err := pathID(r, "billID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), billID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "bill deleted"})
	}
}

// BillPay flags one bill as settled.
func BillPay(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		billID, err := pathID(r, "billID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MarkPaid(r.Context(), billID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// InlineBill previews one customer's statement without persisting a
// bill. GET takes query parameters; POST takes a JSON body.
func InlineBill(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var req billing.PreviewInput
		if r.Method == http.MethodGet {
			customerID, err := validators.ParseQueryUint(r, "customer_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if customerID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required"))
				return
			}
			req = billing.PreviewInput{
				CustomerID: *customerID,
				StartDate:  r.URL.Query().Get("start_date"),
				EndDate:    r.URL.Query().Get("end_date"),
			}
		} else if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		statement, err := svc.Preview(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statement)
	}
}

// billOwnerScope narrows bill access to the caller's own customer when
// the caller holds the customer role.
func billOwnerScope(r *http.Request) (*uint, error) {
	if middleware.RoleFromContext(r.Context()) != enums.RoleCustomer.String() {
		return nil, nil
	}
	customerID := middleware.CustomerIDFromContext(r.Context())
	if customerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing")
	}
	return customerID, nil
}
