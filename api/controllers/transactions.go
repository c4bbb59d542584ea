package controllers

import (
	"net/http"

	"github.com/dhiyug/milkdiary-backend/api/middleware"
	"github.com/dhiyug/milkdiary-backend/api/responses"
	"github.com/dhiyug/milkdiary-backend/api/validators"
	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/logger"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
)

// TransactionList returns a ledger page. Admin callers may filter by
// customer, date window, and type; customer callers only ever see
// their own rows.
func TransactionList(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var result *transactions.ListResult
		if middleware.RoleFromContext(r.Context()) == enums.RoleCustomer.String() {
			customerID := middleware.CustomerIDFromContext(r.Context())
			if customerID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing"))
				return
			}
			result, err = svc.ListForCustomer(r.Context(), *customerID, params)
		} else {
			result, err = svc.List(r.Context(), params)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// TransactionCreate records one delivery event.
func TransactionCreate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		var req transactions.RecordInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Record(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// TransactionBatch records a day sheet in one request. Row failures
// come back itemized in the body with the siblings still committed.
func TransactionBatch(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		var req []transactions.RecordInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordBatch(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// TransactionDelete removes one ledger row.
func TransactionDelete(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		txnID, err := pathID(r, "txnID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), txnID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "transaction deleted"})
	}
}

// listParamsFromQuery collects the ledger list filters from the query
// string.
func listParamsFromQuery(r *http.Request) (transactions.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, transactions.AdminListLimit)
	if err != nil {
		return transactions.ListParams{}, err
	}
	customerID, err := validators.ParseQueryUint(r, "customer_id")
	if err != nil {
		return transactions.ListParams{}, err
	}
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return transactions.ListParams{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return transactions.ListParams{}, err
	}
	txnType, err := validators.ParseQueryTxnType(r, "txn_type")
	if err != nil {
		return transactions.ListParams{}, err
	}
	// Date filters are calendar days; widen them to the stored instant window.
	if from != nil {
		start := timeutil.DayStartUTC(*from)
		from = &start
	}
	if to != nil {
		end := timeutil.DayEndUTC(*to)
		to = &end
	}
	return transactions.ListParams{
		CustomerID: customerID,
		From:       from,
		To:         to,
		TxnType:    txnType,
		Limit:      limit,
		Cursor:     r.URL.Query().Get("cursor"),
	}, nil
}
