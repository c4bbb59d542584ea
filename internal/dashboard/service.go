package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	pkgerrors "github.com/dhiyug/milkdiary-backend/pkg/errors"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// AdminSummary reports today's activity over the business day window.
type AdminSummary struct {
	Date            string          `json:"date"`
	CustomerCount   int64           `json:"customer_count"`
	CollectedLiters decimal.Decimal `json:"collected_liters"`
	SoldLiters      decimal.Decimal `json:"sold_liters"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// PortalSummary is the customer-facing view: recent activity plus the
// running balance. Net is the Sell total minus the Purchase total.
type PortalSummary struct {
	CustomerID    uint                          `json:"customer_id"`
	SellTotal     decimal.Decimal               `json:"sell_total"`
	PurchaseTotal decimal.Decimal               `json:"purchase_total"`
	NetBalance    decimal.Decimal               `json:"net_balance"`
	Transactions  []transactions.TransactionDTO `json:"transactions"`
	NextCursor    string                        `json:"next_cursor,omitempty"`
}

type statsRepository interface {
	SumWindowByType(ctx context.Context, txnType enums.TxnType, from, to time.Time) (liters, amount decimal.Decimal, err error)
	SumCustomerByType(ctx context.Context, customerID uint, txnType enums.TxnType) (decimal.Decimal, error)
	CountCustomers(ctx context.Context) (int64, error)
}

type ledgerLister interface {
	ListForCustomer(ctx context.Context, customerID uint, params transactions.ListParams) (*transactions.ListResult, error)
}

// Service exposes the admin and customer dashboard views.
type Service interface {
	AdminSummary(ctx context.Context) (*AdminSummary, error)
	PortalSummary(ctx context.Context, customerID uint, params transactions.ListParams) (*PortalSummary, error)
}

type service struct {
	stats  statsRepository
	ledger ledgerLister
}

// NewService builds a dashboard service with the provided dependencies.
func NewService(stats statsRepository, ledger ledgerLister) (Service, error) {
	if stats == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{stats: stats, ledger: ledger}, nil
}

// AdminSummary totals today's collection, sales, and revenue over the
// business-local day.
func (s *service) AdminSummary(ctx context.Context) (*AdminSummary, error) {
	today := timeutil.TodayLocal()
	from, to := timeutil.WindowUTC(today, today)

	collected, revenue, err := s.stats.SumWindowByType(ctx, enums.TxnSell, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum collected milk")
	}
	sold, _, err := s.stats.SumWindowByType(ctx, enums.TxnPurchase, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sold milk")
	}
	customers, err := s.stats.CountCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}

	return &AdminSummary{
		Date:            today.Format(timeutil.DateLayout),
		CustomerCount:   customers,
		CollectedLiters: collected,
		SoldLiters:      sold,
		Revenue:         revenue,
	}, nil
}

// PortalSummary builds one customer's balance and recent ledger page.
func (s *service) PortalSummary(ctx context.Context, customerID uint, params transactions.ListParams) (*PortalSummary, error) {
	sellTotal, err := s.stats.SumCustomerByType(ctx, customerID, enums.TxnSell)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sell transactions")
	}
	purchaseTotal, err := s.stats.SumCustomerByType(ctx, customerID, enums.TxnPurchase)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum purchase transactions")
	}

	page, err := s.ledger.ListForCustomer(ctx, customerID, params)
	if err != nil {
		return nil, err
	}

	return &PortalSummary{
		CustomerID:    customerID,
		SellTotal:     sellTotal,
		PurchaseTotal: purchaseTotal,
		NetBalance:    sellTotal.Sub(purchaseTotal),
		Transactions:  page.Transactions,
		NextCursor:    page.NextCursor,
	}, nil
}
