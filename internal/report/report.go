// Package report computes small aggregate views by fetching candidate rows
// and reducing in-process. Candidate sets are small per tenant, so the
// reduce stays client-side instead of pushing grouped aggregates to the
// store.
package report

import (
	"context"
	"time"

	"tajeer-server/internal/model"
)

// ContractSource lists a customer's contracts
type ContractSource interface {
	ListByCustomer(ctx context.Context, ownerID, customerID uint) ([]model.Contract, error)
}

// TransactionSource lists transactions for a date window
type TransactionSource interface {
	ListForPeriod(ctx context.Context, ownerID uint, from, to *time.Time) ([]model.FinanceTransaction, error)
}

// CategorySource resolves the id to category map for a lookup kind
type CategorySource interface {
	CategoryMap(ctx context.Context, ownerID uint, kind string) (map[uint]string, error)
}

// CustomerSummary is the per-customer contract count view
type CustomerSummary struct {
	TotalContracts     int     `json:"total_contracts"`
	ActiveContracts    int     `json:"active_contracts"`
	CompletedContracts int     `json:"completed_contracts"`
	CancelledContracts int     `json:"cancelled_contracts"`
	TotalSpent         float64 `json:"total_spent"`
}

// FinanceSummary is the income vs expense view for a period
type FinanceSummary struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpense  float64 `json:"total_expense"`
	Net           float64 `json:"net"`
	Uncategorized int     `json:"uncategorized"`
	Count         int     `json:"count"`
}

// Reporter derives the summary views
type Reporter struct {
	contracts    ContractSource
	transactions TransactionSource
	categories   CategorySource
}

// NewReporter constructs a reporter over the given sources
func NewReporter(contracts ContractSource, transactions TransactionSource, categories CategorySource) *Reporter {
	return &Reporter{contracts: contracts, transactions: transactions, categories: categories}
}

// CustomerSummary counts a customer's contracts by status
func (r *Reporter) CustomerSummary(ctx context.Context, ownerID, customerID uint) (*CustomerSummary, error) {
	contracts, err := r.contracts.ListByCustomer(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}

	summary := &CustomerSummary{TotalContracts: len(contracts)}
	for _, contract := range contracts {
		switch contract.Status {
		case model.ContractStatusActive:
			summary.ActiveContracts++
		case model.ContractStatusCompleted:
			summary.CompletedContracts++
		case model.ContractStatusCancelled:
			summary.CancelledContracts++
		}
		if contract.Status != model.ContractStatusCancelled {
			summary.TotalSpent += contract.TotalAmount
		}
	}
	return summary, nil
}

// FinanceSummary totals income and expense for a period. Category
// membership comes from a second lookup producing an id to category map,
// joined in-process against the transaction rows.
func (r *Reporter) FinanceSummary(ctx context.Context, ownerID uint, from, to *time.Time) (*FinanceSummary, error) {
	transactions, err := r.transactions.ListForPeriod(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	categories, err := r.categories.CategoryMap(ctx, ownerID, model.LookupKindTransactionType)
	if err != nil {
		return nil, err
	}

	summary := &FinanceSummary{Count: len(transactions)}
	for _, transaction := range transactions {
		switch categories[transaction.TypeID] {
		case model.CategoryIncome:
			summary.TotalIncome += transaction.Amount
		case model.CategoryExpense:
			summary.TotalExpense += transaction.Amount
		default:
			summary.Uncategorized++
		}
	}
	summary.Net = summary.TotalIncome - summary.TotalExpense
	return summary, nil
}
