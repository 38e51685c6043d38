package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"tajeer-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContracts struct {
	contracts []model.Contract
	err       error
}

func (f *fakeContracts) ListByCustomer(ctx context.Context, ownerID, customerID uint) ([]model.Contract, error) {
	return f.contracts, f.err
}

type fakeTransactions struct {
	transactions []model.FinanceTransaction
	err          error

	gotFrom, gotTo *time.Time
}

func (f *fakeTransactions) ListForPeriod(ctx context.Context, ownerID uint, from, to *time.Time) ([]model.FinanceTransaction, error) {
	f.gotFrom, f.gotTo = from, to
	return f.transactions, f.err
}

type fakeCategories struct {
	categories map[uint]string
	err        error
}

func (f *fakeCategories) CategoryMap(ctx context.Context, ownerID uint, kind string) (map[uint]string, error) {
	return f.categories, f.err
}

func TestCustomerSummaryCountsByStatus(t *testing.T) {
	contracts := &fakeContracts{contracts: []model.Contract{
		{Status: model.ContractStatusActive, TotalAmount: 3100},
		{Status: model.ContractStatusActive, TotalAmount: 500},
		{Status: model.ContractStatusCompleted, TotalAmount: 1200},
		{Status: model.ContractStatusCancelled, TotalAmount: 900},
	}}
	r := NewReporter(contracts, &fakeTransactions{}, &fakeCategories{})

	summary, err := r.CustomerSummary(context.Background(), 1, 11)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalContracts)
	assert.Equal(t, 2, summary.ActiveContracts)
	assert.Equal(t, 1, summary.CompletedContracts)
	assert.Equal(t, 1, summary.CancelledContracts)
	// Cancelled contracts do not count toward spend.
	assert.Equal(t, 4800.0, summary.TotalSpent)
}

func TestCustomerSummaryEmpty(t *testing.T) {
	r := NewReporter(&fakeContracts{}, &fakeTransactions{}, &fakeCategories{})

	summary, err := r.CustomerSummary(context.Background(), 1, 11)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalContracts)
	assert.Zero(t, summary.TotalSpent)
}

func TestCustomerSummaryPropagatesError(t *testing.T) {
	boom := errors.New("fetch failed")
	r := NewReporter(&fakeContracts{err: boom}, &fakeTransactions{}, &fakeCategories{})

	_, err := r.CustomerSummary(context.Background(), 1, 11)
	assert.ErrorIs(t, err, boom)
}

func TestFinanceSummaryJoinsCategoriesInProcess(t *testing.T) {
	transactions := &fakeTransactions{transactions: []model.FinanceTransaction{
		{TypeID: 1, Amount: 3100},
		{TypeID: 1, Amount: 500},
		{TypeID: 2, Amount: 750},
		{TypeID: 9, Amount: 10}, // type with no category
	}}
	categories := &fakeCategories{categories: map[uint]string{
		1: model.CategoryIncome,
		2: model.CategoryExpense,
	}}
	r := NewReporter(&fakeContracts{}, transactions, categories)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	summary, err := r.FinanceSummary(context.Background(), 1, &from, &to)
	require.NoError(t, err)

	assert.Equal(t, 3600.0, summary.TotalIncome)
	assert.Equal(t, 750.0, summary.TotalExpense)
	assert.Equal(t, 2850.0, summary.Net)
	assert.Equal(t, 1, summary.Uncategorized)
	assert.Equal(t, 4, summary.Count)

	// The date window is passed through to the fetch.
	require.NotNil(t, transactions.gotFrom)
	assert.Equal(t, from, *transactions.gotFrom)
	require.NotNil(t, transactions.gotTo)
	assert.Equal(t, to, *transactions.gotTo)
}

func TestFinanceSummaryPropagatesCategoryError(t *testing.T) {
	boom := errors.New("lookup failed")
	r := NewReporter(&fakeContracts{}, &fakeTransactions{}, &fakeCategories{err: boom})

	_, err := r.FinanceSummary(context.Background(), 1, nil, nil)
	assert.ErrorIs(t, err, boom)
}
