package repository

import (
	"context"
	"time"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/pagination"
	"tajeer-server/internal/query"
	"tajeer-server/prometheus"

	"gorm.io/gorm"
)

// FinanceFilter holds the optional structured filters for transaction listings
type FinanceFilter struct {
	TypeIDs    []uint
	Category   string
	ContractID uint
	From       *time.Time
	To         *time.Time
	MinAmount  *float64
	MaxAmount  *float64
}

var financeSortColumns = map[string]string{
	"createdAt":  "created_at",
	"occurredOn": "occurred_on",
	"amount":     "amount",
}

// FinanceRepository is the gateway for finance transactions
type FinanceRepository struct {
	db *gorm.DB
}

// NewFinanceRepository constructs a finance gateway
func NewFinanceRepository(db *gorm.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// List returns one page of transactions matching the filter conjunction
func (r *FinanceRepository) List(ctx context.Context, ownerID uint, f FinanceFilter, p pagination.Params) ([]model.FinanceTransaction, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	b := query.New()
	b.In("type_id", f.TypeIDs)
	if f.ContractID != 0 {
		b.Equal("contract_id", f.ContractID)
	}
	b.From("occurred_on", f.From)
	b.To("occurred_on", f.To)
	b.Min("amount", f.MinAmount)
	b.Max("amount", f.MaxAmount)
	b.Search(p.Search, "description")

	tx := b.Apply(r.db.WithContext(ctx).Model(&model.FinanceTransaction{}).Where("owner_id = ?", ownerID))

	// category lives on the transaction_type entry, so it filters through a
	// subquery against the lookup table
	if f.Category != "" {
		tx = tx.Where("type_id IN (?)",
			r.db.Model(&model.Lookup{}).Select("id").
				Where("owner_id = ? AND kind = ? AND category = ?",
					ownerID, model.LookupKindTransactionType, f.Category))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve transactions", err)
	}

	tx = tx.Order(query.Order(p.SortBy, p.SortOrder, financeSortColumns, "occurred_on"))
	if !p.Unlimited() {
		tx = tx.Limit(p.Limit).Offset(p.Offset())
	}

	var transactions []model.FinanceTransaction
	if err := tx.Find(&transactions).Error; err != nil {
		return nil, 0, apperr.Unexpected("Failed to retrieve transactions", err)
	}
	return transactions, total, nil
}

// GetByID returns the transaction or NotFound
func (r *FinanceRepository) GetByID(ctx context.Context, ownerID, id uint) (*model.FinanceTransaction, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var transaction model.FinanceTransaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&transaction).Error
	if err != nil {
		return nil, fetchErr(err, "Transaction", "Failed to retrieve transaction")
	}
	return &transaction, nil
}

// Create inserts a transaction after verifying the type id resolves to an
// owned transaction_type entry
func (r *FinanceRepository) Create(ctx context.Context, ownerID uint, transaction *model.FinanceTransaction) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	transaction.OwnerID = ownerID

	var count int64
	r.db.WithContext(ctx).Model(&model.Lookup{}).
		Where("id = ? AND owner_id = ? AND kind = ?", transaction.TypeID, ownerID, model.LookupKindTransactionType).
		Count(&count)
	if count == 0 {
		return apperr.Validation("Unknown transaction type")
	}

	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return apperr.Unexpected("Failed to create transaction", err)
	}
	return nil
}

// Update applies changes to an owned transaction
func (r *FinanceRepository) Update(ctx context.Context, ownerID, id uint, apply func(*model.FinanceTransaction)) (*model.FinanceTransaction, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	transaction, err := r.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	apply(transaction)
	transaction.OwnerID = ownerID

	if err := r.db.WithContext(ctx).Save(transaction).Error; err != nil {
		return nil, apperr.Unexpected("Failed to update transaction", err)
	}
	return transaction, nil
}

// Delete removes an owned transaction
func (r *FinanceRepository) Delete(ctx context.Context, ownerID, id uint) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.FinanceTransaction{})
	if result.Error != nil {
		return apperr.Unexpected("Failed to delete transaction", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Transaction")
	}
	return nil
}

// ListForPeriod returns all transactions in a date window, used by the
// summary reporter which reduces in-process
func (r *FinanceRepository) ListForPeriod(ctx context.Context, ownerID uint, from, to *time.Time) ([]model.FinanceTransaction, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if from != nil {
		tx = tx.Where("occurred_on >= ?", *from)
	}
	if to != nil {
		tx = tx.Where("occurred_on <= ?", *to)
	}

	var transactions []model.FinanceTransaction
	if err := tx.Find(&transactions).Error; err != nil {
		return nil, apperr.Unexpected("Failed to retrieve transactions", err)
	}
	return transactions, nil
}
