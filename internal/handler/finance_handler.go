package handler

import (
	"net/http"
	"time"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/pagination"
	"tajeer-server/internal/query"
	"tajeer-server/internal/repository"
	"tajeer-server/pkg/logger"
	"tajeer-server/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TransactionRequest defines the structure for finance transaction requests
type TransactionRequest struct {
	TypeID      uint    `json:"type_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	OccurredOn  string  `json:"occurred_on" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description"`
	ContractID  *uint   `json:"contract_id"`
}

// ListTransactions handles retrieving finance transactions with filtering
// and pagination
func (h *Handler) ListTransactions(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("transaction", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	params := pagination.FromRequest(c)
	filter := repository.FinanceFilter{
		TypeIDs:    query.UintListParam(c.QueryParam("type_id")),
		Category:   c.QueryParam("category"),
		ContractID: query.UintParam(c.QueryParam("contract_id")),
		From:       query.DateParam(c.QueryParam("from")),
		To:         query.DateParam(c.QueryParam("to")),
		MinAmount:  query.FloatParam(c.QueryParam("min_amount")),
		MaxAmount:  query.FloatParam(c.QueryParam("max_amount")),
	}

	transactions, total, err := h.repos.Finance.List(c.Request().Context(), userID, filter, params)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Transactions retrieved successfully", zap.Int("count", len(transactions)))
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"transactions": transactions,
		"pagination":   params.Envelope(total),
	})
}

// GetTransaction handles retrieving a single transaction by ID
func (h *Handler) GetTransaction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("transaction", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid transaction ID"))
	}

	transaction, err := h.repos.Finance.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transaction": transaction})
}

// CreateTransaction handles recording a new income or expense entry
func (h *Handler) CreateTransaction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("transaction", "create")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req TransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	occurredOn, err := time.Parse("2006-01-02", req.OccurredOn)
	if err != nil {
		return respondError(c, log, apperr.Validation("occurred_on must be a YYYY-MM-DD date"))
	}

	transaction := model.FinanceTransaction{
		TypeID:      req.TypeID,
		Amount:      req.Amount,
		OccurredOn:  occurredOn,
		Description: req.Description,
		ContractID:  req.ContractID,
	}
	if err := h.repos.Finance.Create(c.Request().Context(), userID, &transaction); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Transaction created successfully",
		zap.Uint("transaction_id", transaction.ID),
		zap.Float64("amount", transaction.Amount))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
func (h *Handler) UpdateTransaction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("transaction", "update")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid transaction ID"))
	}

	var req TransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	occurredOn, err := time.Parse("2006-01-02", req.OccurredOn)
	if err != nil {
		return respondError(c, log, apperr.Validation("occurred_on must be a YYYY-MM-DD date"))
	}

	transaction, err := h.repos.Finance.Update(c.Request().Context(), userID, id, func(m *model.FinanceTransaction) {
		m.TypeID = req.TypeID
		m.Amount = req.Amount
		m.OccurredOn = occurredOn
		m.Description = req.Description
		m.ContractID = req.ContractID
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Transaction updated successfully", zap.Uint("transaction_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
func (h *Handler) DeleteTransaction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("transaction", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid transaction ID"))
	}

	if err := h.repos.Finance.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Transaction deleted successfully", zap.Uint("transaction_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Transaction deleted successfully"})
}
