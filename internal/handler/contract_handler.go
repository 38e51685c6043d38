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

// ContractRequest defines the structure for contract creation requests
type ContractRequest struct {
	CustomerID    uint    `json:"customer_id" validate:"required"`
	VehicleID     uint    `json:"vehicle_id" validate:"required"`
	StartDate     string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	ContractType  string  `json:"contract_type" validate:"required"`
	InsuranceType string  `json:"insurance_type" validate:"required"`
	DailyRate     float64 `json:"daily_rate" validate:"required,gt=0"`
	TotalAmount   float64 `json:"total_amount" validate:"required,gt=0"`
	InspectorName string  `json:"inspector_name"`
}

// ContractUpdateRequest defines the mutable fields of a contract
type ContractUpdateRequest struct {
	EndDate       string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status        string  `json:"status" validate:"omitempty,oneof=active completed cancelled"`
	TotalAmount   float64 `json:"total_amount" validate:"omitempty,gt=0"`
	InspectorName string  `json:"inspector_name"`
}

func (r *ContractRequest) toModel() (*model.Contract, error) {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return nil, apperr.Validation("start_date must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return nil, apperr.Validation("end_date must be a YYYY-MM-DD date")
	}
	if !end.After(start) {
		return nil, apperr.Validation("end_date must be after start_date")
	}

	return &model.Contract{
		CustomerID:    r.CustomerID,
		VehicleID:     r.VehicleID,
		StartDate:     start,
		EndDate:       end,
		ContractType:  r.ContractType,
		InsuranceType: r.InsuranceType,
		DailyRate:     r.DailyRate,
		TotalAmount:   r.TotalAmount,
		InspectorName: r.InspectorName,
	}, nil
}

// ListContracts handles retrieving contracts with filtering and pagination
func (h *Handler) ListContracts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contract", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	params := pagination.FromRequest(c)
	filter := repository.ContractFilter{
		Status:     c.QueryParam("status"),
		CustomerID: query.UintParam(c.QueryParam("customer_id")),
		VehicleID:  query.UintParam(c.QueryParam("vehicle_id")),
		StartFrom:  query.DateParam(c.QueryParam("start_date")),
		EndTo:      query.DateParam(c.QueryParam("end_date")),
	}

	contracts, total, err := h.repos.Contracts.List(c.Request().Context(), userID, filter, params)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Contracts retrieved successfully", zap.Int("count", len(contracts)))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"contracts":  contracts,
		"pagination": params.Envelope(total),
	})
}

// GetContract handles retrieving a single contract by ID
func (h *Handler) GetContract(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contract", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid contract ID"))
	}

	contract, err := h.repos.Contracts.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "contract": contract})
}

// CreateContract handles creating a contract directly, outside the wizard
func (h *Handler) CreateContract(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contract", "create")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req ContractRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	contract, err := req.toModel()
	if err != nil {
		return respondError(c, log, err)
	}

	if err := h.repos.Contracts.Create(c.Request().Context(), userID, contract); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Contract created successfully",
		zap.Uint("contract_id", contract.ID),
		zap.String("contract_number", contract.ContractNumber))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "contract": contract})
}

// UpdateContract handles updating the mutable fields of a contract
func (h *Handler) UpdateContract(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contract", "update")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid contract ID"))
	}

	var req ContractUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	contract, err := h.repos.Contracts.Update(c.Request().Context(), userID, id, func(m *model.Contract) {
		if req.EndDate != "" {
			if end, err := time.Parse("2006-01-02", req.EndDate); err == nil {
				m.EndDate = end
			}
		}
		if req.Status != "" {
			m.Status = req.Status
		}
		if req.TotalAmount > 0 {
			m.TotalAmount = req.TotalAmount
		}
		if req.InspectorName != "" {
			m.InspectorName = req.InspectorName
		}
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Contract updated successfully", zap.Uint("contract_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "contract": contract})
}

// DeleteContract handles deleting a contract
func (h *Handler) DeleteContract(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("contract", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid contract ID"))
	}

	if err := h.repos.Contracts.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Contract deleted successfully", zap.Uint("contract_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Contract deleted successfully"})
}
