package handler

import (
	"net/http"

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

// VehicleRequest defines the structure for vehicle creation/update requests
type VehicleRequest struct {
	PlateNumber       string  `json:"plate_number" validate:"required"`
	Make              string  `json:"make" validate:"required"`
	Model             string  `json:"model" validate:"required"`
	Year              int     `json:"year" validate:"required,gte=1950"`
	Color             string  `json:"color"`
	Status            string  `json:"status" validate:"omitempty,oneof=available rented maintenance"`
	DailyRate         float64 `json:"daily_rate" validate:"required,gt=0"`
	BranchID          uint    `json:"branch_id" validate:"required"`
	InsuranceOptionID uint    `json:"insurance_option_id"`
}

// ListVehicles handles retrieving vehicles with filtering and pagination
func (h *Handler) ListVehicles(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("vehicle", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	params := pagination.FromRequest(c)
	filter := repository.VehicleFilter{
		Status:       c.QueryParam("status"),
		BranchIDs:    query.UintListParam(c.QueryParam("branch_id")),
		Make:         c.QueryParam("make"),
		MinDailyRate: query.FloatParam(c.QueryParam("min_daily_rate")),
		MaxDailyRate: query.FloatParam(c.QueryParam("max_daily_rate")),
	}

	vehicles, total, err := h.repos.Vehicles.List(c.Request().Context(), userID, filter, params)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Vehicles retrieved successfully",
		zap.Int("count", len(vehicles)),
		zap.Int64("total", total))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"vehicles":   vehicles,
		"pagination": params.Envelope(total),
	})
}

// GetVehicle handles retrieving a single vehicle by ID
func (h *Handler) GetVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("vehicle", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid vehicle ID"))
	}

	vehicle, err := h.repos.Vehicles.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "vehicle": vehicle})
}

// CreateVehicle handles creating a new vehicle
func (h *Handler) CreateVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("vehicle", "create")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req VehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	vehicle := model.Vehicle{
		PlateNumber:       req.PlateNumber,
		Make:              req.Make,
		Model:             req.Model,
		Year:              req.Year,
		Color:             req.Color,
		Status:            req.Status,
		DailyRate:         req.DailyRate,
		BranchID:          req.BranchID,
		InsuranceOptionID: req.InsuranceOptionID,
	}
	if vehicle.Status == "" {
		vehicle.Status = model.VehicleStatusAvailable
	}

	if err := h.repos.Vehicles.Create(c.Request().Context(), userID, &vehicle); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Vehicle created successfully",
		zap.Uint("vehicle_id", vehicle.ID),
		zap.String("plate_number", vehicle.PlateNumber))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "vehicle": vehicle})
}

// UpdateVehicle handles updating an existing vehicle
func (h *Handler) UpdateVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("vehicle", "update")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid vehicle ID"))
	}

	var req VehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := h.repos.Vehicles.Update(c.Request().Context(), userID, id, func(v *model.Vehicle) {
		v.PlateNumber = req.PlateNumber
		v.Make = req.Make
		v.Model = req.Model
		v.Year = req.Year
		v.Color = req.Color
		if req.Status != "" {
			v.Status = req.Status
		}
		v.DailyRate = req.DailyRate
		v.BranchID = req.BranchID
		v.InsuranceOptionID = req.InsuranceOptionID
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Vehicle updated successfully", zap.Uint("vehicle_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "vehicle": vehicle})
}

// DeleteVehicle handles deleting a vehicle
func (h *Handler) DeleteVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("vehicle", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid vehicle ID"))
	}

	if err := h.repos.Vehicles.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Vehicle deleted successfully", zap.Uint("vehicle_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Vehicle deleted successfully"})
}
