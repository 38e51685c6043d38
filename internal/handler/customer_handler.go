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

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	FullName         string `json:"full_name" validate:"required"`
	NationalID       string `json:"national_id" validate:"required"`
	Mobile           string `json:"mobile"`
	NationalityID    uint   `json:"nationality_id"`
	ClassificationID uint   `json:"classification_id"`
	LicenseTypeID    uint   `json:"license_type_id"`
	ProfessionID     uint   `json:"profession_id"`
	DateOfBirth      string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

func (r *CustomerRequest) apply(customer *model.Customer) {
	customer.FullName = r.FullName
	customer.NationalID = r.NationalID
	customer.Mobile = r.Mobile
	customer.NationalityID = r.NationalityID
	customer.ClassificationID = r.ClassificationID
	customer.LicenseTypeID = r.LicenseTypeID
	customer.ProfessionID = r.ProfessionID
	if r.DateOfBirth != "" {
		if dob, err := time.Parse("2006-01-02", r.DateOfBirth); err == nil {
			customer.DateOfBirth = &dob
		}
	}
}

// ListCustomers handles retrieving customers with filtering and pagination
func (h *Handler) ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "list")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	params := pagination.FromRequest(c)
	filter := repository.CustomerFilter{
		ClassificationIDs: query.UintListParam(c.QueryParam("classification_id")),
		NationalityIDs:    query.UintListParam(c.QueryParam("nationality_id")),
		LicenseTypeID:     query.UintParam(c.QueryParam("license_type_id")),
	}

	customers, total, err := h.repos.Customers.List(c.Request().Context(), userID, filter, params)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customers retrieved successfully", zap.Int("count", len(customers)))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"customers":  customers,
		"pagination": params.Envelope(total),
	})
}

// GetCustomer handles retrieving a single customer by ID
func (h *Handler) GetCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "get")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid customer ID"))
	}

	customer, err := h.repos.Customers.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "customer": customer})
}

// CreateCustomer handles creating a new customer
func (h *Handler) CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "create")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req CustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	var customer model.Customer
	req.apply(&customer)

	if err := h.repos.Customers.Create(c.Request().Context(), userID, &customer); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer created successfully", zap.Uint("customer_id", customer.ID))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "customer": customer})
}

// UpdateCustomer handles updating an existing customer
func (h *Handler) UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "update")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid customer ID"))
	}

	var req CustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, log, err)
	}

	customer, err := h.repos.Customers.Update(c.Request().Context(), userID, id, func(m *model.Customer) {
		req.apply(m)
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer updated successfully", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "customer": customer})
}

// DeleteCustomer handles deleting a customer
func (h *Handler) DeleteCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "delete")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid customer ID"))
	}

	if err := h.repos.Customers.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer deleted successfully", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Customer deleted successfully"})
}
