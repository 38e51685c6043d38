package handler

import (
	"net/http"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/query"
	"tajeer-server/pkg/logger"
	"tajeer-server/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CustomerSummary handles the per-customer contract summary view
func (h *Handler) CustomerSummary(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "summary")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	id := query.UintParam(c.Param("id"))
	if id == 0 {
		return respondError(c, log, apperr.Validation("Invalid customer ID"))
	}

	// verify the customer resolves under this owner before summarizing
	if _, err := h.repos.Customers.GetByID(c.Request().Context(), userID, id); err != nil {
		return respondError(c, log, err)
	}

	summary, err := h.reports.CustomerSummary(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Customer summary computed", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "summary": summary})
}

// FinanceSummary handles the income vs expense summary for a period
func (h *Handler) FinanceSummary(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("transaction", "summary")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	from := query.DateParam(c.QueryParam("from"))
	to := query.DateParam(c.QueryParam("to"))

	summary, err := h.reports.FinanceSummary(c.Request().Context(), userID, from, to)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Finance summary computed", zap.Int("transactions", summary.Count))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "summary": summary})
}
