package handler

import (
	"net/http"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"
	"tajeer-server/internal/wizard"
	"tajeer-server/pkg/logger"
	"tajeer-server/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WizardAdvanceRequest carries the values entered for the current step.
// Staged attachment ids collected on the documents step ride along so the
// submit can promote them.
type WizardAdvanceRequest struct {
	Values        map[string]interface{} `json:"values"`
	AttachmentIDs []uint                 `json:"attachment_ids"`
}

func sessionView(s *wizard.Session) echo.Map {
	current, total := s.Progress()
	return echo.Map{
		"id":          s.ID,
		"kind":        s.Kind,
		"status":      s.CurrentStatus(),
		"step":        s.StepName(),
		"step_index":  current,
		"total_steps": total,
		"values":      s.StepValues(current),
	}
}

// StartWizard opens a guided-creation session for the given kind
func (h *Handler) StartWizard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("wizard", "start")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	kind := c.Param("kind")
	steps, ok := wizard.StepsFor(kind)
	if !ok {
		return respondError(c, log, apperr.Validation("Unknown wizard kind"))
	}

	session := h.sessions.Open(kind, userID, steps)
	prometheus.WizardSessionsGauge.WithLabelValues(kind).Inc()

	log.Info("Wizard session started",
		zap.String("session_id", session.ID),
		zap.String("kind", kind))
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "session": sessionView(session)})
}

// GetWizard reports the progress of an in-flight session
func (h *Handler) GetWizard(c echo.Context) error {
	log := logger.FromContext(c)

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	session, ok := h.sessions.Get(c.Param("id"), userID)
	if !ok {
		return respondError(c, log, apperr.NotFound("Wizard session"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "session": sessionView(session)})
}

// AdvanceWizard validates the submitted step values and moves the cursor
// forward. Advancing past the last step submits: the accumulated payload is
// assembled, the entity is created and the session's staged attachments are
// promoted onto it. On a failed create the session stays open on the last
// step so the client can retry or retreat.
func (h *Handler) AdvanceWizard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("wizard", "advance")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	session, ok := h.sessions.Get(c.Param("id"), userID)
	if !ok {
		return respondError(c, log, apperr.NotFound("Wizard session"))
	}

	var req WizardAdvanceRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, log, apperr.Validation("Invalid request data"))
	}

	staged := make([]uint, 0, len(req.AttachmentIDs))
	for _, id := range req.AttachmentIDs {
		attachment, err := h.repos.Attachments.GetByID(c.Request().Context(), userID, id)
		if err != nil {
			return respondError(c, log, err)
		}
		if attachment.Status != model.AttachmentStatusStaged {
			return respondError(c, log, apperr.Validation("Attachment is not staged"))
		}
		staged = append(staged, id)
	}

	done, fieldErrs := session.Advance(req.Values)
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":        "Validation failed",
			"field_errors": fieldErrs,
			"session":      sessionView(session),
		})
	}

	// record the ids only once the step is accepted, so a rejected request
	// retried with the same ids does not track them twice
	for _, id := range staged {
		session.AddStagedID(id)
	}

	if !done {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "session": sessionView(session)})
	}

	return h.submitWizard(c, log, userID, session)
}

// RetreatWizard moves the cursor back one step, keeping entered values
func (h *Handler) RetreatWizard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("wizard", "retreat")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	session, ok := h.sessions.Get(c.Param("id"), userID)
	if !ok {
		return respondError(c, log, apperr.NotFound("Wizard session"))
	}

	if err := session.Retreat(); err != nil {
		return respondError(c, log, apperr.Validation(err.Error()))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "session": sessionView(session)})
}

// CancelWizard abandons a session. Staged uploads collected during it are
// removed best-effort; anything missed is reclaimed by the sweep.
func (h *Handler) CancelWizard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("wizard", "cancel")

	userID, err := ownerID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	session, ok := h.sessions.Get(c.Param("id"), userID)
	if !ok {
		return respondError(c, log, apperr.NotFound("Wizard session"))
	}

	session.Cancel()
	for _, id := range session.StagedAttachments() {
		attachment, err := h.repos.Attachments.GetByID(c.Request().Context(), userID, id)
		if err != nil {
			continue
		}
		if attachment.Status != model.AttachmentStatusStaged {
			continue
		}
		if err := h.files.Remove(c.Request().Context(), attachment.StorageKey); err != nil {
			log.Warn("Failed to remove staged object on cancel, leaving it for the sweep",
				zap.String("storage_key", attachment.StorageKey),
				zap.Error(err))
			continue
		}
		_ = h.repos.Attachments.Delete(c.Request().Context(), userID, id)
	}

	h.sessions.Remove(session.ID)
	prometheus.WizardSessionsGauge.WithLabelValues(session.Kind).Dec()
	prometheus.WizardCancelledCounter.Inc()

	log.Info("Wizard session cancelled", zap.String("session_id", session.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Wizard session cancelled"})
}

func (h *Handler) submitWizard(c echo.Context, log *zap.Logger, userID uint, session *wizard.Session) error {
	payload := session.Payload()

	var entityType string
	var entityID uint
	var body echo.Map
	var err error

	switch session.Kind {
	case wizard.KindContract:
		entityType = "contract"
		var contract *model.Contract
		contract, err = h.createContractFromPayload(c, userID, payload)
		if err == nil {
			entityID = contract.ID
			body = echo.Map{"success": true, "contract": contract}
		}
	case wizard.KindVehicle:
		entityType = "vehicle"
		var vehicle *model.Vehicle
		vehicle, err = h.createVehicleFromPayload(c, userID, payload)
		if err == nil {
			entityID = vehicle.ID
			body = echo.Map{"success": true, "vehicle": vehicle}
		}
	default:
		err = apperr.Validation("Unknown wizard kind")
	}

	if err != nil {
		// the session stays in progress on the last step; the client can
		// fix the inputs and advance again
		prometheus.WizardSubmitsCounter.WithLabelValues(session.Kind, "failure").Inc()
		log.Error("Wizard submit failed",
			zap.String("session_id", session.ID),
			zap.Error(err))

		ae := apperr.From(err)
		message := "Failed to create " + entityType
		response := echo.Map{"error": message, "session": sessionView(session)}
		if ae.Kind != apperr.KindUnexpected {
			response["details"] = ae.Message
		}
		return c.JSON(ae.HTTPStatus(), response)
	}

	for _, id := range session.StagedAttachments() {
		if _, err := h.promoteAttachment(c, userID, id, entityType, entityID); err != nil {
			log.Warn("Failed to promote wizard attachment",
				zap.Uint("attachment_id", id),
				zap.Error(err))
		}
	}

	session.MarkSubmitted()
	h.sessions.Remove(session.ID)
	prometheus.WizardSessionsGauge.WithLabelValues(session.Kind).Dec()
	prometheus.WizardSubmitsCounter.WithLabelValues(session.Kind, "success").Inc()

	log.Info("Wizard session submitted",
		zap.String("session_id", session.ID),
		zap.String("kind", session.Kind),
		zap.Uint("entity_id", entityID))
	return c.JSON(http.StatusCreated, body)
}

func (h *Handler) createContractFromPayload(c echo.Context, userID uint, payload map[string]interface{}) (*model.Contract, error) {
	start, okStart := wizard.DateValue(payload, "start_date")
	end, okEnd := wizard.DateValue(payload, "end_date")
	customerID, okCustomer := wizard.UintValue(payload, "customer_id")
	vehicleID, okVehicle := wizard.UintValue(payload, "vehicle_id")
	dailyRate, _ := wizard.FloatValue(payload, "daily_rate")
	totalAmount, _ := wizard.FloatValue(payload, "total_amount")
	if !okStart || !okEnd || !okCustomer || !okVehicle {
		return nil, apperr.Validation("Wizard payload is incomplete")
	}

	contract := &model.Contract{
		CustomerID:    customerID,
		VehicleID:     vehicleID,
		StartDate:     start,
		EndDate:       end,
		ContractType:  wizard.StringValue(payload, "contract_type"),
		InsuranceType: wizard.StringValue(payload, "insurance_type"),
		DailyRate:     dailyRate,
		TotalAmount:   totalAmount,
		InspectorName: wizard.StringValue(payload, "inspector_name"),
	}
	if err := h.repos.Contracts.Create(c.Request().Context(), userID, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (h *Handler) createVehicleFromPayload(c echo.Context, userID uint, payload map[string]interface{}) (*model.Vehicle, error) {
	year, okYear := wizard.IntValue(payload, "year")
	branchID, okBranch := wizard.UintValue(payload, "branch_id")
	dailyRate, _ := wizard.FloatValue(payload, "daily_rate")
	if !okYear || !okBranch {
		return nil, apperr.Validation("Wizard payload is incomplete")
	}

	vehicle := &model.Vehicle{
		PlateNumber: wizard.StringValue(payload, "plate_number"),
		Make:        wizard.StringValue(payload, "make"),
		Model:       wizard.StringValue(payload, "model"),
		Year:        year,
		Color:       wizard.StringValue(payload, "color"),
		Status:      model.VehicleStatusAvailable,
		DailyRate:   dailyRate,
		BranchID:    branchID,
	}
	if insuranceID, ok := wizard.UintValue(payload, "insurance_option_id"); ok {
		vehicle.InsuranceOptionID = insuranceID
	}
	if err := h.repos.Vehicles.Create(c.Request().Context(), userID, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}
