package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) startContractWizard(t *testing.T) string {
	t.Helper()
	c, rec := env.newJSONContext(http.MethodPost, "/api/wizard/contract/start", nil)
	c.SetParamNames("kind")
	c.SetParamValues("contract")
	require.NoError(t, env.handler.StartWizard(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	session := body["session"].(map[string]interface{})
	return session["id"].(string)
}

func (env *testEnv) advanceWizard(t *testing.T, sessionID string, values map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := env.newJSONContext(http.MethodPost, "/api/wizard/"+sessionID+"/advance",
		map[string]interface{}{"values": values})
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	require.NoError(t, env.handler.AdvanceWizard(c))
	return rec
}

func (env *testEnv) wizardState(t *testing.T, sessionID string) (int, map[string]interface{}) {
	t.Helper()
	c, rec := env.newJSONContext(http.MethodGet, "/api/wizard/"+sessionID, nil)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	require.NoError(t, env.handler.GetWizard(c))
	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}
	return rec.Code, decodeBody(t, rec)["session"].(map[string]interface{})
}

func fillContractSteps(t *testing.T, env *testEnv, sessionID string) {
	t.Helper()
	steps := []map[string]interface{}{
		{"start_date": "2024-03-01", "end_date": "2024-03-11", "contract_type": "daily", "insurance_type": "comprehensive"},
		{"customer_id": 11},
		{"vehicle_id": 22},
		{"daily_rate": 310, "total_amount": 3100},
		{"inspector_name": "Sami"},
	}
	for _, values := range steps {
		rec := env.advanceWizard(t, sessionID, values)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func expectContractCreate(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "owner_id"}).
			AddRow(11, "Ahmed", 1))
	mock.ExpectQuery(`SELECT \* FROM "vehicles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plate_number", "status", "owner_id"}).
			AddRow(22, "ABC-123", "available", 1))
	mock.ExpectQuery(`INSERT INTO "contracts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "vehicles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestContractWizardSubmitsAccumulatedPayload(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startContractWizard(t)

	fillContractSteps(t, env, sessionID)
	expectContractCreate(env.mock)

	// advancing past the documents step submits
	rec := env.advanceWizard(t, sessionID, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	contract := decodeBody(t, rec)["contract"].(map[string]interface{})
	assert.Equal(t, float64(3100), contract["total_amount"])
	assert.Equal(t, float64(11), contract["customer_id"])
	assert.Equal(t, float64(22), contract["vehicle_id"])
	assert.Equal(t, "active", contract["status"])

	// the session is gone after a successful submit
	code, _ := env.wizardState(t, sessionID)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestContractWizardFailedSubmitStaysOpen(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startContractWizard(t)
	fillContractSteps(t, env, sessionID)

	// the referenced customer does not resolve under this owner
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`SELECT \* FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "owner_id"}))
	env.mock.ExpectRollback()

	rec := env.advanceWizard(t, sessionID, map[string]interface{}{})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Failed to create contract", decodeBody(t, rec)["error"])

	// the session is still open on the last step, so the submit can be retried
	code, session := env.wizardState(t, sessionID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "in_progress", session["status"])
	assert.Equal(t, "documents", session["step"])

	expectContractCreate(env.mock)
	rec = env.advanceWizard(t, sessionID, map[string]interface{}{})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestWizardMissingFieldsDoNotMoveCursor(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startContractWizard(t)

	rec := env.advanceWizard(t, sessionID, map[string]interface{}{"start_date": "2024-03-01"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["field_errors"])

	_, session := env.wizardState(t, sessionID)
	assert.Equal(t, float64(0), session["step_index"])
	assert.Equal(t, "rental_details", session["step"])
}

func TestWizardRetreatKeepsEnteredValues(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startContractWizard(t)

	rec := env.advanceWizard(t, sessionID, map[string]interface{}{
		"start_date": "2024-03-01", "end_date": "2024-03-11",
		"contract_type": "daily", "insurance_type": "comprehensive",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec2 := env.newJSONContext(http.MethodPost, "/api/wizard/"+sessionID+"/retreat", nil)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	require.NoError(t, env.handler.RetreatWizard(c))
	require.Equal(t, http.StatusOK, rec2.Code)

	session := decodeBody(t, rec2)["session"].(map[string]interface{})
	assert.Equal(t, "rental_details", session["step"])
	values := session["values"].(map[string]interface{})
	assert.Equal(t, "2024-03-01", values["start_date"])

	// advancing again with no new input succeeds from the kept values
	rec3 := env.advanceWizard(t, sessionID, map[string]interface{}{})
	assert.Equal(t, http.StatusOK, rec3.Code)
}

func TestWizardRecordsAttachmentIDsOnlyOnAcceptedSteps(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startContractWizard(t)

	expectStagedRow := func() {
		env.mock.ExpectQuery(`SELECT \* FROM "attachments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "file_name", "storage_key", "status", "owner_id"}).
				AddRow(5, "license.pdf", "staging/1/100-uuid-license.pdf", "staged", 1))
	}
	advance := func(values map[string]interface{}) *httptest.ResponseRecorder {
		c, rec := env.newJSONContext(http.MethodPost, "/api/wizard/"+sessionID+"/advance",
			map[string]interface{}{"values": values, "attachment_ids": []uint{5}})
		c.SetParamNames("id")
		c.SetParamValues(sessionID)
		require.NoError(t, env.handler.AdvanceWizard(c))
		return rec
	}

	// the step is rejected, so the id is not tracked yet
	expectStagedRow()
	rec := advance(map[string]interface{}{"start_date": "2024-03-01"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	session, ok := env.handler.sessions.Get(sessionID, 1)
	require.True(t, ok)
	assert.Empty(t, session.StagedAttachments())

	// the retry carries the same id and is recorded exactly once
	expectStagedRow()
	rec = advance(map[string]interface{}{
		"start_date": "2024-03-01", "end_date": "2024-03-11",
		"contract_type": "daily", "insurance_type": "comprehensive",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []uint{5}, session.StagedAttachments())
}

func TestCancelledWizardRejectsFurtherAdvances(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startContractWizard(t)

	c, rec := env.newJSONContext(http.MethodPost, "/api/wizard/"+sessionID+"/cancel", nil)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	require.NoError(t, env.handler.CancelWizard(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// the session was dropped from the store on cancel
	code, _ := env.wizardState(t, sessionID)
	assert.Equal(t, http.StatusNotFound, code)
}
