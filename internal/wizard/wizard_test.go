package wizard

import (
	"sync"
	"testing"
	"time"

	prom "tajeer-server/prometheus"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSession() *Session {
	return NewSession(KindContract, 1, ContractSteps())
}

func rentalDetails() map[string]interface{} {
	return map[string]interface{}{
		"start_date":     "2024-01-01",
		"end_date":       "2024-01-31",
		"contract_type":  "rental",
		"insurance_type": "comprehensive",
	}
}

func TestAdvanceBlocksOnMissingRequiredFields(t *testing.T) {
	s := contractSession()

	done, errs := s.Advance(map[string]interface{}{
		"start_date": "2024-01-01",
	})
	assert.False(t, done)
	require.Len(t, errs, 3)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"end_date", "contract_type", "insurance_type"}, fields)

	// Cursor must not move on validation failure.
	current, _ := s.Progress()
	assert.Equal(t, 0, current)
}

func TestAdvanceValidatesDateOrder(t *testing.T) {
	s := contractSession()
	values := rentalDetails()
	values["end_date"] = "2023-12-01"

	done, errs := s.Advance(values)
	assert.False(t, done)
	require.Len(t, errs, 1)
	assert.Equal(t, "end_date", errs[0].Field)
}

func TestAdvanceMovesForwardAndAccumulates(t *testing.T) {
	s := contractSession()

	done, errs := s.Advance(rentalDetails())
	require.Empty(t, errs)
	assert.False(t, done)

	current, total := s.Progress()
	assert.Equal(t, 1, current)
	assert.Equal(t, 6, total)
	assert.Equal(t, "customer", s.StepName())
}

func TestRetreatPreservesEnteredValues(t *testing.T) {
	s := contractSession()

	_, errs := s.Advance(rentalDetails())
	require.Empty(t, errs)
	_, errs = s.Advance(map[string]interface{}{"customer_id": float64(11)})
	require.Empty(t, errs)

	require.NoError(t, s.Retreat())
	current, _ := s.Progress()
	assert.Equal(t, 1, current)

	// Values entered before retreating are still there.
	assert.Equal(t, float64(11), s.StepValues(1)["customer_id"])

	// Advancing again without re-entering the field succeeds because the
	// accumulator already holds it.
	done, errs := s.Advance(map[string]interface{}{})
	assert.False(t, done)
	assert.Empty(t, errs)
	current, _ = s.Progress()
	assert.Equal(t, 2, current)
}

func TestRetreatFromFirstStepFails(t *testing.T) {
	s := contractSession()
	assert.Error(t, s.Retreat())
}

func TestFullContractFlowAssemblesPayload(t *testing.T) {
	s := contractSession()

	steps := []map[string]interface{}{
		rentalDetails(),
		{"customer_id": float64(11)},
		{"vehicle_id": float64(22)},
		{"daily_rate": float64(100), "total_amount": float64(3100)},
		{"inspector_name": "Sami"},
	}
	for _, values := range steps {
		done, errs := s.Advance(values)
		require.Empty(t, errs)
		require.False(t, done)
	}

	// Last step: advance triggers submit.
	done, errs := s.Advance(map[string]interface{}{"attachment_ids": []interface{}{float64(1), float64(2), float64(3)}})
	require.Empty(t, errs)
	assert.True(t, done)

	payload := s.Payload()
	assert.Equal(t, "2024-01-01", payload["start_date"])
	assert.Equal(t, float64(11), payload["customer_id"])
	assert.Equal(t, float64(22), payload["vehicle_id"])
	assert.Equal(t, float64(3100), payload["total_amount"])
	assert.Equal(t, "Sami", payload["inspector_name"])

	s.MarkSubmitted()
	assert.Equal(t, StatusSubmitted, s.Status)
}

func TestAdvanceAfterTerminalStateFails(t *testing.T) {
	s := contractSession()
	s.Cancel()

	done, errs := s.Advance(rentalDetails())
	assert.False(t, done)
	assert.NotEmpty(t, errs)
}

func TestFailedSubmitKeepsSessionOnLastStep(t *testing.T) {
	s := contractSession()
	for _, values := range []map[string]interface{}{
		rentalDetails(),
		{"customer_id": float64(1)},
		{"vehicle_id": float64(2)},
		{"daily_rate": float64(100), "total_amount": float64(3100)},
		{"inspector_name": "Sami"},
	} {
		_, errs := s.Advance(values)
		require.Empty(t, errs)
	}

	done, errs := s.Advance(map[string]interface{}{})
	require.Empty(t, errs)
	require.True(t, done)

	// The gateway call failed: the caller does not mark the session, so it
	// stays in progress on the final step and can be retried.
	assert.Equal(t, StatusInProgress, s.Status)
	current, total := s.Progress()
	assert.Equal(t, total-1, current)

	done, errs = s.Advance(map[string]interface{}{})
	assert.True(t, done)
	assert.Empty(t, errs)
}

func TestVehicleStepsValidation(t *testing.T) {
	s := NewSession(KindVehicle, 1, VehicleSteps())

	_, errs := s.Advance(map[string]interface{}{
		"plate_number": "abc-123", "make": "Toyota", "model": "Camry",
	})
	require.Empty(t, errs)

	_, errs = s.Advance(map[string]interface{}{"year": float64(1900), "branch_id": float64(1)})
	require.Len(t, errs, 1)
	assert.Equal(t, "year", errs[0].Field)

	_, errs = s.Advance(map[string]interface{}{"year": float64(2022), "branch_id": float64(1)})
	assert.Empty(t, errs)
}

func TestStoreScopesSessionsByOwner(t *testing.T) {
	store := NewStore(time.Hour)
	session := store.Open(KindContract, 7, ContractSteps())

	_, ok := store.Get(session.ID, 7)
	assert.True(t, ok)

	// Another user's id behaves like a missing session.
	_, ok = store.Get(session.ID, 8)
	assert.False(t, ok)

	store.Remove(session.ID)
	_, ok = store.Get(session.ID, 7)
	assert.False(t, ok)
}

func TestStoreExpiresStaleSessions(t *testing.T) {
	store := NewStore(time.Millisecond)
	session := store.Open(KindContract, 7, ContractSteps())
	session.UpdatedAt = time.Now().Add(-time.Minute)

	_, ok := store.Get(session.ID, 7)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestStagedIDsAccumulate(t *testing.T) {
	s := contractSession()
	s.AddStagedID(4)
	s.AddStagedID(9)
	assert.Equal(t, []uint{4, 9}, s.StagedAttachments())
}

func TestAddStagedIDIsIdempotent(t *testing.T) {
	s := contractSession()
	s.AddStagedID(4)
	s.AddStagedID(4)
	s.AddStagedID(9)
	assert.Equal(t, []uint{4, 9}, s.StagedAttachments())
}

func TestConcurrentAdvanceAndStagedRegistration(t *testing.T) {
	s := contractSession()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Advance(rentalDetails())
		}()
		go func(n uint) {
			defer wg.Done()
			s.AddStagedID(n + 1)
		}(uint(i))
	}
	wg.Wait()

	// Only the first advance moves the cursor; the rest fail the customer
	// step's required fields and leave it alone.
	current, _ := s.Progress()
	assert.Equal(t, 1, current)
	assert.Len(t, s.StagedAttachments(), 4)
}

func TestStoreExpiryReleasesSessionGauge(t *testing.T) {
	gauge := prom.WizardSessionsGauge.WithLabelValues(KindContract)
	base := testutil.ToFloat64(gauge)

	store := NewStore(time.Millisecond)
	session := store.Open(KindContract, 7, ContractSteps())
	gauge.Inc()
	session.UpdatedAt = time.Now().Add(-time.Minute)

	_, ok := store.Get(session.ID, 7)
	assert.False(t, ok)
	assert.Equal(t, base, testutil.ToFloat64(gauge))
}
