package repository

import (
	"context"
	"testing"

	prom "tajeer-server/prometheus"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationsRecordDurationsPerType(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVehicleRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "vehicles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plate_number", "owner_id"}).
			AddRow(1, "ABC-123", 1))
	_, err := repo.GetByID(context.Background(), 1, 1)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "vehicles"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete(context.Background(), 1, 1))

	// at least the select and delete children exist after the calls above
	count := testutil.CollectAndCount(&prom.DbOperationDuration, "repository_test_db_operation_duration_seconds")
	assert.GreaterOrEqual(t, count, 2)
}
