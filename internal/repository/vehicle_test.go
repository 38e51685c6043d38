package repository

import (
	"context"
	"testing"

	"tajeer-server/internal/apperr"
	"tajeer-server/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVehicleNormalizesPlateBeforeUniquenessCheck(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVehicleRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "vehicles"`).
		WillReturnRows(countRows(1))

	vehicle := &model.Vehicle{PlateNumber: "  abc-123 ", Make: "Toyota"}
	err := repo.Create(context.Background(), 1, vehicle)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicate))
	assert.Equal(t, "ABC-123", vehicle.PlateNumber)
}

func TestDeleteVehicleOwnedByAnotherUserIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVehicleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "vehicles"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 2, 9)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPromoteAttachmentRequiresStagedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttachmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "attachments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Promote(context.Background(), 1, 3, "contract", 10, "contract/10/key", "/contract/10/key")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
