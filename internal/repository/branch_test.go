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

func TestDeleteBranchRefusedWhileVehiclesReferenceIt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBranchRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "branches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id"}).
			AddRow(5, "Downtown", 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "vehicles"`).
		WillReturnRows(countRows(3))

	err := repo.Delete(context.Background(), 1, 5)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindHasDependents))
	// no DELETE was issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBranchWithoutDependents(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBranchRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "branches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id"}).
			AddRow(5, "Downtown", 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "vehicles"`).
		WillReturnRows(countRows(0))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "branches"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 1, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignBranchReadsAsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBranchRepository(db)

	// the owner filter excludes the row, which reads exactly like absence
	mock.ExpectQuery(`SELECT \* FROM "branches"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id"}))

	_, err := repo.GetByID(context.Background(), 2, 5)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateBranchRejectsDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBranchRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "branches"`).
		WillReturnRows(countRows(1))

	err := repo.Create(context.Background(), 1, &model.Branch{Name: "Downtown"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicate))
	// the insert never ran
	assert.NoError(t, mock.ExpectationsWereMet())
}
