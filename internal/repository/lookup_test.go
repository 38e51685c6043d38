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

func TestDeactivateIsASoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLookupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "lookups" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Deactivate(context.Background(), 1, 7))
	// the row was updated, not removed
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateMissingEntryIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLookupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "lookups" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Deactivate(context.Background(), 1, 404)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateLookupRejectsDuplicateNameWithinKind(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLookupRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "lookups"`).
		WillReturnRows(countRows(1))

	err := repo.Create(context.Background(), 1, &model.Lookup{
		Kind: model.LookupKindNationality,
		Name: "Saudi",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeletedEntryStillResolvesByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLookupRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "lookups"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "name", "is_active", "owner_id"}).
			AddRow(7, model.LookupKindNationality, "Saudi", false, 1))

	entry, err := repo.GetByID(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, entry.IsActive)
	assert.Equal(t, "Saudi", entry.Name)
}

func TestCategoryMapJoinsIDToCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLookupRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "lookups"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "name", "category", "owner_id"}).
			AddRow(1, model.LookupKindTransactionType, "Rental income", model.CategoryIncome, 1).
			AddRow(2, model.LookupKindTransactionType, "Maintenance", model.CategoryExpense, 1))

	categories, err := repo.CategoryMap(context.Background(), 1, model.LookupKindTransactionType)
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{
		1: model.CategoryIncome,
		2: model.CategoryExpense,
	}, categories)
}
