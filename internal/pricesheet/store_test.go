package pricesheet

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backoffice/internal/db/mock"
	"backoffice/models"
)

func TestStoreUpsertsByName(t *testing.T) {
	ctx := context.Background()
	db, err := mock.Open(ctx, "pricesheet-store")
	require.NoError(t, err)

	rows := []Row{
		{Name: "whole milk", UnitSymbol: "ml", CostPerUnit: decimal.RequireFromString("0.0016")},
		{Name: "Oat Milk", UnitSymbol: "ml", CostPerUnit: decimal.RequireFromString("0.0021")},
	}
	result, err := Store(ctx, db, rows)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Updated: 1}, result)

	var milk models.Ingredient
	require.NoError(t, db.Where("name = ?", "Whole Milk").First(&milk).Error)
	assert.True(t, milk.CostPerUnit.Equal(decimal.RequireFromString("0.0016")), "cost %s", milk.CostPerUnit)

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)
}

func TestStoreWithoutDatabase(t *testing.T) {
	_, err := Store(context.Background(), nil, nil)
	require.ErrorIs(t, err, gorm.ErrInvalidDB)
}
