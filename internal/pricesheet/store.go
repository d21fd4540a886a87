package pricesheet

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	applog "backoffice/internal/log"
	"backoffice/models"
)

// Result counts the catalog changes made by Store.
type Result struct {
	Created int
	Updated int
}

// Store upserts rows into the ingredient catalog, matching existing entries
// by case-insensitive name. Later rows for the same name win.
func Store(ctx context.Context, database *gorm.DB, rows []Row) (Result, error) {
	if database == nil {
		return Result{}, gorm.ErrInvalidDB
	}

	var result Result
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var existing models.Ingredient
			err := tx.Where("lower(name) = ?", strings.ToLower(row.Name)).First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"unit_symbol":   row.UnitSymbol,
					"cost_per_unit": row.CostPerUnit,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
				result.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				ingredient := models.Ingredient{
					Name:        row.Name,
					UnitSymbol:  row.UnitSymbol,
					CostPerUnit: row.CostPerUnit,
				}
				if err := tx.Create(&ingredient).Error; err != nil {
					return err
				}
				result.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	applog.Debug(ctx, "price sheet stored", "created", result.Created, "updated", result.Updated)
	return result, nil
}
