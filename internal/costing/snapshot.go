// Package costing loads a product's stored recipe and prices it with the
// recipe engine.
package costing

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	applog "backoffice/internal/log"
	"backoffice/internal/recipe"
	"backoffice/models"
)

// ErrProductNotFound is returned when the requested product does not exist.
var ErrProductNotFound = errors.New("costing: product not found")

// Snapshot is an immutable copy of everything needed to cost one product.
type Snapshot struct {
	Product     models.Product
	Variants    []models.ProductVariant
	Lines       []models.RecipeLine
	Ingredients []models.Ingredient
}

// Sheet is the priced view of a snapshot.
type Sheet struct {
	Metrics []recipe.VariantMetric
	Summary recipe.Summary
}

// Load reads the product, its ordered variants and recipe lines, and the
// ingredients those lines reference.
func Load(ctx context.Context, database *gorm.DB, productID uint) (Snapshot, error) {
	if database == nil {
		return Snapshot{}, gorm.ErrInvalidDB
	}

	var snapshot Snapshot
	if err := database.WithContext(ctx).First(&snapshot.Product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, ErrProductNotFound
		}
		return Snapshot{}, fmt.Errorf("load product %d: %w", productID, err)
	}

	if err := database.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc, id asc").
		Find(&snapshot.Variants).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load variants for product %d: %w", productID, err)
	}

	if err := database.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc, id asc").
		Find(&snapshot.Lines).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load recipe lines for product %d: %w", productID, err)
	}

	ids := ingredientIDs(snapshot.Lines)
	if len(ids) > 0 {
		if err := database.WithContext(ctx).
			Where("id IN ?", ids).
			Order("id asc").
			Find(&snapshot.Ingredients).Error; err != nil {
			return Snapshot{}, fmt.Errorf("load ingredients for product %d: %w", productID, err)
		}
	}

	applog.Debug(ctx, "costing snapshot loaded",
		"productID", productID,
		"variants", len(snapshot.Variants),
		"lines", len(snapshot.Lines),
		"ingredients", len(snapshot.Ingredients),
	)

	return snapshot, nil
}

// Items returns the recipe lines as engine items, in stored order.
func (s Snapshot) Items() []recipe.RecipeItem {
	return models.RecipeItems(s.Lines)
}

// RecipeVariants returns the variants as engine variants, in stored order.
func (s Snapshot) RecipeVariants() []recipe.Variant {
	return models.RecipeVariants(s.Variants)
}

// Catalog returns the referenced ingredients keyed by ID.
func (s Snapshot) Catalog() recipe.CatalogMap {
	return models.Catalog(s.Ingredients)
}

// Sheet prices the snapshot.
func (s Snapshot) Sheet() Sheet {
	return Price(s.Items(), s.RecipeVariants(), s.Catalog())
}

// IngredientNames maps catalog IDs to display names.
func (s Snapshot) IngredientNames() map[string]string {
	names := make(map[string]string, len(s.Ingredients))
	for _, ingredient := range s.Ingredients {
		names[models.IDString(ingredient.ID)] = ingredient.Name
	}
	return names
}

// FindLine returns the stored line for ingredientID in scope, if any.
func (s Snapshot) FindLine(scope recipe.Scope, ingredientID string) (models.RecipeLine, bool) {
	for _, line := range s.Lines {
		item := line.RecipeItem()
		if item.Scope == scope && item.IngredientID == ingredientID {
			return line, true
		}
	}
	return models.RecipeLine{}, false
}

// HasVariant reports whether variantID belongs to the product.
func (s Snapshot) HasVariant(variantID string) bool {
	for _, variant := range s.Variants {
		if models.IDString(variant.ID) == variantID {
			return true
		}
	}
	return false
}

// NextPosition returns the position after the last stored line.
func (s Snapshot) NextPosition() int {
	next := 1
	for _, line := range s.Lines {
		if line.Position >= next {
			next = line.Position + 1
		}
	}
	return next
}

// Price resolves the metrics and their summary for an arbitrary editor state.
func Price(items []recipe.RecipeItem, variants []recipe.Variant, catalog recipe.Catalog) Sheet {
	metrics := recipe.Resolve(items, variants, catalog)
	return Sheet{Metrics: metrics, Summary: recipe.Aggregate(metrics)}
}

func ingredientIDs(lines []models.RecipeLine) []uint {
	seen := make(map[uint]struct{}, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.IngredientID]; ok {
			continue
		}
		seen[line.IngredientID] = struct{}{}
		ids = append(ids, line.IngredientID)
	}
	return ids
}
