package models

import (
	"strconv"

	"backoffice/internal/recipe"
)

// IDString renders a primary key the way the costing engine identifies records.
func IDString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

// CatalogEntry projects the ingredient into the costing catalog.
func (i Ingredient) CatalogEntry() recipe.Ingredient {
	return recipe.Ingredient{
		ID:          IDString(i.ID),
		CostPerUnit: i.CostPerUnit,
		UnitSymbol:  i.UnitSymbol,
	}
}

// RecipeVariant projects the variant into the costing engine.
func (v ProductVariant) RecipeVariant() recipe.Variant {
	return recipe.Variant{
		ID:    IDString(v.ID),
		Name:  v.Name,
		Price: v.Price,
	}
}

// RecipeItem projects the line into the costing engine.
func (l RecipeLine) RecipeItem() recipe.RecipeItem {
	item := recipe.RecipeItem{
		IngredientID: IDString(l.IngredientID),
		Quantity:     l.Quantity,
		Scope:        recipe.BaseScope(),
	}
	if !l.IsBase() {
		item.Scope = recipe.VariantScope(IDString(*l.VariantID))
	}
	return item
}

// Catalog indexes ingredients for cost lookups.
func Catalog(ingredients []Ingredient) recipe.CatalogMap {
	catalog := make(recipe.CatalogMap, len(ingredients))
	for _, ingredient := range ingredients {
		entry := ingredient.CatalogEntry()
		catalog[entry.ID] = entry
	}
	return catalog
}

// RecipeVariants projects variants in their given order.
func RecipeVariants(variants []ProductVariant) []recipe.Variant {
	out := make([]recipe.Variant, 0, len(variants))
	for _, variant := range variants {
		out = append(out, variant.RecipeVariant())
	}
	return out
}

// RecipeItems projects recipe lines in their given order.
func RecipeItems(lines []RecipeLine) []recipe.RecipeItem {
	out := make([]recipe.RecipeItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.RecipeItem())
	}
	return out
}
