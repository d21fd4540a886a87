package recipe

import "github.com/shopspring/decimal"

// The functions below are the editor's state transitions. Each returns a new
// slice and leaves its input untouched.

// EditInheritedLine records a quantity edit made on a variant's inherited row.
// The base item is never modified: the edit lands on the variant's override
// for ingredientID, which is created when it does not exist yet. An empty
// variantID edits the base line itself.
func EditInheritedLine(items []RecipeItem, variantID, ingredientID string, quantity decimal.Decimal) []RecipeItem {
	return SetQuantity(items, VariantScope(variantID), ingredientID, quantity)
}

// SetQuantity sets the quantity of the first item for ingredientID in scope,
// appending a new item when the scope has none.
func SetQuantity(items []RecipeItem, scope Scope, ingredientID string, quantity decimal.Decimal) []RecipeItem {
	next := clone(items)
	if i := find(next, scope, ingredientID); i >= 0 {
		next[i].Quantity = quantity
		return next
	}
	return append(next, RecipeItem{IngredientID: ingredientID, Quantity: quantity, Scope: scope})
}

// AddItem appends item.
func AddItem(items []RecipeItem, item RecipeItem) []RecipeItem {
	return append(clone(items), item)
}

// RemoveItem drops every item for ingredientID in scope. Removing a variant
// override reverts that variant to the inherited base quantity.
func RemoveItem(items []RecipeItem, scope Scope, ingredientID string) []RecipeItem {
	next := make([]RecipeItem, 0, len(items))
	for _, item := range items {
		if item.Scope == scope && item.IngredientID == ingredientID {
			continue
		}
		next = append(next, item)
	}
	return next
}

// ToggleOverride turns a variant's override for ingredientID on or off.
// Turning it on materializes the inherited base quantity as an override;
// it is a no-op when the override already exists or the base recipe lacks
// the ingredient. Turning it off reverts to the inherited quantity.
func ToggleOverride(items []RecipeItem, variantID, ingredientID string, on bool) []RecipeItem {
	scope := VariantScope(variantID)
	if !on {
		return RemoveItem(items, scope, ingredientID)
	}
	if variantID == "" || find(items, scope, ingredientID) >= 0 {
		return clone(items)
	}
	base := find(items, BaseScope(), ingredientID)
	if base < 0 {
		return clone(items)
	}
	return AddItem(items, RecipeItem{IngredientID: ingredientID, Quantity: items[base].Quantity, Scope: scope})
}

// HasOverride reports whether variantID carries its own item for ingredientID.
func HasOverride(items []RecipeItem, variantID, ingredientID string) bool {
	return variantID != "" && find(items, VariantScope(variantID), ingredientID) >= 0
}

func find(items []RecipeItem, scope Scope, ingredientID string) int {
	for i, item := range items {
		if item.Scope == scope && item.IngredientID == ingredientID {
			return i
		}
	}
	return -1
}

func clone(items []RecipeItem) []RecipeItem {
	next := make([]RecipeItem, len(items), len(items)+1)
	copy(next, items)
	return next
}
