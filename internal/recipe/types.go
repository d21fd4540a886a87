// Package recipe resolves per-variant recipe costs and gross margins for a
// multi-variant product. Base recipe lines are inherited by every variant
// unless a variant-scoped line replaces the quantity or adds a new ingredient.
//
// Everything in this package is a pure function over value snapshots. Nothing
// here returns an error: missing catalog entries and zero prices degrade to
// zero cost and zero margin.
package recipe

import "github.com/shopspring/decimal"

// Ingredient is a catalog entry priced per unit.
type Ingredient struct {
	ID          string
	CostPerUnit decimal.Decimal
	UnitSymbol  string
}

// Catalog looks up ingredients by identifier.
type Catalog interface {
	Lookup(id string) (Ingredient, bool)
}

// CatalogMap is a Catalog backed by a map keyed by ingredient ID.
type CatalogMap map[string]Ingredient

// Lookup implements Catalog. A nil map finds nothing.
func (m CatalogMap) Lookup(id string) (Ingredient, bool) {
	ingredient, ok := m[id]
	return ingredient, ok
}

// NewCatalog indexes ingredients by ID. Later duplicates replace earlier ones.
func NewCatalog(ingredients ...Ingredient) CatalogMap {
	catalog := make(CatalogMap, len(ingredients))
	for _, ingredient := range ingredients {
		catalog[ingredient.ID] = ingredient
	}
	return catalog
}

// Scope places a recipe item either on the base recipe or on one variant.
// The zero value is the base scope.
type Scope struct {
	VariantID string
}

// BaseScope returns the scope shared by every variant.
func BaseScope() Scope { return Scope{} }

// VariantScope returns the override scope of a single variant.
func VariantScope(variantID string) Scope { return Scope{VariantID: variantID} }

// IsBase reports whether the scope is the base recipe.
func (s Scope) IsBase() bool { return s.VariantID == "" }

// RecipeItem is a single ingredient quantity within a scope.
type RecipeItem struct {
	IngredientID string
	Quantity     decimal.Decimal
	Scope        Scope
}

// Variant is a sellable version of the product. Order is significant.
type Variant struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Origin describes where a resolved line came from.
type Origin string

const (
	// OriginInherited marks a base line the variant does not override.
	OriginInherited Origin = "inherited"
	// OriginOverridden marks a base line whose quantity the variant replaced.
	OriginOverridden Origin = "overridden"
	// OriginExclusive marks an ingredient only the variant uses.
	OriginExclusive Origin = "exclusive"
)

// ResolvedLine is the effective quantity and cost of one ingredient for a variant.
type ResolvedLine struct {
	IngredientID      string
	EffectiveQuantity decimal.Decimal
	CostPerUnit       decimal.Decimal
	LineCost          decimal.Decimal
	UnitSymbol        string
	Origin            Origin
}

// VariantMetric is the resolved cost and margin of one variant.
type VariantMetric struct {
	VariantID string
	Name      string
	Price     decimal.Decimal
	Cost      decimal.Decimal
	Margin    int64
	Lines     []ResolvedLine
}

// BaseMetricName names the single metric emitted for products without a
// variant axis.
const BaseMetricName = "Base"
