package recipe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func coffeeCatalog() CatalogMap {
	return NewCatalog(
		Ingredient{ID: "beans", CostPerUnit: dec("0.02"), UnitSymbol: "g"},
		Ingredient{ID: "milk", CostPerUnit: dec("0.0015"), UnitSymbol: "ml"},
		Ingredient{ID: "whip", CostPerUnit: dec("0.30"), UnitSymbol: "pc"},
	)
}

func coffeeBase() []RecipeItem {
	return []RecipeItem{
		{IngredientID: "beans", Quantity: dec("18"), Scope: BaseScope()},
		{IngredientID: "milk", Quantity: dec("250"), Scope: BaseScope()},
	}
}

func coffeeVariants() []Variant {
	return []Variant{
		{ID: "standard", Name: "Standard", Price: dec("4.50")},
		{ID: "large", Name: "Large", Price: dec("5.50")},
		{ID: "promo", Name: "Promo", Price: dec("0")},
	}
}

func coffeeItems() []RecipeItem {
	items := coffeeBase()
	items = append(items,
		RecipeItem{IngredientID: "milk", Quantity: dec("350"), Scope: VariantScope("large")},
		RecipeItem{IngredientID: "whip", Quantity: dec("1"), Scope: VariantScope("large")},
	)
	return items
}

func costsByVariant(metrics []VariantMetric) map[string]decimal.Decimal {
	costs := make(map[string]decimal.Decimal, len(metrics))
	for _, metric := range metrics {
		costs[metric.VariantID] = metric.Cost
	}
	return costs
}

func TestResolveCoffeeScenario(t *testing.T) {
	t.Parallel()

	metrics := Resolve(coffeeItems(), coffeeVariants(), coffeeCatalog())
	require.Len(t, metrics, 3)

	standard, large, promo := metrics[0], metrics[1], metrics[2]

	assert.Equal(t, "standard", standard.VariantID)
	assert.Equal(t, "Standard", standard.Name)
	requireDecimal(t, "0.735", standard.Cost)
	assert.EqualValues(t, 84, standard.Margin)

	assert.Equal(t, "large", large.VariantID)
	requireDecimal(t, "1.185", large.Cost)
	assert.EqualValues(t, 78, large.Margin)

	assert.Equal(t, "promo", promo.VariantID)
	requireDecimal(t, "0.735", promo.Cost)
	assert.EqualValues(t, 0, promo.Margin)
}

func TestResolveLineOrderingAndOrigins(t *testing.T) {
	t.Parallel()

	lines := ResolveLines(coffeeItems(), "large", coffeeCatalog())
	require.Len(t, lines, 3)

	assert.Equal(t, "beans", lines[0].IngredientID)
	assert.Equal(t, OriginInherited, lines[0].Origin)
	requireDecimal(t, "0.36", lines[0].LineCost)
	assert.Equal(t, "g", lines[0].UnitSymbol)

	assert.Equal(t, "milk", lines[1].IngredientID)
	assert.Equal(t, OriginOverridden, lines[1].Origin)
	requireDecimal(t, "350", lines[1].EffectiveQuantity)
	requireDecimal(t, "0.525", lines[1].LineCost)

	assert.Equal(t, "whip", lines[2].IngredientID)
	assert.Equal(t, OriginExclusive, lines[2].Origin)
	requireDecimal(t, "0.30", lines[2].LineCost)
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestResolveLargeMetricMatchesHandWorkedSheet(t *testing.T) {
	t.Parallel()

	metrics := Resolve(coffeeItems(), coffeeVariants(), coffeeCatalog())
	require.Len(t, metrics, 3)

	want := VariantMetric{
		VariantID: "large",
		Name:      "Large",
		Price:     dec("5.50"),
		Cost:      dec("1.185"),
		Margin:    78,
		Lines: []ResolvedLine{
			{IngredientID: "beans", EffectiveQuantity: dec("18"), CostPerUnit: dec("0.02"), LineCost: dec("0.36"), UnitSymbol: "g", Origin: OriginInherited},
			{IngredientID: "milk", EffectiveQuantity: dec("350"), CostPerUnit: dec("0.0015"), LineCost: dec("0.525"), UnitSymbol: "ml", Origin: OriginOverridden},
			{IngredientID: "whip", EffectiveQuantity: dec("1"), CostPerUnit: dec("0.30"), LineCost: dec("0.30"), UnitSymbol: "pc", Origin: OriginExclusive},
		},
	}
	if diff := cmp.Diff(want, metrics[1], decimalEqual); diff != "" {
		t.Fatalf("large metric mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSingleVariantUsesBaseOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		variants  []Variant
		wantID    string
		wantPrice string
	}{
		{"no variants", nil, "", "0"},
		{"one variant", []Variant{{ID: "only", Name: "Regular", Price: dec("4.50")}}, "only", "4.50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := append(coffeeBase(), RecipeItem{IngredientID: "whip", Quantity: dec("1"), Scope: VariantScope("only")})
			metrics := Resolve(items, tt.variants, coffeeCatalog())
			require.Len(t, metrics, 1)

			metric := metrics[0]
			assert.Equal(t, BaseMetricName, metric.Name)
			assert.Equal(t, tt.wantID, metric.VariantID)
			requireDecimal(t, tt.wantPrice, metric.Price)
			requireDecimal(t, "0.735", metric.Cost)
			assert.Len(t, metric.Lines, 2)
		})
	}
}

func TestResolveOverrideIsolation(t *testing.T) {
	t.Parallel()

	before := costsByVariant(Resolve(coffeeBase(), coffeeVariants(), coffeeCatalog()))
	items := append(coffeeBase(), RecipeItem{IngredientID: "beans", Quantity: dec("25"), Scope: VariantScope("large")})
	after := costsByVariant(Resolve(items, coffeeVariants(), coffeeCatalog()))

	requireDecimal(t, before["standard"].String(), after["standard"])
	requireDecimal(t, before["promo"].String(), after["promo"])
	// 25g replaces the inherited 18g rather than stacking on top of it.
	replaced := before["large"].Add(dec("25").Sub(dec("18")).Mul(dec("0.02")))
	requireDecimal(t, replaced.String(), after["large"])
	requireDecimal(t, "0.875", after["large"])

	base := Resolve(items, nil, coffeeCatalog())
	requireDecimal(t, "0.735", base[0].Cost)
}

func TestResolveAdditionIsolation(t *testing.T) {
	t.Parallel()

	before := costsByVariant(Resolve(coffeeBase(), coffeeVariants(), coffeeCatalog()))
	items := append(coffeeBase(), RecipeItem{IngredientID: "whip", Quantity: dec("2"), Scope: VariantScope("standard")})
	after := costsByVariant(Resolve(items, coffeeVariants(), coffeeCatalog()))

	requireDecimal(t, before["standard"].Add(dec("0.60")).String(), after["standard"])
	requireDecimal(t, before["large"].String(), after["large"])
	requireDecimal(t, before["promo"].String(), after["promo"])
}

func TestResolveWithoutOverridesConverges(t *testing.T) {
	t.Parallel()

	for _, metric := range Resolve(coffeeBase(), coffeeVariants(), coffeeCatalog()) {
		requireDecimal(t, "0.735", metric.Cost, metric.Name)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	items := coffeeItems()
	first := Resolve(items, coffeeVariants(), coffeeCatalog())
	second := Resolve(items, coffeeVariants(), coffeeCatalog())
	assert.Equal(t, first, second)
	assert.Equal(t, coffeeItems(), items, "resolve must not mutate its input")
}

func TestResolveMissingCatalogEntries(t *testing.T) {
	t.Parallel()

	items := append(coffeeBase(), RecipeItem{IngredientID: "saffron", Quantity: dec("3"), Scope: VariantScope("large")})

	metrics := Resolve(items, coffeeVariants(), coffeeCatalog())
	requireDecimal(t, "0.735", metrics[1].Cost)
	requireDecimal(t, "0", metrics[1].Lines[2].CostPerUnit)

	unloaded := Resolve(items, coffeeVariants(), nil)
	for _, metric := range unloaded {
		requireDecimal(t, "0", metric.Cost, metric.Name)
	}
	assert.EqualValues(t, 100, unloaded[0].Margin)
}

func TestResolveEmptyRecipe(t *testing.T) {
	t.Parallel()

	metrics := Resolve(nil, coffeeVariants(), coffeeCatalog())
	require.Len(t, metrics, 3)
	for _, metric := range metrics {
		requireDecimal(t, "0", metric.Cost)
		assert.Empty(t, metric.Lines)
	}
	assert.EqualValues(t, 100, metrics[0].Margin)
	assert.EqualValues(t, 0, metrics[2].Margin)

	empty := Resolve(nil, nil, nil)
	require.Len(t, empty, 1)
	requireDecimal(t, "0", empty[0].Cost)
	assert.EqualValues(t, 0, empty[0].Margin)
}

func TestResolveDuplicateItemsFirstWins(t *testing.T) {
	t.Parallel()

	items := []RecipeItem{
		{IngredientID: "beans", Quantity: dec("18"), Scope: BaseScope()},
		{IngredientID: "beans", Quantity: dec("40"), Scope: BaseScope()},
		{IngredientID: "beans", Quantity: dec("20"), Scope: VariantScope("large")},
		{IngredientID: "beans", Quantity: dec("99"), Scope: VariantScope("large")},
		{IngredientID: "whip", Quantity: dec("1"), Scope: VariantScope("large")},
		{IngredientID: "whip", Quantity: dec("5"), Scope: VariantScope("large")},
	}

	lines := ResolveLines(items, "large", coffeeCatalog())
	require.Len(t, lines, 2)
	requireDecimal(t, "20", lines[0].EffectiveQuantity)
	requireDecimal(t, "1", lines[1].EffectiveQuantity)

	base := ResolveLines(items, "", coffeeCatalog())
	require.Len(t, base, 1)
	requireDecimal(t, "18", base[0].EffectiveQuantity)
}

func TestMarginOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price string
		cost  string
		want  int64
	}{
		{"zero price", "0", "0.735", 0},
		{"zero price zero cost", "0", "0", 0},
		{"zero cost", "4.50", "0", 100},
		{"rounds down", "4.50", "0.735", 84},
		{"rounds half away from zero", "8", "7", 13},
		{"cost above price", "2", "3", -50},
		{"negative half rounds away from zero", "8", "9", -13},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MarginOf(dec(tt.price), dec(tt.cost)))
		})
	}
}
