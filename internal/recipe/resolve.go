package recipe

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Resolve computes one metric per variant, in variant order.
//
// With zero or one variants there is no override axis: a single metric named
// "Base" is emitted from the base lines alone, priced at the lone variant's
// price (zero when there is none). With two or more variants each variant
// inherits the base lines and applies its own scoped items on top.
func Resolve(items []RecipeItem, variants []Variant, catalog Catalog) []VariantMetric {
	if len(variants) <= 1 {
		metric := VariantMetric{Name: BaseMetricName, Price: decimal.Zero}
		if len(variants) == 1 {
			metric.VariantID = variants[0].ID
			metric.Price = variants[0].Price
		}
		metric.Lines = ResolveLines(items, "", catalog)
		metric.Cost = totalCost(metric.Lines)
		metric.Margin = MarginOf(metric.Price, metric.Cost)
		return []VariantMetric{metric}
	}

	metrics := make([]VariantMetric, 0, len(variants))
	for _, variant := range variants {
		lines := ResolveLines(items, variant.ID, catalog)
		cost := totalCost(lines)
		metrics = append(metrics, VariantMetric{
			VariantID: variant.ID,
			Name:      variant.Name,
			Price:     variant.Price,
			Cost:      cost,
			Margin:    MarginOf(variant.Price, cost),
			Lines:     lines,
		})
	}
	return metrics
}

// ResolveLines merges the base lines with the items scoped to variantID.
// Base lines keep their base order whether overridden or not; variant-only
// ingredients follow in the order they were added. An empty variantID yields
// the base lines alone. When a scope holds the same ingredient twice the first
// item wins.
func ResolveLines(items []RecipeItem, variantID string, catalog Catalog) []ResolvedLine {
	lines := make([]ResolvedLine, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if !item.Scope.IsBase() {
			continue
		}
		if _, seen := index[item.IngredientID]; seen {
			continue
		}
		index[item.IngredientID] = len(lines)
		lines = append(lines, ResolvedLine{
			IngredientID:      item.IngredientID,
			EffectiveQuantity: item.Quantity,
			Origin:            OriginInherited,
		})
	}

	if variantID != "" {
		applied := make(map[string]struct{})
		for _, item := range items {
			if item.Scope.VariantID != variantID {
				continue
			}
			if _, seen := applied[item.IngredientID]; seen {
				continue
			}
			applied[item.IngredientID] = struct{}{}

			if i, ok := index[item.IngredientID]; ok {
				lines[i].EffectiveQuantity = item.Quantity
				lines[i].Origin = OriginOverridden
				continue
			}
			lines = append(lines, ResolvedLine{
				IngredientID:      item.IngredientID,
				EffectiveQuantity: item.Quantity,
				Origin:            OriginExclusive,
			})
		}
	}

	for i := range lines {
		priceLine(&lines[i], catalog)
	}
	return lines
}

// MarginOf returns the gross margin percentage of price over cost rounded to
// the nearest integer, half away from zero. A zero price yields zero.
func MarginOf(price, cost decimal.Decimal) int64 {
	if price.IsZero() {
		return 0
	}
	return price.Sub(cost).Mul(hundred).Div(price).Round(0).IntPart()
}

func priceLine(line *ResolvedLine, catalog Catalog) {
	line.CostPerUnit = decimal.Zero
	if catalog != nil {
		if ingredient, ok := catalog.Lookup(line.IngredientID); ok {
			line.CostPerUnit = ingredient.CostPerUnit
			line.UnitSymbol = ingredient.UnitSymbol
		}
	}
	line.LineCost = line.EffectiveQuantity.Mul(line.CostPerUnit)
}

func totalCost(lines []ResolvedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineCost)
	}
	return total
}
