package pages

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/recipe"
)

// rangeSeparator joins the low and high end of a displayed range.
const rangeSeparator = " – "

// FormatMoney renders an amount with two decimals behind the currency symbol.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// FormatCostRange renders the summary cost as a single figure or a min – max range.
func FormatCostRange(symbol string, summary recipe.Summary) string {
	if !summary.CostIsRange() {
		return FormatMoney(symbol, summary.MinCost)
	}
	return FormatMoney(symbol, summary.MinCost) + rangeSeparator + FormatMoney(symbol, summary.MaxCost)
}

// FormatMarginRange renders the summary margin as a single percentage or a range.
func FormatMarginRange(summary recipe.Summary) string {
	if !summary.MarginIsRange() {
		return FormatMargin(summary.MinMargin)
	}
	return FormatMargin(summary.MinMargin) + rangeSeparator + FormatMargin(summary.MaxMargin)
}

// FormatMargin renders a whole-number margin percentage.
func FormatMargin(margin int64) string {
	return fmt.Sprintf("%d%%", margin)
}

// FormatQuantity renders a quantity followed by its unit symbol.
func FormatQuantity(quantity decimal.Decimal, unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return quantity.String()
	}
	return quantity.String() + " " + unit
}

// IngredientLabel returns the display name for a catalog ID.
func IngredientLabel(names map[string]string, id string) string {
	if name := strings.TrimSpace(names[id]); name != "" {
		return name
	}
	return "Ingredient #" + id
}
