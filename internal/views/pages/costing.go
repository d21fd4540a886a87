package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"backoffice/internal/costing"
	"backoffice/internal/recipe"
	"backoffice/internal/views/components"
)

// CostingView is everything the costing panel needs to render one product.
type CostingView struct {
	ProductID       uint
	ProductName     string
	CurrencySymbol  string
	Sheet           costing.Sheet
	IngredientNames map[string]string
}

// HasVariantAxis reports whether the product is priced per variant.
func (v CostingView) HasVariantAxis() bool {
	return len(v.Sheet.Metrics) > 1
}

// CostingPanel renders the summary cards and per-variant recipe tables. Rows a
// variant inherits from the base recipe are editable in place; submitting one
// creates an override for that variant instead of touching the base line.
func CostingPanel(view CostingView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.printf(`<section id="costing-panel" data-product-id="%d"><header><h2>%s</h2></header><div class="stat-grid">`,
			view.ProductID, view.ProductName)

		variants := fmt.Sprintf("%d variants", len(view.Sheet.Metrics))
		if !view.HasVariantAxis() {
			variants = "Single price"
		}
		m.component(ctx, components.StatCard("Recipe cost", FormatCostRange(view.CurrencySymbol, view.Sheet.Summary), variants, "Per serving"))
		m.component(ctx, components.StatCard("Gross margin", FormatMarginRange(view.Sheet.Summary), variants, "Against menu price"))
		m.raw(`</div>`)

		for _, metric := range view.Sheet.Metrics {
			renderVariantMetric(m, view, metric)
		}
		m.raw(`</section>`)
		return m.err
	})
}

func renderVariantMetric(m *markup, view CostingView, metric recipe.VariantMetric) {
	m.printf(`<article class="variant-costing" data-variant-id="%s"><h3>%s</h3><dl><dt>Price</dt><dd>%s</dd><dt>Cost</dt><dd data-role="cost">%s</dd><dt>Margin</dt><dd data-role="margin">%s</dd></dl>`,
		metric.VariantID,
		metric.Name,
		FormatMoney(view.CurrencySymbol, metric.Price),
		FormatMoney(view.CurrencySymbol, metric.Cost),
		FormatMargin(metric.Margin),
	)

	if len(metric.Lines) == 0 {
		m.raw(`<p class="empty-recipe">No ingredients yet.</p></article>`)
		return
	}

	m.raw(`<table><thead><tr><th>Ingredient</th><th>Quantity</th><th>Unit cost</th><th>Line cost</th><th></th></tr></thead><tbody>`)
	for _, line := range metric.Lines {
		m.printf(`<tr data-origin="%s" data-ingredient-id="%s"><td>%s</td>`,
			string(line.Origin),
			line.IngredientID,
			IngredientLabel(view.IngredientNames, line.IngredientID),
		)
		renderQuantityCell(m, view, metric, line)
		m.printf(`<td>%s</td><td>%s</td><td>%s</td></tr>`,
			FormatMoney(view.CurrencySymbol, line.CostPerUnit),
			FormatMoney(view.CurrencySymbol, line.LineCost),
			originAction(view, metric, line),
		)
	}
	m.raw(`</tbody></table></article>`)
}

func renderQuantityCell(m *markup, view CostingView, metric recipe.VariantMetric, line recipe.ResolvedLine) {
	if !view.HasVariantAxis() || line.Origin != recipe.OriginInherited {
		m.printf(`<td>%s</td>`, FormatQuantity(line.EffectiveQuantity, line.UnitSymbol))
		return
	}
	m.printf(`<td><form hx-post="/app/products/%d/recipe/inherited" hx-target="#costing-panel" hx-swap="outerHTML"><input type="hidden" name="variant_id" value="%s"><input type="hidden" name="ingredient_id" value="%s"><input type="number" step="any" min="0" name="quantity" value="%s" aria-label="Quantity for %s"> %s</form></td>`,
		view.ProductID,
		metric.VariantID,
		line.IngredientID,
		line.EffectiveQuantity.String(),
		metric.Name,
		line.UnitSymbol,
	)
}

func originAction(view CostingView, metric recipe.VariantMetric, line recipe.ResolvedLine) trustedHTML {
	if !view.HasVariantAxis() {
		return ""
	}
	switch line.Origin {
	case recipe.OriginInherited:
		return `<span class="badge">Inherited</span>`
	case recipe.OriginOverridden:
		return trustedHTML(fmt.Sprintf(
			`<button type="button" hx-delete="/app/products/%d/recipe/overrides?variant_id=%s&amp;ingredient_id=%s" hx-target="#costing-panel" hx-swap="outerHTML">Revert to base</button>`,
			view.ProductID,
			templ.EscapeString(metric.VariantID),
			templ.EscapeString(line.IngredientID),
		))
	default:
		return `<span class="badge">Variant only</span>`
	}
}
