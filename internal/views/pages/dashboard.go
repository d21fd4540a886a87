package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"backoffice/internal/recipe"
	"backoffice/internal/views/components"
	"backoffice/internal/views/layout"
)

// ProductCard summarises one product on the dashboard.
type ProductCard struct {
	ID           uint
	Name         string
	Category     string
	VariantCount int
	Summary      recipe.Summary
}

// DashboardData drives the menu costing overview.
type DashboardData struct {
	CurrencySymbol string
	Products       []ProductCard
}

// Dashboard renders the full console page listing every product's cost and margin.
func Dashboard(data DashboardData) templ.Component {
	return layout.Layout("Menu costing", components.Sidebar(sidebar(SectionProducts)), DashboardPartial(data), true)
}

// DashboardPartial renders the product table alone.
func DashboardPartial(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		m.raw(`<section id="product-costing"><h1>Menu costing</h1>`)
		if len(data.Products) == 0 {
			m.raw(`<p class="empty-state">No products yet.</p></section>`)
			return m.err
		}
		m.raw(`<table><thead><tr><th>Product</th><th>Category</th><th>Variants</th><th>Recipe cost</th><th>Gross margin</th></tr></thead><tbody>`)
		for _, product := range data.Products {
			m.printf(`<tr data-product-id="%d"><td><a href="/app/products/%d/costing" hx-get="/app/products/%d/costing" hx-target="#workspace">%s</a></td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
				product.ID, product.ID, product.ID,
				product.Name,
				product.Category,
				product.VariantCount,
				FormatCostRange(data.CurrencySymbol, product.Summary),
				FormatMarginRange(product.Summary),
			)
		}
		m.raw(`</tbody></table></section>`)
		return m.err
	})
}

// CostingPage renders the costing panel inside the console shell.
func CostingPage(view CostingView) templ.Component {
	return layout.Layout(view.ProductName+" costing", components.Sidebar(sidebar(SectionProducts)), CostingPanel(view), true)
}
