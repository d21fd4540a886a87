package pages

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"backoffice/internal/costing"
	"backoffice/internal/recipe"
)

func coffeeView() CostingView {
	d := decimal.RequireFromString
	items := []recipe.RecipeItem{
		{IngredientID: "1", Quantity: d("18")},
		{IngredientID: "2", Quantity: d("250")},
		{IngredientID: "2", Quantity: d("350"), Scope: recipe.VariantScope("20")},
		{IngredientID: "3", Quantity: d("1"), Scope: recipe.VariantScope("20")},
	}
	variants := []recipe.Variant{
		{ID: "10", Name: "Standard", Price: d("4.50")},
		{ID: "20", Name: "Large", Price: d("5.50")},
	}
	catalog := recipe.NewCatalog(
		recipe.Ingredient{ID: "1", CostPerUnit: d("0.02"), UnitSymbol: "g"},
		recipe.Ingredient{ID: "2", CostPerUnit: d("0.0015"), UnitSymbol: "ml"},
		recipe.Ingredient{ID: "3", CostPerUnit: d("0.30"), UnitSymbol: "pc"},
	)
	return CostingView{
		ProductID:       7,
		ProductName:     "Café Latte",
		CurrencySymbol:  "$",
		Sheet:           costing.Price(items, variants, catalog),
		IngredientNames: map[string]string{"1": "Espresso Beans", "2": "Whole Milk", "3": "Whipped Cream"},
	}
}

func render(t *testing.T, view CostingView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := CostingPanel(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render costing panel: %v", err)
	}
	return buf.String()
}

func TestCostingPanelRendersSummaryAndVariants(t *testing.T) {
	out := render(t, coffeeView())

	for _, token := range []string{
		"$0.74 – $1.19",
		"78% – 84%",
		`data-variant-id="10"`,
		`data-variant-id="20"`,
		"Espresso Beans",
		"Whipped Cream",
		`data-origin="overridden"`,
		`data-origin="exclusive"`,
	} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}

func TestCostingPanelInheritedRowsPostOverrides(t *testing.T) {
	out := render(t, coffeeView())

	if !strings.Contains(out, `hx-post="/app/products/7/recipe/inherited"`) {
		t.Fatalf("expected inherited rows to post overrides: %s", out)
	}
	if !strings.Contains(out, `hx-delete="/app/products/7/recipe/overrides?variant_id=20&amp;ingredient_id=2"`) {
		t.Fatalf("expected revert action on the large milk override: %s", out)
	}
}

func TestCostingPanelSinglePricedProduct(t *testing.T) {
	view := coffeeView()
	view.Sheet = costing.Price(
		[]recipe.RecipeItem{{IngredientID: "1", Quantity: decimal.NewFromInt(18)}},
		[]recipe.Variant{{ID: "10", Name: "Regular", Price: decimal.RequireFromString("3.00")}},
		recipe.NewCatalog(recipe.Ingredient{ID: "1", CostPerUnit: decimal.RequireFromString("0.02"), UnitSymbol: "g"}),
	)

	out := render(t, view)
	if !strings.Contains(out, "Single price") {
		t.Fatalf("expected single price caption: %s", out)
	}
	if strings.Contains(out, "hx-post") {
		t.Fatalf("expected no inherited-row editors without a variant axis: %s", out)
	}
	if !strings.Contains(out, "$0.36") || !strings.Contains(out, "88%") {
		t.Fatalf("expected single cost and margin figures: %s", out)
	}
}

func TestCostingPanelEscapesCatalogText(t *testing.T) {
	view := coffeeView()
	view.ProductName = `<script>alert("latte")</script>`
	view.IngredientNames["1"] = `Beans & "Co"`

	out := render(t, view)
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected product name to be escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") || !strings.Contains(out, "Beans &amp; &#34;Co&#34;") {
		t.Fatalf("expected escaped catalog text: %s", out)
	}
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("client went away")
}

func TestCostingPanelStopsAtFirstWriteError(t *testing.T) {
	w := &failingWriter{}
	err := CostingPanel(coffeeView()).Render(context.Background(), w)
	if err == nil || err.Error() != "client went away" {
		t.Fatalf("expected the write error, got %v", err)
	}
	if w.writes != 1 {
		t.Fatalf("expected rendering to stop after the failed write, got %d writes", w.writes)
	}
}

func TestDashboardPartialListsProducts(t *testing.T) {
	data := DashboardData{
		CurrencySymbol: "$",
		Products: []ProductCard{{
			ID:           7,
			Name:         "Café Latte",
			Category:     "coffee",
			VariantCount: 2,
			Summary:      coffeeView().Sheet.Summary,
		}},
	}

	var buf bytes.Buffer
	if err := DashboardPartial(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render dashboard: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `/app/products/7/costing`) || !strings.Contains(out, "$0.74 – $1.19") {
		t.Fatalf("expected product row with cost range: %s", out)
	}
}

func TestDashboardPartialEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := DashboardPartial(DashboardData{CurrencySymbol: "$"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render dashboard: %v", err)
	}
	if !strings.Contains(buf.String(), "No products yet.") {
		t.Fatalf("expected empty state: %s", buf.String())
	}
}
