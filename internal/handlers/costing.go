package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/costing"
	applog "backoffice/internal/log"
	"backoffice/internal/metrics"
	"backoffice/internal/recipe"
	"backoffice/internal/views/pages"
	"backoffice/models"
)

type resolvedLineResponse struct {
	IngredientID      string          `json:"ingredient_id"`
	EffectiveQuantity decimal.Decimal `json:"effective_quantity"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	LineCost          decimal.Decimal `json:"line_cost"`
	UnitSymbol        string          `json:"unit_symbol"`
	Origin            recipe.Origin   `json:"origin"`
}

type variantMetricResponse struct {
	VariantID string                 `json:"variant_id"`
	Name      string                 `json:"name"`
	Price     decimal.Decimal        `json:"price"`
	Cost      decimal.Decimal        `json:"cost"`
	Margin    int64                  `json:"margin"`
	Lines     []resolvedLineResponse `json:"lines"`
}

type summaryResponse struct {
	MinCost   decimal.Decimal `json:"min_cost"`
	MaxCost   decimal.Decimal `json:"max_cost"`
	MinMargin int64           `json:"min_margin"`
	MaxMargin int64           `json:"max_margin"`
}

type sheetResponse struct {
	Metrics []variantMetricResponse `json:"metrics"`
	Summary summaryResponse         `json:"summary"`
}

type previewVariant struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type previewItem struct {
	IngredientID string          `json:"ingredient_id"`
	VariantID    string          `json:"variant_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type previewIngredient struct {
	ID          string          `json:"id"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	UnitSymbol  string          `json:"unit_symbol"`
}

// previewRequest is an unsaved editor state. When Catalog is omitted the
// stored ingredient catalog prices the items.
type previewRequest struct {
	Variants []previewVariant    `json:"variants"`
	Items    []previewItem       `json:"items"`
	Catalog  []previewIngredient `json:"catalog"`
}

func productCosting(w http.ResponseWriter, r *http.Request, productID uint) {
	started := time.Now()
	snapshot, err := costing.Load(r.Context(), database, productID)
	if err != nil {
		writeProductError(w, r, err, productID)
		return
	}
	sheet := snapshot.Sheet()
	metrics.ObserveCosting(metrics.SourceAPI, started)
	writeJSON(w, http.StatusOK, projectSheet(sheet))
}

// CostingPreview prices an editor state without storing it.
func CostingPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	started := time.Now()
	var payload previewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid costing preview payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	items := make([]recipe.RecipeItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, recipe.RecipeItem{
			IngredientID: strings.TrimSpace(item.IngredientID),
			Quantity:     item.Quantity,
			Scope:        recipe.VariantScope(strings.TrimSpace(item.VariantID)),
		})
	}
	variants := make([]recipe.Variant, 0, len(payload.Variants))
	for _, variant := range payload.Variants {
		variants = append(variants, recipe.Variant{
			ID:    strings.TrimSpace(variant.ID),
			Name:  variant.Name,
			Price: variant.Price,
		})
	}

	var catalog recipe.Catalog
	if payload.Catalog != nil {
		entries := make([]recipe.Ingredient, 0, len(payload.Catalog))
		for _, entry := range payload.Catalog {
			entries = append(entries, recipe.Ingredient{
				ID:          strings.TrimSpace(entry.ID),
				CostPerUnit: entry.CostPerUnit,
				UnitSymbol:  entry.UnitSymbol,
			})
		}
		catalog = recipe.NewCatalog(entries...)
	} else if database != nil {
		stored, err := storedCatalog(r, items)
		if err != nil {
			applog.Error(r.Context(), "failed to load catalog for preview", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient costs")
			return
		}
		catalog = stored
	}

	sheet := costing.Price(items, variants, catalog)
	metrics.ObserveCosting(metrics.SourcePreview, started)
	applog.Debug(r.Context(), "costing preview", "items", len(items), "variants", len(variants))
	writeJSON(w, http.StatusOK, projectSheet(sheet))
}

func storedCatalog(r *http.Request, items []recipe.RecipeItem) (recipe.CatalogMap, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if id, ok := parseID(item.IngredientID); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return recipe.CatalogMap{}, nil
	}
	var ingredients []models.Ingredient
	if err := database.WithContext(r.Context()).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return models.Catalog(ingredients), nil
}

// ProductWorkspace serves the HTML costing panel and the in-place recipe
// edits it posts back.
func ProductWorkspace(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	segments := resourcePath(r, "/app/products")
	if len(segments) < 2 {
		http.NotFound(w, r)
		return
	}
	productID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch strings.Join(segments[1:], "/") {
	case "costing":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		started := time.Now()
		snapshot, err := costing.Load(r.Context(), database, productID)
		if err != nil {
			renderCostingError(w, r, err, productID)
			return
		}
		sheet := snapshot.Sheet()
		metrics.ObserveCosting(metrics.SourcePanel, started)
		renderCosting(w, r, snapshot, sheet)
	case "recipe/inherited":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		quantity, err := decimal.NewFromString(strings.TrimSpace(r.PostFormValue("quantity")))
		if err != nil {
			http.Error(w, errInvalidQuantity.Error(), http.StatusBadRequest)
			return
		}
		snapshot, sheet, err := saveInheritedEdit(r.Context(), productID, recipeEditRequest{
			VariantID:    r.PostFormValue("variant_id"),
			IngredientID: r.PostFormValue("ingredient_id"),
			Quantity:     quantity,
		})
		if err != nil {
			renderCostingError(w, r, err, productID)
			return
		}
		renderCostingUpdate(w, r, snapshot, sheet)
	case "recipe/overrides":
		var on bool
		switch r.Method {
		case http.MethodPost:
			on = true
		case http.MethodDelete:
			on = false
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		query := r.URL.Query()
		snapshot, sheet, err := toggleOverride(r.Context(), productID, query.Get("variant_id"), query.Get("ingredient_id"), on)
		if err != nil {
			renderCostingError(w, r, err, productID)
			return
		}
		renderCostingUpdate(w, r, snapshot, sheet)
	default:
		http.NotFound(w, r)
	}
}

func renderCostingUpdate(w http.ResponseWriter, r *http.Request, snapshot costing.Snapshot, sheet costing.Sheet) {
	if !isHTMX(r) {
		http.Redirect(w, r, fmt.Sprintf("/app/products/%d/costing", snapshot.Product.ID), http.StatusSeeOther)
		return
	}
	renderCosting(w, r, snapshot, sheet)
}

func renderCosting(w http.ResponseWriter, r *http.Request, snapshot costing.Snapshot, sheet costing.Sheet) {
	view := pages.CostingView{
		ProductID:       snapshot.Product.ID,
		ProductName:     snapshot.Product.Name,
		CurrencySymbol:  currencySymbol,
		Sheet:           sheet,
		IngredientNames: snapshot.IngredientNames(),
	}
	if isHTMX(r) {
		renderComponent(w, r, pages.CostingPanel(view))
		return
	}
	renderComponent(w, r, pages.CostingPage(view))
}

func renderCostingError(w http.ResponseWriter, r *http.Request, err error, productID uint) {
	status := recipeErrorStatus(err)
	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), "costing request failed", "error", err, "productID", productID)
		http.Error(w, "unable to load costing", status)
		return
	}
	applog.Debug(r.Context(), "costing request rejected", "error", err, "productID", productID)
	http.Error(w, err.Error(), status)
}

func projectSheet(sheet costing.Sheet) sheetResponse {
	metrics := make([]variantMetricResponse, 0, len(sheet.Metrics))
	for _, metric := range sheet.Metrics {
		lines := make([]resolvedLineResponse, 0, len(metric.Lines))
		for _, line := range metric.Lines {
			lines = append(lines, resolvedLineResponse{
				IngredientID:      line.IngredientID,
				EffectiveQuantity: line.EffectiveQuantity,
				CostPerUnit:       line.CostPerUnit,
				LineCost:          line.LineCost,
				UnitSymbol:        line.UnitSymbol,
				Origin:            line.Origin,
			})
		}
		metrics = append(metrics, variantMetricResponse{
			VariantID: metric.VariantID,
			Name:      metric.Name,
			Price:     metric.Price,
			Cost:      metric.Cost,
			Margin:    metric.Margin,
			Lines:     lines,
		})
	}
	return sheetResponse{
		Metrics: metrics,
		Summary: summaryResponse{
			MinCost:   sheet.Summary.MinCost,
			MaxCost:   sheet.Summary.MaxCost,
			MinMargin: sheet.Summary.MinMargin,
			MaxMargin: sheet.Summary.MaxMargin,
		},
	}
}
