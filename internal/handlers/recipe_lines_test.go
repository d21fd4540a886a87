package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"

	"backoffice/models"
)

func decodeSheet(t *testing.T, body []byte) sheetResponse {
	t.Helper()
	var sheet sheetResponse
	if err := json.Unmarshal(body, &sheet); err != nil {
		t.Fatalf("failed to decode costing sheet: %v", err)
	}
	return sheet
}

func metricCost(t *testing.T, sheet sheetResponse, variantID uint) string {
	t.Helper()
	for _, metric := range sheet.Metrics {
		if metric.VariantID == models.IDString(variantID) {
			return metric.Cost.String()
		}
	}
	t.Fatalf("variant %d missing from sheet", variantID)
	return ""
}

func TestEditInheritedLineCreatesOverride(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	latte := seededProduct(t, db, "Café Latte")
	standard := seededVariant(t, latte, "Standard")
	large := seededVariant(t, latte, "Large")
	promo := seededVariant(t, latte, "Promo")
	milk := seededIngredient(t, db, "Whole Milk")

	body := fmt.Sprintf(`{"variant_id":"%d","ingredient_id":"%d","quantity":"300"}`, standard.ID, milk.ID)
	w := httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe/inherited", latte.ID), bytes.NewReader([]byte(body))))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	sheet := decodeSheet(t, w.Body.Bytes())
	if got := metricCost(t, sheet, standard.ID); got != "0.81" {
		t.Fatalf("expected standard cost 0.81, got %s", got)
	}
	if got := metricCost(t, sheet, large.ID); got != "1.185" {
		t.Fatalf("expected large cost unchanged, got %s", got)
	}
	if got := metricCost(t, sheet, promo.ID); got != "0.735" {
		t.Fatalf("expected promo cost unchanged, got %s", got)
	}

	var base models.RecipeLine
	if err := db.Where("product_id = ? AND ingredient_id = ? AND variant_id IS NULL", latte.ID, milk.ID).First(&base).Error; err != nil {
		t.Fatalf("failed to load base line: %v", err)
	}
	if base.Quantity.String() != "250" {
		t.Fatalf("expected base quantity untouched, got %s", base.Quantity)
	}

	var override models.RecipeLine
	if err := db.Where("product_id = ? AND ingredient_id = ? AND variant_id = ?", latte.ID, milk.ID, standard.ID).First(&override).Error; err != nil {
		t.Fatalf("expected stored override: %v", err)
	}
	if override.Quantity.String() != "300" {
		t.Fatalf("expected override quantity 300, got %s", override.Quantity)
	}

	// a second edit updates the same override
	body = fmt.Sprintf(`{"variant_id":"%d","ingredient_id":"%d","quantity":"280"}`, standard.ID, milk.ID)
	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe/inherited", latte.ID), bytes.NewReader([]byte(body))))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var overrides int64
	if err := db.Model(&models.RecipeLine{}).Where("variant_id = ? AND ingredient_id = ?", standard.ID, milk.ID).Count(&overrides).Error; err != nil {
		t.Fatalf("failed to count overrides: %v", err)
	}
	if overrides != 1 {
		t.Fatalf("expected a single override, found %d", overrides)
	}
}

func TestEditInheritedLineRejectsInvalidInput(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	latte := seededProduct(t, db, "Café Latte")
	croissant := seededProduct(t, db, "Butter Croissant")
	standard := seededVariant(t, latte, "Standard")
	milk := seededIngredient(t, db, "Whole Milk")
	flour := seededIngredient(t, db, "Bread Flour")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"foreign variant", fmt.Sprintf(`{"variant_id":"%d","ingredient_id":"%d","quantity":"1"}`, seededVariant(t, croissant, "Regular").ID, milk.ID), http.StatusBadRequest},
		{"ingredient not on recipe", fmt.Sprintf(`{"variant_id":"%d","ingredient_id":"%d","quantity":"1"}`, standard.ID, flour.ID), http.StatusBadRequest},
		{"negative quantity", fmt.Sprintf(`{"variant_id":"%d","ingredient_id":"%d","quantity":"-5"}`, standard.ID, milk.ID), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ProductResource(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe/inherited", latte.ID), bytes.NewReader([]byte(tt.body))))
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, "/app/api/products/999/recipe/inherited", bytes.NewReader([]byte(`{"quantity":"1"}`))))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing product, got %d", w.Code)
	}
}

func TestRevertOverrideRestoresInheritedQuantity(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	latte := seededProduct(t, db, "Café Latte")
	standard := seededVariant(t, latte, "Standard")
	large := seededVariant(t, latte, "Large")
	milk := seededIngredient(t, db, "Whole Milk")

	target := fmt.Sprintf("/app/api/products/%d/recipe/overrides?variant_id=%d&ingredient_id=%d", latte.ID, large.ID, milk.ID)
	w := httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodDelete, target, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	sheet := decodeSheet(t, w.Body.Bytes())
	if got := metricCost(t, sheet, large.ID); got != "1.035" {
		t.Fatalf("expected large cost with inherited milk, got %s", got)
	}
	for _, metric := range sheet.Metrics {
		if metric.VariantID != models.IDString(large.ID) {
			continue
		}
		for _, line := range metric.Lines {
			if line.IngredientID == models.IDString(milk.ID) && (line.EffectiveQuantity.String() != "250" || line.Origin != "inherited") {
				t.Fatalf("expected inherited base milk, got %+v", line)
			}
		}
	}

	var overrides int64
	if err := db.Model(&models.RecipeLine{}).Where("variant_id = ? AND ingredient_id = ?", large.ID, milk.ID).Count(&overrides).Error; err != nil {
		t.Fatalf("failed to count overrides: %v", err)
	}
	if overrides != 0 {
		t.Fatalf("expected override removed, found %d", overrides)
	}

	missing := fmt.Sprintf("/app/api/products/%d/recipe/overrides?variant_id=%d&ingredient_id=%d", latte.ID, standard.ID, milk.ID)
	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodDelete, missing, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no override exists, got %d", w.Code)
	}
}

func TestMaterializeOverrideKeepsCost(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	latte := seededProduct(t, db, "Café Latte")
	promo := seededVariant(t, latte, "Promo")
	beans := seededIngredient(t, db, "Espresso Beans")

	target := fmt.Sprintf("/app/api/products/%d/recipe/overrides?variant_id=%d&ingredient_id=%d", latte.ID, promo.ID, beans.ID)
	w := httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, target, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := metricCost(t, decodeSheet(t, w.Body.Bytes()), promo.ID); got != "0.735" {
		t.Fatalf("expected promo cost unchanged, got %s", got)
	}

	var override models.RecipeLine
	if err := db.Where("variant_id = ? AND ingredient_id = ?", promo.ID, beans.ID).First(&override).Error; err != nil {
		t.Fatalf("expected override stored: %v", err)
	}
	if override.Quantity.String() != "18" {
		t.Fatalf("expected base quantity copied, got %s", override.Quantity)
	}
}

func TestRecipeLineCreateUpdateDelete(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	latte := seededProduct(t, db, "Café Latte")
	standard := seededVariant(t, latte, "Standard")
	whip := seededIngredient(t, db, "Whipped Cream")

	body := fmt.Sprintf(`{"ingredient_id":%d,"variant_id":%d,"quantity":"2"}`, whip.ID, standard.ID)
	w := httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe", latte.ID), bytes.NewReader([]byte(body))))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created recipeLineResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.IngredientName != "Whipped Cream" || created.VariantID == nil || *created.VariantID != standard.ID {
		t.Fatalf("unexpected created line: %+v", created)
	}
	if created.Position != 5 {
		t.Fatalf("expected line appended at position 5, got %d", created.Position)
	}

	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe", latte.ID), bytes.NewReader([]byte(body))))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate scoped line, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/products/%d/recipe/%d", latte.ID, created.ID), bytes.NewReader([]byte(`{"quantity":"3"}`))))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/app/api/products/%d/recipe", latte.ID), nil))
	var lines []recipeLineResponse
	if err := json.Unmarshal(w.Body.Bytes(), &lines); err != nil {
		t.Fatalf("failed to decode lines: %v", err)
	}
	if len(lines) != 5 || lines[4].Quantity.String() != "3" {
		t.Fatalf("expected five lines with the updated one last, got %+v", lines)
	}
	if lines[0].VariantID != nil {
		t.Fatalf("expected first line on the base recipe, got %+v", lines[0])
	}

	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/products/%d/recipe/%d", latte.ID, created.ID), nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	croissant := seededProduct(t, db, "Butter Croissant")
	w = httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/products/%d/recipe/%d", croissant.ID, lines[0].ID), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a line of another product, got %d", w.Code)
	}
}

func TestSinglePricedProductRejectsVariantScope(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	croissant := seededProduct(t, db, "Butter Croissant")
	regular := seededVariant(t, croissant, "Regular")
	flour := seededIngredient(t, db, "Bread Flour")
	whip := seededIngredient(t, db, "Whipped Cream")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"add scoped line", http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe", croissant.ID), fmt.Sprintf(`{"ingredient_id":%d,"variant_id":%d,"quantity":"1"}`, whip.ID, regular.ID)},
		{"edit inherited line", http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe/inherited", croissant.ID), fmt.Sprintf(`{"variant_id":"%d","ingredient_id":"%d","quantity":"80"}`, regular.ID, flour.ID)},
		{"materialize override", http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe/overrides?variant_id=%d&ingredient_id=%d", croissant.ID, regular.ID, flour.ID), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ProductResource(w, httptest.NewRequest(tt.method, tt.path, bytes.NewReader([]byte(tt.body))))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	var scoped int64
	if err := db.Model(&models.RecipeLine{}).Where("product_id = ? AND variant_id IS NOT NULL", croissant.ID).Count(&scoped).Error; err != nil {
		t.Fatalf("failed to count scoped lines: %v", err)
	}
	if scoped != 0 {
		t.Fatalf("expected no variant-scoped lines on a single-priced product, found %d", scoped)
	}

	// the base recipe stays editable
	body := fmt.Sprintf(`{"variant_id":"","ingredient_id":"%d","quantity":"80"}`, flour.ID)
	w := httptest.NewRecorder()
	ProductResource(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/app/api/products/%d/recipe/inherited", croissant.ID), bytes.NewReader([]byte(body))))
	if w.Code != http.StatusOK {
		t.Fatalf("expected base edit to succeed, got %d: %s", w.Code, w.Body.String())
	}
	sheet := decodeSheet(t, w.Body.Bytes())
	if got := metricCost(t, sheet, regular.ID); got != "0.504" {
		t.Fatalf("expected croissant cost 0.504, got %s", got)
	}
}

func TestRecipeErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{errOverrideNotFound, http.StatusNotFound},
		{errVariantNotFound, http.StatusBadRequest},
		{errInvalidQuantity, http.StatusBadRequest},
		{errDuplicateLine, http.StatusConflict},
		{gorm.ErrDuplicatedKey, http.StatusConflict},
		{errSinglePriced, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", errIngredientNotFound), http.StatusBadRequest},
		{fmt.Errorf("database closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := recipeErrorStatus(tt.err); got != tt.want {
			t.Fatalf("recipeErrorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
