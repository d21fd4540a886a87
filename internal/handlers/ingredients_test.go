package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/models"
)

func TestIngredientResourceWithoutDatabase(t *testing.T) {
	original := database
	database = nil
	t.Cleanup(func() { database = original })

	w := httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database, got %d", w.Code)
	}
}

func TestIngredientListAndSearch(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	w := httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var all []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(all) != 5 || all[0].Name != "Bread Flour" {
		t.Fatalf("expected five ingredients sorted by name, got %+v", all)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodGet, "/app/api/ingredients?q=milk", nil))
	var filtered []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("failed to decode filtered response: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Whole Milk" {
		t.Fatalf("expected only whole milk, got %+v", filtered)
	}
}

func TestIngredientCreateAndConflicts(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	body := []byte(`{"name":"Oat Milk","unit_symbol":"ml","cost_per_unit":"0.0021"}`)
	w := httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodPost, "/app/api/ingredients", bytes.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == 0 || created.CostPerUnit.String() != "0.0021" {
		t.Fatalf("unexpected created ingredient: %+v", created)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodPost, "/app/api/ingredients", bytes.NewReader([]byte(`{"name":"oat milk","cost_per_unit":1}`))))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodPost, "/app/api/ingredients", bytes.NewReader([]byte(`{"name":"Syrup","cost_per_unit":"-1"}`))))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative cost, got %d", w.Code)
	}
}

func TestIngredientUpdate(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	milk := seededIngredient(t, db, "Whole Milk")
	body := []byte(`{"name":"Whole Milk","unit_symbol":"ml","cost_per_unit":"0.0018","notes":"New supplier"}`)
	w := httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodPut, fmt.Sprintf("/app/api/ingredients/%d", milk.ID), bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Ingredient
	if err := db.First(&stored, milk.ID).Error; err != nil {
		t.Fatalf("failed to reload ingredient: %v", err)
	}
	if stored.CostPerUnit.String() != "0.0018" || stored.Notes != "New supplier" {
		t.Fatalf("expected stored update, got %+v", stored)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodPut, "/app/api/ingredients/999", bytes.NewReader(body)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing ingredient, got %d", w.Code)
	}
}

func TestIngredientDeleteRefusesIngredientsInUse(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	milk := seededIngredient(t, db, "Whole Milk")
	w := httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/ingredients/%d", milk.ID), nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for ingredient in use, got %d", w.Code)
	}

	unused := models.Ingredient{Name: "Cinnamon", UnitSymbol: "g"}
	if err := db.Create(&unused).Error; err != nil {
		t.Fatalf("failed to seed ingredient: %v", err)
	}
	w = httptest.NewRecorder()
	IngredientResource(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/app/api/ingredients/%d", unused.ID), nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	var count int64
	if err := db.Unscoped().Model(&models.Ingredient{}).Where("id = ?", unused.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ingredients: %v", err)
	}
	if count != 0 {
		t.Fatal("expected ingredient to be removed permanently")
	}
}
