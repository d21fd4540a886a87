package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "backoffice/internal/log"
	"backoffice/models"
)

type ingredientResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	UnitSymbol  string          `json:"unit_symbol"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ingredientRequest struct {
	Name        string          `json:"name"`
	UnitSymbol  string          `json:"unit_symbol"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Notes       string          `json:"notes"`
}

func (p ingredientRequest) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "name is required"
	}
	if p.CostPerUnit.IsNegative() {
		return "cost_per_unit must not be negative"
	}
	return ""
}

func (p ingredientRequest) unitSymbol() string {
	if unit := strings.TrimSpace(p.UnitSymbol); unit != "" {
		return unit
	}
	return "unit"
}

// IngredientResource handles REST-style interactions for the ingredient catalog.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	segments := resourcePath(r, "/app/api/ingredients")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	ingredientID, ok := parseID(segments[0])
	if !ok || len(segments) > 1 {
		applog.Debug(r.Context(), "invalid ingredient path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Order("name asc")
	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var results []models.Ingredient
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(ctx, "ingredient not found", "id", ingredientID)
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if message := payload.validate(); message != "" {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	name := strings.TrimSpace(payload.Name)
	if taken, err := ingredientNameTaken(r, name, 0); err != nil {
		applog.Error(ctx, "failed to check ingredient name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create ingredient")
		return
	} else if taken {
		writeJSONError(w, http.StatusConflict, "an ingredient with that name already exists")
		return
	}

	ingredient := models.Ingredient{
		Name:        name,
		UnitSymbol:  payload.unitSymbol(),
		CostPerUnit: payload.CostPerUnit,
		Notes:       strings.TrimSpace(payload.Notes),
	}
	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create ingredient")
		return
	}

	applog.Debug(ctx, "ingredient created", "id", ingredient.ID, "name", ingredient.Name)
	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if message := payload.validate(); message != "" {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	name := strings.TrimSpace(payload.Name)
	if taken, err := ingredientNameTaken(r, name, ingredientID); err != nil {
		applog.Error(ctx, "failed to check ingredient name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update ingredient")
		return
	} else if taken {
		writeJSONError(w, http.StatusConflict, "an ingredient with that name already exists")
		return
	}

	updates := map[string]any{
		"name":          name,
		"unit_symbol":   payload.unitSymbol(),
		"cost_per_unit": payload.CostPerUnit,
		"notes":         strings.TrimSpace(payload.Notes),
	}
	if err := database.WithContext(ctx).Model(&ingredient).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update ingredient")
		return
	}

	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		applog.Error(ctx, "failed to reload ingredient after update", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient for delete", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	var uses int64
	if err := database.WithContext(ctx).Model(&models.RecipeLine{}).Where("ingredient_id = ?", ingredientID).Count(&uses).Error; err != nil {
		applog.Error(ctx, "failed to count ingredient uses", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if uses > 0 {
		applog.Debug(ctx, "delete refused: ingredient in use", "id", ingredientID, "lines", uses)
		writeJSONError(w, http.StatusConflict, "ingredient is used by existing recipes")
		return
	}

	// The name index spans soft-deleted rows, so catalog entries are removed for good.
	if err := database.WithContext(ctx).Unscoped().Delete(&ingredient).Error; err != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ingredientNameTaken(r *http.Request, name string, exceptID uint) (bool, error) {
	var count int64
	query := database.WithContext(r.Context()).Model(&models.Ingredient{}).Where("lower(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:          ingredient.ID,
		Name:        ingredient.Name,
		UnitSymbol:  ingredient.UnitSymbol,
		CostPerUnit: ingredient.CostPerUnit,
		Notes:       ingredient.Notes,
		CreatedAt:   ingredient.CreatedAt,
		UpdatedAt:   ingredient.UpdatedAt,
	}
}
