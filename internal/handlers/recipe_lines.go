package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backoffice/internal/costing"
	applog "backoffice/internal/log"
	"backoffice/internal/metrics"
	"backoffice/internal/recipe"
	"backoffice/models"
)

var (
	errVariantNotFound    = errors.New("variant does not belong to this product")
	errIngredientNotFound = errors.New("ingredient is not part of this recipe")
	errOverrideNotFound   = errors.New("variant has no override for this ingredient")
	errInvalidQuantity    = errors.New("quantity must be zero or greater")
	errDuplicateLine      = errors.New("ingredient is already on this recipe scope")
	errSinglePriced       = errors.New("product has fewer than two variants; edit the base recipe instead")
)

type recipeLineResponse struct {
	ID             uint            `json:"id"`
	ProductID      uint            `json:"product_id"`
	IngredientID   uint            `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	VariantID      *uint           `json:"variant_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Position       int             `json:"position"`
}

type recipeLineRequest struct {
	IngredientID uint            `json:"ingredient_id"`
	VariantID    *uint           `json:"variant_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Position     *int            `json:"position"`
}

// recipeEditRequest addresses a single (scope, ingredient) pair. An empty
// VariantID addresses the base recipe.
type recipeEditRequest struct {
	VariantID    string          `json:"variant_id"`
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

func recipeResource(w http.ResponseWriter, r *http.Request, productID uint, segments []string) {
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listRecipeLines(w, r, productID)
		case http.MethodPost:
			createRecipeLine(w, r, productID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if len(segments) > 1 {
		http.NotFound(w, r)
		return
	}

	switch segments[0] {
	case "inherited":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		editInheritedLineJSON(w, r, productID)
		return
	case "overrides":
		overridesJSON(w, r, productID)
		return
	}

	lineID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		updateRecipeLine(w, r, productID, lineID)
	case http.MethodDelete:
		deleteRecipeLine(w, r, productID, lineID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipeLines(w http.ResponseWriter, r *http.Request, productID uint) {
	snapshot, err := costing.Load(r.Context(), database, productID)
	if err != nil {
		writeProductError(w, r, err, productID)
		return
	}
	names := snapshot.IngredientNames()
	responses := make([]recipeLineResponse, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		responses = append(responses, projectRecipeLine(line, names))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createRecipeLine(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var payload recipeLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe line payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	line, err := addRecipeLine(ctx, productID, payload)
	if err != nil {
		writeRecipeError(w, r, err, productID)
		return
	}

	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, line.IngredientID).Error; err != nil {
		applog.Error(ctx, "failed to reload recipe line ingredient", "error", err, "id", line.IngredientID)
	}
	writeJSON(w, http.StatusCreated, projectRecipeLine(line, map[string]string{models.IDString(ingredient.ID): ingredient.Name}))
}

// addRecipeLine stores a base line, an override, or a variant-exclusive line.
// Each (scope, ingredient) pair holds at most one line.
func addRecipeLine(ctx context.Context, productID uint, payload recipeLineRequest) (models.RecipeLine, error) {
	if payload.Quantity.IsNegative() {
		return models.RecipeLine{}, errInvalidQuantity
	}
	snapshot, err := costing.Load(ctx, database, productID)
	if err != nil {
		return models.RecipeLine{}, err
	}

	variantID := ""
	if payload.VariantID != nil && *payload.VariantID != 0 {
		variantID = models.IDString(*payload.VariantID)
		if err := checkVariantScope(snapshot, variantID); err != nil {
			return models.RecipeLine{}, err
		}
	}

	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, payload.IngredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RecipeLine{}, errIngredientNotFound
		}
		return models.RecipeLine{}, err
	}

	scope := recipe.VariantScope(variantID)
	if _, exists := snapshot.FindLine(scope, models.IDString(ingredient.ID)); exists {
		return models.RecipeLine{}, errDuplicateLine
	}

	line := models.RecipeLine{
		ProductID:    productID,
		IngredientID: ingredient.ID,
		Quantity:     payload.Quantity,
		Position:     snapshot.NextPosition(),
	}
	if variantID != "" {
		id := *payload.VariantID
		line.VariantID = &id
	}
	if payload.Position != nil {
		line.Position = *payload.Position
	}
	if err := database.WithContext(ctx).Create(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.RecipeLine{}, errDuplicateLine
		}
		return models.RecipeLine{}, err
	}

	applog.Debug(ctx, "recipe line created", "id", line.ID, "productID", productID, "variantID", variantID)
	return line, nil
}

func updateRecipeLine(w http.ResponseWriter, r *http.Request, productID, lineID uint) {
	ctx := r.Context()
	line, ok := findRecipeLine(w, r, productID, lineID)
	if !ok {
		return
	}

	var payload recipeLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe line update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Quantity.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, errInvalidQuantity.Error())
		return
	}

	updates := map[string]any{"quantity": payload.Quantity}
	if payload.Position != nil {
		updates["position"] = *payload.Position
	}
	if err := database.WithContext(ctx).Model(&line).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update recipe line", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe line")
		return
	}
	if err := database.WithContext(ctx).Preload("Ingredient").First(&line, lineID).Error; err != nil {
		applog.Error(ctx, "failed to reload recipe line", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}

	names := map[string]string{}
	if line.Ingredient != nil {
		names[models.IDString(line.IngredientID)] = line.Ingredient.Name
	}
	writeJSON(w, http.StatusOK, projectRecipeLine(line, names))
}

func deleteRecipeLine(w http.ResponseWriter, r *http.Request, productID, lineID uint) {
	ctx := r.Context()
	line, ok := findRecipeLine(w, r, productID, lineID)
	if !ok {
		return
	}
	if err := database.WithContext(ctx).Delete(&line).Error; err != nil {
		applog.Error(ctx, "failed to delete recipe line", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe line")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func findRecipeLine(w http.ResponseWriter, r *http.Request, productID, lineID uint) (models.RecipeLine, bool) {
	var line models.RecipeLine
	err := database.WithContext(r.Context()).Where("id = ? AND product_id = ?", lineID, productID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(r.Context(), "recipe line not found", "id", lineID, "productID", productID)
			http.NotFound(w, r)
			return models.RecipeLine{}, false
		}
		applog.Error(r.Context(), "failed to load recipe line", "error", err, "id", lineID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe line")
		return models.RecipeLine{}, false
	}
	return line, true
}

func editInheritedLineJSON(w http.ResponseWriter, r *http.Request, productID uint) {
	var payload recipeEditRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid inherited line payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	_, sheet, err := saveInheritedEdit(r.Context(), productID, payload)
	if err != nil {
		writeRecipeError(w, r, err, productID)
		return
	}
	writeJSON(w, http.StatusOK, projectSheet(sheet))
}

// overridesJSON materializes an inherited line as an override on POST and
// reverts it to the base quantity on DELETE.
func overridesJSON(w http.ResponseWriter, r *http.Request, productID uint) {
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
	_, sheet, err := toggleOverride(r.Context(), productID, query.Get("variant_id"), query.Get("ingredient_id"), on)
	if err != nil {
		writeRecipeError(w, r, err, productID)
		return
	}
	writeJSON(w, http.StatusOK, projectSheet(sheet))
}

// saveInheritedEdit applies an edit made on an inherited row. The base line
// keeps its quantity; the variant gets its own override.
func saveInheritedEdit(ctx context.Context, productID uint, edit recipeEditRequest) (costing.Snapshot, costing.Sheet, error) {
	started := time.Now()
	if edit.Quantity.IsNegative() {
		return costing.Snapshot{}, costing.Sheet{}, errInvalidQuantity
	}
	snapshot, err := costing.Load(ctx, database, productID)
	if err != nil {
		return costing.Snapshot{}, costing.Sheet{}, err
	}

	variantID := strings.TrimSpace(edit.VariantID)
	ingredientID := strings.TrimSpace(edit.IngredientID)
	if variantID != "" {
		if err := checkVariantScope(snapshot, variantID); err != nil {
			return costing.Snapshot{}, costing.Sheet{}, err
		}
	}

	scope := recipe.VariantScope(variantID)
	_, inBase := snapshot.FindLine(recipe.BaseScope(), ingredientID)
	_, inScope := snapshot.FindLine(scope, ingredientID)
	if !inBase && !inScope {
		return costing.Snapshot{}, costing.Sheet{}, errIngredientNotFound
	}

	items := recipe.EditInheritedLine(snapshot.Items(), variantID, ingredientID, edit.Quantity)
	if err := persistScopedLine(ctx, snapshot, items, scope, ingredientID); err != nil {
		return costing.Snapshot{}, costing.Sheet{}, err
	}

	applog.Debug(ctx, "inherited line edited", "productID", productID, "variantID", variantID, "ingredientID", ingredientID, "quantity", edit.Quantity.String())
	return snapshot, priceEdited(snapshot, items, started), nil
}

func toggleOverride(ctx context.Context, productID uint, variantID, ingredientID string, on bool) (costing.Snapshot, costing.Sheet, error) {
	started := time.Now()
	snapshot, err := costing.Load(ctx, database, productID)
	if err != nil {
		return costing.Snapshot{}, costing.Sheet{}, err
	}

	variantID = strings.TrimSpace(variantID)
	ingredientID = strings.TrimSpace(ingredientID)
	if variantID == "" {
		return costing.Snapshot{}, costing.Sheet{}, errVariantNotFound
	}
	if err := checkVariantScope(snapshot, variantID); err != nil {
		return costing.Snapshot{}, costing.Sheet{}, err
	}

	current := snapshot.Items()
	if on {
		if _, inBase := snapshot.FindLine(recipe.BaseScope(), ingredientID); !inBase {
			return costing.Snapshot{}, costing.Sheet{}, errIngredientNotFound
		}
	} else if !recipe.HasOverride(current, variantID, ingredientID) {
		return costing.Snapshot{}, costing.Sheet{}, errOverrideNotFound
	}

	items := recipe.ToggleOverride(current, variantID, ingredientID, on)
	if err := persistScopedLine(ctx, snapshot, items, recipe.VariantScope(variantID), ingredientID); err != nil {
		return costing.Snapshot{}, costing.Sheet{}, err
	}

	applog.Debug(ctx, "override toggled", "productID", productID, "variantID", variantID, "ingredientID", ingredientID, "on", on)
	return snapshot, priceEdited(snapshot, items, started), nil
}

// priceEdited prices the post-edit items against the snapshot's variants and
// catalog.
func priceEdited(snapshot costing.Snapshot, items []recipe.RecipeItem, started time.Time) costing.Sheet {
	sheet := costing.Price(items, snapshot.RecipeVariants(), snapshot.Catalog())
	metrics.ObserveCosting(metrics.SourceEdit, started)
	return sheet
}

// persistScopedLine makes the stored lines for (scope, ingredientID) match
// the edited item set: the first matching item is written, and stored lines
// are removed when the edit dropped the pair.
func persistScopedLine(ctx context.Context, snapshot costing.Snapshot, items []recipe.RecipeItem, scope recipe.Scope, ingredientID string) error {
	ingredient, ok := parseID(ingredientID)
	if !ok {
		return errIngredientNotFound
	}
	var variant *uint
	if !scope.IsBase() {
		id, ok := parseID(scope.VariantID)
		if !ok {
			return errVariantNotFound
		}
		variant = &id
	}

	want, keep := scopedItem(items, scope, ingredientID)
	stored, exists := snapshot.FindLine(scope, ingredientID)
	productID := snapshot.Product.ID

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case !keep:
			query := tx.Where("product_id = ? AND ingredient_id = ?", productID, ingredient)
			if variant == nil {
				query = query.Where("variant_id IS NULL")
			} else {
				query = query.Where("variant_id = ?", *variant)
			}
			return query.Delete(&models.RecipeLine{}).Error
		case exists:
			if stored.Quantity.Equal(want.Quantity) {
				return nil
			}
			return tx.Model(&stored).Update("quantity", want.Quantity).Error
		default:
			return tx.Create(&models.RecipeLine{
				ProductID:    productID,
				IngredientID: ingredient,
				VariantID:    variant,
				Quantity:     want.Quantity,
				Position:     snapshot.NextPosition(),
			}).Error
		}
	})
}

// checkVariantScope rejects variant-scoped lines on products that are priced
// from the base recipe alone, where such lines would never be costed.
func checkVariantScope(snapshot costing.Snapshot, variantID string) error {
	if !snapshot.HasVariant(variantID) {
		return errVariantNotFound
	}
	if len(snapshot.Variants) < 2 {
		return errSinglePriced
	}
	return nil
}

func scopedItem(items []recipe.RecipeItem, scope recipe.Scope, ingredientID string) (recipe.RecipeItem, bool) {
	for _, item := range items {
		if item.Scope == scope && item.IngredientID == ingredientID {
			return item, true
		}
	}
	return recipe.RecipeItem{}, false
}

func recipeErrorStatus(err error) int {
	switch {
	case errors.Is(err, costing.ErrProductNotFound), errors.Is(err, errOverrideNotFound):
		return http.StatusNotFound
	case errors.Is(err, errVariantNotFound), errors.Is(err, errIngredientNotFound), errors.Is(err, errInvalidQuantity),
		errors.Is(err, errSinglePriced):
		return http.StatusBadRequest
	case errors.Is(err, errDuplicateLine), errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeRecipeError(w http.ResponseWriter, r *http.Request, err error, productID uint) {
	status := recipeErrorStatus(err)
	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), "recipe update failed", "error", err, "productID", productID)
		writeJSONError(w, status, "unable to update recipe")
		return
	}
	applog.Debug(r.Context(), "recipe update rejected", "error", err, "productID", productID)
	writeJSONError(w, status, err.Error())
}

func projectRecipeLine(line models.RecipeLine, names map[string]string) recipeLineResponse {
	var variantID *uint
	if !line.IsBase() {
		id := *line.VariantID
		variantID = &id
	}
	return recipeLineResponse{
		ID:             line.ID,
		ProductID:      line.ProductID,
		IngredientID:   line.IngredientID,
		IngredientName: names[models.IDString(line.IngredientID)],
		VariantID:      variantID,
		Quantity:       line.Quantity,
		Position:       line.Position,
	}
}
