package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"backoffice/internal/costing"
	applog "backoffice/internal/log"
	"backoffice/models"
)

type variantResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Position  int             `json:"position"`
}

type productResponse struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	SKU       string            `json:"sku"`
	Category  string            `json:"category"`
	Notes     string            `json:"notes"`
	Variants  []variantResponse `json:"variants"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type variantRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Position *int            `json:"position"`
}

func (p variantRequest) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "variant name is required"
	}
	if p.Price.IsNegative() {
		return "price must not be negative"
	}
	return ""
}

type productRequest struct {
	Name     string           `json:"name"`
	SKU      string           `json:"sku"`
	Category string           `json:"category"`
	Notes    string           `json:"notes"`
	Variants []variantRequest `json:"variants"`
}

// ProductResource handles products and everything nested below them: variants,
// recipe lines, recipe edits, and the costing sheet.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "product request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	segments := resourcePath(r, "/app/api/products")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listProducts(w, r)
		case http.MethodPost:
			createProduct(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	productID, ok := parseID(segments[0])
	if !ok {
		applog.Debug(r.Context(), "invalid product identifier", "identifier", segments[0])
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			showProduct(w, r, productID)
		case http.MethodPut:
			updateProduct(w, r, productID)
		case http.MethodDelete:
			deleteProduct(w, r, productID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch segments[1] {
	case "variants":
		variantResource(w, r, productID, segments[2:])
	case "recipe":
		recipeResource(w, r, productID, segments[2:])
	case "costing":
		if len(segments) > 2 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		productCosting(w, r, productID)
	default:
		http.NotFound(w, r)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var products []models.Product
	err := database.WithContext(ctx).
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc, id asc") }).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}

	responses := make([]productResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, projectProduct(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	product, err := findProduct(r, productID)
	if err != nil {
		writeProductError(w, r, err, productID)
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(product))
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	for _, variant := range payload.Variants {
		if message := variant.validate(); message != "" {
			writeJSONError(w, http.StatusBadRequest, message)
			return
		}
	}

	product := models.Product{
		Name:     strings.TrimSpace(payload.Name),
		SKU:      strings.TrimSpace(payload.SKU),
		Category: strings.TrimSpace(payload.Category),
		Notes:    strings.TrimSpace(payload.Notes),
	}
	for i, variant := range payload.Variants {
		position := i + 1
		if variant.Position != nil {
			position = *variant.Position
		}
		product.Variants = append(product.Variants, models.ProductVariant{
			Name:     strings.TrimSpace(variant.Name),
			Price:    variant.Price,
			Position: position,
		})
	}

	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create product")
		return
	}

	applog.Debug(ctx, "product created", "id", product.ID, "sku", product.SKU, "variants", len(product.Variants))
	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	product, err := findProduct(r, productID)
	if err != nil {
		writeProductError(w, r, err, productID)
		return
	}

	var payload productRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	updates := map[string]any{
		"name":     strings.TrimSpace(payload.Name),
		"category": strings.TrimSpace(payload.Category),
		"notes":    strings.TrimSpace(payload.Notes),
	}
	if sku := strings.TrimSpace(payload.SKU); sku != "" {
		updates["sku"] = sku
	}
	if err := database.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update product", "error", err, "id", productID)
		writeJSONError(w, http.StatusBadRequest, "unable to update product")
		return
	}

	product, err = findProduct(r, productID)
	if err != nil {
		writeProductError(w, r, err, productID)
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(product))
}

func deleteProduct(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	if _, err := findProduct(r, productID); err != nil {
		writeProductError(w, r, err, productID)
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.RecipeLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, productID).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete product", "error", err, "id", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func variantResource(w http.ResponseWriter, r *http.Request, productID uint, segments []string) {
	if _, err := findProduct(r, productID); err != nil {
		writeProductError(w, r, err, productID)
		return
	}

	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listVariants(w, r, productID)
		case http.MethodPost:
			createVariant(w, r, productID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	variantID, ok := parseID(segments[0])
	if !ok || len(segments) > 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		updateVariant(w, r, productID, variantID)
	case http.MethodDelete:
		deleteVariant(w, r, productID, variantID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listVariants(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var variants []models.ProductVariant
	if err := database.WithContext(ctx).Where("product_id = ?", productID).Order("position asc, id asc").Find(&variants).Error; err != nil {
		applog.Error(ctx, "failed to list variants", "error", err, "productID", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load variants")
		return
	}
	responses := make([]variantResponse, 0, len(variants))
	for _, variant := range variants {
		responses = append(responses, projectVariant(variant))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createVariant(w http.ResponseWriter, r *http.Request, productID uint) {
	ctx := r.Context()
	var payload variantRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid variant payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if message := payload.validate(); message != "" {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	position := 0
	if payload.Position != nil {
		position = *payload.Position
	} else {
		var last models.ProductVariant
		err := database.WithContext(ctx).Where("product_id = ?", productID).Order("position desc").First(&last).Error
		switch {
		case err == nil:
			position = last.Position + 1
		case errors.Is(err, gorm.ErrRecordNotFound):
			position = 1
		default:
			applog.Error(ctx, "failed to read variant positions", "error", err, "productID", productID)
			writeJSONError(w, http.StatusInternalServerError, "unable to create variant")
			return
		}
	}

	variant := models.ProductVariant{
		ProductID: productID,
		Name:      strings.TrimSpace(payload.Name),
		Price:     payload.Price,
		Position:  position,
	}
	if err := database.WithContext(ctx).Create(&variant).Error; err != nil {
		applog.Error(ctx, "failed to create variant", "error", err, "productID", productID)
		writeJSONError(w, http.StatusInternalServerError, "unable to create variant")
		return
	}

	applog.Debug(ctx, "variant created", "id", variant.ID, "productID", productID)
	writeJSON(w, http.StatusCreated, projectVariant(variant))
}

func updateVariant(w http.ResponseWriter, r *http.Request, productID, variantID uint) {
	ctx := r.Context()
	variant, ok := findVariant(w, r, productID, variantID)
	if !ok {
		return
	}

	var payload variantRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid variant update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if message := payload.validate(); message != "" {
		writeJSONError(w, http.StatusBadRequest, message)
		return
	}

	updates := map[string]any{
		"name":  strings.TrimSpace(payload.Name),
		"price": payload.Price,
	}
	if payload.Position != nil {
		updates["position"] = *payload.Position
	}
	if err := database.WithContext(ctx).Model(&variant).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update variant", "error", err, "id", variantID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update variant")
		return
	}
	if err := database.WithContext(ctx).First(&variant, variantID).Error; err != nil {
		applog.Error(ctx, "failed to reload variant", "error", err, "id", variantID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load updated record")
		return
	}
	writeJSON(w, http.StatusOK, projectVariant(variant))
}

// deleteVariant removes the variant together with its overrides and
// exclusive lines.
func deleteVariant(w http.ResponseWriter, r *http.Request, productID, variantID uint) {
	ctx := r.Context()
	if _, ok := findVariant(w, r, productID, variantID); !ok {
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ? AND variant_id = ?", productID, variantID).Delete(&models.RecipeLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductVariant{}, variantID).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete variant", "error", err, "id", variantID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete variant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func findProduct(r *http.Request, productID uint) (models.Product, error) {
	var product models.Product
	err := database.WithContext(r.Context()).
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc, id asc") }).
		First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, costing.ErrProductNotFound
	}
	return product, err
}

func findVariant(w http.ResponseWriter, r *http.Request, productID, variantID uint) (models.ProductVariant, bool) {
	var variant models.ProductVariant
	err := database.WithContext(r.Context()).Where("id = ? AND product_id = ?", variantID, productID).First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(r.Context(), "variant not found", "id", variantID, "productID", productID)
			http.NotFound(w, r)
			return models.ProductVariant{}, false
		}
		applog.Error(r.Context(), "failed to load variant", "error", err, "id", variantID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load variant")
		return models.ProductVariant{}, false
	}
	return variant, true
}

func writeProductError(w http.ResponseWriter, r *http.Request, err error, productID uint) {
	if errors.Is(err, costing.ErrProductNotFound) {
		applog.Debug(r.Context(), "product not found", "id", productID)
		http.NotFound(w, r)
		return
	}
	applog.Error(r.Context(), "failed to load product", "error", err, "id", productID)
	writeJSONError(w, http.StatusInternalServerError, "unable to load product")
}

func projectProduct(product models.Product) productResponse {
	variants := make([]variantResponse, 0, len(product.Variants))
	for _, variant := range product.Variants {
		variants = append(variants, projectVariant(variant))
	}
	return productResponse{
		ID:        product.ID,
		Name:      product.Name,
		SKU:       product.SKU,
		Category:  product.Category,
		Notes:     product.Notes,
		Variants:  variants,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

func projectVariant(variant models.ProductVariant) variantResponse {
	return variantResponse{
		ID:        variant.ID,
		ProductID: variant.ProductID,
		Name:      variant.Name,
		Price:     variant.Price,
		Position:  variant.Position,
	}
}
