package mock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backoffice/internal/db"
	applog "backoffice/internal/log"
	"backoffice/models"
)

// SeedPassword is the password of the seeded back-office account.
const SeedPassword = "counter"

// New returns an in-memory sqlite database seeded with a representative café menu.
func New(ctx context.Context) (*gorm.DB, error) {
	return Open(ctx, "backoffice-mock")
}

// Open is New with an explicit in-memory database name, so tests can keep
// their fixtures apart.
func Open(ctx context.Context, name string) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database", "name", name)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready", "name", name)
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	tx := database.WithContext(ctx)

	var existing int64
	if err := tx.Model(&models.User{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		applog.Debug(ctx, "mock database already seeded")
		return nil
	}

	password, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Morgan Counter",
		Email:        "morgan@backoffice.app",
		PasswordHash: string(password),
	}
	if err := tx.Create(user).Error; err != nil {
		return err
	}

	beans := models.Ingredient{Name: "Espresso Beans", UnitSymbol: "g", CostPerUnit: decimal.RequireFromString("0.02")}
	milk := models.Ingredient{Name: "Whole Milk", UnitSymbol: "ml", CostPerUnit: decimal.RequireFromString("0.0015")}
	whip := models.Ingredient{Name: "Whipped Cream", UnitSymbol: "pc", CostPerUnit: decimal.RequireFromString("0.30")}
	flour := models.Ingredient{Name: "Bread Flour", UnitSymbol: "g", CostPerUnit: decimal.RequireFromString("0.0018")}
	butter := models.Ingredient{Name: "Cultured Butter", UnitSymbol: "g", CostPerUnit: decimal.RequireFromString("0.012")}

	for _, ingredient := range []*models.Ingredient{&beans, &milk, &whip, &flour, &butter} {
		if err := tx.Create(ingredient).Error; err != nil {
			return err
		}
	}

	latte := models.Product{Name: "Café Latte", Category: "coffee", Notes: "House espresso with steamed milk."}
	croissant := models.Product{Name: "Butter Croissant", Category: "pastry", Notes: "Laminated in house every morning."}
	for _, product := range []*models.Product{&latte, &croissant} {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
	}

	standard := models.ProductVariant{ProductID: latte.ID, Name: "Standard", Price: decimal.RequireFromString("4.50"), Position: 1}
	large := models.ProductVariant{ProductID: latte.ID, Name: "Large", Price: decimal.RequireFromString("5.50"), Position: 2}
	promo := models.ProductVariant{ProductID: latte.ID, Name: "Promo", Price: decimal.Zero, Position: 3}
	single := models.ProductVariant{ProductID: croissant.ID, Name: "Regular", Price: decimal.RequireFromString("3.75"), Position: 1}

	for _, variant := range []*models.ProductVariant{&standard, &large, &promo, &single} {
		if err := tx.Create(variant).Error; err != nil {
			return err
		}
	}

	lines := []models.RecipeLine{
		{ProductID: latte.ID, IngredientID: beans.ID, Quantity: decimal.NewFromInt(18), Position: 1},
		{ProductID: latte.ID, IngredientID: milk.ID, Quantity: decimal.NewFromInt(250), Position: 2},
		{ProductID: latte.ID, IngredientID: milk.ID, VariantID: &large.ID, Quantity: decimal.NewFromInt(350), Position: 3},
		{ProductID: latte.ID, IngredientID: whip.ID, VariantID: &large.ID, Quantity: decimal.NewFromInt(1), Position: 4},
		{ProductID: croissant.ID, IngredientID: flour.ID, Quantity: decimal.NewFromInt(60), Position: 1},
		{ProductID: croissant.ID, IngredientID: butter.ID, Quantity: decimal.NewFromInt(30), Position: 2},
	}

	for _, line := range lines {
		lineCopy := line
		if err := tx.Create(&lineCopy).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
