package handlers

import (
	"context"
	"net/http"
	"time"

	templpkg "github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"backoffice/internal/costing"
	applog "backoffice/internal/log"
	"backoffice/internal/metrics"
	"backoffice/internal/views/pages"
	"backoffice/models"
)

// Dashboard renders the menu costing overview once a user is authenticated.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := loadDashboardData(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to load dashboard", "error", err)
		http.Error(w, "unable to load products", http.StatusInternalServerError)
		return
	}

	var component templpkg.Component
	if isHTMX(r) {
		component = pages.DashboardPartial(data)
	} else {
		component = pages.Dashboard(data)
	}
	renderComponent(w, r, component)
}

// dashboardConcurrency bounds how many products are costed at once.
const dashboardConcurrency = 4

func loadDashboardData(ctx context.Context) (pages.DashboardData, error) {
	data := pages.DashboardData{CurrencySymbol: currencySymbol}
	if database == nil {
		return data, nil
	}

	var products []models.Product
	if err := database.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return data, err
	}

	cards := make([]pages.ProductCard, len(products))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(dashboardConcurrency)
	for i, product := range products {
		i, product := i, product
		group.Go(func() error {
			started := time.Now()
			snapshot, err := costing.Load(groupCtx, database, product.ID)
			if err != nil {
				return err
			}
			cards[i] = pages.ProductCard{
				ID:           product.ID,
				Name:         product.Name,
				Category:     product.Category,
				VariantCount: len(snapshot.Variants),
				Summary:      snapshot.Sheet().Summary,
			}
			metrics.ObserveCosting(metrics.SourceDashboard, started)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return data, err
	}
	data.Products = cards

	applog.Debug(ctx, "dashboard data loaded", "products", len(data.Products))
	return data, nil
}

