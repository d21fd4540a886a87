package server

import (
	"context"
	"net/http"

	"backoffice/internal/handlers"
	applog "backoffice/internal/log"
	"backoffice/internal/metrics"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.HandleFunc("/login", handlers.Login)
	applog.Debug(context.Background(), "route registered", "path", "/login")
	mux.HandleFunc("/signup", handlers.Signup)
	applog.Debug(context.Background(), "route registered", "path", "/signup")
	mux.HandleFunc("/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/logout")
	mux.Handle("/metrics", metrics.Handler())
	applog.Debug(context.Background(), "route registered", "path", "/metrics")

	protected := func(path string, handler http.HandlerFunc) {
		mux.Handle(path, handlers.RequireAuthentication(handler))
		applog.Debug(context.Background(), "route registered", "path", path, "protected", true)
	}
	protected("/app", handlers.Dashboard)
	protected("/app/", handlers.Dashboard)
	protected("/app/products/", handlers.ProductWorkspace)
	protected("/app/tools", handlers.Tools)
	protected("/app/tools/import-ingredients", handlers.ToolsImportIngredients)
	protected("/app/api/ingredients", handlers.IngredientResource)
	protected("/app/api/ingredients/", handlers.IngredientResource)
	protected("/app/api/products", handlers.ProductResource)
	protected("/app/api/products/", handlers.ProductResource)
	protected("/app/api/costing/preview", handlers.CostingPreview)

	mux.HandleFunc("/", handlers.Home)
	applog.Debug(context.Background(), "route registered", "path", "/")
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir("web/static"))))
	applog.Debug(context.Background(), "route registered", "path", "/assets/", "static", true)
	return mux
}
