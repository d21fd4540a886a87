package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	applog "backoffice/internal/log"
	"backoffice/models"
)

const healthTimeout = 2 * time.Second

const (
	databaseUp           = "up"
	databaseDown         = "down"
	databaseUnconfigured = "unconfigured"
)

// healthResponse reports whether the console can serve costing sheets: the
// database answers and the catalog tables can be read.
type healthResponse struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	Ingredients int64     `json:"ingredients"`
	Products    int64     `json:"products"`
	Time        time.Time `json:"time"`
}

// Health answers readiness checks. It returns 503 when the database is
// configured but unreachable.
func Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := catalogReadiness(ctx)
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
	}
}

func catalogReadiness(ctx context.Context) healthResponse {
	resp := healthResponse{Status: "ok", Database: databaseUnconfigured, Time: time.Now().UTC()}
	if database == nil {
		return resp
	}

	sqlDB, err := database.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err == nil {
		err = database.WithContext(ctx).Model(&models.Ingredient{}).Count(&resp.Ingredients).Error
	}
	if err == nil {
		err = database.WithContext(ctx).Model(&models.Product{}).Count(&resp.Products).Error
	}
	if err != nil {
		applog.Warn(ctx, "catalog database not ready", "error", err)
		resp.Status = "degraded"
		resp.Database = databaseDown
		return resp
	}

	resp.Database = databaseUp
	return resp
}
