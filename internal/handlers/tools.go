package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	applog "backoffice/internal/log"
	"backoffice/internal/metrics"
	"backoffice/internal/pricesheet"
	"backoffice/internal/views/pages"
)

// Tools renders the catalog import page.
func Tools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if isHTMX(r) {
		renderComponent(w, r, pages.ToolsPanel("", nil))
		return
	}
	renderComponent(w, r, pages.Tools("", nil))
}

// ToolsImportIngredients upserts the ingredient catalog from an uploaded CSV
// or PDF price sheet.
func ToolsImportIngredients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if database == nil {
		renderComponent(w, r, pages.ToolsPanel("The catalog database is not available.", nil))
		return
	}

	if err := r.ParseMultipartForm(pricesheet.MaxUploadSize); err != nil {
		applog.Debug(r.Context(), "failed to parse price sheet form", "error", err)
		renderComponent(w, r, pages.ToolsPanel("Upload is too large or invalid. Please retry with a smaller file.", nil))
		return
	}

	fileName, data, contentType, err := readPriceSheetUpload(r)
	if err != nil {
		applog.Debug(r.Context(), "price sheet upload read failed", "error", err)
		renderComponent(w, r, pages.ToolsPanel("Choose a CSV or PDF price sheet to import.", nil))
		return
	}

	rows, skipped, err := pricesheet.Parse(fileName, contentType, data)
	if err != nil {
		applog.Debug(r.Context(), "price sheet could not be parsed", "error", err, "file", fileName)
		message := "We could not read that price sheet."
		if errors.Is(err, pricesheet.ErrEmptySheet) {
			message = "No ingredient rows were found. Expected name, unit and cost columns."
		}
		renderComponent(w, r, pages.ToolsPanel(message, &pages.ImportSummary{FileName: fileName, Skipped: skipped}))
		return
	}

	result, err := pricesheet.Store(r.Context(), database, rows)
	if err != nil {
		applog.Error(r.Context(), "failed to store price sheet", "error", err, "file", fileName)
		renderComponent(w, r, pages.ToolsPanel("The catalog could not be updated. Please try again.", nil))
		return
	}

	metrics.RecordImport(result.Created, result.Updated, len(skipped))
	applog.Info(r.Context(), "price sheet imported", "file", fileName, "created", result.Created, "updated", result.Updated, "skipped", len(skipped))
	summary := &pages.ImportSummary{
		FileName: fileName,
		Created:  result.Created,
		Updated:  result.Updated,
		Skipped:  skipped,
	}
	renderComponent(w, r, pages.ToolsPanel("Price sheet imported.", summary))
}

func readPriceSheetUpload(r *http.Request) (string, []byte, string, error) {
	file, header, err := r.FormFile("price_sheet")
	if err != nil {
		return "", nil, "", err
	}
	defer file.Close()

	if header.Size > pricesheet.MaxUploadSize {
		return "", nil, "", fmt.Errorf("file exceeds %d bytes", pricesheet.MaxUploadSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if _, err := io.Copy(buf, file); err != nil {
		return "", nil, "", err
	}
	return header.Filename, buf.Bytes(), header.Header.Get("Content-Type"), nil
}
