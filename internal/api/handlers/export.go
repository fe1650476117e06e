package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/leverage/backend/internal/export"
	"github.com/wonny/leverage/backend/pkg/logger"
)

// ExportHandler turns client-supplied rows into CSV downloads
type ExportHandler struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		logger: log,
		now:    time.Now,
	}
}

// GenerateCSV renders {rows: [...]} as CSV, or a sample table when rows is absent
// POST /api/generate-csv
func (h *ExportHandler) GenerateCSV(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithRequestID(RequestIDFromContext(r.Context()))
	now := h.now()

	table, err := h.buildTable(r, now)
	if err != nil {
		log.WithError(err).Error("Failed to build CSV table")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := table.CSV()
	if err != nil {
		log.WithError(err).Error("Failed to render CSV")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := export.TableFilename(now)
	log.WithFields(map[string]interface{}{
		"columns":  len(table.Columns),
		"rows":     len(table.Rows),
		"filename": filename,
	}).Info("CSV generated")

	respondCSV(w, filename, body)
}

func (h *ExportHandler) buildTable(r *http.Request, now time.Time) (*export.Table, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}

	if len(raw) == 0 {
		return export.SampleTable(now), nil
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}

	// only an object carrying "rows" selects client data
	object, isObject := payload.(map[string]interface{})
	if !isObject {
		return export.SampleTable(now), nil
	}
	if _, ok := object["rows"]; !ok {
		return export.SampleTable(now), nil
	}

	var body struct {
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}

	rows, err := export.DecodeRows(body.Rows)
	if err != nil {
		return nil, err
	}
	return export.TableFromRows(rows)
}
