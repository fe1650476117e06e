package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/leverage/backend/internal/contracts"
	"github.com/wonny/leverage/backend/internal/export"
	"github.com/wonny/leverage/backend/internal/leverage"
	"github.com/wonny/leverage/backend/pkg/logger"
)

// maxRequestBody caps JSON request bodies
const maxRequestBody = 1 << 20

// RatioHandler handles debt-to-equity endpoints
// ⭐ SSOT: 부채비율 API 핸들러는 이 구조체에서만
type RatioHandler struct {
	service  *leverage.Service
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

// NewRatioHandler creates a new ratio handler
func NewRatioHandler(service *leverage.Service, log *logger.Logger) *RatioHandler {
	return &RatioHandler{
		service:  service,
		validate: validator.New(),
		logger:   log,
		now:      time.Now,
	}
}

// TickerRequest is the body of both debt-to-equity endpoints
type TickerRequest struct {
	Ticker string `json:"ticker" validate:"required"`
}

// RatioResponse wraps the derived records
type RatioResponse struct {
	Data []contracts.RatioRecord `json:"data"`
}

// DebtToEquity returns the ratios as JSON
// POST /api/debt-to-equity
func (h *RatioHandler) DebtToEquity(w http.ResponseWriter, r *http.Request) {
	ticker, records, ok := h.derive(w, r)
	if !ok {
		return
	}

	h.requestLogger(r).WithFields(map[string]interface{}{
		"ticker":  ticker,
		"records": len(records),
	}).Info("Debt-to-equity served")

	respondJSON(w, http.StatusOK, RatioResponse{Data: records})
}

// DebtToEquityCSV returns the ratios as a CSV download
// POST /api/debt-to-equity-csv
func (h *RatioHandler) DebtToEquityCSV(w http.ResponseWriter, r *http.Request) {
	ticker, records, ok := h.derive(w, r)
	if !ok {
		return
	}

	body, err := export.RatioCSV(records)
	if err != nil {
		h.requestLogger(r).WithError(err).Error("Failed to render debt-to-equity CSV")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := export.RatioFilename(ticker, h.now())
	h.requestLogger(r).WithFields(map[string]interface{}{
		"ticker":   ticker,
		"records":  len(records),
		"filename": filename,
	}).Info("Debt-to-equity CSV served")

	respondCSV(w, filename, body)
}

// derive parses the request and runs the pipeline, writing the error
// response itself when ok is false.
func (h *RatioHandler) derive(w http.ResponseWriter, r *http.Request) (string, []contracts.RatioRecord, bool) {
	req, err := h.parseTickerRequest(r)
	if errors.Is(err, errInvalidBody) {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return "", nil, false
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, msgTickerRequired)
		return "", nil, false
	}

	ticker := leverage.NormalizeTicker(req.Ticker)
	records, err := h.service.DebtToEquity(r.Context(), ticker)
	switch {
	case err == nil:
		return ticker, records, true
	case errors.Is(err, leverage.ErrTickerRequired):
		respondError(w, http.StatusBadRequest, msgTickerRequired)
	case errors.Is(err, leverage.ErrNoBalanceSheet):
		respondError(w, http.StatusNotFound, "No balance sheet data found for "+ticker)
	default:
		h.requestLogger(r).WithError(err).WithField("ticker", ticker).Error("Failed to derive debt-to-equity")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
	return "", nil, false
}

const (
	msgTickerRequired = "Ticker symbol is required"
	msgInvalidBody    = "Invalid request body"
)

var (
	errInvalidBody    = errors.New("invalid request body")
	errTickerRequired = errors.New("ticker is required")
)

func (h *RatioHandler) parseTickerRequest(r *http.Request) (*TickerRequest, error) {
	var req TickerRequest

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, errInvalidBody
	}

	req.Ticker = strings.TrimSpace(req.Ticker)
	if err := h.validate.Struct(&req); err != nil {
		return nil, errTickerRequired
	}

	return &req, nil
}

func (h *RatioHandler) requestLogger(r *http.Request) *logger.Logger {
	return h.logger.WithRequestID(RequestIDFromContext(r.Context()))
}
