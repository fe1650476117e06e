package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/leverage/backend/internal/contracts"
	"github.com/wonny/leverage/backend/pkg/config"
	"github.com/wonny/leverage/backend/pkg/httputil"
	"github.com/wonny/leverage/backend/pkg/logger"
)

const timeseriesPath = "/ws/fundamentals-timeseries/v1/finance/timeseries/"

// Client reads annual balance-sheet fundamentals from Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient    *httputil.Client
	logger        *logger.Logger
	baseURL       string
	lookbackYears int
	now           func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient:    httpClient,
		logger:        log,
		baseURL:       strings.TrimRight(cfg.Provider.BaseURL, "/"),
		lookbackYears: cfg.Provider.LookbackYears,
		now:           time.Now,
	}
}

// FetchBalanceSheet implements contracts.BalanceSheetFetcher.
// An unknown symbol yields an empty sheet rather than an error.
func (c *Client) FetchBalanceSheet(ctx context.Context, ticker string) (*contracts.BalanceSheet, error) {
	var resp TimeseriesResponse
	err := c.httpClient.GetJSON(ctx, c.timeseriesURL(ticker), &resp)

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		c.logger.WithField("ticker", ticker).Debug("Provider has no fundamentals for ticker")
		return contracts.NewBalanceSheet(ticker, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("yahoo timeseries request: %w", err)
	}

	if apiErr := resp.Timeseries.Error; apiErr != nil {
		if strings.EqualFold(apiErr.Code, "Not Found") {
			return contracts.NewBalanceSheet(ticker, nil), nil
		}
		return nil, apiErr
	}

	sheet, err := buildBalanceSheet(ticker, resp.Timeseries.Result)
	if err != nil {
		return nil, fmt.Errorf("parse yahoo timeseries for %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"periods": len(sheet.Periods),
		"rows":    sheet.RowCount(),
	}).Debug("Balance sheet fetched")

	return sheet, nil
}

// timeseriesURL builds the request for every known line item over the lookback window
func (c *Client) timeseriesURL(ticker string) string {
	items := contracts.AllLineItems()
	types := make([]string, len(items))
	for i, item := range items {
		types[i] = TypeKey(item)
	}

	now := c.now().UTC()
	start := now.AddDate(-c.lookbackYears, 0, 0)

	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("type", strings.Join(types, ","))
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	params.Set("merge", "false")
	params.Set("padTimeSeries", "true")

	return c.baseURL + timeseriesPath + url.PathEscape(ticker) + "?" + params.Encode()
}
