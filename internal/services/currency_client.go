package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CurrencyClient fetches exchange rates from the internal rates service.
// Conversion is display-only; all ledger amounts stay in the base currency.
type CurrencyClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewCurrencyClient(baseURL string, log *zap.Logger) *CurrencyClient {
	return &CurrencyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type rateResponse struct {
	Rate float64 `json:"rate"`
}

func (c *CurrencyClient) GetRate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}

	url := fmt.Sprintf("%s/internal/rates?from=%s&to=%s", c.baseURL, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rates service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("rates service returned %d: %s", resp.StatusCode, string(b))
	}

	var r rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, err
	}
	return r.Rate, nil
}

// Convert returns amount in the target currency, or the original amount when
// the rates service is down. Callers must not persist converted values.
func (c *CurrencyClient) Convert(ctx context.Context, amount float64, from, to string) (float64, string) {
	rate, err := c.GetRate(ctx, from, to)
	if err != nil {
		c.log.Warn("currency conversion skipped", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return amount, from
	}
	return amount * rate, to
}
