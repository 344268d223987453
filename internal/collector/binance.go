package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBinanceBaseURL is the Binance spot ticker endpoint.
const DefaultBinanceBaseURL = "https://api.binance.com/api/v3/ticker/price"

// BinanceFetcher implements Fetcher using the Binance public ticker API.
type BinanceFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewBinanceFetcher creates a new Binance fetcher. An empty baseURL
// selects the public endpoint; proxyURL is optional.
func NewBinanceFetcher(baseURL, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBinanceBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceFetcher{
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		BaseURL: baseURL,
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// binanceTicker is the response structure from the ticker price API.
// Binance serializes the price as a string.
type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (f *BinanceFetcher) FetchPrice(symbol string) (float64, error) {
	u := fmt.Sprintf("%s?symbol=%s", f.BaseURL, url.QueryEscape(symbol))

	resp, err := f.Client.Get(u)
	if err != nil {
		return 0, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("binance read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode, string(body))
	}

	var ticker binanceTicker
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("binance decode: %w", err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance parse price %q: %w", ticker.Price, err)
	}
	return price, nil
}
