package collector

// Fetcher defines the interface for fetching the current price of a symbol.
type Fetcher interface {
	FetchPrice(symbol string) (float64, error)
	Name() string
}
