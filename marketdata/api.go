// Package marketdata fetches option-chain snapshots from the Yahoo Finance
// options endpoint.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// ErrNoOptionsAvailable is returned when the instrument has no listed
// option expiries or no contracts for the chosen expiry.
var ErrNoOptionsAvailable = errors.New("no options available")

const defaultBaseURL = "https://query2.finance.yahoo.com/v7/finance/options"

// forwardExpiryIndex selects the expiry used for calibration: the 17th
// listed expiry when available, otherwise the last one.
const forwardExpiryIndex = 16

// Client talks to the options endpoint. The zero value is not usable; use
// NewClient. BaseURL is overridable for tests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchSnapshot retrieves the numOptions contracts nearest the money for a
// forward-chosen expiry of the given symbol.
func (c *Client) FetchSnapshot(ctx context.Context, symbol string, numOptions int) (*Snapshot, error) {
	if numOptions < 1 {
		return nil, fmt.Errorf("marketdata: numOptions=%d must be at least 1", numOptions)
	}

	root, err := c.getChain(ctx, symbol, 0)
	if err != nil {
		return nil, err
	}
	if len(root.ExpirationDates) == 0 {
		return nil, fmt.Errorf("marketdata: %s has no listed expiries: %w", symbol, ErrNoOptionsAvailable)
	}

	expiryIdx := forwardExpiryIndex
	if expiryIdx > len(root.ExpirationDates)-1 {
		expiryIdx = len(root.ExpirationDates) - 1
	}
	expiry := root.ExpirationDates[expiryIdx]
	spot := root.Quote.RegularMarketPrice

	chain, err := c.getChain(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}
	if len(chain.Options) == 0 {
		return nil, fmt.Errorf("marketdata: %s has no chain for expiry %d: %w", symbol, expiry, ErrNoOptionsAvailable)
	}

	calls := nearestTheMoney(chain.Options[0].Calls, spot, numOptions)
	puts := nearestTheMoney(chain.Options[0].Puts, spot, numOptions)
	if len(calls) == 0 {
		return nil, fmt.Errorf("marketdata: %s has no call contracts for expiry %d: %w", symbol, expiry, ErrNoOptionsAvailable)
	}

	timeToExpiry := time.Unix(expiry, 0).Sub(time.Now()).Hours() / 24 / 365
	if timeToExpiry < 0 {
		timeToExpiry = 0
	}

	snap := &Snapshot{
		Symbol:        symbol,
		TimeToExpiry:  timeToExpiry,
		Spot:          spot,
		DividendYield: root.Quote.TrailingAnnualDividendYield,
	}
	for _, contract := range calls {
		snap.CallPrices = append(snap.CallPrices, contract.LastPrice)
		snap.Strikes = append(snap.Strikes, contract.Strike)
	}
	for _, contract := range puts {
		snap.PutPrices = append(snap.PutPrices, contract.LastPrice)
	}

	return snap, nil
}

// getChain fetches one chain document. A zero date returns the default
// document carrying the expiry list and the underlying quote.
func (c *Client) getChain(ctx context.Context, symbol string, date int64) (*chainResult, error) {
	apiURL := fmt.Sprintf("%s/%s", c.BaseURL, url.PathEscape(symbol))
	if date > 0 {
		apiURL = fmt.Sprintf("%s?date=%d", apiURL, date)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata: build request: %w", err)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("User-Agent", "Mozilla/5.0 (compatible; quantopts)")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketdata: fetch chain for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	responseData, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("marketdata: read chain response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketdata: chain request for %s returned %s", symbol, resp.Status)
	}

	parsed := &chainResponse{}
	if err := json.Unmarshal(responseData, parsed); err != nil {
		return nil, fmt.Errorf("marketdata: unmarshal chain response: %w", err)
	}
	if parsed.OptionChain.Error != nil {
		return nil, fmt.Errorf("marketdata: %s: %s", parsed.OptionChain.Error.Code, parsed.OptionChain.Error.Description)
	}
	if len(parsed.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("marketdata: empty chain result for %s: %w", symbol, ErrNoOptionsAvailable)
	}

	return &parsed.OptionChain.Result[0], nil
}

// nearestTheMoney returns up to n contracts ordered by distance of their
// strike from the spot price.
func nearestTheMoney(contracts []OptionContract, spot float64, n int) []OptionContract {
	sorted := append([]OptionContract(nil), contracts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Strike-spot) < math.Abs(sorted[j].Strike-spot)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
