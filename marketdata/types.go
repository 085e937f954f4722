package marketdata

// Response shapes for the Yahoo Finance v7 options endpoint.

type chainResponse struct {
	OptionChain struct {
		Result []chainResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"optionChain"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chainResult struct {
	UnderlyingSymbol string          `json:"underlyingSymbol"`
	ExpirationDates  []int64         `json:"expirationDates"`
	Strikes          []float64       `json:"strikes"`
	Quote            underlyingQuote `json:"quote"`
	Options          []expiryChain   `json:"options"`
}

type underlyingQuote struct {
	Symbol                      string  `json:"symbol"`
	RegularMarketPrice          float64 `json:"regularMarketPrice"`
	TrailingAnnualDividendRate  float64 `json:"trailingAnnualDividendRate"`
	TrailingAnnualDividendYield float64 `json:"trailingAnnualDividendYield"`
}

type expiryChain struct {
	ExpirationDate int64            `json:"expirationDate"`
	Calls          []OptionContract `json:"calls"`
	Puts           []OptionContract `json:"puts"`
}

// OptionContract is one listed contract of an option chain.
type OptionContract struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int     `json:"volume"`
	OpenInterest      int     `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	InTheMoney        bool    `json:"inTheMoney"`
}

// Snapshot is the market state consumed by the calibration pipeline: the
// last traded prices and strikes of the contracts closest to the money for
// one expiry, plus spot and dividend yield of the underlying.
type Snapshot struct {
	Symbol        string
	CallPrices    []float64
	PutPrices     []float64
	Strikes       []float64
	TimeToExpiry  float64 // years
	Spot          float64
	DividendYield float64
}
