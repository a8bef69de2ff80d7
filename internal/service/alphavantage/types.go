package alphavantage

// Upstream payload shapes. Alpha Vantage keys carry ordinal prefixes
// ("01. symbol") and every value is a string; normalization into domain
// models happens in the client.

// envelope carries the error markers present on every function's response.
// A non-empty Note means the free-tier rate ceiling was hit; a non-empty
// ErrorMessage is an explicit upstream rejection (bad symbol, bad function).
type envelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

type globalQuotePayload struct {
	envelope
	GlobalQuote *globalQuote `json:"Global Quote"`
}

type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	LatestDay     string `json:"07. latest trading day"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

type symbolSearchPayload struct {
	envelope
	BestMatches []symbolMatch `json:"bestMatches"`
}

type symbolMatch struct {
	Symbol   string `json:"1. symbol"`
	Name     string `json:"2. name"`
	Type     string `json:"3. type"`
	Region   string `json:"4. region"`
	Currency string `json:"8. currency"`
}

type dailySeriesPayload struct {
	envelope
	TimeSeries map[string]dailyBar `json:"Time Series (Daily)"`
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}
