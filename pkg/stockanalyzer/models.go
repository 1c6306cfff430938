package stockanalyzer

// InvestorCode is the opaque key the holdings site uses for a named investor.
type InvestorCode string

// Ticker is a short uppercase market symbol.
type Ticker string

// PricePoint holds the two most recent sessions for a symbol.
// High and Low may be absent when the data source omits intraday fields;
// CurrentClose and PreviousClose are always populated on a successful fetch.
type PricePoint struct {
	CurrentClose  float64  `json:"current_close"`
	PreviousClose float64  `json:"previous_close"`
	DayHigh       *float64 `json:"day_high,omitempty"`
	DayLow        *float64 `json:"day_low,omitempty"`
}

// Change returns the absolute change between the two sessions.
func (p PricePoint) Change() float64 {
	return p.CurrentClose - p.PreviousClose
}

// ChangePct returns the percent change. The bool is false when the
// previous close is zero and the ratio is undefined.
func (p PricePoint) ChangePct() (float64, bool) {
	if p.PreviousClose == 0 {
		return 0, false
	}
	return p.Change() / p.PreviousClose * 100, true
}

// IntradayRangePct returns the high-low spread as a percent of the current
// close. The bool is false when high/low are missing or the close is zero.
func (p PricePoint) IntradayRangePct() (float64, bool) {
	if p.DayHigh == nil || p.DayLow == nil || p.CurrentClose == 0 {
		return 0, false
	}
	return (*p.DayHigh - *p.DayLow) / p.CurrentClose * 100, true
}

// CompanyInfo holds descriptive metadata for a symbol. Every field is
// independently optional; absent values carry the "Unknown"/zero sentinel.
type CompanyInfo struct {
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	Country   string  `json:"country"`
	MarketCap float64 `json:"market_cap"`
	PERatio   float64 `json:"pe_ratio,omitempty"`
}

// CommentarySource identifies which path produced a commentary.
type CommentarySource string

const (
	SourceModel     CommentarySource = "model"
	SourceRuleBased CommentarySource = "rule-based"
)

// Commentary is the analysis text shown to the user, tagged with the path
// that produced it. Exactly one path produces any given commentary.
type Commentary struct {
	Text   string           `json:"text"`
	Source CommentarySource `json:"source"`
}

// StockReport is the single-symbol analysis outcome.
type StockReport struct {
	Ticker      Ticker      `json:"ticker"`
	Price       PricePoint  `json:"price"`
	Company     CompanyInfo `json:"company"`
	Commentary  Commentary  `json:"commentary"`
	CompletedAt string      `json:"completed_at"`
}

// PortfolioHolding is one row of a portfolio listing. Price and change are
// nil when the per-ticker fetch yielded no data.
type PortfolioHolding struct {
	Ticker    Ticker   `json:"ticker"`
	Price     *float64 `json:"price,omitempty"`
	ChangePct *float64 `json:"change_pct,omitempty"`
}

// PortfolioReport is the investor-lookup outcome: a summary listing only,
// no per-stock commentary.
type PortfolioReport struct {
	Investor    string             `json:"investor"`
	Code        InvestorCode       `json:"code"`
	Holdings    []PortfolioHolding `json:"holdings"`
	CompletedAt string             `json:"completed_at"`
}

// Failure carries a user-facing reason plus remediation hints.
type Failure struct {
	Code   ErrorCode `json:"code"`
	Reason string    `json:"reason"`
	Hints  []string  `json:"hints,omitempty"`
}

// OutcomeKind discriminates the three terminal outcomes of an analysis.
type OutcomeKind string

const (
	OutcomeStock     OutcomeKind = "stock"
	OutcomePortfolio OutcomeKind = "portfolio"
	OutcomeFailure   OutcomeKind = "failure"
)

// Outcome is the single result the presentation layer renders per request.
// Exactly one of Stock, Portfolio, Failure is set, per Kind.
type Outcome struct {
	Kind      OutcomeKind      `json:"kind"`
	Stock     *StockReport     `json:"stock,omitempty"`
	Portfolio *PortfolioReport `json:"portfolio,omitempty"`
	Failure   *Failure         `json:"failure,omitempty"`
}

// ShowcaseRow is one row of the default-investor holdings table.
type ShowcaseRow struct {
	Ticker    Ticker `json:"ticker"`
	Name      string  `json:"name"`
	Price     string  `json:"price"`
	PERatio   string  `json:"pe_ratio"`
	MarketCap string  `json:"market_cap"`
}

// HistoryPoint is one daily session in a price history series.
type HistoryPoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
