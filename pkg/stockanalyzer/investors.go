package stockanalyzer

import "strings"

// DefaultInvestorCode backs the showcase holdings view.
const DefaultInvestorCode InvestorCode = "BRK"

// investorCodes maps well-known investor full names (lowercase) to the
// holdings site's opaque manager codes. Exact match only; no fuzzy lookup.
var investorCodes = map[string]InvestorCode{
	"warren buffett":   "BRK",
	"bill gates":       "GFT",
	"bill ackman":      "psc",
	"charlie munger":   "DJCO",
	"michael burry":    "SAM",
	"ray dalio":        "BRIDGE",
	"joel greenblatt":  "GOTHAM",
	"tiger global":     "TGM",
	"jeff bezos":       "AMZN",
	"david einhorn":    "GLRE",
	"seth klarman":     "BAUPOST",
	"leon cooperman":   "oa",
	"carl icahn":       "ic",
	"david tepper":     "AM",
	"bill miller":      "LMM",
	"chuck akre":       "AC",
	"mohnish pabrai":   "PI",
	"guy spier":        "aq",
	"li lu":            "HC",
	"prem watsa":       "FFH",
	"francis chou":     "ca",
	"thomas russo":     "GR",
	"mason hawkins":    "LLPFX",
	"chase coleman":    "TGM",
	"lee ainslie":      "mc",
	"daniel loeb":      "tp",
	"david abrams":     "abc",
	"bruce berkowitz":  "fairx",
	"glenn greenberg":  "CCM",
	"pat dorsey":       "DA",
	"christopher davis": "DAV",
	"john rogers":      "CAAPX",
	"bill nygren":      "oaklx",
	"dodge cox":        "DODGX",
	"third avenue":     "TA",
	"first eagle":      "FE",
}

// ResolveInvestor classifies user input as a known investor name. The input
// is trimmed and case-folded before the exact-match lookup. A miss means
// the caller should treat the text as a candidate ticker; it is never an
// error.
func ResolveInvestor(text string) (InvestorCode, bool) {
	code, ok := investorCodes[strings.ToLower(strings.TrimSpace(text))]
	return code, ok
}
