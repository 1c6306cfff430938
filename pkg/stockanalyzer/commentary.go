package stockanalyzer

import (
	"context"
	"fmt"
	"strings"
)

const (
	// Responses shorter than this are treated as a non-answer.
	minCommentaryLength = 10

	commentaryUnavailable = "Analysis unavailable."

	fallbackNoticeUnavailable = "AI model not available. Showing basic analysis:"
	fallbackNoticeFailed      = "AI analysis failed. Showing basic analysis:"
	fallbackNoticeIncomplete  = "AI response incomplete. Showing basic analysis:"
)

var defaultSampling = SamplingParams{
	MaxTokens:     200,
	Temperature:   0.1,
	TopP:          0.8,
	RepeatPenalty: 1.05,
}

const commentaryPromptTemplate = `YOU ARE A FINANCIAL ANALYST AI. GIVE A DETAILED ANALYSIS OF THE STOCK MARKET DATA BELOW. DONT USE TOO MUCH JARGON, BE CONCISE AND TO THE POINT.

Stock: %s
Company: %s
Price: $%.2f
Change: %+.1f%%
High: $%.2f
Low: $%.2f

Give a short analysis and recommendation (BUY/HOLD/SELL):`

// GenerateCommentary produces investment commentary for a symbol. The
// model path is attempted when the generation capability is available; any
// call failure or too-short response falls back to rule-based commentary
// with a visible notice, never a silent swap. This function never fails
// outward.
func (c *Core) GenerateCommentary(ctx context.Context, ticker Ticker, price PricePoint, info CompanyInfo) Commentary {
	if c.gen == nil || !c.gen.Available() {
		return ruleBasedWithNotice(fallbackNoticeUnavailable, price)
	}

	prompt := buildCommentaryPrompt(ticker, price, info)
	text, err := c.gen.Generate(ctx, prompt, defaultSampling)
	if err != nil {
		c.logger.Warn("commentary generation failed", "ticker", ticker, "err", err)
		return ruleBasedWithNotice(fallbackNoticeFailed, price)
	}
	text = strings.TrimSpace(text)
	if len(text) < minCommentaryLength {
		c.logger.Warn("commentary response too short", "ticker", ticker, "len", len(text))
		return ruleBasedWithNotice(fallbackNoticeIncomplete, price)
	}
	return Commentary{Text: text, Source: SourceModel}
}

func buildCommentaryPrompt(ticker Ticker, price PricePoint, info CompanyInfo) string {
	changePct, _ := price.ChangePct()
	high, low := price.CurrentClose, price.CurrentClose
	if price.DayHigh != nil {
		high = *price.DayHigh
	}
	if price.DayLow != nil {
		low = *price.DayLow
	}
	return fmt.Sprintf(commentaryPromptTemplate, ticker, info.Name, price.CurrentClose, changePct, high, low)
}

func ruleBasedWithNotice(notice string, price PricePoint) Commentary {
	return Commentary{
		Text:   notice + "\n\n" + RuleBasedCommentary(price),
		Source: SourceRuleBased,
	}
}

// RuleBasedCommentary is the deterministic threshold-driven narrative used
// whenever no model output is usable. It is a pure function of the price
// point; anything it cannot compute degrades to "analysis unavailable"
// rather than an error.
func RuleBasedCommentary(price PricePoint) string {
	changePct, ok := price.ChangePct()
	if !ok {
		return commentaryUnavailable
	}

	var sb strings.Builder
	sb.WriteString("BASIC TECHNICAL ANALYSIS:\n\n")
	sb.WriteString(trendLine(changePct))
	sb.WriteString("\n")

	if rangePct, ok := price.IntradayRangePct(); ok {
		sb.WriteString(fmt.Sprintf("\nVolatility: %.1f%% intraday range\n", rangePct))
		sb.WriteString(volatilityLine(rangePct))
		sb.WriteString("\n")
	}

	sb.WriteString("\nBASIC RECOMMENDATION:\n")
	sb.WriteString(recommendationLine(changePct))
	sb.WriteString("\n\nNote: this is basic technical analysis only.\n")
	sb.WriteString("For detailed AI-powered fundamental analysis, configure a generation model.")
	return sb.String()
}

// trendLine buckets the daily change into six exclusive bins, checked in
// descending order so each boundary lands in the lower bin.
func trendLine(changePct float64) string {
	switch {
	case changePct > 5:
		return "Strong upward momentum (+5% or more)"
	case changePct > 2:
		return "Moderate upward trend (+2% to +5%)"
	case changePct > 0:
		return "Slight positive movement"
	case changePct > -2:
		return "Minor decline (less than -2%)"
	case changePct > -5:
		return "Moderate decline (-2% to -5%)"
	default:
		return "Significant decline (more than -5%)"
	}
}

func volatilityLine(rangePct float64) string {
	switch {
	case rangePct > 5:
		return "High volatility - risky for short term"
	case rangePct > 2:
		return "Moderate volatility - normal trading"
	default:
		return "Low volatility - stable trading"
	}
}

// recommendationLine is advisory narrative only, not a structured
// BUY/HOLD/SELL enum.
func recommendationLine(changePct float64) string {
	switch {
	case changePct > 3:
		return "Consider taking profits if you own shares"
	case changePct < -3:
		return "May be a buying opportunity if fundamentals are strong"
	default:
		return "Normal trading - monitor for trends"
	}
}
