package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// reportPrinter formats numbers with English grouping ($1,250,000).
var reportPrinter = message.NewPrinter(language.English)

func reportMoney(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return reportPrinter.Sprintf("$%.0f", *v)
}

// FormatReport renders a completed analysis as a human-readable text report
// for CLI output.
func FormatReport(snap model.DealSnapshot, analysis *model.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Deal Analysis: %s\n", orNA(snap.PropertyAddress))
	fmt.Fprintf(&b, "Deal %s / user %s\n\n", snap.DealID, snap.UserID)

	fmt.Fprintf(&b, "Overall score: %d/100\n\n", analysis.Overall)

	fmt.Fprintf(&b, "Market: %d/100%s\n", analysis.Market.Score, fallbackTag(analysis.Market.Fallback))
	fmt.Fprintf(&b, "  demographics %d, competition %d, opportunity %d\n",
		analysis.Market.DemographicScore, analysis.Market.CompetitionScore, analysis.Market.OpportunityScore)
	writeInsights(&b, analysis.Market.Insights)

	fmt.Fprintf(&b, "Financial: %d/100%s\n", analysis.Financial.Score, fallbackTag(analysis.Financial.Fallback))
	if analysis.Financial.CapRatePct != nil {
		fmt.Fprintf(&b, "  cap rate %.1f%%\n", *analysis.Financial.CapRatePct)
	}
	if analysis.Financial.NOIAnnual != nil {
		fmt.Fprintf(&b, "  NOI %s/yr\n", reportMoney(analysis.Financial.NOIAnnual))
	}
	if analysis.Financial.CoCROIPct != nil {
		fmt.Fprintf(&b, "  cash-on-cash ROI %.1f%%\n", *analysis.Financial.CoCROIPct)
	}
	writeInsights(&b, analysis.Financial.Insights)

	fmt.Fprintf(&b, "Risk: %d/100 (higher is riskier)%s\n", analysis.Risk.Score, fallbackTag(analysis.Risk.Fallback))
	for _, f := range analysis.Risk.RiskFactors {
		fmt.Fprintf(&b, "  ! %s\n", f)
	}
	writeInsights(&b, analysis.Risk.Insights)

	fmt.Fprintf(&b, "Revenue upside: %d/100%s\n", analysis.Revenue.Score, fallbackTag(analysis.Revenue.Fallback))
	if analysis.Revenue.ProjectedAnnual != nil {
		fmt.Fprintf(&b, "  projected gross %s/yr\n", reportMoney(analysis.Revenue.ProjectedAnnual))
	}
	for _, o := range analysis.Revenue.Opportunities {
		fmt.Fprintf(&b, "  + %s\n", o)
	}
	writeInsights(&b, analysis.Revenue.Insights)

	if len(analysis.Expenses) > 0 {
		b.WriteString("Expense validation:\n")
		for _, e := range analysis.Expenses {
			verdict := "unreasonable"
			if e.IsReasonable {
				verdict = "reasonable"
			}
			amt := e.AmountAnnual
			fmt.Fprintf(&b, "  %-24s %12s/yr  %s (confidence %d)",
				e.ExpenseName, reportMoney(&amt), verdict, e.Confidence)
			if e.Notes != "" {
				fmt.Fprintf(&b, " - %s", e.Notes)
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString("Recommendations:\n")
	for i, r := range analysis.Recommendations {
		fmt.Fprintf(&b, "  %d. [P%d] %s (%s, impact %d, difficulty %d)\n",
			i+1, r.Priority, r.Title, r.Category, r.ImpactScore, r.Difficulty)
		if r.Description != "" {
			fmt.Fprintf(&b, "     %s\n", r.Description)
		}
		if r.EstimatedBenefit != nil {
			fmt.Fprintf(&b, "     estimated benefit %s/yr", reportMoney(r.EstimatedBenefit))
			if r.Timeframe != "" {
				fmt.Fprintf(&b, ", timeframe %s", r.Timeframe)
			}
			b.WriteByte('\n')
		} else if r.Timeframe != "" {
			fmt.Fprintf(&b, "     timeframe %s\n", r.Timeframe)
		}
	}

	return b.String()
}

func fallbackTag(fallback bool) string {
	if fallback {
		return " [fallback]"
	}
	return ""
}

func writeInsights(b *strings.Builder, insights string) {
	insights = strings.TrimSpace(insights)
	if insights != "" {
		fmt.Fprintf(b, "  %s\n", insights)
	}
	b.WriteByte('\n')
}
