package usecase

import (
	"fmt"
	"strings"

	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// renderReport assembles the human-readable inspection narrative. This is
// pure formatting: it never alters the verdict it is given.
func renderReport(profile *model.InspectionProfile, notes string, findings []model.ComponentFinding, matches []*model.HistoricalMatch, verdict Verdict) string {
	var sb strings.Builder

	sb.WriteString("# Component Inspection Report\n\n")

	// Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "%d component(s) inspected. Final status: **%s** (survey score %.2f, confidence %.2f).\n",
		len(findings), verdict.Status, verdict.Score, verdict.Confidence)
	if notes != "" {
		fmt.Fprintf(&sb, "\nOperator notes: %s\n", notes)
	}
	sb.WriteString("\n")

	// Per-component findings
	sb.WriteString("## Component Findings\n\n")
	for _, f := range findings {
		fmt.Fprintf(&sb, "### %d. %s\n\n", f.Index+1, f.Label)
		if f.Severity != types.SeverityNone {
			fmt.Fprintf(&sb, "Severity: %s. ", profile.SeverityName(f.Severity))
		}
		fmt.Fprintf(&sb, "Score: %.2f\n\n", f.Score)
		fmt.Fprintf(&sb, "%s\n\n", f.Assessment)
	}

	// Historical comparison
	sb.WriteString("## Historical Comparison\n\n")
	if len(matches) == 0 {
		sb.WriteString("No comparable historical surveys were found; the verdict stands on the current findings alone.\n\n")
	} else {
		agree := 0
		for _, m := range matches {
			if m.Status == verdict.Status {
				agree++
			}
		}
		fmt.Fprintf(&sb, "%d similar historical survey(s) retrieved; %d share the current status.\n\n", len(matches), agree)
		for _, m := range matches {
			fmt.Fprintf(&sb, "- %s: status %s, similarity %.3f\n", m.SurveyID, m.Status, m.Similarity)
		}
		sb.WriteString("\n")
	}

	// Recommendations
	sb.WriteString("## Recommendations\n\n")
	switch verdict.Status {
	case types.SurveyStatusFail:
		sb.WriteString("Remove the unit from service. The following components scored at or below the configured fail threshold and require repair or replacement before the unit returns to operation:\n\n")
		for _, f := range findings {
			if f.Score <= profile.Policy.FailThreshold {
				fmt.Fprintf(&sb, "- %s (score %.2f)\n", f.Label, f.Score)
			}
		}
		sb.WriteString("\n")
	case types.SurveyStatusWarn:
		sb.WriteString("The survey score falls in the ambiguous band between the fail and pass thresholds. Escalate to a qualified human inspector before clearing the unit.\n\n")
	default:
		sb.WriteString("All components are within acceptable limits. Continue routine inspection intervals.\n\n")
	}

	// Conclusion
	sb.WriteString("## Conclusion\n\n")
	fmt.Fprintf(&sb, "The unit is assessed as %s with confidence %.2f. The weakest component determines the survey score; see Component Findings for detail.\n",
		verdict.Status, verdict.Confidence)

	return sb.String()
}
