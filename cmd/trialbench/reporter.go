package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/trialbench/trialbench/internal/catalog"
	"github.com/trialbench/trialbench/internal/models"
	"github.com/trialbench/trialbench/internal/statistics"
)

// newTable creates a tablewriter with the workbench's plain styling.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// subgroupHRs collects the point estimates across the forest-plot rows for
// the heterogeneity summary line.
func subgroupHRs(rec *models.TrialDataRecord) []float64 {
	hrs := make([]float64, 0, len(rec.HazardRatios))
	for _, row := range rec.HazardRatios {
		hrs = append(hrs, row.HazardRatio)
	}
	return hrs
}

func formatCI(value, lower, upper float64) string {
	return fmt.Sprintf("%.2f (%.2f-%.2f)", value, lower, upper)
}

func formatP(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

// printExampleSummary renders the headline numbers of a catalog example.
func printExampleSummary(out io.Writer, ex *catalog.Example) {
	s, err := ex.Summary()
	if err != nil {
		fmt.Fprintf(out, "no summary available for %s: %v\n", ex.ID, err)
		return
	}

	table := newTable(out, []string{"Metric", "Value"})
	_ = table.Append([]string{"Trial", s.TrialName})
	_ = table.Append([]string{"Primary outcome", s.PrimaryOutcome})
	_ = table.Append([]string{"Hazard ratio", formatCI(s.HazardRatio, s.CILower, s.CIUpper)})
	_ = table.Append([]string{"P value", formatP(s.PValue)})
	_ = table.Append([]string{"Sample size", fmt.Sprintf("%d", s.SampleSize)})
	_ = table.Render()
}

// printRecord renders a synthetic trial record as terminal tables.
func printRecord(out io.Writer, rec *models.TrialDataRecord) {
	fmt.Fprintf(out, "%s\n\n", heading("Emulated trial: "+rec.DisplayName))

	cohort := newTable(out, []string{"Cohort stage", "Patients"})
	_ = cohort.Append([]string{"Source records", fmt.Sprintf("%d", rec.Cohort.Initial)})
	_ = cohort.Append([]string{"Eligible", fmt.Sprintf("%d", rec.Cohort.Eligible)})
	_ = cohort.Append([]string{"Treatment arm", fmt.Sprintf("%d", rec.Cohort.Treatment)})
	_ = cohort.Append([]string{"Control arm", fmt.Sprintf("%d", rec.Cohort.Control)})
	_ = cohort.Render()
	fmt.Fprintln(out)

	subgroups := newTable(out, []string{"Subgroup", "HR (95% CI)", "P value", ""})
	for _, row := range rec.HazardRatios {
		marker := ""
		if row.Significant {
			marker = good("*")
		}
		_ = subgroups.Append([]string{
			row.Subgroup,
			formatCI(row.HazardRatio, row.CILower, row.CIUpper),
			formatP(row.PValue),
			marker,
		})
	}
	_ = subgroups.Render()
	fmt.Fprintln(out)

	hrs := subgroupHRs(rec)
	fmt.Fprintf(out, "Subgroup HR mean %.2f, SD %.2f\n\n", statistics.Mean(hrs), statistics.StdDev(hrs))

	v := rec.Validation
	verdict := bad("not favorable")
	if v.Favorable {
		verdict = good("favorable")
	}
	fmt.Fprintf(out, "%s %s, overall HR %s\n%s\n",
		label("Validation:"), verdict,
		formatCI(v.OverallHazardRatio, v.CILower, v.CIUpper),
		v.Conclusion)
}

// FormatRecordMarkdown renders a synthetic trial record as a markdown report
// suitable for pasting into an issue or notebook.
func FormatRecordMarkdown(rec *models.TrialDataRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## Emulated trial: %s\n\n", rec.DisplayName))

	verdict := "❌ Not favorable"
	if rec.Validation.Favorable {
		verdict = "✅ Favorable"
	}
	b.WriteString(fmt.Sprintf("**Verdict:** %s | **Overall HR:** %s | **Records:** %d\n\n",
		verdict,
		formatCI(rec.Validation.OverallHazardRatio, rec.Validation.CILower, rec.Validation.CIUpper),
		rec.RecordCount))

	b.WriteString(fmt.Sprintf("- **Source records:** %d\n", rec.Cohort.Initial))
	b.WriteString(fmt.Sprintf("- **Eligible:** %d\n", rec.Cohort.Eligible))
	b.WriteString(fmt.Sprintf("- **Treatment/Control:** %d / %d\n", rec.Cohort.Treatment, rec.Cohort.Control))
	b.WriteString(fmt.Sprintf("- **Propensity overlap:** %.3f (effective sample ratio %.3f)\n\n",
		rec.Propensity.Overlap, rec.Propensity.EffectiveSampleRatio))

	if n := len(rec.Survival); n > 0 {
		last := rec.Survival[n-1]
		b.WriteString(fmt.Sprintf("At month %d: treatment survival %.3f, control survival %.3f\n\n",
			last.Month, last.Treatment, last.Control))
	}

	b.WriteString("### Subgroups\n\n")
	b.WriteString("| Subgroup | HR (95% CI) | P value | Significant |\n")
	b.WriteString("|----------|-------------|---------|-------------|\n")
	for _, row := range rec.HazardRatios {
		marker := ""
		if row.Significant {
			marker = "yes"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			row.Subgroup,
			formatCI(row.HazardRatio, row.CILower, row.CIUpper),
			formatP(row.PValue),
			marker))
	}
	hrs := subgroupHRs(rec)
	b.WriteString(fmt.Sprintf("\nSubgroup HR mean %.2f, SD %.2f\n", statistics.Mean(hrs), statistics.StdDev(hrs)))

	b.WriteString("\n---\n\n")
	b.WriteString(rec.Validation.Conclusion)
	b.WriteString("\n")

	return b.String()
}
