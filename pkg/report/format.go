// pkg/report/format.go
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

// FormatText renders the report in the fixed plain-text layout
func FormatText(r *QualityReport) string {
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	banner := strings.Repeat("=", 60)

	add(banner)
	add("DATA WRANGLER QUALITY REPORT")
	add(banner)
	add("Generated: %s", r.Timestamp.Format(timestampLayout))
	add("Total Files: %d", r.TotalFiles)
	add("")

	s := r.Summary
	add("SUMMARY")
	add(strings.Repeat("-", 20))
	add("Total Rows: %s", groupThousands(s.TotalRows))
	add("Total Columns: %s", groupThousands(s.TotalColumns))
	add("Total Duplicates: %s", groupThousands(s.TotalDuplicates))
	add("Files with Issues: %d", s.FilesWithIssues)
	add("")

	if len(s.WarningSummary) > 0 {
		add("WARNING SUMMARY")
		add(strings.Repeat("-", 20))
		for _, wc := range s.WarningSummary {
			add("%s: %d occurrences", wc.Type, wc.Count)
		}
		add("")
	}

	for _, fr := range r.Files {
		add("FILE: %s", fr.Filename)
		add(strings.Repeat("-", 40))
		add("Rows: %s", groupThousands(fr.Rows))
		add("Columns: %s", groupThousands(fr.Columns))
		add("Duplicates: %s", groupThousands(fr.Duplicates))
		if len(fr.Warnings) > 0 {
			add("Warnings:")
			for _, w := range fr.Warnings {
				add("  - %s", w)
			}
		}
		add("")

		add("COLUMN ANALYSIS")
		add(strings.Repeat("-", 20))
		for _, cs := range fr.ColumnInfo {
			add("%s (%s):", cs.Name, cs.Dtype)
			add("  Nulls: %d (%.1f%%)", cs.NullCount, cs.NullPercentage)
			add("  Unique: %d", cs.UniqueCount)
			if cs.Numeric != nil {
				add("  Mean: %.2f", cs.Numeric.Mean)
				if cs.Numeric.Std != nil {
					add("  Std: %.2f", *cs.Numeric.Std)
				} else {
					add("  Std: nan")
				}
			}
			if cs.Text != nil {
				add("  Avg Length: %.1f", cs.Text.AvgLength)
			}
			if cs.Temporal != nil {
				add("  Range: %s to %s (%d days)",
					cs.Temporal.MinDate.Format("2006-01-02"),
					cs.Temporal.MaxDate.Format("2006-01-02"),
					cs.Temporal.RangeDays)
			}
			add("")
		}
	}

	return strings.Join(lines, "\n")
}

// JSON serialises the report tree
func (r *QualityReport) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quality report: %w", err)
	}
	return data, nil
}

// groupThousands formats 1234567 as 1,234,567
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
