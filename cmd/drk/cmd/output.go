package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	apiclient "github.com/mkessler/deal-ranker/internal/api/client"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printRankedTable(items []apiclient.RankedItem) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("#\tTITLE\tPRICE\tSCORE\tDEAL\tSEMANTIC\tRECOMMENDATION\n")
	for i := range items {
		item := &items[i]
		semantic := "-"
		if item.SemanticScore != nil {
			semantic = fmt.Sprintf("%.0f", *item.SemanticScore)
		}
		tw.writef("%d\t%s\t$%.2f\t%.1f\t%.0f\t%s\t%s\n",
			i+1,
			truncate(item.Listing.Title, 40),
			item.Listing.Price,
			item.FinalScore,
			item.Deal.Overall,
			semantic,
			item.Deal.Recommendation,
		)
	}
	return tw.finish()
}

func printRankedDetail(items []apiclient.RankedItem) error {
	tw := newTabWriter(os.Stdout)
	for i := range items {
		item := &items[i]
		tw.writef("%d. %s\n", i+1, item.Listing.Title)
		tw.writef("\tPrice:\t$%.2f %s\n", item.Listing.Price, item.Listing.Currency)
		tw.writef("\tScore:\t%.1f\n", item.FinalScore)
		if item.Explanation.Semantic != "" {
			tw.writef("\tRelevance:\t%s\n", item.Explanation.Semantic)
		}
		tw.writef("\tDeal:\t%s\n", item.Explanation.Deal)
		tw.writef("\tOverall:\t%s\n", item.Explanation.Overall)
		if item.Listing.ItemURL != "" {
			tw.writef("\tURL:\t%s\n", item.Listing.ItemURL)
		}
	}
	return tw.finish()
}

func printBaselinesTable(b *apiclient.Baselines) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("CATEGORY\tAVG PRICE\n")
	for _, category := range sortedKeys(b.Averages) {
		tw.writef("%s\t$%.2f\n", category, b.Averages[category])
	}
	return tw.finish()
}

func printQuota(q *apiclient.Quota) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Daily limit:\t%d\n", q.DailyLimit)
	tw.writef("Used:\t%d\n", q.DailyUsed)
	tw.writef("Remaining:\t%d\n", q.Remaining)
	tw.writef("Resets at:\t%s\n", q.ResetAt.Format("2006-01-02 15:04:05 MST"))
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
