package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
	"github.com/joseph-ayodele/rfp-desk/internal/pricing"
)

// consoleSink prints the activity log as the run progresses.
type consoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleSink(w io.Writer) *consoleSink { return &consoleSink{w: w} }

func (c *consoleSink) Emit(e entity.LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s  %-14s %-7s %s\n", e.Timestamp.Format("15:04:05"), e.Stage, strings.ToUpper(string(e.Severity)), e.Message)
}

func printQuote(w io.Writer, s pipeline.Snapshot) {
	if s.Extract != nil {
		fmt.Fprintf(w, "\nClient:   %s\nDeadline: %s\nContact:  %s\n", s.Extract.ClientName, s.Extract.SubmissionDeadline, s.Extract.ContactEmail)
	}
	if s.Pricing != nil {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Description\tQty\tUnit\tTotal\t")
		for _, li := range s.Pricing.LineItems {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", li.Description, li.Quantity, pricing.FormatMoney(li.UnitPrice), pricing.FormatMoney(li.Total))
		}
		fmt.Fprintf(tw, "Total\t\t\t%s\t\n", pricing.FormatMoney(s.Pricing.TotalCost))
		_ = tw.Flush()
	}
	if len(s.Matches) > 0 {
		fmt.Fprintf(w, "\nIntegrity Index: %d (%s)\n", s.Integrity.Index, s.Integrity.Band)
	}
	if s.Draft != "" {
		fmt.Fprintf(w, "\n%s\n", s.Draft)
	}
}
