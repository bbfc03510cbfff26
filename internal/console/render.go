package console

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/reports"
)

func printTable(w io.Writer, t reports.Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(no records)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Header, "\t")))
	for _, r := range t.Rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// printFields renders label/value pairs, one per line.
func printFields(w io.Writer, kv ...string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(tw, "%s:\t%s\n", kv[i], kv[i+1])
	}
	return tw.Flush()
}

// Describe renders err for the operator, listing per-field validation messages.
func Describe(err error) string {
	var ae *apperr.Error
	if !errors.As(err, &ae) || len(ae.Fields) == 0 {
		return err.Error()
	}
	keys := make([]string, 0, len(ae.Fields))
	for k := range ae.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(err.Error())
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, ae.Fields[k])
	}
	return b.String()
}
