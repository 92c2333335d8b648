package editor

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/selectortest"
)

// ConsoleNotifier writes notifications as single tagged lines.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n *ConsoleNotifier) Notify(note Notification) {
	fmt.Fprintf(n.Out, "[%s] %s\n", note.Severity, note.Message)
}

// ConsoleRenderer renders the site list and selector test results as
// plain-text tables. It keeps no state between renders.
type ConsoleRenderer struct {
	Out io.Writer
}

func (r *ConsoleRenderer) ShowSites(sites []*parser.SiteConfig) {
	w := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBASE URL\tENABLED\tMAX PAGES")
	for _, site := range sites {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\n",
			site.ID, site.Name, site.BaseURL, site.Enabled, site.MaxPages)
	}
	w.Flush()
}

func (r *ConsoleRenderer) ShowResults(results map[string]selectortest.FieldResult) {
	w := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tFOUND\tVALUE\tSELECTOR")
	for _, name := range resultOrder(results) {
		res := results[name]
		value := res.Value
		if !res.Found {
			value = res.Error
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", name, res.Found, value, res.Selector)
	}
	w.Flush()
}

// resultOrder lists fields in registry order first, then any remaining
// keys (navigation selectors included) alphabetically.
func resultOrder(results map[string]selectortest.FieldResult) []string {
	order := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, name := range parser.FieldNames {
		if _, ok := results[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(results))
	for name := range results {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}
