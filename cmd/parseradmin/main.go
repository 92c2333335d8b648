// parseradmin is the command-line panel for managing parser site
// configurations against a running admin API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/editor"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := getEnv("PARSER_ADMIN_API", "http://localhost:8080")

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	client := editor.NewClient(apiURL, 60*time.Second)
	notifier := &editor.ConsoleNotifier{Out: os.Stderr}
	renderer := &editor.ConsoleRenderer{Out: os.Stdout}
	ed := editor.NewEditor(client, notifier, renderer, renderer, &stdinConfirmer{}, logger)

	ctx := context.Background()
	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "list":
		err = ed.Refresh(ctx)
	case "new":
		err = runSave(ctx, ed, "", args)
	case "edit":
		id, rest := takeID(command, args)
		err = runSave(ctx, ed, id, rest)
	case "test":
		err = runTest(ctx, ed, args)
	case "toggle":
		id, _ := takeID(command, args)
		err = ed.Toggle(ctx, id)
	case "delete":
		id, _ := takeID(command, args)
		err = ed.Delete(ctx, id)
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("o", "parser-sites.json", "output file")
		fs.Parse(args)
		err = ed.Export(ctx, *out)
	case "import":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Error: import requires a file argument")
			os.Exit(1)
		}
		err = ed.ImportFile(ctx, args[0])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		os.Exit(1)
	}
}

// runSave opens an editing session (new site when id is empty), applies
// form flags and saves.
func runSave(ctx context.Context, ed *editor.Editor, id string, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	name := fs.String("name", "", "site name")
	baseURL := fs.String("base-url", "", "site base URL")
	userAgent := fs.String("user-agent", "", "user agent override")
	maxPages := fs.String("max-pages", "", "maximum pages per search URL")
	betweenPages := fs.String("wait-pages", "", "wait between pages, ms")
	betweenProps := fs.String("wait-properties", "", "wait between properties, ms")
	disabled := fs.Bool("disabled", false, "create the site disabled")
	var searchURLs, selectors multiFlag
	fs.Var(&searchURLs, "search-url", "search URL (repeatable)")
	fs.Var(&selectors, "selector", "field selector as field=css[@attr][|regex] (repeatable)")
	fs.Parse(args)

	if err := ed.Open(ctx, id); err != nil {
		return err
	}

	form := ed.Form()
	if *name != "" {
		form.Name = *name
	}
	if *baseURL != "" {
		form.BaseURL = *baseURL
	}
	if *userAgent != "" {
		form.UserAgent = *userAgent
	}
	if *maxPages != "" {
		form.MaxPages = *maxPages
	}
	if *betweenPages != "" {
		form.BetweenPages = *betweenPages
	}
	if *betweenProps != "" {
		form.BetweenProperties = *betweenProps
	}
	if *disabled {
		form.Enabled = false
	}
	if len(searchURLs) > 0 {
		form.SearchURLs = searchURLs
	}
	for _, spec := range selectors {
		if err := applySelectorFlag(form, spec); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	return ed.Save(ctx)
}

func runTest(ctx context.Context, ed *editor.Editor, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	id := fs.String("id", "", "test an existing site's selectors")
	testURL := fs.String("url", "", "URL to test against")
	render := fs.Bool("render", false, "render the page in headless Chrome")
	var selectors multiFlag
	fs.Var(&selectors, "selector", "field selector as field=css[@attr][|regex] (repeatable)")
	fs.Parse(args)

	if err := ed.Open(ctx, *id); err != nil {
		return err
	}
	for _, spec := range selectors {
		if err := applySelectorFlag(ed.Form(), spec); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	return ed.TestSelectors(ctx, *testURL, *render)
}

// applySelectorFlag parses "field=css[@attr][|regex]" into a selector row.
// The navigation selectors propertyLinks and nextPageButton take just the
// CSS part.
func applySelectorFlag(form *editor.Form, spec string) error {
	field, rest, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("invalid selector %q, want field=css[@attr][|regex]", spec)
	}
	switch field {
	case "propertyLinks":
		form.PropertyLinks = rest
		return nil
	case "nextPageButton":
		form.NextPageButton = rest
		return nil
	}

	row, exists := form.Selectors[field]
	if !exists {
		return fmt.Errorf("unknown field %q", field)
	}
	css := rest
	if css, rest, ok = strings.Cut(css, "|"); ok {
		row.Regex = rest
	}
	if selector, attr, ok := strings.Cut(css, "@"); ok {
		row.Selector = selector
		row.Attribute = attr
	} else {
		row.Selector = css
	}
	form.Selectors[field] = row
	return nil
}

func takeID(command string, args []string) (string, []string) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(os.Stderr, "Error: %s requires a site ID argument\n", command)
		os.Exit(1)
	}
	return args[0], args[1:]
}

// multiFlag collects repeated flag values.
type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

// stdinConfirmer asks on the terminal before destructive actions.
type stdinConfirmer struct{}

func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printUsage() {
	fmt.Println("parseradmin - Parser site configuration panel")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  parseradmin <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list       List configured parser sites")
	fmt.Println("  new        Create a site from form flags")
	fmt.Println("  edit <id>  Update a site, keeping unset fields")
	fmt.Println("  test       Test selectors against a live URL")
	fmt.Println("  toggle <id>  Enable or disable a site")
	fmt.Println("  delete <id>  Delete a site (asks for confirmation)")
	fmt.Println("  export     Download the full configuration")
	fmt.Println("  import <file>  Upload a configuration file")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  PARSER_ADMIN_API  Admin API base URL (default: http://localhost:8080)")
}
