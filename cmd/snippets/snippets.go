// Package snippets implements commands that read snippets from the CMS.
package snippets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/k3a/html2text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/amsot/twfcode/internal/blocks"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/wordpress"
)

const dateLayout = "02.01.2006"

// Client is the part of the CMS client used by these commands.
type Client interface {
	ListSnippets(ctx context.Context, q wordpress.Query) ([]wordpress.Snippet, error)
	SnippetBySlug(ctx context.Context, slug string) (*wordpress.Snippet, error)
	TermBySlug(ctx context.Context, tax wordpress.Taxonomy, slug string) (*wordpress.Term, error)
}

// Command creates the snippets command with its list and show subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Inspect snippets published in the CMS",
	}
	cmd.AddCommand(listCommand(settings), showCommand(settings))
	return cmd
}

// newClient builds a CMS client that logs errors only, to stderr, so command output stays clean.
func newClient(settings *conf.Settings, stderr io.Writer) (*wordpress.Client, error) {
	log := logger.NewSlogLogger(stderr, logger.LogLevelError, nil).Module("cms")
	return wordpress.NewClient(wordpress.ConfigFromSettings(&settings.CMS), wordpress.WithLogger(log))
}

type listOptions struct {
	search   string
	category string
	limit    int
	json     bool
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snippets, newest first",
		Long:  "List snippets, optionally filtered by a search term and a category slug.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer client.Close()

			snippets, err := list(cmd.Context(), client, opts)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSONLines(cmd.OutOrStdout(), snippets)
			}
			writeTable(cmd.OutOrStdout(), snippets, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Full-text search term")
	cmd.Flags().StringVar(&opts.category, "category", "", "Category slug")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum number of snippets (1-100)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print one JSON object per line")

	return cmd
}

// list builds a single query from the options. An unknown category is a not-found error.
func list(ctx context.Context, client Client, opts listOptions) ([]wordpress.Snippet, error) {
	q := wordpress.Query{
		PerPage: opts.limit,
		Search:  strings.TrimSpace(opts.search),
	}
	if opts.limit <= 0 || opts.limit > 100 {
		q.PerPage = 0
	}

	if slug := strings.TrimSpace(opts.category); slug != "" {
		term, err := client.TermBySlug(ctx, wordpress.TaxonomyCategories, strings.ToLower(slug))
		if err != nil {
			return nil, err
		}
		q.Categories = []int{term.Key()}
	}

	return client.ListSnippets(ctx, q)
}

// listRow is the JSON lines representation of a snippet.
type listRow struct {
	ID         int    `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Date       string `json:"date,omitempty"`
	Path       string `json:"path"`
}

func newListRow(s *wordpress.Snippet) listRow {
	row := listRow{
		ID:         s.ID,
		Slug:       s.Slug,
		Title:      s.PlainTitle(),
		Difficulty: string(s.ACF.Difficulty.Normalize()),
		Path:       s.Path(),
	}
	if cat, ok := s.PrimaryCategory(); ok {
		row.Category = cat.Slug
	}
	if !s.Date.IsZero() {
		row.Date = s.Date.Format(dateLayout)
	}
	return row
}

func writeJSONLines(w io.Writer, snippets []wordpress.Snippet) error {
	enc := json.NewEncoder(w)
	for i := range snippets {
		if err := enc.Encode(newListRow(&snippets[i])); err != nil {
			return err
		}
	}
	return nil
}

// writeTable renders the snippet table, with borders only when writing to a terminal.
func writeTable(w io.Writer, snippets []wordpress.Snippet, terminal bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if terminal {
		tw.SetStyle(table.StyleRounded)
		tw.Style().Options.SeparateHeader = true
	} else {
		tw.SetStyle(table.StyleDefault)
		tw.Style().Options = table.OptionsNoBordersAndSeparators
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: 60},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignCenter},
		{Number: 5, Align: text.AlignRight},
	})
	tw.AppendHeader(table.Row{"Slug", "Título", "Categoría", "Dificultad", "Fecha"})

	for i := range snippets {
		row := newListRow(&snippets[i])
		category := "-"
		if cat, ok := snippets[i].PrimaryCategory(); ok {
			category = html2text.HTML2Text(cat.Name)
		}
		tw.AppendRow(table.Row{row.Slug, row.Title, category, snippets[i].ACF.Difficulty.Label(), row.Date})
	}
	if len(snippets) == 0 {
		tw.AppendRow(table.Row{"-", "(sin resultados)", "-", "-", "-"})
	}

	_ = tw.Render()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func showCommand(settings *conf.Settings) *cobra.Command {
	var rawHTML bool

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Print a snippet body",
		Long:  "Render the content blocks of a snippet and print them as plain text, or as HTML with --html.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer client.Close()

			log := logger.NewSlogLogger(cmd.ErrOrStderr(), logger.LogLevelError, nil).Module("blocks")
			renderer, err := blocks.NewRenderer(blocks.WithLogger(log))
			if err != nil {
				return err
			}
			return show(cmd.Context(), cmd.OutOrStdout(), client, renderer, args[0], rawHTML)
		},
	}

	cmd.Flags().BoolVar(&rawHTML, "html", false, "Print the rendered HTML instead of plain text")

	return cmd
}

func show(ctx context.Context, w io.Writer, client Client, renderer *blocks.Renderer, slug string, rawHTML bool) error {
	snippet, err := client.SnippetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return err
	}

	body := string(renderer.RenderHTML(snippet.ACF.Blocks, blocks.Links{}))
	if rawHTML {
		_, err = fmt.Fprintln(w, body)
		return err
	}

	title := snippet.PlainTitle()
	_, err = fmt.Fprintf(w, "%s\n%s\n\n%s\n", title, strings.Repeat("=", len([]rune(title))),
		strings.TrimSpace(html2text.HTML2Text(body)))
	return err
}
