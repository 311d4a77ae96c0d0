package snippets

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amsot/twfcode/internal/blocks"
	"github.com/amsot/twfcode/internal/conf"
	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/wordpress"
)

const snippetsJSON = `[{
	"id": 42,
	"date": "2024-03-05T10:00:00",
	"slug": "hola-mundo",
	"title": {"rendered": "Hola &amp; mundo"},
	"acf": {
		"dificultad": "Avanzado",
		"contenido_snippet": [
			{"acf_fc_layout": "bloque_texto", "texto": "<p>Primer párrafo</p>"},
			{"acf_fc_layout": "bloque_video", "url": "https://video.test/1"}
		]
	},
	"nombres_categorias": [{"term_id": 3, "name": "Go", "slug": "go"}]
}]`

// newCMS serves the snippets and categories endpoints and records query strings.
func newCMS(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/codes", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, snippetsJSON)
	})
	mux.HandleFunc("/"+string(wordpress.TaxonomyCategories), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("slug") == "go" {
			_, _ = io.WriteString(w, `[{"id": 3, "name": "Go", "slug": "go"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &queries
}

func testSettings(baseURL string) *conf.Settings {
	return &conf.Settings{CMS: conf.CMSSettings{BaseURL: baseURL, MaxRetries: 1}}
}

func execute(t *testing.T, settings *conf.Settings, args ...string) (string, error) {
	t.Helper()

	cmd := Command(settings)
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestList_JSONLines(t *testing.T) {
	srv, queries := newCMS(t)

	out, err := execute(t, testSettings(srv.URL), "list", "--json", "--limit", "5")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, "hola-mundo", row["slug"])
	assert.Equal(t, "Hola & mundo", row["title"])
	assert.Equal(t, "go", row["category"])
	assert.Equal(t, "avanzado", row["difficulty"])
	assert.Equal(t, "05.03.2024", row["date"])
	assert.Equal(t, "/codes/hola-mundo", row["path"])

	require.Len(t, *queries, 1)
	assert.Equal(t, "per_page=5", (*queries)[0])
}

func TestList_Table(t *testing.T) {
	srv, _ := newCMS(t)

	out, err := execute(t, testSettings(srv.URL), "list", "--search", "hola", "--category", "Go")
	require.NoError(t, err)

	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "hola-mundo")
	assert.Contains(t, out, "Avanzado")
	assert.NotContains(t, out, "╭", "plain output when not writing to a terminal")
}

func TestList_UnknownCategory(t *testing.T) {
	srv, queries := newCMS(t)

	_, err := execute(t, testSettings(srv.URL), "list", "--category", "cobol")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, *queries, "snippets are not listed for an unknown category")
}

func TestShow_PlainText(t *testing.T) {
	srv, _ := newCMS(t)

	out, err := execute(t, testSettings(srv.URL), "show", "Hola-Mundo")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Hola & mundo\n============\n"), out)
	assert.Contains(t, out, "Primer párrafo")
	assert.NotContains(t, out, "<p>")
	assert.NotContains(t, out, "video.test", "unsupported blocks are omitted")
}

func TestShow_HTML(t *testing.T) {
	srv, _ := newCMS(t)

	out, err := execute(t, testSettings(srv.URL), "show", "hola-mundo", "--html")
	require.NoError(t, err)
	assert.Contains(t, out, "<p>Primer párrafo</p>")
	assert.Contains(t, out, `class="block block-text prose"`)
}

func TestShow_RequiresSlug(t *testing.T) {
	_, err := execute(t, testSettings("http://cms.test"), "show")
	assert.Error(t, err)
}

// fakeClient records the query built by list.
type fakeClient struct {
	query wordpress.Query
	terms map[string]*wordpress.Term
}

func (f *fakeClient) ListSnippets(_ context.Context, q wordpress.Query) ([]wordpress.Snippet, error) {
	f.query = q
	return nil, nil
}

func (f *fakeClient) SnippetBySlug(context.Context, string) (*wordpress.Snippet, error) {
	return nil, errors.NotFound("test", "snippet", "")
}

func (f *fakeClient) TermBySlug(_ context.Context, tax wordpress.Taxonomy, slug string) (*wordpress.Term, error) {
	if term, ok := f.terms[slug]; ok {
		return term, nil
	}
	return nil, errors.NotFound("test", string(tax), slug)
}

func TestListQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts listOptions
		want wordpress.Query
	}{
		{"defaults", listOptions{limit: 20}, wordpress.Query{PerPage: 20}},
		{"limit out of range uses client default", listOptions{limit: 500}, wordpress.Query{}},
		{"search is trimmed", listOptions{search: "  go  ", limit: 5}, wordpress.Query{PerPage: 5, Search: "go"}},
		{"category slug is lowercased", listOptions{category: "PHP", limit: 5}, wordpress.Query{PerPage: 5, Categories: []int{4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &fakeClient{terms: map[string]*wordpress.Term{"php": {ID: 4, Slug: "php"}}}
			_, err := list(t.Context(), client, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.query)
		})
	}
}

func TestShow_NotFound(t *testing.T) {
	t.Parallel()

	renderer, err := blocks.NewRenderer(blocks.WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)))
	require.NoError(t, err)

	var out bytes.Buffer
	err = show(t.Context(), &out, &fakeClient{}, renderer, "nope", false)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, out.String())
}

func TestWriteTable_Terminal(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	writeTable(&out, nil, true)
	assert.Contains(t, out.String(), "╭")
	assert.Contains(t, out.String(), "(sin resultados)")
}
