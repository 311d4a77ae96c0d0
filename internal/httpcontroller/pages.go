package httpcontroller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
	"github.com/amsot/twfcode/internal/wordpress"
)

// degrade logs a failed optional fetch; the page renders without that section.
func degrade(log logger.Logger, what string, err error) {
	if err == nil || errors.IsCategory(err, errors.CategoryCancellation) {
		return
	}
	log.Warn("content section unavailable", logger.String("section", what), logger.Error(err))
}

// notFound builds the not-found error for a resource served by this package.
func notFound(resource, key string) error {
	return errors.NotFound(componentName, resource, key)
}

func (s *Server) homeHandler(c echo.Context) error {
	ctx := c.Request().Context()
	log := s.requestLogger(c)

	var view homeView
	var g errgroup.Group
	g.Go(func() error {
		latest, err := s.Content.ListSnippets(ctx, wordpress.Query{PerPage: s.Settings.Pages.HomeLimit})
		degrade(log, "latest", err)
		view.Latest = snippetCards(latest)
		return nil
	})
	g.Go(func() error {
		categories, err := s.Content.Terms(ctx, wordpress.TaxonomyCategories)
		degrade(log, "categories", err)
		view.Categories = termsView{Taxonomy: wordpress.TaxonomyCategories, Terms: categories}
		return nil
	})
	_ = g.Wait()

	return s.renderPage(c, http.StatusOK, "home", "", view)
}

func (s *Server) archiveHandler(c echo.Context) error {
	snippets, err := s.Content.ListSnippets(c.Request().Context(), wordpress.Query{})
	degrade(s.requestLogger(c), "archive", err)
	return s.renderPage(c, http.StatusOK, "archive", "Todos los snippets", archiveView{Snippets: snippetCards(snippets)})
}

// snippet loads the snippet named by the slug route parameter.
func (s *Server) snippet(c echo.Context) (*wordpress.Snippet, error) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" || reservedSlugs[slug] {
		return nil, notFound("snippet", slug)
	}
	return s.Content.SnippetBySlug(c.Request().Context(), slug)
}

func (s *Server) articleHandler(c echo.Context) error {
	snippet, err := s.snippet(c)
	if err != nil {
		return err
	}

	related, err := s.Content.RelatedSnippets(c.Request().Context(), snippet, s.Settings.Pages.RelatedLimit)
	degrade(s.requestLogger(c), "related", err)

	view := articleView{
		Title:      snippet.PlainTitle(),
		URL:        s.absoluteURL(snippet.Path()),
		Date:       snippet.Date,
		Difficulty: snippet.ACF.Difficulty.Normalize(),
		Image:      snippet.FeaturedImageURL(),
		Author:     snippet.Author,
		Tags:       termsView{Taxonomy: wordpress.TaxonomyTags, Terms: snippet.Tags},
		Body:       s.Blocks.RenderHTML(snippet.ACF.Blocks, snippetLinks(snippet)),
		Related:    snippetCards(related),
	}
	if cat, ok := snippet.PrimaryCategory(); ok {
		view.Category = &cat
	}

	return s.renderPage(c, http.StatusOK, "article", view.Title, view)
}

func (s *Server) termsHandler(tax wordpress.Taxonomy) echo.HandlerFunc {
	heading := taxonomyHeading(tax)
	return func(c echo.Context) error {
		terms, err := s.Content.Terms(c.Request().Context(), tax)
		degrade(s.requestLogger(c), string(tax), err)
		return s.renderPage(c, http.StatusOK, "terms", heading, termsView{
			Heading:  heading,
			Taxonomy: tax,
			Terms:    terms,
		})
	}
}

func (s *Server) termHandler(tax wordpress.Taxonomy) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))

		var term *wordpress.Term
		err := notFound(string(tax), slug)
		if slug != "" && !reservedSlugs[slug] {
			term, err = s.Content.TermBySlug(ctx, tax, slug)
		}
		if errors.IsNotFound(err) {
			return s.termNotFound(c, tax, slug)
		}
		if err != nil {
			return err
		}

		snippets, err := s.Content.SnippetsByTerm(ctx, tax, term)
		degrade(s.requestLogger(c), "term snippets", err)

		name := plainText(term.Name)
		return s.renderPage(c, http.StatusOK, "term", name, termView{
			Heading:  taxonomyHeading(tax),
			Taxonomy: tax,
			Term:     *term,
			Snippets: snippetCards(snippets),
		})
	}
}

// termNotFound renders the 404 page with the closest existing terms.
func (s *Server) termNotFound(c echo.Context, tax wordpress.Taxonomy, slug string) error {
	terms, err := s.Content.Terms(c.Request().Context(), tax)
	degrade(s.requestLogger(c), "suggestions", err)

	return s.renderPage(c, http.StatusNotFound, "error", statusHeading(http.StatusNotFound), errorView{
		Status:      http.StatusNotFound,
		Heading:     statusHeading(http.StatusNotFound),
		Message:     "No existe ninguna sección llamada «" + slug + "».",
		Suggestions: termsView{Taxonomy: tax, Terms: wordpress.SuggestTerms(terms, slug)},
	})
}

func (s *Server) authorHandler(c echo.Context) error {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return notFound("author", raw)
	}

	log := s.requestLogger(c)
	var (
		author   *wordpress.Author
		snippets []wordpress.Snippet
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		author, err = s.Content.UserByID(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		snippets, err = s.Content.SnippetsByAuthor(ctx, id)
		degrade(log, "author snippets", err)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return s.renderPage(c, http.StatusOK, "author", author.Name, authorView{
		Author:   *author,
		Snippets: snippetCards(snippets),
	})
}

func (s *Server) searchHandler(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	view := searchView{Query: query, Searched: query != ""}

	if view.Searched {
		results, err := s.search(c.Request().Context(), query)
		degrade(s.requestLogger(c), "search", err)
		view.Results = snippetCards(results)
	}

	title := "Buscar"
	if view.Searched {
		title = "Resultados para «" + query + "»"
	}
	return s.renderPage(c, http.StatusOK, "search", title, view)
}

func (s *Server) search(ctx context.Context, query string) ([]wordpress.Snippet, error) {
	limit := s.Settings.Search.PerPage
	if limit <= 0 {
		limit = wordpress.DefaultSearchLimit
	}
	return s.Content.Search(ctx, query, limit)
}

func taxonomyHeading(tax wordpress.Taxonomy) string {
	if tax == wordpress.TaxonomyTags {
		return "Tags"
	}
	return "Categorías"
}
