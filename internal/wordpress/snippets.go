package wordpress

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
)

// Default page sizes for the derived listings.
const (
	DefaultRelatedLimit = 4
	DefaultSearchLimit  = 9
)

// ListSnippets returns the snippets matching q, newest first.
func (c *Client) ListSnippets(ctx context.Context, q Query) ([]Snippet, error) {
	var snippets []Snippet
	if err := c.get(ctx, "codes", q.values(c.cfg.PerPage), &snippets); err != nil {
		return nil, err
	}
	return snippets, nil
}

// SnippetBySlug returns the snippet with the given slug.
func (c *Client) SnippetBySlug(ctx context.Context, slug string) (*Snippet, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.NotFound(componentName, "snippet", slug)
	}
	snippets, err := c.ListSnippets(ctx, Query{Slug: slug})
	if err != nil {
		return nil, err
	}
	if len(snippets) == 0 {
		return nil, errors.NotFound(componentName, "snippet", slug)
	}
	return &snippets[0], nil
}

// RelatedSnippets returns up to limit snippets sharing a category with s,
// excluding s itself. A snippet without categories has no related entries.
func (c *Client) RelatedSnippets(ctx context.Context, s *Snippet, limit int) ([]Snippet, error) {
	if s == nil {
		return nil, nil
	}
	ids := s.Categories.IDs()
	if len(ids) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	return c.ListSnippets(ctx, Query{Categories: ids, PerPage: limit, Exclude: []int{s.ID}})
}

// Search runs a full-text search. A blank term returns nothing without a request.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Snippet, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	c.log.Debug("searching snippets", logger.String("term", term), logger.Int("limit", limit))
	return c.ListSnippets(ctx, Query{Search: term, PerPage: limit})
}

// Terms returns the non-empty terms of a taxonomy.
func (c *Client) Terms(ctx context.Context, tax Taxonomy) ([]Term, error) {
	params := url.Values{}
	params.Set("per_page", "100")
	params.Set("hide_empty", "true")

	var terms []Term
	if err := c.get(ctx, string(tax), params, &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

// Categories returns the non-empty snippet categories.
func (c *Client) Categories(ctx context.Context) ([]Term, error) {
	return c.Terms(ctx, TaxonomyCategories)
}

// Tags returns the non-empty snippet tags.
func (c *Client) Tags(ctx context.Context) ([]Term, error) {
	return c.Terms(ctx, TaxonomyTags)
}

// TermBySlug returns the term of tax with the given slug.
func (c *Client) TermBySlug(ctx context.Context, tax Taxonomy, slug string) (*Term, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.NotFound(componentName, string(tax), slug)
	}
	params := url.Values{}
	params.Set("slug", slug)

	var terms []Term
	if err := c.get(ctx, string(tax), params, &terms); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, errors.NotFound(componentName, string(tax), slug)
	}
	return &terms[0], nil
}

// Users returns the site authors.
func (c *Client) Users(ctx context.Context) ([]Author, error) {
	params := url.Values{}
	params.Set("per_page", "100")

	var users []user
	if err := c.get(ctx, "users", params, &users); err != nil {
		return nil, err
	}
	authors := make([]Author, len(users))
	for i, u := range users {
		authors[i] = u.author()
	}
	return authors, nil
}

// UserByID returns one author.
func (c *Client) UserByID(ctx context.Context, id int) (*Author, error) {
	if id <= 0 {
		return nil, errors.NotFound(componentName, "user", strconv.Itoa(id))
	}
	var u user
	if err := c.get(ctx, "users/"+strconv.Itoa(id), nil, &u); err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, errors.NotFound(componentName, "user", strconv.Itoa(id))
	}
	a := u.author()
	return &a, nil
}

// SnippetsByTerm lists the snippets filed under term.
func (c *Client) SnippetsByTerm(ctx context.Context, tax Taxonomy, term *Term) ([]Snippet, error) {
	if term == nil {
		return nil, nil
	}
	q := Query{}
	switch tax {
	case TaxonomyTags:
		q.Tags = []int{term.Key()}
	default:
		q.Categories = []int{term.Key()}
	}
	return c.ListSnippets(ctx, q)
}

// SnippetsByAuthor lists the snippets written by the author with id.
func (c *Client) SnippetsByAuthor(ctx context.Context, id int) ([]Snippet, error) {
	return c.ListSnippets(ctx, Query{Author: id})
}
