package wordpress

import (
	"net/url"
	"strconv"
	"strings"
)

// Query filters a snippet listing. Zero fields are omitted from the request.
type Query struct {
	PerPage    int
	Page       int
	Search     string
	Slug       string
	Categories []int
	Tags       []int
	Author     int
	Exclude    []int
}

// values encodes the query; perPage is used when q.PerPage is unset.
func (q Query) values(perPage int) url.Values {
	v := url.Values{}
	if q.PerPage > 0 {
		perPage = q.PerPage
	}
	v.Set("per_page", strconv.Itoa(perPage))
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Slug != "" {
		v.Set("slug", q.Slug)
	}
	if len(q.Categories) > 0 {
		v.Set(string(TaxonomyCategories), joinInts(q.Categories))
	}
	if len(q.Tags) > 0 {
		v.Set(string(TaxonomyTags), joinInts(q.Tags))
	}
	if q.Author > 0 {
		v.Set("author", strconv.Itoa(q.Author))
	}
	if len(q.Exclude) > 0 {
		v.Set("exclude", joinInts(q.Exclude))
	}
	return v
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
