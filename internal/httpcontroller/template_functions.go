// internal/httpcontroller/template_functions.go
package httpcontroller

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/k3a/html2text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/amsot/twfcode/internal/blocks"
	"github.com/amsot/twfcode/internal/wordpress"
)

// displayDateLayout renders dates as dd.MM.yyyy.
const displayDateLayout = "02.01.2006"

// GetTemplateFunctions returns a map of functions that can be used in templates
func (s *Server) GetTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"sub":           subFunc,
		"add":           addFunc,
		"upper":         cases.Upper(language.Spanish).String,
		"title":         cases.Title(language.Spanish).String,
		"plain":         plainText,
		"date":          formatDate,
		"year":          func() int { return time.Now().Year() },
		"icon":          blocks.Icon,
		"absURL":        s.absoluteURL,
		"twitterShare":  twitterShareURL,
		"linkedinShare": linkedinShareURL,
		"termPath":      termPath,
		"RenderContent": s.RenderContent,
	}
}

// simple math functions
func subFunc(a, b int) int { return a - b }
func addFunc(a, b int) int { return a + b }

// plainText strips markup and decodes entities, for titles and term names.
func plainText(s string) string {
	return strings.TrimSpace(html2text.HTML2Text(s))
}

// formatDate formats a publication date, or returns "" for an unknown date.
func formatDate(d wordpress.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(displayDateLayout)
}

// absoluteURL joins a site path onto the configured public base URL.
func (s *Server) absoluteURL(path string) string {
	return strings.TrimRight(s.Settings.Site.BaseURL, "/") + path
}

// twitterShareURL returns the tweet intent URL for a page.
func twitterShareURL(text, pageURL string) string {
	q := url.Values{}
	q.Set("text", text)
	q.Set("url", pageURL)
	return "https://twitter.com/intent/tweet?" + q.Encode()
}

// linkedinShareURL returns the LinkedIn share URL for a page.
func linkedinShareURL(pageURL string) string {
	return "https://www.linkedin.com/sharing/share-offsite/?url=" + url.QueryEscape(pageURL)
}

// termPath returns the site path of a term page.
func termPath(tax wordpress.Taxonomy, slug string) string {
	switch tax {
	case wordpress.TaxonomyTags:
		return "/tag/" + slug
	default:
		return "/category/" + slug
	}
}
