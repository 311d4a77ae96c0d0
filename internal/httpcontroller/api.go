package httpcontroller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amsot/twfcode/internal/wordpress"
)

// Theme cookie values.
const (
	themeCookie = "theme"
	ThemeLight  = "light"
	ThemeDark   = "dark"

	themeCookieMaxAge = 365 * 24 * 60 * 60
)

// SearchResult is one entry of the search API response.
type SearchResult struct {
	Title      string               `json:"title"`
	Slug       string               `json:"slug"`
	URL        string               `json:"url"`
	Difficulty wordpress.Difficulty `json:"difficulty"`
}

// SearchResponse is the search API response body.
type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// apiSearchHandler backs the header search widget.
func (s *Server) apiSearchHandler(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	resp := SearchResponse{Query: query, Results: []SearchResult{}}

	if query != "" {
		snippets, err := s.search(c.Request().Context(), query)
		if err != nil {
			return err
		}
		for i := range snippets {
			sn := &snippets[i]
			resp.Results = append(resp.Results, SearchResult{
				Title:      sn.PlainTitle(),
				Slug:       sn.Slug,
				URL:        sn.Path(),
				Difficulty: sn.ACF.Difficulty.Normalize(),
			})
		}
	}
	resp.Count = len(resp.Results)

	return c.JSON(http.StatusOK, resp)
}

// currentTheme reads the theme cookie, defaulting to light.
func currentTheme(c echo.Context) string {
	cookie, err := c.Cookie(themeCookie)
	if err == nil && cookie.Value == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// themeHandler toggles the theme cookie, or sets the theme form value when
// given, and sends the visitor back to the page they came from.
func (s *Server) themeHandler(c echo.Context) error {
	next := ThemeDark
	if currentTheme(c) == ThemeDark {
		next = ThemeLight
	}
	if v := c.FormValue("theme"); v == ThemeLight || v == ThemeDark {
		next = v
	}

	c.SetCookie(&http.Cookie{
		Name:     themeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   themeCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})

	target := c.FormValue("redirect")
	if target == "" {
		target = c.Request().Referer()
	}
	return c.Redirect(http.StatusSeeOther, safeRedirect(target, c.Request().Host))
}

// safeRedirect returns the local path of target, or "/" when target points
// at another host or is not a usable path.
func safeRedirect(target, host string) string {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		return "/"
	}
	if u.Host != "" && !strings.EqualFold(u.Host, host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, `\`) {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
