package httpcontroller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amsot/twfcode/internal/blocks"
	"github.com/amsot/twfcode/internal/wordpress"
)

// Zoom actions accepted by the image view.
const (
	zoomIn  = "in"
	zoomOut = "out"
)

// snippetLinks points image blocks at the image view and code blocks at their raw source.
func snippetLinks(s *wordpress.Snippet) blocks.Links {
	base := s.Path()
	return blocks.Links{
		ImageHref: func(index int) string { return imagePath(base, index) },
		CodeHref:  func(index int) string { return fmt.Sprintf("%s/blocks/%d/raw", base, index) },
	}
}

func imagePath(base string, index int) string {
	return fmt.Sprintf("%s/images/%d", base, index)
}

func zoomHref(path string, scale float64, action string) string {
	return path + "?scale=" + strconv.FormatFloat(scale, 'f', -1, 64) + "&action=" + action
}

// blockIndex parses the index route parameter.
func blockIndex(c echo.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	return index, err == nil && index >= 0
}

// imageHandler serves the enlarged view of one image block. The scale
// query parameter carries the current zoom and action applies one step.
func (s *Server) imageHandler(c echo.Context) error {
	snippet, err := s.snippet(c)
	if err != nil {
		return err
	}
	index, ok := blockIndex(c)
	if !ok {
		return notFound("image", c.Param("index"))
	}
	img, url, ok := blocks.ImageAt(snippet.ACF.Blocks, index)
	if !ok {
		return notFound("image", c.Param("index"))
	}

	scale := blocks.ParseScale(c.QueryParam("scale"))
	switch c.QueryParam("action") {
	case zoomIn:
		scale = blocks.ZoomIn(scale)
	case zoomOut:
		scale = blocks.ZoomOut(scale)
	}

	path := imagePath(snippet.Path(), index)
	caption := strings.TrimSpace(img.Caption)
	if caption == "" {
		caption = strings.TrimSpace(img.Image.Caption)
	}

	view := lightboxView{
		Title:       snippet.PlainTitle(),
		Index:       index,
		URL:         url,
		Alt:         blocks.AltText(img.Image, img.Caption),
		Caption:     caption,
		Percent:     blocks.ScalePercent(scale),
		ZoomInHref:  zoomHref(path, scale, zoomIn),
		ZoomOutHref: zoomHref(path, scale, zoomOut),
		CanZoomIn:   scale < blocks.MaxScale,
		CanZoomOut:  scale > blocks.MinScale,
		CloseHref:   fmt.Sprintf("%s#block-%d", snippet.Path(), index),
	}
	return s.renderPage(c, http.StatusOK, "lightbox", view.Title, view)
}

// rawBlockHandler serves the normalized source of one code block as plain text.
func (s *Server) rawBlockHandler(c echo.Context) error {
	snippet, err := s.snippet(c)
	if err != nil {
		return err
	}
	index, ok := blockIndex(c)
	if !ok {
		return notFound("code block", c.Param("index"))
	}
	code, ok := blocks.CodeAt(snippet.ACF.Blocks, index)
	if !ok {
		return notFound("code block", c.Param("index"))
	}

	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	return c.String(http.StatusOK, blocks.NormalizeSource(code.Source))
}
