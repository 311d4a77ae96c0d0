package blocks

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/amsot/twfcode/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Node is the rendered form of one recognized block.
type Node struct {
	Kind  Kind
	Index int // position of the block in the input sequence
	HTML  template.HTML
}

// Observer receives per-block render outcomes, e.g. for metrics.
type Observer interface {
	BlockRendered(kind string)
	BlockDropped(layout string)
}

// Links builds per-block URLs for a rendered body. Nil funcs produce no link.
type Links struct {
	ImageHref func(index int) string // enlarged view for an image block
	CodeHref  func(index int) string // raw source for a code block
}

// Renderer turns block sequences into HTML nodes. It is immutable after
// construction and safe for concurrent use.
type Renderer struct {
	tmpl     *template.Template
	log      logger.Logger
	observer Observer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for dropped-block diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithObserver registers an observer for render outcomes.
func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observer = o }
}

// NewRenderer parses the embedded block templates.
func NewRenderer(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("blocks").
		Funcs(template.FuncMap{"icon": Icon}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse block templates: %w", err)
	}

	r := &Renderer{tmpl: tmpl, log: logger.Global().Module("blocks")}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render maps blocks to nodes in order, omitting anything unrecognized.
func (r *Renderer) Render(blocks []Block) []Node {
	return r.RenderWith(blocks, Links{})
}

// RenderWith is Render with per-block links.
func (r *Renderer) RenderWith(blocks []Block, links Links) []Node {
	if len(blocks) == 0 {
		return nil
	}

	nodes := make([]Node, 0, len(blocks))
	for i, b := range blocks {
		kind, view, ok := r.view(i, b, links)
		if !ok {
			r.dropped(i, b)
			continue
		}

		html, err := r.execute(string(kind), view)
		if err != nil {
			r.log.Error("block template failed",
				logger.Int("index", i),
				logger.String("kind", string(kind)),
				logger.Error(err))
			r.dropped(i, b)
			continue
		}

		nodes = append(nodes, Node{Kind: kind, Index: i, HTML: html})
		if r.observer != nil {
			r.observer.BlockRendered(string(kind))
		}
	}
	return nodes
}

// RenderHTML renders blocks and joins the nodes.
func (r *Renderer) RenderHTML(blocks []Block, links Links) template.HTML {
	return Join(r.RenderWith(blocks, links))
}

// Join concatenates node HTML, one node per line.
func Join(nodes []Node) template.HTML {
	var sb strings.Builder
	for i, n := range nodes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(n.HTML))
	}
	//nolint:gosec // nodes are template output or trusted upstream HTML
	return template.HTML(sb.String())
}

type textView struct {
	HTML template.HTML
}

type codeView struct {
	Index       int
	Language    string
	Grammar     string
	Lines       []Line
	Source      string
	RawHref     string
	CopyLabel   string
	CopiedLabel string
	CopyResetMs int64
}

type imageView struct {
	Index   int
	URL     string
	Alt     string
	Caption string
	Href    string
}

type alertView struct {
	AlertStyle
	Content template.HTML
}

type listView struct {
	Items []string
}

// view builds the template data for one block. ok is false when the block
// produces no output.
func (r *Renderer) view(index int, b Block, links Links) (Kind, any, bool) {
	switch b := b.(type) {
	case TextBlock:
		//nolint:gosec // text blocks are sanitized by the content API
		return KindText, textView{HTML: template.HTML(b.HTML)}, true

	case CodeBlock:
		grammar := Grammar(b.Language)
		language := strings.TrimSpace(b.Language)
		if language == "" {
			language = grammar
		}
		return KindCode, codeView{
			Index:       index,
			Language:    language,
			Grammar:     grammar,
			Lines:       Highlight(b.Source, grammar),
			Source:      NormalizeSource(b.Source),
			RawHref:     link(links.CodeHref, index),
			CopyLabel:   CopyLabel,
			CopiedLabel: CopiedLabel,
			CopyResetMs: CopyResetDelay.Milliseconds(),
		}, true

	case ImageBlock:
		url, ok := ImageURL(b.Image)
		if !ok {
			return "", nil, false
		}
		caption := strings.TrimSpace(b.Caption)
		if caption == "" {
			caption = strings.TrimSpace(b.Image.Caption)
		}
		href := link(links.ImageHref, index)
		if href == "" {
			href = url
		}
		return KindImage, imageView{
			Index:   index,
			URL:     url,
			Alt:     AltText(b.Image, b.Caption),
			Caption: caption,
			Href:    href,
		}, true

	case AlertBlock:
		//nolint:gosec // alert content is sanitized by the content API
		return KindAlert, alertView{AlertStyle: AlertStyleFor(b.Variant), Content: template.HTML(b.Content)}, true

	case ListBlock:
		return KindList, listView{Items: b.Items}, true

	case SeparatorBlock:
		return KindSeparator, SeparatorStyleFor(b.Style), true

	default:
		return "", nil, false
	}
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	//nolint:gosec // output of html/template
	return template.HTML(buf.String()), nil
}

func (r *Renderer) dropped(index int, b Block) {
	layout := "<nil>"
	if b != nil {
		layout = b.Layout()
	}
	r.log.Debug("block omitted", logger.Int("index", index), logger.String("layout", layout))
	if r.observer != nil {
		r.observer.BlockDropped(layout)
	}
}

func link(fn func(int) string, index int) string {
	if fn == nil {
		return ""
	}
	return fn(index)
}

// ImageAt returns the image block at index with its resolved URL.
func ImageAt(blocks []Block, index int) (ImageBlock, string, bool) {
	if index < 0 || index >= len(blocks) {
		return ImageBlock{}, "", false
	}
	img, ok := blocks[index].(ImageBlock)
	if !ok {
		return ImageBlock{}, "", false
	}
	url, ok := ImageURL(img.Image)
	return img, url, ok
}

// CodeAt returns the code block at index.
func CodeAt(blocks []Block, index int) (CodeBlock, bool) {
	if index < 0 || index >= len(blocks) {
		return CodeBlock{}, false
	}
	code, ok := blocks[index].(CodeBlock)
	return code, ok
}
