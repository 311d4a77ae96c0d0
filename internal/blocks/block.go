// Package blocks decodes and renders the flexible-content blocks that make up
// a snippet body.
//
// A body is an ordered sequence of blocks, each tagged with its layout
// (acf_fc_layout on the wire). Rendering maps every recognized block to one
// presentational Node in input order. Unrecognized or malformed blocks are
// omitted without error, so a partially broken body still renders.
package blocks

// Kind identifies a recognized block variant.
type Kind string

const (
	KindText      Kind = "text"
	KindCode      Kind = "code"
	KindImage     Kind = "image"
	KindAlert     Kind = "alert"
	KindList      Kind = "list"
	KindSeparator Kind = "separator"
)

// Layout tags used by the content API.
const (
	LayoutText      = "bloque_texto"
	LayoutCode      = "bloque_codigo"
	LayoutImage     = "bloque_imagen"
	LayoutAlert     = "bloque_alerta"
	LayoutList      = "bloque_lista"
	LayoutSeparator = "bloque_separador"
)

// Block is one entry of a content sequence. The set of implementations is
// closed; renderers switch on the concrete type and skip anything else.
type Block interface {
	// Layout returns the wire tag the block was decoded from.
	Layout() string
	block()
}

// TextBlock carries trusted, already sanitized HTML.
type TextBlock struct {
	HTML string
}

// CodeBlock is a source listing with its declared language.
type CodeBlock struct {
	Source   string
	Language string
}

// ImageBlock references a media item with an optional caption.
type ImageBlock struct {
	Image   Image
	Caption string
}

// AlertBlock is a highlighted callout. Variant is one of info, warning, tip.
type AlertBlock struct {
	Content string
	Variant string
}

// ListBlock is a flat list of plain-text items.
type ListBlock struct {
	Items []string
}

// SeparatorBlock is a horizontal rule. Style is simple, doble or espaciado.
type SeparatorBlock struct {
	Style string
}

// UnknownBlock stands in for a record whose layout is not recognized or whose
// fields could not be decoded. It never renders.
type UnknownBlock struct {
	Tag       string
	Malformed bool
}

func (TextBlock) Layout() string      { return LayoutText }
func (CodeBlock) Layout() string      { return LayoutCode }
func (ImageBlock) Layout() string     { return LayoutImage }
func (AlertBlock) Layout() string     { return LayoutAlert }
func (ListBlock) Layout() string      { return LayoutList }
func (SeparatorBlock) Layout() string { return LayoutSeparator }
func (u UnknownBlock) Layout() string { return u.Tag }

func (TextBlock) block()      {}
func (CodeBlock) block()      {}
func (ImageBlock) block()     {}
func (AlertBlock) block()     {}
func (ListBlock) block()      {}
func (SeparatorBlock) block() {}
func (UnknownBlock) block()   {}

// Image is a media item as returned by the content API.
type Image struct {
	ID       int        `json:"id"`
	Title    string     `json:"title"`
	Filename string     `json:"filename"`
	URL      string     `json:"url"`
	Alt      string     `json:"alt"`
	Caption  string     `json:"caption"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Sizes    ImageSizes `json:"sizes"`
}

// ImageSizes holds the named size variants. Numeric *-width and *-height
// entries sent alongside them are ignored.
type ImageSizes struct {
	Thumbnail string `json:"thumbnail"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	Full      string `json:"full"`
}
