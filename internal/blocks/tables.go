package blocks

import "strings"

// GrammarMarkup is the generic grammar used for unlisted languages.
const GrammarMarkup = "markup"

// languageGrammars maps declared languages to highlighting grammars.
var languageGrammars = map[string]string{
	"php":        "php",
	"css":        "css",
	"javascript": "javascript",
	"js":         "javascript",
	"html":       GrammarMarkup,
	"sql":        "sql",
	"xml":        GrammarMarkup,
	"htaccess":   GrammarMarkup,
	"json":       "json",
	"bash":       "bash",
	"typescript": "typescript",
	"ts":         "typescript",
}

// Grammar returns the highlighting grammar for a declared language.
func Grammar(language string) string {
	if g, ok := languageGrammars[strings.ToLower(strings.TrimSpace(language))]; ok {
		return g
	}
	return GrammarMarkup
}

// AlertStyle describes how an alert variant is presented.
type AlertStyle struct {
	Variant string // normalized variant name, also used as CSS modifier
	Icon    string // lucide icon name
	Accent  string // accent color name
	Label   string // accessible label
}

const defaultAlertVariant = "info"

var alertStyles = map[string]AlertStyle{
	"info":    {Variant: "info", Icon: "info", Accent: "blue", Label: "Información"},
	"warning": {Variant: "warning", Icon: "alert-triangle", Accent: "yellow", Label: "Advertencia"},
	"tip":     {Variant: "tip", Icon: "lightbulb", Accent: "green", Label: "Consejo"},
}

// AlertStyleFor returns the style for a variant, defaulting to info.
func AlertStyleFor(variant string) AlertStyle {
	if s, ok := alertStyles[strings.ToLower(strings.TrimSpace(variant))]; ok {
		return s
	}
	return alertStyles[defaultAlertVariant]
}

// SeparatorStyle is the normalized rule style.
type SeparatorStyle string

const (
	SeparatorSimple SeparatorStyle = "simple"
	SeparatorDouble SeparatorStyle = "double"
	SeparatorSpaced SeparatorStyle = "spaced"
)

// separatorStyles accepts both the wire values and their English names.
var separatorStyles = map[string]SeparatorStyle{
	"simple":    SeparatorSimple,
	"doble":     SeparatorDouble,
	"double":    SeparatorDouble,
	"espaciado": SeparatorSpaced,
	"spaced":    SeparatorSpaced,
}

// SeparatorStyleFor returns the rule style, defaulting to simple.
func SeparatorStyleFor(style string) SeparatorStyle {
	if s, ok := separatorStyles[strings.ToLower(strings.TrimSpace(style))]; ok {
		return s
	}
	return SeparatorSimple
}

// DefaultAltText is used when neither the image nor the block carry alt text.
const DefaultAltText = "Snippet Image"

// ImageURL picks the largest available size variant, then the base URL.
// It reports false when the reference resolves to no usable URL.
func ImageURL(img Image) (string, bool) {
	for _, candidate := range []string{img.Sizes.Full, img.Sizes.Large, img.Sizes.Medium, img.Sizes.Thumbnail, img.URL} {
		if u := strings.TrimSpace(candidate); u != "" {
			return u, true
		}
	}
	return "", false
}

// AltText returns the image alt, else the caption, else DefaultAltText.
func AltText(img Image, caption string) string {
	if a := strings.TrimSpace(img.Alt); a != "" {
		return a
	}
	if c := strings.TrimSpace(caption); c != "" {
		return c
	}
	return DefaultAltText
}
