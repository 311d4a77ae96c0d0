package blocks

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Token is a run of source text with its highlighting class. Class is empty for plain text.
type Token struct {
	Class string
	Text  string
}

// Line is one source line split into tokens, without the trailing newline.
type Line []Token

// Text joins the token texts of the line.
func (l Line) Text() string {
	var sb strings.Builder
	for _, t := range l {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// chromaLexers maps grammars to lexer names where they differ.
var chromaLexers = map[string]string{
	GrammarMarkup: "html",
}

// NormalizeSource converts line endings to \n and drops trailing newlines.
func NormalizeSource(source string) string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	return strings.TrimRight(source, "\n")
}

// Highlight tokenizes source with the grammar's lexer. The concatenated token
// texts of line i always equal line i of NormalizeSource(source).
func Highlight(source, grammar string) []Line {
	source = NormalizeSource(source)
	sourceLines := strings.Split(source, "\n")

	lexer := lexerFor(grammar)
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainLines(sourceLines)
	}

	lines := make([]Line, 0, len(sourceLines))
	current := Line{}
	for _, tok := range iterator.Tokens() {
		class := chroma.StandardTypes[tok.Type]
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, current)
				current = Line{}
			}
			if part != "" {
				current = appendToken(current, class, part)
			}
		}
	}
	lines = append(lines, current)

	// Lexers may append a final newline; the source line count is authoritative.
	if len(lines) > len(sourceLines) {
		lines = lines[:len(sourceLines)]
	}
	for len(lines) < len(sourceLines) {
		lines = append(lines, Line{})
	}

	for i := range lines {
		if lines[i].Text() != sourceLines[i] {
			return plainLines(sourceLines)
		}
	}
	return lines
}

// appendToken merges adjacent runs of the same class.
func appendToken(line Line, class, text string) Line {
	if n := len(line); n > 0 && line[n-1].Class == class {
		line[n-1].Text += text
		return line
	}
	return append(line, Token{Class: class, Text: text})
}

func plainLines(sourceLines []string) []Line {
	lines := make([]Line, len(sourceLines))
	for i, s := range sourceLines {
		if s != "" {
			lines[i] = Line{{Text: s}}
		}
	}
	return lines
}

func lexerFor(grammar string) chroma.Lexer {
	name := grammar
	if alias, ok := chromaLexers[grammar]; ok {
		name = alias
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// WriteHighlightCSS writes the stylesheet for the token classes produced by Highlight.
func WriteHighlightCSS(w io.Writer, styleName string) error {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, style)
}
