package blocks

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\nb", NormalizeSource("a\r\nb\r\n\n"))
	assert.Equal(t, "", NormalizeSource("\n\n"))
	assert.Equal(t, "  x", NormalizeSource("  x"))
}

func TestHighlight_PreservesLines(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"php":         "<?php\n$items = ['a', 'b'];\n\nforeach ($items as $i) {\n    echo $i;\n}\n",
		"javascript":  "const el = document.querySelector('#x');\r\nel.addEventListener('click', () => {\r\n  console.log(\"hi\");\r\n});",
		"css":         ".card {\n  color: #fff;\n}\n\n\n",
		"sql":         "SELECT *\nFROM wp_posts\nWHERE post_type = 'codes';",
		GrammarMarkup: "<div class=\"a\">\n  <span>&amp;</span>\n</div>",
		"bash":        "#!/bin/bash\nfor f in *.log; do\n\trm \"$f\"\ndone",
		"typescript":  "",
	}

	for grammar, source := range sources {
		t.Run(grammar, func(t *testing.T) {
			t.Parallel()

			want := strings.Split(NormalizeSource(source), "\n")
			lines := Highlight(source, grammar)
			require.Len(t, lines, len(want))
			for i, line := range lines {
				assert.Equal(t, want[i], line.Text(), "line %d", i)
			}
		})
	}
}

func TestHighlight_ClassifiesTokens(t *testing.T) {
	t.Parallel()

	lines := Highlight("SELECT id FROM users;", "sql")
	require.Len(t, lines, 1)

	var classes []string
	for _, tok := range lines[0] {
		if tok.Class != "" {
			classes = append(classes, tok.Class)
		}
	}
	assert.NotEmpty(t, classes, "expected at least one classified token")
}

func TestHighlight_MergesAdjacentTokens(t *testing.T) {
	t.Parallel()

	line := appendToken(nil, "k", "SEL")
	line = appendToken(line, "k", "ECT")
	line = appendToken(line, "", " ")
	assert.Equal(t, Line{{Class: "k", Text: "SELECT"}, {Text: " "}}, line)
}

func TestWriteHighlightCSS(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHighlightCSS(&buf, "github"))
	assert.Contains(t, buf.String(), ".chroma")

	buf.Reset()
	require.NoError(t, WriteHighlightCSS(&buf, "no-such-style"))
	assert.NotEmpty(t, buf.String())
}
