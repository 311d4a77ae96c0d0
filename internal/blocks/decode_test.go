package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyBodies(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{``, `null`, `false`, `""`, `{}`, `[]`, `not json`} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			seq, dropped := Decode([]byte(raw))
			assert.Empty(t, seq)
			assert.Zero(t, dropped)
		})
	}
}

func TestDecode_AllVariants(t *testing.T) {
	t.Parallel()

	raw := `[
		{"acf_fc_layout":"bloque_texto","texto":"<p>hola</p>"},
		{"acf_fc_layout":"bloque_codigo","codigo":"echo 1;","lenguaje":"php"},
		{"acf_fc_layout":"bloque_imagen","imagen":{"id":7,"url":"https://cdn/x.png","alt":"diagram","sizes":{"large":"https://cdn/x-1024.png","large-width":1024}},"caption":"Fig 1"},
		{"acf_fc_layout":"bloque_alerta","contenido_alerta":"<p>cuidado</p>","tipo_alerta":"warning"},
		{"acf_fc_layout":"bloque_lista","items_lista":[{"item":"uno"},{"item":"dos"}]},
		{"acf_fc_layout":"bloque_separador","estilo":"doble"}
	]`

	seq, dropped := Decode([]byte(raw))
	require.Len(t, seq, 6)
	assert.Zero(t, dropped)

	assert.Equal(t, TextBlock{HTML: "<p>hola</p>"}, seq[0])
	assert.Equal(t, CodeBlock{Source: "echo 1;", Language: "php"}, seq[1])

	img, ok := seq[2].(ImageBlock)
	require.True(t, ok)
	assert.Equal(t, 7, img.Image.ID)
	assert.Equal(t, "https://cdn/x.png", img.Image.URL)
	assert.Equal(t, "https://cdn/x-1024.png", img.Image.Sizes.Large)
	assert.Equal(t, "diagram", img.Image.Alt)
	assert.Equal(t, "Fig 1", img.Caption)

	assert.Equal(t, AlertBlock{Content: "<p>cuidado</p>", Variant: "warning"}, seq[3])
	assert.Equal(t, ListBlock{Items: []string{"uno", "dos"}}, seq[4])
	assert.Equal(t, SeparatorBlock{Style: "doble"}, seq[5])
}

func TestDecode_UnknownAndMalformed(t *testing.T) {
	t.Parallel()

	raw := `[
		{"acf_fc_layout":"bloque_texto","texto":"<p>hi</p>"},
		{"acf_fc_layout":"bloque_video","url":"x"},
		{"texto":"no layout"},
		"just a string",
		{"acf_fc_layout":"bloque_codigo","codigo":42},
		{"acf_fc_layout":"bloque_separador","estilo":"espaciado"}
	]`

	seq, dropped := Decode([]byte(raw))
	require.Len(t, seq, 6)
	assert.Equal(t, 4, dropped)

	assert.Equal(t, UnknownBlock{Tag: "bloque_video"}, seq[1])
	assert.Equal(t, UnknownBlock{Malformed: true}, seq[2])
	assert.Equal(t, UnknownBlock{Malformed: true}, seq[3])
	assert.Equal(t, UnknownBlock{Tag: LayoutCode, Malformed: true}, seq[4])
	assert.Equal(t, SeparatorBlock{Style: "espaciado"}, seq[5])
}

func TestDecode_ListQuirks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Block
	}{
		{"false items", `[{"acf_fc_layout":"bloque_lista","items_lista":false}]`, ListBlock{}},
		{"null items", `[{"acf_fc_layout":"bloque_lista","items_lista":null}]`, ListBlock{}},
		{"missing items", `[{"acf_fc_layout":"bloque_lista"}]`, ListBlock{}},
		{"null item text", `[{"acf_fc_layout":"bloque_lista","items_lista":[{"item":null}]}]`, ListBlock{Items: []string{""}}},
		{"object items", `[{"acf_fc_layout":"bloque_lista","items_lista":{"item":"x"}}]`, UnknownBlock{Tag: LayoutList, Malformed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seq, _ := Decode([]byte(tt.raw))
			require.Len(t, seq, 1)
			assert.Equal(t, tt.want, seq[0])
		})
	}
}

func TestDecode_ImageQuirks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		image string
		want  Image
	}{
		{"url string", `"https://cdn/a.png"`, Image{URL: "https://cdn/a.png"}},
		{"attachment id", `123`, Image{ID: 123}},
		{"false", `false`, Image{}},
		{"null", `null`, Image{}},
		{"empty sizes array", `{"url":"https://cdn/b.png","sizes":[]}`, Image{URL: "https://cdn/b.png"}},
		{"string dimensions", `{"url":"u","width":"640","height":"480"}`, Image{URL: "u", Width: 640, Height: 480}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seq, dropped := Decode([]byte(`[{"acf_fc_layout":"bloque_imagen","imagen":` + tt.image + `}]`))
			require.Len(t, seq, 1)
			assert.Zero(t, dropped)
			img, ok := seq[0].(ImageBlock)
			require.True(t, ok)
			assert.Equal(t, tt.want, img.Image)
		})
	}
}

func TestSequence_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var payload struct {
		Blocks Sequence `json:"bloques"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"bloques":false}`), &payload))
	assert.Empty(t, payload.Blocks)

	require.NoError(t, json.Unmarshal([]byte(`{"bloques":[{"acf_fc_layout":"bloque_texto","texto":"x"}]}`), &payload))
	assert.Equal(t, Sequence{TextBlock{HTML: "x"}}, payload.Blocks)
}

func TestImageSizes_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var sizes ImageSizes
	require.NoError(t, json.Unmarshal([]byte(`{"thumbnail":"t","medium":"m","medium-width":300,"full":"f"}`), &sizes))
	assert.Equal(t, ImageSizes{Thumbnail: "t", Medium: "m", Full: "f"}, sizes)

	require.NoError(t, json.Unmarshal([]byte(`[]`), &sizes))
	assert.Equal(t, ImageSizes{}, sizes)
}
