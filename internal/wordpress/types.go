// Package wordpress is a client for the WordPress REST API that serves the
// snippet catalogue: the codes post type, its two taxonomies and its authors.
package wordpress

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/k3a/html2text"

	"github.com/amsot/twfcode/internal/blocks"
)

// Taxonomy is the REST base of a snippet taxonomy.
type Taxonomy string

const (
	TaxonomyCategories Taxonomy = "snippet-categories"
	TaxonomyTags       Taxonomy = "snippet-tags"
)

// Difficulty is the ACF difficulty level of a snippet.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basico"
	DifficultyIntermediate Difficulty = "intermedio"
	DifficultyAdvanced     Difficulty = "avanzado"
)

var difficultyLabels = map[Difficulty]string{
	DifficultyBasic:        "Básico",
	DifficultyIntermediate: "Intermedio",
	DifficultyAdvanced:     "Avanzado",
}

// Normalize maps unknown or empty levels to DifficultyBasic.
func (d Difficulty) Normalize() Difficulty {
	n := Difficulty(strings.ToLower(strings.TrimSpace(string(d))))
	if _, ok := difficultyLabels[n]; ok {
		return n
	}
	return DifficultyBasic
}

// Label returns the display name of the level.
func (d Difficulty) Label() string {
	return difficultyLabels[d.Normalize()]
}

// dateLayout is the site-local timestamp format of the date field.
const dateLayout = "2006-01-02T15:04:05"

// Date is a site-local publication timestamp without zone information.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. Unparseable values leave the zero time.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		d.Time = time.Time{}
		return nil
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the date back in the API layout.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// Rendered is a WordPress rendered-HTML field.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// Term is a taxonomy term. Embedded terms carry term_id; REST terms carry id.
type Term struct {
	ID     int    `json:"id"`
	TermID int    `json:"term_id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Count  int    `json:"count"`
}

// Key returns the term identity, preferring id over term_id.
func (t Term) Key() int {
	if t.ID != 0 {
		return t.ID
	}
	return t.TermID
}

// Terms tolerates false or null in place of an empty array.
type Terms []Term

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Terms) UnmarshalJSON(data []byte) error {
	var out []Term
	if !isArray(data) {
		*ts = nil
		return nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*ts = out
	return nil
}

// IDs returns the term keys in order.
func (ts Terms) IDs() []int {
	ids := make([]int, 0, len(ts))
	for _, t := range ts {
		if k := t.Key(); k != 0 {
			ids = append(ids, k)
		}
	}
	return ids
}

// Author is the public profile shown on snippets and author pages.
type Author struct {
	ID     int    `json:"id"`
	Name   string `json:"nombre"`
	Avatar string `json:"avatar"`
}

// UnmarshalJSON accepts the datos_autor object and ignores anything else.
func (a *Author) UnmarshalJSON(data []byte) error {
	type plain Author
	var p plain
	if !isObject(data) {
		*a = Author{}
		return nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

// user is the /users resource shape.
type user struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	AvatarURLs map[string]string `json:"avatar_urls"`
}

func (u user) author() Author {
	return Author{ID: u.ID, Name: u.Name, Avatar: u.AvatarURLs["96"]}
}

// Fields are the ACF fields of a snippet.
type Fields struct {
	Excerpt    string          `json:"extracto_corto"`
	Difficulty Difficulty      `json:"dificultad"`
	Featured   bool            `json:"destacado"`
	Blocks     blocks.Sequence `json:"contenido_snippet"`
}

// UnmarshalJSON decodes the acf object leniently. ACF sends an empty array
// when a post has no field values, and false or "" for cleared fields.
func (f *Fields) UnmarshalJSON(data []byte) error {
	*f = Fields{}
	if !isObject(data) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	_ = json.Unmarshal(raw["extracto_corto"], &f.Excerpt)
	var difficulty string
	_ = json.Unmarshal(raw["dificultad"], &difficulty)
	f.Difficulty = Difficulty(difficulty)
	f.Featured = truthy(raw["destacado"])
	if seq, ok := raw["contenido_snippet"]; ok {
		f.Blocks, _ = blocks.Decode(seq)
	}
	return nil
}

// Snippet is one entry of the codes post type.
type Snippet struct {
	ID            int                `json:"id"`
	Date          Date               `json:"date"`
	Slug          string             `json:"slug"`
	Title         Rendered           `json:"title"`
	ACF           Fields             `json:"acf"`
	Categories    Terms              `json:"nombres_categorias"`
	Tags          Terms              `json:"nombres_tags"`
	Author        Author             `json:"datos_autor"`
	FeaturedImage *blocks.ImageSizes `json:"imagen_destacada_datos"`
}

// PlainTitle returns the rendered title with markup removed and entities decoded.
func (s *Snippet) PlainTitle() string {
	return strings.TrimSpace(html2text.HTML2Text(s.Title.Rendered))
}

// PrimaryCategory returns the first category, if any.
func (s *Snippet) PrimaryCategory() (Term, bool) {
	if len(s.Categories) == 0 {
		return Term{}, false
	}
	return s.Categories[0], true
}

// Path returns the site path of the snippet article.
func (s *Snippet) Path() string {
	return "/codes/" + s.Slug
}

// FeaturedImageURL returns the card image, preferring the large variant.
func (s *Snippet) FeaturedImageURL() string {
	if s.FeaturedImage == nil {
		return ""
	}
	sizes := s.FeaturedImage
	for _, u := range []string{sizes.Large, sizes.Full, sizes.Medium, sizes.Thumbnail} {
		if u != "" {
			return u
		}
	}
	return ""
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func isArray(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}

func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "true", `"1"`, "1", `"true"`:
		return true
	}
	return false
}
