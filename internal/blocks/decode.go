package blocks

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Sequence is an ordered list of blocks decoded from the content API.
//
// The API sends the field as an array of records, but also as null, false or
// an empty string when a snippet has no body; all of those decode to an empty
// Sequence. Records that cannot be decoded become UnknownBlock and the rest of
// the sequence is kept.
type Sequence []Block

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	seq, _ := Decode(data)
	*s = seq
	return nil
}

// Decode parses a raw block array. It never fails; the second return value
// counts records that were dropped as unknown or malformed.
func Decode(data []byte) (Sequence, int) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, 0
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0
	}

	seq := make(Sequence, 0, len(records))
	dropped := 0
	for _, raw := range records {
		b := decodeRecord(raw)
		if _, unknown := b.(UnknownBlock); unknown {
			dropped++
		}
		seq = append(seq, b)
	}
	return seq, dropped
}

// decodeRecord maps one wire record to its Block variant.
func decodeRecord(raw json.RawMessage) Block {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return UnknownBlock{Malformed: true}
	}

	tag, ok := stringField(fields, "acf_fc_layout")
	if !ok {
		return UnknownBlock{Malformed: true}
	}

	var (
		b   Block
		err error
	)
	switch tag {
	case LayoutText:
		b, err = decodeText(fields)
	case LayoutCode:
		b, err = decodeCode(fields)
	case LayoutImage:
		b, err = decodeImageBlock(fields)
	case LayoutAlert:
		b, err = decodeAlert(fields)
	case LayoutList:
		b, err = decodeList(fields)
	case LayoutSeparator:
		b, err = decodeSeparator(fields)
	default:
		return UnknownBlock{Tag: tag}
	}
	if err != nil {
		return UnknownBlock{Tag: tag, Malformed: true}
	}
	return b
}

// errWrongType marks a field present with an unusable JSON type.
type errWrongType string

func (e errWrongType) Error() string { return "field " + string(e) + " has the wrong type" }

// optionalString reads a string field. Absent, null and false read as "".
// Any other non-string value is an error.
func optionalString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, present := fields[key]
	if !present || isEmptyValue(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errWrongType(key)
	}
	return s, nil
}

// stringField reads a string field, reporting false when it is missing or not a string.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, present := fields[key]
	if !present {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// intField reads a number or numeric string, returning 0 otherwise.
func intField(fields map[string]json.RawMessage, key string) int {
	raw, present := fields[key]
	if !present {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	if s, ok := stringField(fields, key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
	}
	return 0
}

func isEmptyValue(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", `""`:
		return true
	}
	return false
}

func decodeText(fields map[string]json.RawMessage) (Block, error) {
	html, err := optionalString(fields, "texto")
	if err != nil {
		return nil, err
	}
	return TextBlock{HTML: html}, nil
}

func decodeCode(fields map[string]json.RawMessage) (Block, error) {
	source, err := optionalString(fields, "codigo")
	if err != nil {
		return nil, err
	}
	lang, err := optionalString(fields, "lenguaje")
	if err != nil {
		return nil, err
	}
	return CodeBlock{Source: source, Language: lang}, nil
}

func decodeAlert(fields map[string]json.RawMessage) (Block, error) {
	content, err := optionalString(fields, "contenido_alerta")
	if err != nil {
		return nil, err
	}
	variant, err := optionalString(fields, "tipo_alerta")
	if err != nil {
		return nil, err
	}
	return AlertBlock{Content: content, Variant: variant}, nil
}

func decodeSeparator(fields map[string]json.RawMessage) (Block, error) {
	style, err := optionalString(fields, "estilo")
	if err != nil {
		return nil, err
	}
	return SeparatorBlock{Style: style}, nil
}

func decodeList(fields map[string]json.RawMessage) (Block, error) {
	raw, present := fields["items_lista"]
	if !present || isEmptyValue(raw) {
		return ListBlock{}, nil
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, errWrongType("items_lista")
	}

	items := make([]string, 0, len(rows))
	for _, row := range rows {
		item, err := optionalString(row, "item")
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return ListBlock{Items: items}, nil
}

func decodeImageBlock(fields map[string]json.RawMessage) (Block, error) {
	caption, err := optionalString(fields, "caption")
	if err != nil {
		return nil, err
	}
	img, err := decodeImage(fields["imagen"])
	if err != nil {
		return nil, err
	}
	return ImageBlock{Image: img, Caption: caption}, nil
}

// decodeImage accepts the image object, a bare URL string, or an unresolved
// attachment id. The last two come from fields configured to return a URL or an id.
func decodeImage(raw json.RawMessage) (Image, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isEmptyValue(raw) {
		return Image{}, nil
	}

	switch raw[0] {
	case '"':
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return Image{}, errWrongType("imagen")
		}
		return Image{URL: url}, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Image{}, errWrongType("imagen")
		}
		img := Image{
			ID:     intField(fields, "id"),
			Width:  intField(fields, "width"),
			Height: intField(fields, "height"),
			Sizes:  decodeSizes(fields["sizes"]),
		}
		img.Title, _ = stringField(fields, "title")
		img.Filename, _ = stringField(fields, "filename")
		img.URL, _ = stringField(fields, "url")
		img.Alt, _ = stringField(fields, "alt")
		img.Caption, _ = stringField(fields, "caption")
		return img, nil
	default:
		var id json.Number
		if err := json.Unmarshal(raw, &id); err != nil {
			return Image{}, errWrongType("imagen")
		}
		n, _ := id.Int64()
		return Image{ID: int(n)}, nil
	}
}

// decodeSizes keeps the string-valued named variants. The API sends an empty
// array instead of an object when no variants exist.
func decodeSizes(raw json.RawMessage) ImageSizes {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ImageSizes{}
	}
	var sizes ImageSizes
	sizes.Thumbnail, _ = stringField(fields, "thumbnail")
	sizes.Medium, _ = stringField(fields, "medium")
	sizes.Large, _ = stringField(fields, "large")
	sizes.Full, _ = stringField(fields, "full")
	return sizes
}

// UnmarshalJSON lets Image be decoded on its own, e.g. for featured images.
func (img *Image) UnmarshalJSON(data []byte) error {
	decoded, err := decodeImage(data)
	if err != nil {
		return err
	}
	*img = decoded
	return nil
}

// UnmarshalJSON implements json.Unmarshaler; non-object values decode to empty sizes.
func (s *ImageSizes) UnmarshalJSON(data []byte) error {
	*s = decodeSizes(data)
	return nil
}
