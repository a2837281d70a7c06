package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Tier says which encoding the structured output was recovered from.
type Tier string

const (
	TierFenced Tier = "fenced"
	TierJSON   Tier = "json"
	TierFields Tier = "fields"
)

// Field maps a response key to the key it is read from.
type Field struct {
	Name   string
	Source string
}

// Extractor pulls structured fields out of workflow outputs. The text field
// may hold a fenced ```json block, bare JSON, or an object; when none of those
// parse, Fallback fields are read straight off the outputs.
type Extractor struct {
	TextField string
	Fields    []Field
	Fallback  []Field
}

// Extraction is the result of Extract.
type Extraction struct {
	Fields map[string]string
	Tier   Tier
}

var (
	// GenerateExtractor serves the article text generation workflow.
	GenerateExtractor = Extractor{
		TextField: "usage",
		Fields: []Field{
			{"text350", "text350"},
			{"text80", "text80"},
			{"meta_desc", "meta_desc"},
			{"meta_kwd", "meta_kwd"},
		},
		Fallback: []Field{
			{"text350", "text350"},
			{"text80", "text80"},
		},
	}

	// MediaExtractor serves the uploaded-media analysis workflow.
	MediaExtractor = Extractor{
		TextField: "text",
		Fields:    mediaFields,
		Fallback:  mediaFields,
	}

	mediaFields = []Field{
		{"title", "meta_title"},
		{"text350", "text350"},
		{"text80", "text80"},
		{"meta_desc", "meta_description"},
		{"meta_kwd", "meta_keyword"},
	}
)

func (e Extractor) Extract(outputs map[string]any) Extraction {
	if parsed, tier, ok := e.structured(outputs[e.TextField]); ok {
		return Extraction{Fields: pick(parsed, e.Fields), Tier: tier}
	}
	return Extraction{Fields: pick(outputs, e.Fallback), Tier: TierFields}
}

func (e Extractor) structured(v any) (map[string]any, Tier, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, TierJSON, true
	case string:
		if block, found := fencedJSON(t); found {
			if obj, ok := decodeObject(block); ok {
				return obj, TierFenced, true
			}
		}
		if obj, ok := decodeObject(t); ok {
			return obj, TierJSON, true
		}
	}
	return nil, "", false
}

// fencedJSON returns the body of the first ```json fenced block in s.
func fencedJSON(s string) (string, bool) {
	const open = "```json"
	start := strings.Index(s, open)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(open):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func pick(src map[string]any, fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = stringValue(src[f.Source])
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
