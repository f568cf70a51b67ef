// Package notefile implements the note file codec: parsing a note file into
// a (header, body) pair and serialising it back, plus inline wikilink
// extraction from the body text.
package notefile

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// File is a parsed note: an optional structured header and the body text
// that follows it.
type File struct {
	Header *Header
	Body   string
}

// Header wraps the header's YAML document node. Keeping the raw node (rather
// than decoding into a plain map) is what lets Serialize preserve
// unrelated keys and their relative order when only links is mutated.
type Header struct {
	node *yaml.Node // MappingNode, or nil for "no header"
}

// Empty reports whether the header carries no content at all.
func (h *Header) Empty() bool {
	return h == nil || h.node == nil || len(h.node.Content) == 0
}

// NewEmptyHeader returns a header with no keys, ready for SetLinks to
// populate.
func NewEmptyHeader() *Header {
	return &Header{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// ParseFile splits raw note bytes into a header and body. If the file does
// not begin with a "---" fence line, the entire input is treated as body and
// the header is empty (parsing is total: this never errors on shape alone).
func ParseFile(data []byte) (*File, error) {
	text := string(data)

	lines := splitKeepEnds(text)
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != fence {
		return &File{Header: &Header{}, Body: text}, nil
	}

	// Find the closing fence line.
	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == fence {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		// Opening fence with no close: whole file is body, per the "parsing
		// is total" invariant.
		return &File{Header: &Header{}, Body: text}, nil
	}

	headerText := strings.Join(lines[1:closeIdx], "")
	bodyText := strings.Join(lines[closeIdx+1:], "")

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(headerText), &doc); err != nil {
		return nil, fmt.Errorf("notefile: malformed header: %w", err)
	}

	var mapping *yaml.Node
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		mapping = doc.Content[0]
	} else {
		mapping = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	return &File{Header: &Header{node: mapping}, Body: bodyText}, nil
}

// splitKeepEnds splits s into lines, keeping each line's trailing newline so
// that joining the slices back together reproduces the original bytes.
func splitKeepEnds(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// Serialize writes the note back out: "---\n<header>\n---\n<body>" when the
// header carries content, or the bare body otherwise.
func (f *File) Serialize() []byte {
	if f.Header.Empty() {
		return []byte(f.Body)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	_ = enc.Encode(f.Header.node)
	_ = enc.Close()

	headerYAML := strings.TrimRight(buf.String(), "\n")

	var out bytes.Buffer
	out.WriteString(fence)
	out.WriteByte('\n')
	out.WriteString(headerYAML)
	out.WriteByte('\n')
	out.WriteString(fence)
	out.WriteByte('\n')
	out.WriteString(f.Body)
	return out.Bytes()
}

// Links decodes the header's "links" key into a DocName -> weight map.
// Non-numeric values are skipped; their keys are returned as warnings so
// callers (the graph builder) can log them.
func (h *Header) Links() (map[string]float64, []string) {
	links := make(map[string]float64)
	if h.Empty() {
		return links, nil
	}

	linksNode := h.findValue("links")
	if linksNode == nil || linksNode.Kind != yaml.MappingNode {
		return links, nil
	}

	var warnings []string
	for i := 0; i+1 < len(linksNode.Content); i += 2 {
		key := linksNode.Content[i].Value
		val := linksNode.Content[i+1]
		f, err := strconv.ParseFloat(val.Value, 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("header link %q: non-numeric weight %q skipped", key, val.Value))
			continue
		}
		links[key] = f
	}
	return links, warnings
}

// SetLinks replaces the header's "links" mapping with the given weights,
// creating the key if absent, while leaving every other key and its
// relative position untouched. Link entries are written in ascending
// DocName order for deterministic output.
func (h *Header) SetLinks(links map[string]float64) {
	if h.node == nil {
		h.node = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sortStrings(names)

	linksValue := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range names {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		valNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(links[name], 'g', -1, 64)}
		linksValue.Content = append(linksValue.Content, keyNode, valNode)
	}

	for i := 0; i+1 < len(h.node.Content); i += 2 {
		if h.node.Content[i].Value == "links" {
			h.node.Content[i+1] = linksValue
			return
		}
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "links"}
	h.node.Content = append(h.node.Content, keyNode, linksValue)
}

func (h *Header) findValue(key string) *yaml.Node {
	if h.node == nil {
		return nil
	}
	for i := 0; i+1 < len(h.node.Content); i += 2 {
		if h.node.Content[i].Value == key {
			return h.node.Content[i+1]
		}
	}
	return nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// wikilinkRE matches `\[\[(.*?)(?:\|.*?)?\]\]`: a lazy `.*?` run up to the
// first "]]" it can reach, with an optional lazy "|alias" swallowed first.
// Because the capture is lazy-any-character rather than a character class
// excluding brackets, a nested run like "[[outer [[inner]] target]]" is
// NOT recognised as two links; it matches once, as far as "outer [[inner"
// before the first "]]", leaving nested brackets unrecognised rather than
// cleanly separated.
var wikilinkRE = regexp.MustCompile(`\[\[(.*?)(?:\|.*?)?\]\]`)

// ExtractWikilinks returns every wikilink target in body, trimmed of
// surrounding whitespace, deduplicated by first occurrence. A target drawn
// from a malformed nested-bracket run (see wikilinkRE) is returned as-is,
// brackets and all — the codec does not attempt to repair it.
func ExtractWikilinks(body string) []string {
	matches := wikilinkRE.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out
}
