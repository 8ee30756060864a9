// Package xliff implements reading and patching of XLIFF translation files.
//
// Supported document shapes:
//   - XLIFF 1.2 — <file><body><trans-unit><source/><target/>
//   - XLIFF 2.0 — <file><unit><segment><source/><target/>
//
// The parser keeps the original file bytes as the document skeleton and
// records byte offsets for every <target> element (or the insertion point
// where one is missing). Marshal splices translated targets into the
// skeleton, so markup, namespace declarations, comments, indentation, and
// entity encoding of everything the tool did not touch survive verbatim.
// A document with no modified units marshals back byte-identical.
//
// Units carrying translate="no" are parsed but excluded from all
// translation-related accessors (Pending, Stats).
package xliff

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ErrFormat reports malformed XML or a document that lacks the expected
// XLIFF structure. All parse failures wrap it.
var ErrFormat = errors.New("invalid XLIFF document")

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Unit represents one translatable segment: a <trans-unit> in XLIFF 1.2 or
// a single <segment> of a <unit> in XLIFF 2.0.
type Unit struct {
	// ID is the enclosing unit's id attribute. For 2.0 units with more than
	// one segment, segments after the first get "id@1", "id@2", ….
	ID string
	// Source is the decoded source text. Inline elements (<x/>, <g>, <ph>)
	// are reconstructed as literal markup inside the string.
	Source string
	// Target is the decoded target text. Empty when HasTarget is false or
	// the element was empty.
	Target string
	// HasTarget reports whether a <target> element was present in the input.
	HasTarget bool
	// State is the translation state: the target's state attribute in 1.2,
	// the segment's in 2.0. Empty when absent.
	State string
	// Translate reflects the translate="…" attribute. Defaults to true.
	Translate bool
	// SourceCDATA / TargetCDATA record whether the source/target content was
	// wrapped in <![CDATA[...]]> — the wrapper is restored on write.
	SourceCDATA bool
	TargetCDATA bool

	targetAttrs []xml.Attr // original <target> attributes (1.2 state updated here)
	segAttrs    []xml.Attr // 2.0 <segment> attributes (state lives here)

	// splice bookkeeping, byte offsets into Document.raw
	targetStart int64 // -1 when no target element exists
	targetEnd   int64
	insertAt    int64 // just past </source>; where a new target goes
	segTagStart int64 // 2.0 only: offsets of the <segment …> start tag
	segTagEnd   int64
	dirty       bool
}

// Document is a parsed XLIFF file: the original bytes plus the unit index.
type Document struct {
	// Version is the xliff version attribute ("1.2" or "2.0").
	Version string
	// SourceLang / TargetLang come from the first <file> element.
	// TargetLang may be empty.
	SourceLang string
	TargetLang string
	// Units in document order.
	Units []*Unit

	raw  []byte
	byID map[string]*Unit
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses an XLIFF file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses XLIFF data. The input bytes are retained as the marshal
// skeleton; callers must not modify them afterwards.
func Parse(data []byte) (*Document, error) {
	d := &Document{
		raw:  data,
		byID: make(map[string]*Unit),
	}

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	// Tolerate HTML entities (&nbsp; and friends) that show up in
	// hand-edited localization files.
	dec.Entity = xml.HTMLEntity

	sawRoot := false
	fileCount := 0

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			// Syntax errors surface through the strict re-check below;
			// EOF ends the walk.
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "xliff":
				sawRoot = true
				d.Version = attrValue(t.Attr, "version")
				// 2.0 declares the language pair on the root element.
				d.SourceLang = attrValue(t.Attr, "srcLang")
				d.TargetLang = attrValue(t.Attr, "trgLang")

			case "file":
				if !sawRoot {
					return nil, fmt.Errorf("%w: <file> outside <xliff> root", ErrFormat)
				}
				fileCount++
				if fileCount == 1 {
					d.SourceLang = firstNonEmpty(d.SourceLang, attrValue(t.Attr, "source-language"))
					d.TargetLang = firstNonEmpty(d.TargetLang, attrValue(t.Attr, "target-language"))
				}

			case "trans-unit":
				if !sawRoot {
					return nil, fmt.Errorf("%w: <trans-unit> outside <xliff> root", ErrFormat)
				}
				u, end, err := parseTransUnit(dec, t)
				if err != nil {
					return nil, err
				}
				u.SourceCDATA = scanCDATA(data, off, end, "source")
				u.TargetCDATA = scanCDATA(data, off, end, "target")
				if err := d.addUnit(u); err != nil {
					return nil, err
				}

			case "unit":
				if !sawRoot {
					return nil, fmt.Errorf("%w: <unit> outside <xliff> root", ErrFormat)
				}
				units, err := parseUnit20(dec, t, data)
				if err != nil {
					return nil, err
				}
				for _, u := range units {
					if err := d.addUnit(u); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	// The walk above stops silently at the first syntax error, so re-check
	// well-formedness explicitly.
	if err := checkWellFormed(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: root element is not <xliff>", ErrFormat)
	}
	if fileCount == 0 {
		return nil, fmt.Errorf("%w: no <file> element", ErrFormat)
	}
	if d.Version == "" {
		d.Version = "1.2"
	}

	return d, nil
}

// checkWellFormed runs a full strict decode over the document.
func checkWellFormed(data []byte) error {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Entity = xml.HTMLEntity
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (d *Document) addUnit(u *Unit) error {
	if u.ID == "" {
		return fmt.Errorf("%w: translation unit without id attribute", ErrFormat)
	}
	if _, dup := d.byID[u.ID]; dup {
		return fmt.Errorf("%w: duplicate unit id %q", ErrFormat, u.ID)
	}
	d.Units = append(d.Units, u)
	d.byID[u.ID] = u
	return nil
}

// parseTransUnit parses a 1.2 <trans-unit> already opened. Returns the unit
// and the byte offset just past </trans-unit>.
func parseTransUnit(dec *xml.Decoder, elem xml.StartElement) (*Unit, int64, error) {
	u := newUnit(elem.Attr)

	for {
		childOff := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: reading <trans-unit id=%q>: %v", ErrFormat, u.ID, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "source":
				text, err := readInline(dec)
				if err != nil {
					return nil, 0, fmt.Errorf("%w: reading <source> of unit %q: %v", ErrFormat, u.ID, err)
				}
				u.Source = text
				u.insertAt = dec.InputOffset()
			case "target":
				u.HasTarget = true
				u.targetAttrs = append([]xml.Attr(nil), t.Attr...)
				u.State = attrValue(t.Attr, "state")
				text, err := readInline(dec)
				if err != nil {
					return nil, 0, fmt.Errorf("%w: reading <target> of unit %q: %v", ErrFormat, u.ID, err)
				}
				u.Target = text
				u.targetStart = childOff
				u.targetEnd = dec.InputOffset()
			default:
				if err := dec.Skip(); err != nil {
					return nil, 0, fmt.Errorf("%w: reading <trans-unit id=%q>: %v", ErrFormat, u.ID, err)
				}
			}
		case xml.EndElement:
			// insertAt is only ever set past </source>; zero means the
			// unit had none and a merged target would have nowhere to go.
			if u.insertAt == 0 {
				return nil, 0, fmt.Errorf("%w: unit %q has no <source> element", ErrFormat, u.ID)
			}
			return u, dec.InputOffset(), nil
		}
	}
}

// parseUnit20 parses a 2.0 <unit> already opened; each <segment> becomes a
// Unit of its own.
func parseUnit20(dec *xml.Decoder, elem xml.StartElement, raw []byte) ([]*Unit, error) {
	id := attrValue(elem.Attr, "id")
	translate := !strings.EqualFold(attrValue(elem.Attr, "translate"), "no")

	var units []*Unit
	segIdx := 0

	for {
		segOff := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: reading <unit id=%q>: %v", ErrFormat, id, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "segment" {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("%w: reading <unit id=%q>: %v", ErrFormat, id, err)
				}
				continue
			}

			u := &Unit{
				ID:          id,
				Translate:   translate,
				targetStart: -1,
				segTagStart: segOff,
				segTagEnd:   dec.InputOffset(),
				segAttrs:    append([]xml.Attr(nil), t.Attr...),
			}
			if segIdx > 0 {
				u.ID = fmt.Sprintf("%s@%d", id, segIdx)
			}
			u.State = attrValue(t.Attr, "state")

			if err := parseSegmentBody(dec, u); err != nil {
				return nil, err
			}
			segEnd := dec.InputOffset()
			u.SourceCDATA = scanCDATA(raw, segOff, segEnd, "source")
			u.TargetCDATA = scanCDATA(raw, segOff, segEnd, "target")

			units = append(units, u)
			segIdx++

		case xml.EndElement:
			if t.Name.Local == "unit" {
				return units, nil
			}
		}
	}
}

// parseSegmentBody consumes the children of a <segment> up to </segment>.
func parseSegmentBody(dec *xml.Decoder, u *Unit) error {
	for {
		childOff := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: reading segment of unit %q: %v", ErrFormat, u.ID, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "source":
				text, err := readInline(dec)
				if err != nil {
					return fmt.Errorf("%w: reading <source> of unit %q: %v", ErrFormat, u.ID, err)
				}
				u.Source = text
				u.insertAt = dec.InputOffset()
			case "target":
				u.HasTarget = true
				u.targetAttrs = append([]xml.Attr(nil), t.Attr...)
				text, err := readInline(dec)
				if err != nil {
					return fmt.Errorf("%w: reading <target> of unit %q: %v", ErrFormat, u.ID, err)
				}
				u.Target = text
				u.targetStart = childOff
				u.targetEnd = dec.InputOffset()
			default:
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("%w: reading segment of unit %q: %v", ErrFormat, u.ID, err)
				}
			}
		case xml.EndElement:
			if u.insertAt == 0 {
				return fmt.Errorf("%w: segment of unit %q has no <source> element", ErrFormat, u.ID)
			}
			return nil
		}
	}
}

func newUnit(attrs []xml.Attr) *Unit {
	return &Unit{
		ID:          attrValue(attrs, "id"),
		Translate:   !strings.EqualFold(attrValue(attrs, "translate"), "no"),
		targetStart: -1,
		segTagStart: -1,
	}
}

// readInline reads the decoded inner content of an element until its
// matching close tag, reconstructing inline child elements (<x/>, <g>,
// <ph>) as literal markup. Entity references arrive already resolved.
func readInline(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.Comment, xml.ProcInst, xml.Directive:
			// dropped from the decoded text; the skeleton keeps them
		case xml.StartElement:
			inner, err := readInline(dec)
			if err != nil {
				return "", err
			}
			name := tagName(t.Name)
			if inner == "" {
				fmt.Fprintf(&b, "<%s%s/>", name, attrString(t.Attr))
			} else {
				fmt.Fprintf(&b, "<%s%s>%s</%s>", name, attrString(t.Attr), inner, name)
			}
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

// ---------------------------------------------------------------------------
// CDATA detection
//
// Go's encoding/xml decoder transparently unwraps CDATA sections into
// CharData, so the wrapper has to be detected on the raw bytes of each
// unit/segment block before splicing values back.
// ---------------------------------------------------------------------------

var (
	reSourceCDATA = regexp.MustCompile(`(?s)<source[^>]*>\s*<!\[CDATA\[`)
	reTargetCDATA = regexp.MustCompile(`(?s)<target[^>]*>\s*<!\[CDATA\[`)
)

func scanCDATA(raw []byte, start, end int64, elem string) bool {
	if start < 0 || end > int64(len(raw)) || start >= end {
		return false
	}
	block := raw[start:end]
	if elem == "source" {
		return reSourceCDATA.Match(block)
	}
	return reTargetCDATA.Match(block)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// translationStates that mark a present target as still pending.
var pendingStates = map[string]bool{
	"needs-translation": true, // 1.2
	"new":               true, // 1.2
	"initial":           true, // 2.0
}

// NeedsTranslation reports whether the unit is missing a usable translation:
// no target element, an empty target, or a pending state flag.
func (u *Unit) NeedsTranslation() bool {
	if !u.Translate {
		return false
	}
	if !u.HasTarget || u.Target == "" {
		return true
	}
	return pendingStates[u.State]
}

// SetTarget records a translation for the unit: the target text is replaced,
// the state becomes "translated", and the CDATA wrapper of the original
// target (or of the source, when the unit had none) is kept.
func (u *Unit) SetTarget(text string) {
	if !u.HasTarget {
		u.TargetCDATA = u.SourceCDATA
	}
	u.Target = text
	u.HasTarget = true
	u.State = "translated"
	u.dirty = true
}

// Unit returns the unit with the given id, or nil.
func (d *Document) Unit(id string) *Unit {
	return d.byID[id]
}

// Pending returns the units that need translation, in document order.
// With force, every translatable unit is returned regardless of its
// current target.
func (d *Document) Pending(force bool) []*Unit {
	var out []*Unit
	for _, u := range d.Units {
		if !u.Translate {
			continue
		}
		if force || u.NeedsTranslation() {
			out = append(out, u)
		}
	}
	return out
}

// Stats returns (total, translated, untranslated) counts over translatable
// units.
func (d *Document) Stats() (total, translated, untranslated int) {
	for _, u := range d.Units {
		if !u.Translate {
			continue
		}
		total++
		if u.NeedsTranslation() {
			untranslated++
		} else {
			translated++
		}
	}
	return
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

type splice struct {
	start, end int64
	text       string
}

// Marshal produces the output document. Unmodified byte ranges of the input
// are emitted verbatim; only units whose target was set through SetTarget
// are spliced. A document with no modified units returns the input bytes
// unchanged.
func (d *Document) Marshal() []byte {
	var edits []splice

	for _, u := range d.Units {
		if !u.dirty {
			continue
		}

		// 2.0: rewrite the <segment …> start tag so the state attribute
		// reflects the new translation state.
		if u.segTagStart >= 0 {
			attrs := setAttr(u.segAttrs, "state", u.State)
			edits = append(edits, splice{
				start: u.segTagStart,
				end:   u.segTagEnd,
				text:  "<segment" + attrString(attrs) + ">",
			})
		}

		target := d.renderTarget(u)
		if u.targetStart >= 0 {
			edits = append(edits, splice{start: u.targetStart, end: u.targetEnd, text: target})
		} else {
			indent := indentAt(d.raw, u.insertAt)
			edits = append(edits, splice{
				start: u.insertAt,
				end:   u.insertAt,
				text:  "\n" + indent + target,
			})
		}
	}

	if len(edits) == 0 {
		return d.raw
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(d.raw) + len(edits)*64)
	var pos int64
	for _, e := range edits {
		b.Write(d.raw[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.Write(d.raw[pos:])
	return []byte(b.String())
}

// WriteFile marshals the document and writes it to path.
func (d *Document) WriteFile(path string) error {
	data := d.Marshal()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// renderTarget builds the complete <target …>…</target> element for a unit.
func (d *Document) renderTarget(u *Unit) string {
	attrs := u.targetAttrs
	if u.segTagStart < 0 {
		// 1.2 carries the state on the target element itself.
		attrs = setAttr(attrs, "state", u.State)
	}
	return "<target" + attrString(attrs) + ">" + marshalValue(u.Target, u.TargetCDATA) + "</target>"
}

// marshalValue encodes a target value for XML output. CDATA content is
// wrapped verbatim; values that parse as well-formed inline markup are
// emitted as-is to keep placeholder elements intact; everything else is
// XML-escaped, so a stray "a < b" from the engine can never produce an
// invalid document.
func marshalValue(s string, useCDATA bool) string {
	if useCDATA {
		return "<![CDATA[" + s + "]]>"
	}
	if strings.Contains(s, "<") && wellFormedFragment(s) {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// wellFormedFragment reports whether s can be embedded in an element body
// as-is. Loose angle brackets ("a < b > c") disqualify it.
func wellFormedFragment(s string) bool {
	return checkWellFormed([]byte("<v>"+s+"</v>")) == nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// setAttr returns a copy of attrs with name set to value (appended when
// absent, removed when value is empty).
func setAttr(attrs []xml.Attr, name, value string) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs)+1)
	found := false
	for _, a := range attrs {
		if a.Name.Local == name {
			found = true
			if value == "" {
				continue
			}
			a.Value = value
		}
		out = append(out, a)
	}
	if !found && value != "" {
		out = append(out, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	}
	return out
}

// tagName renders an element name for output. Prefixes are not recoverable
// from the decoder (it resolves them to namespace URLs), so inline elements
// are written with their local name; the xml: prefix is kept.
func tagName(n xml.Name) string {
	if n.Space == "xml" {
		return "xml:" + n.Local
	}
	return n.Local
}

func attrName(n xml.Name) string {
	switch n.Space {
	case "":
		return n.Local
	case "xml":
		return "xml:" + n.Local
	case "xmlns":
		return "xmlns:" + n.Local
	default:
		return n.Local
	}
}

func attrString(attrs []xml.Attr) string {
	var b strings.Builder
	for _, a := range attrs {
		v := a.Value
		v = strings.ReplaceAll(v, "&", "&amp;")
		v = strings.ReplaceAll(v, "<", "&lt;")
		v = strings.ReplaceAll(v, `"`, "&quot;")
		fmt.Fprintf(&b, ` %s="%s"`, attrName(a.Name), v)
	}
	return b.String()
}

// indentAt returns the indentation of the line containing the byte offset,
// used to align an inserted <target> under its <source>.
func indentAt(raw []byte, off int64) string {
	lineStart := int64(0)
	for i := off - 1; i >= 0; i-- {
		if raw[i] == '\n' {
			lineStart = i + 1
			break
		}
	}
	end := lineStart
	for end < int64(len(raw)) && (raw[end] == ' ' || raw[end] == '\t') {
		end++
	}
	return string(raw[lineStart:end])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
