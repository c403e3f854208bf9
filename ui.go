// ui.go - parser for the declarative ".pa" XML-like UI format, per
// spec.md §4.8.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is the small taxonomy named in spec.md §4.8.
type ParseError struct {
	Kind    ParseErrorKind
	Details string
}

type ParseErrorKind int

const (
	ErrUnexpectedEnd ParseErrorKind = iota
	ErrExpectedTag
	ErrExpectedAttribute
	ErrInvalidNumber
	ErrMismatchedClose
	ErrNotFound
)

func (e *ParseError) Error() string {
	names := [...]string{"unexpected end", "expected tag", "expected attribute", "invalid number", "mismatched close", "not found"}
	return fmt.Sprintf("ui parse: %s: %s", names[e.Kind], e.Details)
}

// ElementKind enumerates the tags spec.md §4.8 names, with aliases
// folded to their canonical form.
type ElementKind string

const (
	ElLabel   ElementKind = "label"
	ElButton  ElementKind = "button"
	ElTextbox ElementKind = "textbox"
	ElPanel   ElementKind = "panel"
	ElVBox    ElementKind = "vbox"
	ElHBox    ElementKind = "hbox"
	ElSpacer  ElementKind = "spacer"
)

var tagAliases = map[string]ElementKind{
	"label": ElLabel, "text": ElLabel,
	"button": ElButton, "btn": ElButton,
	"textbox": ElTextbox, "input": ElTextbox,
	"panel": ElPanel,
	"vbox":  ElVBox,
	"hbox":  ElHBox,
	"spacer": ElSpacer,
}

// Element is one node of the parsed UI tree.
type Element struct {
	Kind     ElementKind
	Attrs    map[string]string
	Children []*Element
}

func (e *Element) Attr(name, def string) string {
	if v, ok := e.Attrs[name]; ok {
		return v
	}
	return def
}

func (e *Element) AttrInt(name string, def int) (int, error) {
	v, ok := e.Attrs[name]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{ErrInvalidNumber, fmt.Sprintf("%s=%q", name, v)}
	}
	return n, nil
}

// AppDoc is a fully parsed <app> document.
type AppDoc struct {
	Title   string
	Width   int
	Height  int
	X, Y    int
	HasXY   bool
	Script  string
	Root    []*Element
}

type uiParser struct {
	src string
	pos int
}

// ParseApp parses a full .pa document, per spec.md §4.8's top-level form.
func ParseApp(src string) (*AppDoc, error) {
	p := &uiParser{src: src}
	p.skipWhitespaceAndComments()
	tag, attrs, selfClose, err := p.parseOpenTag()
	if err != nil {
		return nil, err
	}
	if tag != "app" {
		return nil, &ParseError{ErrExpectedTag, "expected <app>, got <" + tag + ">"}
	}
	doc := &AppDoc{Title: attrs["title"]}
	if w, err := strconv.Atoi(attrs["width"]); err == nil {
		doc.Width = w
	} else if attrs["width"] != "" {
		return nil, &ParseError{ErrInvalidNumber, "width=" + attrs["width"]}
	}
	if h, err := strconv.Atoi(attrs["height"]); err == nil {
		doc.Height = h
	} else if attrs["height"] != "" {
		return nil, &ParseError{ErrInvalidNumber, "height=" + attrs["height"]}
	}
	if xs, ok := attrs["x"]; ok {
		x, err := strconv.Atoi(xs)
		if err != nil {
			return nil, &ParseError{ErrInvalidNumber, "x=" + xs}
		}
		doc.X = x
		doc.HasXY = true
	}
	if ys, ok := attrs["y"]; ok {
		y, err := strconv.Atoi(ys)
		if err != nil {
			return nil, &ParseError{ErrInvalidNumber, "y=" + ys}
		}
		doc.Y = y
		doc.HasXY = true
	}
	if selfClose {
		return doc, nil
	}

	for {
		p.skipWhitespaceAndComments()
		if p.atClose("app") {
			p.consumeClose("app")
			break
		}
		if p.pos >= len(p.src) {
			return nil, &ParseError{ErrUnexpectedEnd, "missing </app>"}
		}
		if p.peekTagName() == "script" {
			body, err := p.parseScriptTag()
			if err != nil {
				return nil, err
			}
			doc.Script = body
			continue
		}
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		doc.Root = append(doc.Root, el)
	}
	return doc, nil
}

func (p *uiParser) skipWhitespaceAndComments() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		if strings.HasPrefix(p.src[p.pos:], "<!--") {
			end := strings.Index(p.src[p.pos:], "-->")
			if end == -1 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 3
			continue
		}
		break
	}
}

func (p *uiParser) peekTagName() string {
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return ""
	}
	i := p.pos + 1
	start := i
	for i < len(p.src) && isIdentPart(p.src[i]) {
		i++
	}
	return p.src[start:i]
}

func (p *uiParser) atClose(tag string) bool {
	return strings.HasPrefix(p.src[p.pos:], "</"+tag)
}

func (p *uiParser) consumeClose(tag string) error {
	if !p.atClose(tag) {
		return &ParseError{ErrMismatchedClose, "expected </" + tag + ">"}
	}
	end := strings.IndexByte(p.src[p.pos:], '>')
	if end == -1 {
		return &ParseError{ErrUnexpectedEnd, "unterminated close tag"}
	}
	p.pos += end + 1
	return nil
}

// parseOpenTag parses `<name attr="val" ...>` or `<name .../>` and
// returns whether it was self-closing.
func (p *uiParser) parseOpenTag() (string, map[string]string, bool, error) {
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return "", nil, false, &ParseError{ErrExpectedTag, "expected '<'"}
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", nil, false, &ParseError{ErrExpectedTag, "empty tag name"}
	}
	name := p.src[start:p.pos]
	attrs := map[string]string{}
	for {
		p.skipSpaces()
		if p.pos >= len(p.src) {
			return "", nil, false, &ParseError{ErrUnexpectedEnd, "unterminated tag"}
		}
		if p.src[p.pos] == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '>' {
			p.pos += 2
			return name, attrs, true, nil
		}
		if p.src[p.pos] == '>' {
			p.pos++
			return name, attrs, false, nil
		}
		key, val, err := p.parseAttr()
		if err != nil {
			return "", nil, false, err
		}
		attrs[key] = val
	}
}

func (p *uiParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *uiParser) parseAttr() (string, string, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", "", &ParseError{ErrExpectedAttribute, "expected attribute name"}
	}
	key := p.src[start:p.pos]
	p.skipSpaces()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return "", "", &ParseError{ErrExpectedAttribute, "expected '=' after " + key}
	}
	p.pos++
	p.skipSpaces()
	if p.pos >= len(p.src) || p.src[p.pos] != '"' {
		return "", "", &ParseError{ErrExpectedAttribute, "expected quoted value for " + key}
	}
	p.pos++
	vstart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", "", &ParseError{ErrUnexpectedEnd, "unterminated attribute value"}
	}
	val := p.src[vstart:p.pos]
	p.pos++
	return key, val, nil
}

// parseScriptTag captures <script> ... </script> verbatim.
func (p *uiParser) parseScriptTag() (string, error) {
	_, _, selfClose, err := p.parseOpenTag()
	if err != nil {
		return "", err
	}
	if selfClose {
		return "", nil
	}
	end := strings.Index(p.src[p.pos:], "</script>")
	if end == -1 {
		return "", &ParseError{ErrUnexpectedEnd, "missing </script>"}
	}
	body := p.src[p.pos : p.pos+end]
	p.pos += end
	if err := p.consumeClose("script"); err != nil {
		return "", err
	}
	return body, nil
}

func (p *uiParser) parseElement() (*Element, error) {
	name, attrs, selfClose, err := p.parseOpenTag()
	if err != nil {
		return nil, err
	}
	kind, ok := tagAliases[name]
	if !ok {
		return nil, &ParseError{ErrExpectedTag, "unknown element <" + name + ">"}
	}
	el := &Element{Kind: kind, Attrs: attrs}
	if selfClose {
		return el, nil
	}
	for {
		p.skipWhitespaceAndComments()
		if p.atClose(name) {
			if err := p.consumeClose(name); err != nil {
				return nil, err
			}
			break
		}
		if p.pos >= len(p.src) {
			return nil, &ParseError{ErrUnexpectedEnd, "missing </" + name + ">"}
		}
		child, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}
