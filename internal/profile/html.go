package profile

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is the parsed, visible content of one profile page.
type Page struct {
	Title    string
	Headings []string // h1-h3 in document order
	Text     string   // visible text, one block per line
	Images   []Image
}

// Image is an <img> tag with the text of its enclosing element.
type Image struct {
	Src     string
	Alt     string
	Title   string
	Context string
}

// NameCandidates are the headings followed by the title, the order names are searched in.
func (p *Page) NameCandidates() []string {
	out := append([]string(nil), p.Headings...)
	if p.Title != "" {
		out = append(out, p.Title)
	}
	return out
}

var hiddenElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Dt: true, atom.Dd: true, atom.Title: true,
	atom.Form: true, atom.Hr: true,
}

// Parse reads an HTML document. The parser is lenient; only read errors surface.
func Parse(body []byte) (*Page, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	p := &Page{}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if hiddenElements[n.DataAtom] {
				return
			}
			switch n.DataAtom {
			case atom.Title:
				if p.Title == "" {
					p.Title = nodeText(n)
				}
			case atom.H1, atom.H2, atom.H3:
				if h := nodeText(n); h != "" {
					p.Headings = append(p.Headings, h)
				}
			case atom.Img:
				p.Images = append(p.Images, Image{
					Src:     attr(n, "src"),
					Alt:     attr(n, "alt"),
					Title:   attr(n, "title"),
					Context: parentText(n),
				})
			case atom.Td, atom.Th:
				sb.WriteString("  ")
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteByte('\n')
		}
	}
	walk(root)
	p.Text = tidyLines(sb.String())
	return p, nil
}

// tidyLines trims every line and drops empty ones. Runs of spaces inside a line
// are kept at most two wide so column gaps survive.
func tidyLines(s string) string {
	s = strings.NewReplacer("\u00a0", " ", "\t", " ", "\r", "").Replace(s)
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for strings.Contains(line, "   ") {
			line = strings.ReplaceAll(line, "   ", "  ")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// nodeText is the visible text under n with line breaks flattened; inner
// spacing is left as written.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && hiddenElements[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	t := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ", "\u00a0", " ").Replace(sb.String())
	return strings.TrimSpace(t)
}

func parentText(n *html.Node) string {
	if n.Parent == nil {
		return ""
	}
	t := []rune(nodeText(n.Parent))
	if len(t) > 200 {
		t = t[:200]
	}
	return string(t)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
