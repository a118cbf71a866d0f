// Package convert turns scraped pages into clean text documents suitable
// for retrieval-store indexing.
package convert

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Elements dropped wholesale during text extraction.
var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"iframe":   true,
	"noscript": true,
}

// adClassRe matches class attributes of ad/tracking/consent chrome that
// buries actual content.
var adClassRe = regexp.MustCompile(`(?i)advertisement|\bads\b|ad-container|sponsored|tracking|analytics|cookie-banner|popup`)

// CleanHTML extracts readable text from raw HTML, dropping scripts, styles,
// navigation, footers, and ad/tracking elements, then normalizes whitespace.
// Malformed HTML is handled leniently by the parser; on a hard parse error
// the raw input is returned whitespace-normalized.
func CleanHTML(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return NormalizeWhitespace(rawHTML)
	}

	var b strings.Builder
	collectText(doc, &b)
	return NormalizeWhitespace(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		if droppedElements[n.Data] {
			return
		}
		if adClassRe.MatchString(attr(n, "class")) {
			return
		}
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var multiSpaceRe = regexp.MustCompile(` +`)
var multiNewlineRe = regexp.MustCompile(`\n{3,}`)

// NormalizeWhitespace applies NFC normalization, replaces tabs with spaces,
// collapses space runs, strips trailing whitespace per line, and caps
// consecutive blank lines at one.
func NormalizeWhitespace(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\t", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = multiSpaceRe.ReplaceAllString(strings.TrimRight(line, " "), " ")
	}
	text = strings.Join(lines, "\n")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// ExtractTitle pulls a page title from HTML: <title>, then the first <h1>,
// then og:title, falling back to the URL basename.
func ExtractTitle(rawHTML, pageURL string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err == nil {
		if t := findTitle(doc); t != "" {
			return t
		}
		if h1 := findElementText(doc, "h1"); h1 != "" {
			return h1
		}
		if og := findOGTitle(doc); og != "" {
			return og
		}
	}
	return titleFromURL(pageURL)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findElementText(n *html.Node, tag string) string {
	if n.Type == html.ElementNode && n.Data == tag {
		var b strings.Builder
		collectText(n, &b)
		return strings.TrimSpace(b.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findElementText(c, tag); t != "" {
			return t
		}
	}
	return ""
}

func findOGTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "meta" && attr(n, "property") == "og:title" {
		return strings.TrimSpace(attr(n, "content"))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findOGTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// titleFromURL derives a human-readable title from the URL path basename.
func titleFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Path == "" {
		return "Untitled"
	}
	path := strings.TrimRight(u.Path, "/")
	basename := path[strings.LastIndex(path, "/")+1:]
	if basename == "" {
		return "Untitled"
	}
	basename = strings.ReplaceAll(basename, "-", " ")
	basename = strings.ReplaceAll(basename, "_", " ")
	return titleCase(basename)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
