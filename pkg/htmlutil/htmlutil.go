package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text nodes under node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// GetTextNodes returns the text of every text node under node, in document order.
func GetTextNodes(node *html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.TextNode {
			out = append(out, n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims s and replaces every run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// SelectionText is the whitespace-collapsed text of the first node in sel,
// empty if sel matched nothing.
func SelectionText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return CollapseWhitespace(GetText(sel.Nodes[0]))
}

// NormalizeKey lowercases a label and replaces spaces with underscores,
// ex. "Full Name" becomes "full_name".
func NormalizeKey(label string) string {
	label = strings.ToLower(CollapseWhitespace(label))
	return strings.ReplaceAll(label, " ", "_")
}
