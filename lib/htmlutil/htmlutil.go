package htmlutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextNodes returns the data of every text node under the selection
// in document order.
func TextNodes(sel *goquery.Selection) []string {
	var out []string
	for _, n := range sel.Nodes {
		collectTextNodes(n, &out)
	}
	return out
}

func collectTextNodes(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		*out = append(*out, node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		collectTextNodes(child, out)
		child = child.NextSibling
	}
}

// FlatText joins all text nodes under the selection with single
// spaces, the way a browser would roughly render the fragment.
func FlatText(sel *goquery.Selection) string {
	parts := TextNodes(sel)
	nonEmpty := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
