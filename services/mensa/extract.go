package mensa

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"mensafetch/lib/htmlutil"
	"mensafetch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var priceRegex = regexp.MustCompile(`(\d+[.,]\d{2})\s*€`)
var quotedTokenRegex = regexp.MustCompile(`"([^"]+)"`)
var alnumRunRegex = regexp.MustCompile(`[A-Za-z0-9]+`)

// extractDish turns one dish fragment into a structured record. Every
// string that leaves the document goes through textutil.Normalize
// first.
func extractDish(node *goquery.Selection, dictionary map[string]string) DishRecord {
	text := textutil.Normalize(htmlutil.FlatText(node))
	price := priceFromText(text)
	tags := dietaryTags(node)
	codes := additiveCodes(node, dictionary)
	name := dishName(node)
	category := categoryFromClass(node.AttrOr("class", ""))
	description := dishDescription(node, name, codes)

	return DishRecord{
		Name:         name,
		Description:  description,
		Category:     category,
		Zusatzstoffe: codes,
		Tags:         tags,
		PriceEur:     price,
	}
}

func priceFromText(text string) *float64 {
	m := priceRegex.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &value
}

// dietaryTags collects the data-type of every icon in document order.
// Unlike additive codes this list is not deduplicated.
func dietaryTags(node *goquery.Selection) []string {
	tags := []string{}
	node.Find("img[data-type]").Each(func(_ int, img *goquery.Selection) {
		value, _ := img.Attr("data-type")
		if value == "" {
			return
		}
		tags = append(tags, textutil.Normalize(value))
	})
	return tags
}

// additiveCodes reads the fragment's ref attribute, which carries all
// additive codes as quoted tokens. Codes unknown to the page's
// dictionary are noise and dropped, unless no dictionary was found at
// all.
func additiveCodes(node *goquery.Selection, dictionary map[string]string) []string {
	refAttr := node.AttrOr("ref", "")
	if refAttr == "" {
		refAttr = node.AttrOr("data-ref", "")
	}
	if refAttr == "" {
		return []string{}
	}

	unescaped := textutil.Normalize(html.UnescapeString(refAttr))
	var parts []string
	for _, m := range quotedTokenRegex.FindAllStringSubmatch(unescaped, -1) {
		parts = append(parts, m[1])
	}
	if len(parts) == 0 {
		parts = alnumRunRegex.FindAllString(unescaped, -1)
	}

	codes := []string{}
	seen := map[string]bool{}
	for _, p := range parts {
		code := textutil.Normalize(p)
		if code == "" {
			continue
		}
		if len(dictionary) > 0 {
			if _, known := dictionary[code]; !known {
				continue
			}
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

func dishName(node *goquery.Selection) *string {
	heading := node.Find("h3").First()
	if heading.Length() == 0 {
		return nil
	}
	name := textutil.Normalize(heading.Text())
	if name == "" {
		return nil
	}
	return &name
}

// categoryFromClass isolates the source format's positional
// convention: the third class token on a dish element is its category
// name. If the format ever grows a semantic attribute, this is the
// only place to change.
func categoryFromClass(classAttr string) *string {
	tokens := strings.Fields(classAttr)
	if len(tokens) < 3 {
		return nil
	}
	category := textutil.Normalize(tokens[2])
	return &category
}

// dishDescription joins the fragment's remaining text nodes: anything
// that is not the name, a price, or an additive code marker. The price
// frequently shares a text node with descriptive text on single-line
// pages, so price matches are stripped out of a node rather than
// discarding the whole node.
func dishDescription(node *goquery.Selection, name *string, codes []string) *string {
	var parts []string
	seen := map[string]bool{}
	for _, raw := range htmlutil.TextNodes(node) {
		t := textutil.Normalize(raw)
		t = textutil.Normalize(priceRegex.ReplaceAllString(t, ""))
		if t == "" {
			continue
		}
		if matchesAdditiveCode(t, codes) {
			continue
		}
		if name != nil && t == *name {
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		parts = append(parts, t)
	}

	description := strings.TrimSpace(strings.Join(parts, " "))
	if description == "" {
		return nil
	}
	return &description
}

func matchesAdditiveCode(t string, codes []string) bool {
	for _, code := range codes {
		if t == code || strings.HasPrefix(t, "("+code) {
			return true
		}
	}
	return false
}
