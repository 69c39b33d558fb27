package mensa

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument extracts the dish records for one day out of a raw
// menu page, along with the page's additive dictionary. The pages are
// often served as one long line, so everything downstream works off
// heuristics rather than pretty markup.
func ParseDocument(document, dateToken string) ([]DishRecord, map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, nil, err
	}

	dictionary := ParseAdditiveDictionary(document)

	records := []DishRecord{}
	locateDishes(doc, dateToken).Each(func(_ int, node *goquery.Selection) {
		records = append(records, extractDish(node, dictionary))
	})
	return records, dictionary, nil
}
