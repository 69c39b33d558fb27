package mensa

import (
	"log/slog"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// day containers carry ids like `mensa_essen_tag_2025123` where the
// number is year*1000 + dayOfYear
var dayTokenRegex = regexp.MustCompile(`_tag_(\d+)`)

// a dish element must carry both marker attributes, either alone
// also appears on unrelated list items
const dishSelector = "li[data-gid][ref]"

type dayContainer struct {
	token int
	sel   *goquery.Selection
}

// locateDishes selects the dish fragments for one day. An exact match
// on the requested token wins; otherwise the earliest day container is
// used (with a warning when a token was requested but absent). A page
// without day containers is treated as a single implicit one.
func locateDishes(doc *goquery.Document, dateToken string) *goquery.Selection {
	var containers []dayContainer
	doc.Find("div[id]").Each(func(_ int, div *goquery.Selection) {
		id, _ := div.Attr("id")
		m := dayTokenRegex.FindStringSubmatch(id)
		if m == nil {
			return
		}
		token, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		containers = append(containers, dayContainer{token: token, sel: div})
	})

	if len(containers) == 0 {
		return doc.Find(dishSelector)
	}

	if dateToken != "" {
		for _, c := range containers {
			if strconv.Itoa(c.token) == dateToken {
				return c.sel.Find(dishSelector)
			}
		}
		slog.Warn("requested date not found in document, using earliest day", "date", dateToken)
	}

	earliest := containers[0]
	for _, c := range containers[1:] {
		if c.token < earliest.token {
			earliest = c
		}
	}
	return earliest.sel.Find(dishSelector)
}
