package mensa

import (
	"encoding/json"
	"regexp"
	"strings"
)

// the menu pages assign their additive table in inline javascript,
// one `zusatzstoffe["CODE"] = JSON.parse('{...}')` per code
var additiveAssignRegex = regexp.MustCompile(
	`zusatzstoffe\["([^"]+)"\]\s*=\s*JSON\.parse\(("[^"]*"|'[^']*')\)`,
)

type additivePayload struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// ParseAdditiveDictionary scans a raw document for the embedded
// additive table and returns a code -> label mapping. Individual
// malformed entries are kept with an empty label rather than aborting
// the scan; when a code is assigned twice the last occurrence wins.
func ParseAdditiveDictionary(document string) map[string]string {
	mapping := map[string]string{}
	for _, m := range additiveAssignRegex.FindAllStringSubmatch(document, -1) {
		code := m[1]
		payload := m[2][1 : len(m[2])-1]

		var obj additivePayload
		err := json.Unmarshal([]byte(payload), &obj)
		if err != nil {
			// the inline script escapes forward slashes, try again
			// with those repaired before giving up
			repaired := strings.ReplaceAll(payload, `\/`, "/")
			if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
				mapping[code] = ""
				continue
			}
		}

		label := obj.Id
		if label == "" {
			label = obj.Name
		}
		mapping[code] = label
	}
	return mapping
}
