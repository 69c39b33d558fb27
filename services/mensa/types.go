package mensa

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"mensafetch/lib/textutil"
)

// DishRecord is one extracted menu item. Any field may be missing;
// malformed source markup must not silently drop items, so a dish
// without a name is still a record.
type DishRecord struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Category     *string  `json:"category"`
	Zusatzstoffe []string `json:"zusatzstoffe"`
	Tags         []string `json:"tags"`
	PriceEur     *float64 `json:"price_eur"`
}

// CanonicalHash is the dish's content identity: the same
// name/description/tag-set always digests to the same value no matter
// which day or attempt it was observed in. Category and price stay out
// on purpose, they are snapshot-scoped.
func (r DishRecord) CanonicalHash() string {
	var name, description string
	if r.Name != nil {
		name = textutil.CanonicalKey(*r.Name)
	}
	if r.Description != nil {
		description = textutil.CanonicalKey(*r.Description)
	}

	tags := slices.Clone(r.Tags)
	slices.Sort(tags)
	tags = slices.Compact(tags)

	key := fmt.Sprintf("%s|%s|%s", name, description, strings.Join(tags, ","))
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
