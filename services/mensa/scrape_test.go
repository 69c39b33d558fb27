package mensa

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }

const sampleDoc = `<html><head><script>
zusatzstoffe["1"] = JSON.parse('{"id":"gluten"}');
zusatzstoffe["2"] = JSON.parse('{"id":"lactose"}');
</script></head><body>
<div id="mensa_essen_tag_2025123"><ul>
<li data-gid ref='"1" "2"'><h3>Soup</h3>Tomato soup 3,50€</li>
</ul></div>
</body></html>`

func TestParseDocumentEndToEnd(t *testing.T) {
	records, dictionary, err := ParseDocument(sampleDoc, "2025123")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"1": "gluten", "2": "lactose"}, dictionary)

	expect := []DishRecord{{
		Name:         strptr("Soup"),
		Description:  strptr("Tomato soup"),
		Category:     nil,
		Zusatzstoffe: []string{"1", "2"},
		Tags:         []string{},
		PriceEur:     f64ptr(3.50),
	}}
	if diff := cmp.Diff(expect, records); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestParseAdditiveDictionary(t *testing.T) {
	doc := `<script>
zusatzstoffe["1"] = JSON.parse('{"id":"gluten"}');
zusatzstoffe["WEI"] = JSON.parse('{"name":"Weizen"}');
zusatzstoffe["SEL"] = JSON.parse('{"other":"field"}');
zusatzstoffe["BAD"] = JSON.parse('{broken');
zusatzstoffe["1"] = JSON.parse('{"id":"wheat"}');
</script>`

	mapping := ParseAdditiveDictionary(doc)
	require.Equal(t, map[string]string{
		"1":   "wheat", // last occurrence wins
		"WEI": "Weizen",
		"SEL": "",
		"BAD": "",
	}, mapping)
}

func TestParseAdditiveDictionaryEmpty(t *testing.T) {
	mapping := ParseAdditiveDictionary("<html><body>no script here</body></html>")
	require.Empty(t, mapping)
}

const multiDayDoc = `<html><body>
<div id="mensa_essen_tag_2025124"><ul>
<li data-gid ref=""><h3>Wednesday Stew</h3></li>
</ul></div>
<div id="mensa_essen_tag_2025123"><ul>
<li data-gid ref=""><h3>Tuesday Soup</h3></li>
</ul></div>
</body></html>`

func parseNames(t *testing.T, doc, date string) []string {
	t.Helper()
	records, _, err := ParseDocument(doc, date)
	require.NoError(t, err)
	names := []string{}
	for _, r := range records {
		require.NotNil(t, r.Name)
		names = append(names, *r.Name)
	}
	return names
}

func TestLocateDishes(t *testing.T) {
	// exact token match returns that day, even when it is not the earliest
	require.Equal(t, []string{"Wednesday Stew"}, parseNames(t, multiDayDoc, "2025124"))
	// no token requested: earliest day in the document
	require.Equal(t, []string{"Tuesday Soup"}, parseNames(t, multiDayDoc, ""))
	// unknown token falls back to the earliest day
	require.Equal(t, []string{"Tuesday Soup"}, parseNames(t, multiDayDoc, "2025999"))
}

func TestLocateDishesWithoutContainers(t *testing.T) {
	doc := `<ul><li data-gid ref=""><h3>Standalone</h3></li></ul>`
	require.Equal(t, []string{"Standalone"}, parseNames(t, doc, ""))
}

func TestLocateDishesRequiresBothMarkers(t *testing.T) {
	doc := `<ul>
<li data-gid><h3>No Ref</h3></li>
<li ref=""><h3>No Gid</h3></li>
<li data-gid ref=""><h3>Both</h3></li>
</ul>`
	require.Equal(t, []string{"Both"}, parseNames(t, doc, ""))
}

func TestPriceFromText(t *testing.T) {
	require.Equal(t, 4.20, *priceFromText("Gulasch 4,20 €"))
	require.Equal(t, 3.50, *priceFromText("3.50€"))
	// first match wins
	require.Equal(t, 1.10, *priceFromText("1,10 € / 2,20 €"))
	require.Nil(t, priceFromText("Gulasch ohne Preis"))
	require.Nil(t, priceFromText("42 € ganze Zahl"))
}

func TestDietaryTagsKeepOrderAndDuplicates(t *testing.T) {
	doc := `<li data-gid ref="">
<img data-type="vegan"/><img data-type="vegetarian"/><img data-type="vegan"/><img src="x.png"/>
</li>`
	records, _, err := ParseDocument(doc, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, []string{"vegan", "vegetarian", "vegan"}, records[0].Tags)
}

func TestAdditiveCodes(t *testing.T) {
	t.Run("quoted tokens filtered by dictionary", func(t *testing.T) {
		doc := `<script>
zusatzstoffe["1"] = JSON.parse('{"id":"gluten"}');
zusatzstoffe["WEI"] = JSON.parse('{"id":"wheat"}');
</script>
<li data-gid ref='&quot;1&quot; &quot;19&quot; &quot;WEI&quot;'>x</li>`
		records, _, err := ParseDocument(doc, "")
		require.NoError(t, err)
		require.Len(t, records, 1)
		// 19 is not in the dictionary and gets dropped as noise
		require.Equal(t, []string{"1", "WEI"}, records[0].Zusatzstoffe)
	})

	t.Run("empty dictionary keeps everything", func(t *testing.T) {
		doc := `<li data-gid ref='"1" "19" "WEI"'>x</li>`
		records, _, err := ParseDocument(doc, "")
		require.NoError(t, err)
		require.Equal(t, []string{"1", "19", "WEI"}, records[0].Zusatzstoffe)
	})

	t.Run("alphanumeric fallback without quoted tokens", func(t *testing.T) {
		doc := `<li data-gid ref='1, 19, WEI'>x</li>`
		records, _, err := ParseDocument(doc, "")
		require.NoError(t, err)
		require.Equal(t, []string{"1", "19", "WEI"}, records[0].Zusatzstoffe)
	})

	t.Run("deduplicated preserving first-seen order", func(t *testing.T) {
		doc := `<li data-gid ref='"2" "1" "2"'>x</li>`
		records, _, err := ParseDocument(doc, "")
		require.NoError(t, err)
		require.Equal(t, []string{"2", "1"}, records[0].Zusatzstoffe)
	})
}

func TestCategoryFromClass(t *testing.T) {
	require.Equal(t, "Hauptgericht", *categoryFromClass("mensa item Hauptgericht extra"))
	require.Nil(t, categoryFromClass("mensa item"))
	require.Nil(t, categoryFromClass(""))
}

func TestDishWithoutNameIsStillEmitted(t *testing.T) {
	doc := `<li data-gid ref="">just some text</li>`
	records, _, err := ParseDocument(doc, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Nil(t, records[0].Name)
	require.Equal(t, "just some text", *records[0].Description)
}

func TestDescriptionExcludesCodesAndName(t *testing.T) {
	doc := `<li data-gid ref='"1" "19"'>
<h3>Schnitzel</h3>
<span>(1,19)</span>
<span>mit Pommes</span>
<span>mit Pommes</span>
<span>5,90 €</span>
</li>`
	records, _, err := ParseDocument(doc, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "mit Pommes", *records[0].Description)
}

func TestCanonicalHash(t *testing.T) {
	a := DishRecord{
		Name:        strptr("  Soup "),
		Description: strptr("Tomato Soup"),
		Tags:        []string{"vegan", "vegetarian", "vegan"},
	}
	b := DishRecord{
		Name:        strptr("soup"),
		Description: strptr("tomato soup"),
		Tags:        []string{"vegetarian", "vegan"},
	}
	require.Equal(t, a.CanonicalHash(), b.CanonicalHash())

	// category and price never contribute to dish identity
	c := b
	c.Category = strptr("Hauptgericht")
	c.PriceEur = f64ptr(3.5)
	require.Equal(t, b.CanonicalHash(), c.CanonicalHash())

	d := b
	d.Tags = []string{"vegan"}
	require.NotEqual(t, b.CanonicalHash(), d.CanonicalHash())
}
