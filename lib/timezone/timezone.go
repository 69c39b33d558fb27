package timezone

import (
	"strconv"
	"time"
)

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(err)
	}
}

// force the mensa timezone regardless of where the host runs, the
// day-of-year in date tokens has to match the canteen's calendar day
func Now() time.Time {
	return time.Now().In(Location)
}

// DateToken encodes a date as year*1000 + dayOfYear, the convention
// the menu pages use in their day container ids.
func DateToken(t time.Time) string {
	t = t.In(Location)
	return strconv.Itoa(t.Year()*1000 + t.YearDay())
}
