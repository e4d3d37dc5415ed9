package parser

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// monthIndex maps Polish month names to a zero-based month index.
// Nominative, genitive and the usual abbreviations are covered, with and
// without diacritics since pasted text often loses them.
var monthIndex = map[string]int{
	"styczeń": 0, "styczen": 0, "stycznia": 0, "sty": 0, "stycz": 0,
	"luty": 1, "lutego": 1, "lut": 1,
	"marzec": 2, "marca": 2, "mar": 2,
	"kwiecień": 3, "kwiecien": 3, "kwietnia": 3, "kwi": 3, "kwie": 3,
	"maj": 4, "maja": 4,
	"czerwiec": 5, "czerwca": 5, "cze": 5, "czer": 5,
	"lipiec": 6, "lipca": 6, "lip": 6,
	"sierpień": 7, "sierpien": 7, "sierpnia": 7, "sie": 7, "sier": 7,
	"wrzesień": 8, "wrzesien": 8, "września": 8, "wrzesnia": 8, "wrz": 8, "wrze": 8,
	"październik": 9, "pazdziernik": 9, "października": 9, "pazdziernika": 9, "paź": 9, "paz": 9, "paźd": 9,
	"listopad": 10, "listopada": 10, "lis": 10, "list": 10,
	"grudzień": 11, "grudzien": 11, "grudnia": 11, "gru": 11, "grud": 11,
}

// ResolveMonth returns the zero-based month index for a Polish month name.
func ResolveMonth(name string) (int, bool) {
	idx, ok := monthIndex[cases.Lower(language.Polish).String(name)]
	return idx, ok
}
