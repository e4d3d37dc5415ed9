package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Domenick1991/parkingblisko/internal/domain"
)

// Keyword is one entry of the service vocabulary recognized on the header line.
type Keyword struct {
	Text       string
	Flag       domain.ServiceFlag
	UsesGarage bool
}

// Keywords lists the vocabulary in display order. "dowóz (1 strona)" sits
// before "dowóz" so the longer phrase is consumed first.
var Keywords = []Keyword{
	{Text: "klucze", Flag: domain.ServiceLeftKey},
	{Text: "garaż", UsesGarage: true},
	{Text: "ładowarki", Flag: domain.ServiceHasCharger},
	{Text: "geokratka", Flag: domain.ServiceGeogrid},
	{Text: "małe auto", Flag: domain.ServiceSmallCar},
	{Text: "brak rezerwacji"},
	{Text: "dowóz (1 strona)"},
	{Text: "dowóz"},
}

var keywordRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(Keywords))
	for i, kw := range Keywords {
		res[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw.Text))
	}
	return res
}()

// paidRe keeps its leading boundary in group 1 so "niezapłacone" is not read as paid.
var (
	slotRe        = regexp.MustCompile(`^\s*\[(\d+)\]`)
	dayCountRe    = regexp.MustCompile(`(?i)(?:^|\s)(\d{1,3})x(?:\s|$|zapłac|do\s|dz|z(?:\s|$))`)
	unpaidRe      = regexp.MustCompile(`(?i)do\s+zapłaty`)
	amountRe      = regexp.MustCompile(`(?i)do\s+zapłaty\s*(\d+(?:[.,]\d+)?)`)
	unpaidTokenRe = regexp.MustCompile(`(?i)(?:^|\s)(?:\d{1,3}x)?dz(?:\s|$)`)
	paidRe        = regexp.MustCompile(`(?i)(^|\s|\dx)(zapłacon[eo])`)
	paidTokenRe   = regexp.MustCompile(`(?i)(?:^|\s)(?:\d{1,3}x)?z(?:\s|$)`)
)

// Header is the decomposition of the first line of a reservation block.
type Header struct {
	SlotID            string
	DayCount          int
	IsPaid            bool
	AmountDue         *float64
	PaymentRule       string
	Keywords          []Keyword
	VehicleDescriptor string
	// Removed lists every fragment cut from the line, in order.
	Removed []string
}

// UsesGarage reports whether the line names a slot or a garage keyword.
func (h Header) UsesGarage() bool {
	if h.SlotID != "" {
		return true
	}
	for _, kw := range h.Keywords {
		if kw.UsesGarage {
			return true
		}
	}
	return false
}

// Flags returns the service flags of the recognized keywords, in keyword order.
func (h Header) Flags() []domain.ServiceFlag {
	var flags []domain.ServiceFlag
	for _, kw := range h.Keywords {
		if kw.Flag != "" {
			flags = append(flags, kw.Flag)
		}
	}
	return flags
}

// KeywordList joins the recognized keywords for display, e.g. "klucze, ładowarki".
func (h Header) KeywordList() string {
	texts := make([]string, len(h.Keywords))
	for i, kw := range h.Keywords {
		texts[i] = kw.Text
	}
	return strings.Join(texts, ", ")
}

type payment struct {
	paid   bool
	amount *float64
}

// paymentRules are checked in order. The unpaid phrase goes first because
// "zapłaty" would otherwise trip the looser paid checks.
var paymentRules = []rule[payment]{
	{name: "do zapłaty", apply: func(line string) (payment, bool) {
		if !unpaidRe.MatchString(line) {
			return payment{}, false
		}
		return payment{paid: false, amount: extractAmount(line)}, true
	}},
	{name: "dz", apply: func(line string) (payment, bool) {
		if !unpaidTokenRe.MatchString(line) {
			return payment{}, false
		}
		return payment{paid: false}, true
	}},
	{name: "zapłacone", apply: func(line string) (payment, bool) {
		return payment{paid: true}, paidRe.MatchString(line)
	}},
	{name: "z", apply: func(line string) (payment, bool) {
		return payment{paid: true}, paidTokenRe.MatchString(line)
	}},
}

// DecomposeHeader splits the header line into slot, stay length, payment,
// service keywords and the remaining vehicle text.
func DecomposeHeader(line string) Header {
	var h Header

	if m := slotRe.FindStringSubmatchIndex(line); m != nil {
		h.SlotID = line[m[2]:m[3]]
		h.Removed = append(h.Removed, line[m[0]:m[1]])
		line = line[m[1]:]
	}

	if m := dayCountRe.FindStringSubmatchIndex(line); m != nil {
		if n, err := strconv.Atoi(line[m[2]:m[3]]); err == nil && n > 0 {
			h.DayCount = n
		}
	}

	for i, re := range keywordRes {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		h.Keywords = append(h.Keywords, Keywords[i])
		h.Removed = append(h.Removed, line[loc[0]:loc[1]])
		line = line[:loc[0]] + " " + line[loc[1]:]
	}

	p, ruleName, ok := firstMatch(paymentRules, line)
	if !ok {
		p, ruleName = payment{paid: true}, "default"
	}
	h.IsPaid, h.AmountDue, h.PaymentRule = p.paid, p.amount, ruleName

	line, h.Removed = stripPayment(line, h.Removed)
	if m := dayCountRe.FindStringSubmatchIndex(line); m != nil {
		// group 1 is the digits; the "x" follows it
		h.Removed = append(h.Removed, line[m[2]:m[3]+1])
		line = line[:m[2]] + " " + line[m[3]+1:]
	}

	h.VehicleDescriptor = strings.Join(strings.Fields(line), " ")
	return h
}

func extractAmount(line string) *float64 {
	m := amountRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	v = math.Round(v)
	return &v
}

// stripPayment removes every payment phrase and token. The standalone token
// patterns consume their surrounding whitespace, so each is applied until
// the line stops changing.
func stripPayment(line string, removed []string) (string, []string) {
	for _, re := range []*regexp.Regexp{amountRe, unpaidRe} {
		for _, m := range re.FindAllString(line, -1) {
			removed = append(removed, m)
		}
		line = re.ReplaceAllString(line, " ")
	}
	for _, m := range paidRe.FindAllStringSubmatch(line, -1) {
		removed = append(removed, m[2])
	}
	line = paidRe.ReplaceAllString(line, "${1} ")
	for _, re := range []*regexp.Regexp{unpaidTokenRe, paidTokenRe} {
		for {
			loc := re.FindStringIndex(line)
			if loc == nil {
				break
			}
			token := strings.TrimSpace(line[loc[0]:loc[1]])
			removed = append(removed, token)
			line = line[:loc[0]] + " " + line[loc[1]:]
		}
	}
	return line, removed
}

func (h Header) String() string {
	amount := "none"
	if h.AmountDue != nil {
		amount = strconv.FormatFloat(*h.AmountDue, 'f', -1, 64)
	}
	return fmt.Sprintf("slot=%q days=%d paid=%t (rule %s) amount=%s keywords=[%s] vehicle=%q",
		h.SlotID, h.DayCount, h.IsPaid, h.PaymentRule, amount, h.KeywordList(), h.VehicleDescriptor)
}
