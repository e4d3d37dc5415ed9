// Package printout renders the departure schedule as a printable PDF list.
// Internal notes, phone numbers and e-mail addresses never reach the page.
package printout

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const title = "Parking Blisko"

type column struct {
	header string
	width  float64
	value  func(domain.Reservation) string
}

var columns = []column{
	{"Godz.", 14, func(r domain.Reservation) string { return string(r.PickupTime) }},
	{"Klient", 36, func(r domain.Reservation) string { return r.PersonName }},
	{"Samochód", 40, func(r domain.Reservation) string { return r.VehicleDescriptor }},
	{"Garaż", 14, garage},
	{"Płatność", 26, payment},
	{"Lot", 32, func(r domain.Reservation) string { return r.FlightInfo }},
	{"Uwagi", 28, func(r domain.Reservation) string { return r.PublicNote }},
}

func garage(r domain.Reservation) string {
	switch {
	case r.GarageSlot != "":
		return r.GarageSlot
	case r.UsesGarage:
		return "tak"
	default:
		return ""
	}
}

func payment(r domain.Reservation) string {
	if r.IsPaid {
		return "Zapłacone"
	}
	if r.AmountDue == nil {
		return "Do zapłaty"
	}
	return "Do zapłaty " + strconv.FormatFloat(*r.AmountDue, 'f', -1, 64) + " zł"
}

// Renderer writes schedule PDFs. With no FontPath the built-in Helvetica is
// used and Polish diacritics are folded to ASCII, since core fonts are cp1252.
type Renderer struct {
	FontPath string
	compress bool
}

func NewRenderer(fontPath string) *Renderer {
	return &Renderer{FontPath: fontPath, compress: true}
}

// Render writes the days in date order.
func (r *Renderer) Render(w io.Writer, days []schedule.DayBucket) error {
	doc := r.newDocument()
	for _, d := range days {
		doc.day(d)
	}
	return doc.output(w)
}

// RenderGrouped writes the light days first, then the heavy ones.
func (r *Renderer) RenderGrouped(w io.Writer, view schedule.GroupedView) error {
	doc := r.newDocument()
	if len(view.Small) > 0 {
		doc.section(fmt.Sprintf("Dni do %d aut", view.Threshold))
		for _, d := range view.Small {
			doc.day(d)
		}
	}
	if len(view.Large) > 0 {
		doc.section(fmt.Sprintf("Dni powyżej %d aut", view.Threshold))
		for _, d := range view.Large {
			doc.day(d)
		}
	}
	return doc.output(w)
}

type document struct {
	pdf    *gofpdf.Fpdf
	family string
	text   func(string) string
}

func (r *Renderer) newDocument() *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetTitle(title, true)

	doc := &document{pdf: pdf, family: "Helvetica", text: foldDiacritics}
	if r.FontPath != "" {
		pdf.AddUTF8Font("Body", "", r.FontPath)
		pdf.AddUTF8Font("Body", "B", r.FontPath)
		doc.family = "Body"
		doc.text = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(doc.family, "B", 16)
	pdf.CellFormat(0, 10, doc.text(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	return doc
}

func (d *document) section(name string) {
	d.pdf.SetFont(d.family, "B", 13)
	d.pdf.SetFillColor(220, 220, 220)
	d.pdf.CellFormat(0, 8, d.text(name), "", 1, "L", true, 0, "")
	d.pdf.Ln(2)
}

func (d *document) day(b schedule.DayBucket) {
	heading := b.Heading()
	if b.Label != "" {
		heading += " " + b.Label
	}
	d.pdf.SetFont(d.family, "B", 12)
	d.pdf.CellFormat(0, 7, d.text(heading), "", 1, "L", false, 0, "")
	d.pdf.SetFont(d.family, "", 10)
	d.pdf.CellFormat(0, 6, d.text(fmt.Sprintf("Wyjeżdża: %d", len(b.Reservations))), "", 1, "C", false, 0, "")

	d.pdf.SetFont(d.family, "B", 8)
	d.pdf.SetFillColor(240, 240, 240)
	for _, c := range columns {
		d.pdf.CellFormat(c.width, 6, d.text(c.header), "1", 0, "L", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(d.family, "", 8)
	for _, res := range b.Reservations {
		for _, c := range columns {
			d.pdf.CellFormat(c.width, 6, d.fit(d.text(c.value(res)), c.width-2), "1", 0, "L", false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(4)
}

// fit trims s with an ellipsis until it is no wider than width.
func (d *document) fit(s string, width float64) string {
	if d.pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && d.pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (d *document) output(w io.Writer) error {
	if d.pdf.Err() {
		return fmt.Errorf("render schedule: %w", d.pdf.Error())
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write schedule pdf: %w", err)
	}
	return nil
}

var strokeLetters = strings.NewReplacer("ł", "l", "Ł", "L")

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strokeLetters.Replace(s))
	if err != nil {
		return s
	}
	return out
}
