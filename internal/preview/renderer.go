package preview

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"hotel_detail/internal/domain"
	"hotel_detail/internal/pricing"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer turns a hotel content aggregate into the preview HTML document.
// It is safe for concurrent use.
type Renderer struct {
	tpl *template.Template
	md  goldmark.Markdown
}

func New() (*Renderer, error) {
	r := &Renderer{
		// No html.WithUnsafe: raw HTML typed into free-text fields is dropped.
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
	tpl, err := template.New("page").Funcs(template.FuncMap{
		"text":   r.freeText,
		"won":    wonOrMissing,
		"orElse": orElse,
		"rules":  newCancelTable,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	r.tpl = tpl
	return r, nil
}

// Render writes the complete document.
func (r *Renderer) Render(w io.Writer, c domain.Content) error {
	return r.tpl.ExecuteTemplate(w, "document", newPage(c))
}

func (r *Renderer) RenderString(c domain.Content) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CancelFragment renders only the cancellation section.
func (r *Renderer) CancelFragment(cp domain.CancelPolicy) (string, error) {
	return r.fragment("cancel", cp)
}

// BookingFragment renders only the booking section.
func (r *Renderer) BookingFragment(b domain.Booking) (string, error) {
	return r.fragment("booking", b)
}

func (r *Renderer) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// freeText renders multi-line editor text; newlines become <br>.
func (r *Renderer) freeText(s string) (template.HTML, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil // goldmark escapes text and omits raw HTML
}

func wonOrMissing(v int64) string {
	if v <= 0 {
		return "가격 정보 없음"
	}
	return pricing.FormatWon(v)
}

func orElse(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

/********** view model **********/

type page struct {
	Title      string
	Hotel      *domain.HotelInfo
	Period     *domain.Period
	Rooms      []domain.Room
	Facilities []facilityGroup
	Checkin    *domain.Checkin
	Packages   []domain.Package
	Pricing    *pricingView
	Cancel     *domain.CancelPolicy
	Booking    *domain.Booking
	Notices    []domain.Notice
}

type cancelTable struct {
	Title string
	Rules []domain.CancelRule
}

func newCancelTable(title string, rs []domain.CancelRule) cancelTable {
	return cancelTable{Title: title, Rules: rs}
}

type facilityGroup struct {
	Title string
	Items []string
}

type pricingView struct {
	Lodges                []lodgeView
	DayTypes              []domain.DayType
	AdditionalChargesInfo string
}

type lodgeView struct {
	Name  string
	Rooms []roomPriceView
}

type roomPriceView struct {
	RoomType string
	View     string
	Prices   []priceCell
}

type priceCell struct {
	Day   string
	Price int64
}

func newPage(c domain.Content) page {
	p := page{Title: orElse(c.Hotel.Name, "호텔 정보"), Rooms: c.Rooms, Packages: c.Packages}
	if c.Hotel != (domain.HotelInfo{}) {
		h := c.Hotel
		p.Hotel = &h
	}
	if c.Period != (domain.Period{}) {
		pd := c.Period
		p.Period = &pd
	}
	if !c.Facilities.Empty() {
		for _, g := range []facilityGroup{
			{"일반 시설", c.Facilities.General},
			{"비즈니스 시설", c.Facilities.Business},
			{"레저 시설", c.Facilities.Leisure},
			{"식음료 시설", c.Facilities.Dining},
		} {
			if len(g.Items) > 0 {
				p.Facilities = append(p.Facilities, g)
			}
		}
	}
	if !c.Checkin.Empty() {
		ck := c.Checkin
		p.Checkin = &ck
	}
	if !c.Pricing.Empty() {
		p.Pricing = newPricingView(c.Pricing)
	}
	if !c.Cancel.Empty() {
		cp := c.Cancel
		p.Cancel = &cp
	}
	if !c.Booking.Empty() {
		b := c.Booking
		p.Booking = &b
	}
	p.Notices = c.Notices
	return p
}

// newPricingView labels each price with its day-type name.
func newPricingView(pr domain.Pricing) *pricingView {
	names := make(map[string]string, len(pr.DayTypes))
	for _, dt := range pr.DayTypes {
		names[dt.ID] = dt.Name
	}
	pv := &pricingView{DayTypes: pr.DayTypes, AdditionalChargesInfo: pr.AdditionalChargesInfo}
	for _, l := range pr.Lodges {
		lv := lodgeView{Name: l.Name}
		for _, rm := range l.Rooms {
			rv := roomPriceView{RoomType: rm.RoomType, View: rm.View}
			for _, k := range pr.OrderedDays(rm.Prices) {
				rv.Prices = append(rv.Prices, priceCell{Day: orElse(names[k], k), Price: rm.Prices[k]})
			}
			lv.Rooms = append(lv.Rooms, rv)
		}
		pv.Lodges = append(pv.Lodges, lv)
	}
	return pv
}
