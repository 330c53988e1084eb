package domain

import (
	"sort"
	"time"
)

// Content is the hotel content aggregate: every editable section of one
// hotel's promotional page, stored and replaced as a single document.
type Content struct {
	ID           string       `json:"id"`
	Hotel        HotelInfo    `json:"hotel"`
	Rooms        []Room       `json:"rooms"`
	Facilities   Facilities   `json:"facilities"`
	Checkin      Checkin      `json:"checkin"`
	Packages     []Package    `json:"packages"`
	Period       Period       `json:"period"`
	Cancel       CancelPolicy `json:"cancel"`
	Pricing      Pricing      `json:"pricing"`
	Booking      Booking      `json:"booking"`
	Notices      []Notice     `json:"notices"`
	IsTemplate   bool         `json:"isTemplate"`
	TemplateName *string      `json:"templateName,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type HotelInfo struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type Room struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Structure        string   `json:"structure"`
	BedType          string   `json:"bedType"`
	View             string   `json:"view"`
	StandardCapacity int      `json:"standardCapacity"`
	MaxCapacity      int      `json:"maxCapacity"`
	Description      string   `json:"description,omitempty"`
	Image            string   `json:"image,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
}

type Facilities struct {
	General  []string `json:"general"`
	Business []string `json:"business"`
	Leisure  []string `json:"leisure"`
	Dining   []string `json:"dining"`
}

func (f Facilities) Empty() bool {
	return len(f.General)+len(f.Business)+len(f.Leisure)+len(f.Dining) == 0
}

type Checkin struct {
	CheckInTime  string `json:"checkInTime"`
	CheckOutTime string `json:"checkOutTime"`
	EarlyCheckIn string `json:"earlyCheckIn"`
	LateCheckOut string `json:"lateCheckOut"`
}

func (c Checkin) Empty() bool {
	return c == Checkin{}
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Package struct {
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Price              int64      `json:"price"`
	Includes           []string   `json:"includes,omitempty"`
	SalesPeriod        *DateRange `json:"salesPeriod,omitempty"`
	StayPeriod         *DateRange `json:"stayPeriod,omitempty"`
	ProductComposition string     `json:"productComposition,omitempty"`
	Notes              []string   `json:"notes,omitempty"`
	Constraints        []string   `json:"constraints,omitempty"`
}

// Period holds ISO dates (YYYY-MM-DD). Empty strings mean "not set".
type Period struct {
	SaleStart string `json:"saleStart"`
	SaleEnd   string `json:"saleEnd"`
	StayStart string `json:"stayStart"`
	StayEnd   string `json:"stayEnd"`
}

// CancelRule is one row of a cancellation table ("7 days before" -> "100% refund").
type CancelRule struct {
	Days string `json:"days"`
	Rate string `json:"rate"`
}

type CancelPolicy struct {
	OffSeason        []CancelRule `json:"offSeason,omitempty"`
	MidSeason        []CancelRule `json:"midSeason,omitempty"`
	HighSeason       []CancelRule `json:"highSeason,omitempty"`
	BeforeCheckIn    []CancelRule `json:"beforeCheckIn,omitempty"`
	AfterCheckIn     []CancelRule `json:"afterCheckIn,omitempty"`
	Description      string       `json:"description,omitempty"`
	AdditionalPolicy string       `json:"additionalPolicy,omitempty"`
	Notes            string       `json:"notes,omitempty"`
}

func (c CancelPolicy) Empty() bool {
	return len(c.OffSeason)+len(c.MidSeason)+len(c.HighSeason)+len(c.BeforeCheckIn)+len(c.AfterCheckIn) == 0 &&
		c.Description == "" && c.AdditionalPolicy == "" && c.Notes == ""
}

// DayType is a named pricing bucket; its ID keys RoomPrice.Prices.
type DayType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type RoomPrice struct {
	RoomType string           `json:"roomType"`
	View     string           `json:"view"`
	Prices   map[string]int64 `json:"prices"`
}

type Lodge struct {
	Name  string      `json:"name"`
	Rooms []RoomPrice `json:"rooms"`
}

type Pricing struct {
	Lodges                []Lodge   `json:"lodges"`
	DayTypes              []DayType `json:"dayTypes"`
	AdditionalChargesInfo string    `json:"additionalChargesInfo,omitempty"`
}

func (p Pricing) Empty() bool {
	return len(p.Lodges) == 0 && len(p.DayTypes) == 0 && p.AdditionalChargesInfo == ""
}

// OrderedDays returns the keys of a room's price map in day-type order,
// followed by unknown keys alphabetically.
func (p Pricing) OrderedDays(prices map[string]int64) []string {
	order := make(map[string]int, len(p.DayTypes))
	for i, dt := range p.DayTypes {
		order[dt.ID] = i
	}
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := order[keys[i]]
		oj, jok := order[keys[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

// DefaultDayTypes is used whenever a pricing section arrives without any day-type.
func DefaultDayTypes() []DayType {
	return []DayType{
		{ID: "weekday", Name: "주중(월~목)", Type: "weekday"},
		{ID: "friday", Name: "금요일", Type: "friday"},
		{ID: "saturday", Name: "토요일", Type: "saturday"},
	}
}

type Booking struct {
	PurchaseGuide  string `json:"purchaseGuide"`
	ReferenceNotes string `json:"referenceNotes"`
	KakaoChannel   string `json:"kakaoChannel"`
}

func (b Booking) Empty() bool {
	return b == Booking{}
}

type Notice struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"` // general|important|warning
}
