package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"hotel_detail/internal/domain"
)

// PriceData is the calculator input: room types, each with price types,
// each with prices keyed by period then by day-type.
type PriceData struct {
	Title     string     `json:"title"`
	RoomTypes []RoomType `json:"roomTypes"`
}

type RoomType struct {
	Name  string      `json:"name"`
	Types []PriceType `json:"types"`
}

type PriceType struct {
	Name   string `json:"name"`
	Prices Prices `json:"prices"`
}

// Prices keeps the period and day order of the JSON object it was decoded
// from, so reports and adjustments come out in the order the editor wrote them.
// A nil Prices means the "prices" key was absent.
type Prices []PeriodPrices

type PeriodPrices struct {
	Period string
	Days   []DayPrice
	// IsObject is false when the period value was not a JSON object.
	IsObject bool
}

// DayPrice is a single cell. Numeric is false for strings, nulls and the like,
// which the calculator ignores.
type DayPrice struct {
	Day     string
	Value   float64
	Numeric bool
}

// Positive reports whether the cell is a number greater than zero.
func (d DayPrice) Positive() bool { return d.Numeric && d.Value > 0 }

func (p *Prices) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	out := Prices{}
	for dec.More() {
		period, err := objectKey(dec)
		if err != nil {
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		pp, err := decodePeriod(period, raw)
		if err != nil {
			return err
		}
		out = append(out, pp)
	}
	*p = out
	return expectDelim(dec, '}')
}

func decodePeriod(period string, raw json.RawMessage) (PeriodPrices, error) {
	pp := PeriodPrices{Period: period}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return pp, nil
	}
	pp.IsObject = true
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return pp, err
	}
	for dec.More() {
		day, err := objectKey(dec)
		if err != nil {
			return pp, err
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return pp, err
		}
		cell := DayPrice{Day: day}
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				cell.Value, cell.Numeric = f, true
			}
		}
		pp.Days = append(pp.Days, cell)
	}
	return pp, expectDelim(dec, '}')
}

func (p Prices) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pp := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(pp.Period)
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteByte('{')
		n := 0
		for _, d := range pp.Days {
			if !d.Numeric {
				continue
			}
			if n > 0 {
				buf.WriteByte(',')
			}
			dk, _ := json.Marshal(d.Day)
			dv, err := json.Marshal(d.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(dk)
			buf.WriteByte(':')
			buf.Write(dv)
			n++
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("pricing: expected %q, got %v", want, tok)
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	k, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("pricing: expected object key, got %v", tok)
	}
	return k, nil
}

// eachPositive walks every positive price in document order.
func (d PriceData) eachPositive(fn func(rt RoomType, pt PriceType, period string, day DayPrice)) {
	for _, rt := range d.RoomTypes {
		for _, pt := range rt.Types {
			for _, pp := range pt.Prices {
				for _, day := range pp.Days {
					if day.Positive() {
						fn(rt, pt, pp.Period, day)
					}
				}
			}
		}
	}
}

// DefaultPeriod is the period name used when converting a stored price table.
const DefaultPeriod = "default"

// FromContent converts the pricing section of an aggregate into calculator
// input: each lodge becomes a room type and each lodge room a price type
// with a single period whose days follow the aggregate's day-type order.
func FromContent(c domain.Content) PriceData {
	out := PriceData{Title: c.Hotel.Name}
	for _, lodge := range c.Pricing.Lodges {
		rt := RoomType{Name: lodge.Name}
		for _, room := range lodge.Rooms {
			name := room.RoomType
			if room.View != "" {
				name += " " + room.View
			}
			pp := PeriodPrices{Period: DefaultPeriod, IsObject: true}
			for _, d := range c.Pricing.OrderedDays(room.Prices) {
				pp.Days = append(pp.Days, DayPrice{Day: d, Value: float64(room.Prices[d]), Numeric: true})
			}
			rt.Types = append(rt.Types, PriceType{Name: name, Prices: Prices{pp}})
		}
		out.RoomTypes = append(out.RoomTypes, rt)
	}
	return out
}
