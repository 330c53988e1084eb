package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	Currency = "KRW"

	premiumReportAvg  = 100000
	midReportAvg      = 50000
	manyRoomTypes     = 5
	highPriceWarning  = 1000000
	premiumMarketAvg  = 80000
	massMarketAvg     = 30000
	outlierIQRFactor  = 1.5
	overpricedRatio   = 2.0
	underpricedRatio  = 0.5
	overpricedTarget  = 1.5
	underpricedTarget = 0.8
)

type Calculator struct {
	now func() time.Time
}

func NewCalculator() *Calculator { return &Calculator{now: time.Now} }

// NewCalculatorAt pins the clock; tests use it for stable timestamps.
func NewCalculatorAt(now func() time.Time) *Calculator { return &Calculator{now: now} }

/********** total **********/

type TotalResult struct {
	Total        int64                       `json:"total"`
	Breakdown    map[string]map[string]int64 `json:"breakdown"`
	Currency     string                      `json:"currency"`
	CalculatedAt time.Time                   `json:"calculatedAt"`
}

// Total sums every positive price per price type and per room type. Room
// types sharing a name share a breakdown entry; the entry's "total" is the
// last of them, as the editor has always shown it.
func (c *Calculator) Total(d PriceData) TotalResult {
	res := TotalResult{Breakdown: map[string]map[string]int64{}, Currency: Currency, CalculatedAt: c.now().UTC()}
	total := decimal.Zero
	for _, rt := range d.RoomTypes {
		if res.Breakdown[rt.Name] == nil {
			res.Breakdown[rt.Name] = map[string]int64{}
		}
		// A room type without price types still gets a zero "total" entry
		// rather than failing the whole calculation.
		roomTotal := decimal.Zero
		for _, pt := range rt.Types {
			typeTotal := round(sumPositive(pt.Prices))
			res.Breakdown[rt.Name][pt.Name] = typeTotal
			roomTotal = roomTotal.Add(decimal.NewFromInt(typeTotal))
		}
		res.Breakdown[rt.Name]["total"] = roomTotal.IntPart()
		total = total.Add(roomTotal)
	}
	res.Total = total.Round(0).IntPart()
	return res
}

/********** report **********/

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ReportSummary struct {
	TotalRoomTypes  int        `json:"totalRoomTypes"`
	TotalPriceTypes int        `json:"totalPriceTypes"`
	AveragePrice    int64      `json:"averagePrice"`
	PriceRange      PriceRange `json:"priceRange"`
}

type TypeDetail struct {
	Name       string `json:"name"`
	Prices     Prices `json:"prices"`
	TotalPrice int64  `json:"totalPrice"`
}

type RoomTypeDetail struct {
	Name       string       `json:"name"`
	Types      []TypeDetail `json:"types"`
	TotalPrice int64        `json:"totalPrice"`
}

type Report struct {
	Summary         ReportSummary    `json:"summary"`
	Details         []RoomTypeDetail `json:"details"`
	Recommendations []string         `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

func (c *Calculator) Report(d PriceData) Report {
	rep := Report{
		Summary:         ReportSummary{TotalRoomTypes: len(d.RoomTypes)},
		Details:         []RoomTypeDetail{},
		Recommendations: []string{},
		GeneratedAt:     c.now().UTC(),
	}
	var all []float64
	for _, rt := range d.RoomTypes {
		rd := RoomTypeDetail{Name: rt.Name, Types: []TypeDetail{}}
		rep.Summary.TotalPriceTypes += len(rt.Types)
		for _, pt := range rt.Types {
			td := TypeDetail{Name: pt.Name, Prices: Prices{}}
			sum := decimal.Zero
			for _, pp := range pt.Prices {
				kept := PeriodPrices{Period: pp.Period, IsObject: true}
				for _, day := range pp.Days {
					if day.Positive() {
						kept.Days = append(kept.Days, day)
						sum = sum.Add(decimal.NewFromFloat(day.Value))
						all = append(all, day.Value)
					}
				}
				td.Prices = append(td.Prices, kept)
			}
			td.TotalPrice = sum.Round(0).IntPart()
			rd.TotalPrice += td.TotalPrice
			rd.Types = append(rd.Types, td)
		}
		rep.Details = append(rep.Details, rd)
	}

	if len(all) > 0 {
		rep.Summary.AveragePrice = average(all)
		rep.Summary.PriceRange = PriceRange{Min: lo.Min(all), Max: lo.Max(all)}
	}

	switch avg := rep.Summary.AveragePrice; {
	case avg > premiumReportAvg:
		rep.Recommendations = append(rep.Recommendations, "고급 패키지로 분류되어 프리미엄 가격 정책이 적합합니다.")
	case avg > midReportAvg:
		rep.Recommendations = append(rep.Recommendations, "중급 패키지로 분류되어 균형잡힌 가격 정책이 적합합니다.")
	default:
		rep.Recommendations = append(rep.Recommendations, "경제적 패키지로 분류되어 접근성 높은 가격 정책이 적합합니다.")
	}
	if rep.Summary.TotalRoomTypes > manyRoomTypes {
		rep.Recommendations = append(rep.Recommendations, "다양한 객실 타입을 제공하여 고객 선택의 폭을 넓힐 수 있습니다.")
	}
	return rep
}

/********** validation **********/

type Validation struct {
	IsValid     bool      `json:"isValid"`
	Errors      []string  `json:"errors"`
	Warnings    []string  `json:"warnings"`
	ValidatedAt time.Time `json:"validatedAt"`
}

func (c *Calculator) Validate(d PriceData) Validation {
	errs, warns := []string{}, []string{}

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, "리조트 타이틀이 필요합니다.")
	}
	if len(d.RoomTypes) == 0 {
		errs = append(errs, "최소 하나의 객실 타입이 필요합니다.")
	}
	for ri, rt := range d.RoomTypes {
		if strings.TrimSpace(rt.Name) == "" {
			errs = append(errs, fmt.Sprintf("객실 타입 %d의 이름이 필요합니다.", ri+1))
		}
		if len(rt.Types) == 0 {
			errs = append(errs, fmt.Sprintf("객실 타입 '%s'에 최소 하나의 타입이 필요합니다.", rt.Name))
		}
		for ti, pt := range rt.Types {
			if strings.TrimSpace(pt.Name) == "" {
				errs = append(errs, fmt.Sprintf("타입 %d의 이름이 필요합니다.", ti+1))
			}
			if pt.Prices == nil {
				continue
			}
			hasValid := false
			for _, pp := range pt.Prices {
				for _, day := range pp.Days {
					if !day.Positive() {
						continue
					}
					hasValid = true
					if day.Value > highPriceWarning {
						warns = append(warns, fmt.Sprintf("타입 '%s'의 가격이 매우 높습니다: %s원", pt.Name, FormatAmount(day.Value)))
					}
				}
			}
			if !hasValid {
				warns = append(warns, fmt.Sprintf("타입 '%s'에 유효한 가격이 설정되지 않았습니다.", pt.Name))
			}
		}
	}
	return Validation{IsValid: len(errs) == 0, Errors: errs, Warnings: warns, ValidatedAt: c.now().UTC()}
}

/********** optimization **********/

type MarketRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Q1  float64 `json:"q1"`
	Q3  float64 `json:"q3"`
}

type MarketAnalysis struct {
	TotalPrices  int         `json:"totalPrices"`
	AveragePrice int64       `json:"averagePrice"`
	MedianPrice  float64     `json:"medianPrice"`
	PriceRange   MarketRange `json:"priceRange"`
}

type PriceAdjustment struct {
	RoomType       string  `json:"roomType"`
	Type           string  `json:"type"`
	Period         string  `json:"period"`
	Day            string  `json:"day"`
	CurrentPrice   float64 `json:"currentPrice"`
	SuggestedPrice int64   `json:"suggestedPrice"`
	Reason         string  `json:"reason"`
}

type Optimization struct {
	Suggestions      []string          `json:"suggestions"`
	PriceAdjustments []PriceAdjustment `json:"priceAdjustments"`
	// MarketAnalysis is nil when there is no positive price to analyse.
	MarketAnalysis *MarketAnalysis `json:"marketAnalysis"`
	OptimizedAt    time.Time       `json:"optimizedAt"`
}

// Optimize flags IQR outliers and prices far from the median. Quartiles are
// taken by index (floor(n*0.25), floor(n/2), floor(n*0.75)) on the sorted
// prices, without interpolation.
func (c *Calculator) Optimize(d PriceData) Optimization {
	opt := Optimization{Suggestions: []string{}, PriceAdjustments: []PriceAdjustment{}, OptimizedAt: c.now().UTC()}

	var all []float64
	d.eachPositive(func(_ RoomType, _ PriceType, _ string, day DayPrice) { all = append(all, day.Value) })

	if len(all) > 0 {
		sorted := append([]float64(nil), all...)
		sort.Float64s(sorted)
		n := len(sorted)
		median := sorted[n/2]
		q1 := sorted[int(math.Floor(float64(n)*0.25))]
		q3 := sorted[int(math.Floor(float64(n)*0.75))]

		opt.MarketAnalysis = &MarketAnalysis{
			TotalPrices:  n,
			AveragePrice: average(all),
			MedianPrice:  median,
			PriceRange:   MarketRange{Min: sorted[0], Max: sorted[n-1], Q1: q1, Q3: q3},
		}

		iqr := q3 - q1
		lower, upper := q1-outlierIQRFactor*iqr, q3+outlierIQRFactor*iqr
		outliers := lo.Filter(all, func(p float64, _ int) bool { return p < lower || p > upper })
		if len(outliers) > 0 {
			opt.Suggestions = append(opt.Suggestions,
				fmt.Sprintf("%d개의 가격이 이상치로 감지되었습니다. 가격 일관성을 검토해주세요.", len(outliers)))
		}

		d.eachPositive(func(rt RoomType, pt PriceType, period string, day DayPrice) {
			ratio := day.Value / median
			adj := PriceAdjustment{RoomType: rt.Name, Type: pt.Name, Period: period, Day: day.Day, CurrentPrice: day.Value}
			switch {
			case ratio > overpricedRatio:
				adj.SuggestedPrice = roundFloat(median * overpricedTarget)
				adj.Reason = "가격이 중간값 대비 2배 이상 높습니다."
			case ratio < underpricedRatio:
				adj.SuggestedPrice = roundFloat(median * underpricedTarget)
				adj.Reason = "가격이 중간값 대비 절반 이하로 낮습니다."
			default:
				return
			}
			opt.PriceAdjustments = append(opt.PriceAdjustments, adj)
		})
	}

	if ma := opt.MarketAnalysis; ma != nil {
		switch {
		case ma.AveragePrice > premiumMarketAvg:
			opt.Suggestions = append(opt.Suggestions, "평균 가격이 높아 프리미엄 시장을 타겟팅하는 것이 적합합니다.")
		case ma.AveragePrice < massMarketAvg:
			opt.Suggestions = append(opt.Suggestions, "평균 가격이 낮아 대중 시장을 타겟팅하는 것이 적합합니다.")
		}
	}
	return opt
}

/********** helpers **********/

func sumPositive(p Prices) decimal.Decimal {
	sum := decimal.Zero
	for _, pp := range p {
		if !pp.IsObject {
			continue
		}
		for _, day := range pp.Days {
			if day.Positive() {
				sum = sum.Add(decimal.NewFromFloat(day.Value))
			}
		}
	}
	return sum
}

func average(xs []float64) int64 {
	sum := lo.Reduce(xs, func(acc decimal.Decimal, x float64, _ int) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(x))
	}, decimal.Zero)
	return sum.Div(decimal.NewFromInt(int64(len(xs)))).Round(0).IntPart()
}

func round(d decimal.Decimal) int64 { return d.Round(0).IntPart() }

func roundFloat(f float64) int64 { return round(decimal.NewFromFloat(f)) }
