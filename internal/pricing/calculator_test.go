package pricing_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_detail/internal/domain"
	"hotel_detail/internal/pricing"
)

const sampleJSON = `{
  "title": "Resort",
  "roomTypes": [
    {"name": "Standard", "types": [
      {"name": "City", "prices": {
        "peak": {"weekday": 100000, "friday": 120000, "saturday": 150000},
        "off":  {"weekday": 80000, "friday": "n/a", "saturday": 0}
      }},
      {"name": "Ocean", "prices": {"peak": {"weekday": 130000.4}}}
    ]},
    {"name": "Suite", "types": [
      {"name": "Royal", "prices": {"peak": {"weekday": 900000}}}
    ]}
  ]
}`

var fixed = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sample(t *testing.T) pricing.PriceData {
	t.Helper()
	var d pricing.PriceData
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &d))
	return d
}

func calc() *pricing.Calculator {
	return pricing.NewCalculatorAt(func() time.Time { return fixed })
}

func TestPrices_KeepsDocumentOrder(t *testing.T) {
	d := sample(t)
	p := d.RoomTypes[0].Types[0].Prices
	require.Len(t, p, 2)
	assert.Equal(t, "peak", p[0].Period)
	assert.Equal(t, "off", p[1].Period)
	assert.Equal(t, []string{"weekday", "friday", "saturday"}, []string{p[0].Days[0].Day, p[0].Days[1].Day, p[0].Days[2].Day})
	assert.False(t, p[1].Days[1].Numeric, "string cell must not be numeric")
}

func TestTotal(t *testing.T) {
	res := calc().Total(sample(t))

	assert.Equal(t, int64(1480000), res.Total)
	assert.Equal(t, "KRW", res.Currency)
	assert.Equal(t, fixed, res.CalculatedAt)
	assert.Equal(t, map[string]int64{"City": 450000, "Ocean": 130000, "total": 580000}, res.Breakdown["Standard"])
	assert.Equal(t, map[string]int64{"Royal": 900000, "total": 900000}, res.Breakdown["Suite"])
}

func TestTotal_RoomTypeWithoutTypes(t *testing.T) {
	res := calc().Total(pricing.PriceData{RoomTypes: []pricing.RoomType{{Name: "Empty"}}})
	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, map[string]int64{"total": 0}, res.Breakdown["Empty"])
}

func TestReport(t *testing.T) {
	rep := calc().Report(sample(t))

	assert.Equal(t, 2, rep.Summary.TotalRoomTypes)
	assert.Equal(t, 3, rep.Summary.TotalPriceTypes)
	assert.Equal(t, int64(246667), rep.Summary.AveragePrice)
	assert.Equal(t, pricing.PriceRange{Min: 80000, Max: 900000}, rep.Summary.PriceRange)
	assert.Equal(t, []string{"고급 패키지로 분류되어 프리미엄 가격 정책이 적합합니다."}, rep.Recommendations)

	require.Len(t, rep.Details, 2)
	assert.Equal(t, int64(580000), rep.Details[0].TotalPrice)
	b, err := json.Marshal(rep.Details[0].Types[0].Prices)
	require.NoError(t, err)
	assert.JSONEq(t, `{"peak":{"weekday":100000,"friday":120000,"saturday":150000},"off":{"weekday":80000}}`, string(b))
}

func TestReport_EconomyAndVariety(t *testing.T) {
	d := pricing.PriceData{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		d.RoomTypes = append(d.RoomTypes, pricing.RoomType{Name: n})
	}
	rep := calc().Report(d)
	assert.Equal(t, int64(0), rep.Summary.AveragePrice)
	assert.Equal(t, []string{
		"경제적 패키지로 분류되어 접근성 높은 가격 정책이 적합합니다.",
		"다양한 객실 타입을 제공하여 고객 선택의 폭을 넓힐 수 있습니다.",
	}, rep.Recommendations)
}

func TestValidate_OK(t *testing.T) {
	v := calc().Validate(sample(t))
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Errors)
	assert.Empty(t, v.Warnings)
}

func TestValidate_Errors(t *testing.T) {
	var d pricing.PriceData
	require.NoError(t, json.Unmarshal([]byte(`{
	  "title": "  ",
	  "roomTypes": [
	    {"name": "A", "types": [
	      {"name": "", "prices": {"p": {"d": 1500000}}},
	      {"name": "Empty", "prices": {}},
	      {"name": "NoPrices"}
	    ]},
	    {"name": "", "types": []}
	  ]
	}`), &d))

	v := calc().Validate(d)
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{
		"리조트 타이틀이 필요합니다.",
		"타입 1의 이름이 필요합니다.",
		"객실 타입 2의 이름이 필요합니다.",
		"객실 타입 ''에 최소 하나의 타입이 필요합니다.",
	}, v.Errors)
	assert.Equal(t, []string{
		"타입 ''의 가격이 매우 높습니다: 1,500,000원",
		"타입 'Empty'에 유효한 가격이 설정되지 않았습니다.",
	}, v.Warnings)
}

func TestValidate_NoRoomTypes(t *testing.T) {
	v := calc().Validate(pricing.PriceData{Title: "x"})
	assert.Equal(t, []string{"최소 하나의 객실 타입이 필요합니다."}, v.Errors)
}

func TestOptimize(t *testing.T) {
	opt := calc().Optimize(sample(t))

	require.NotNil(t, opt.MarketAnalysis)
	ma := opt.MarketAnalysis
	assert.Equal(t, 6, ma.TotalPrices)
	assert.Equal(t, int64(246667), ma.AveragePrice)
	assert.Equal(t, 130000.4, ma.MedianPrice)
	assert.Equal(t, pricing.MarketRange{Min: 80000, Max: 900000, Q1: 100000, Q3: 150000}, ma.PriceRange)

	assert.Equal(t, []string{
		"1개의 가격이 이상치로 감지되었습니다. 가격 일관성을 검토해주세요.",
		"평균 가격이 높아 프리미엄 시장을 타겟팅하는 것이 적합합니다.",
	}, opt.Suggestions)

	require.Len(t, opt.PriceAdjustments, 1)
	adj := opt.PriceAdjustments[0]
	assert.Equal(t, "Suite", adj.RoomType)
	assert.Equal(t, "Royal", adj.Type)
	assert.Equal(t, "peak", adj.Period)
	assert.Equal(t, "weekday", adj.Day)
	assert.Equal(t, int64(195001), adj.SuggestedPrice)
}

func TestOptimize_LowPricesAndEmpty(t *testing.T) {
	var d pricing.PriceData
	require.NoError(t, json.Unmarshal([]byte(`{"roomTypes":[{"name":"R","types":[
	  {"name":"T","prices":{"p":{"a":20000,"b":20000,"c":20000,"d":5000}}}
	]}]}`), &d))
	opt := calc().Optimize(d)

	require.Len(t, opt.PriceAdjustments, 1)
	assert.Equal(t, int64(16000), opt.PriceAdjustments[0].SuggestedPrice)
	assert.Contains(t, opt.Suggestions, "평균 가격이 낮아 대중 시장을 타겟팅하는 것이 적합합니다.")

	empty := calc().Optimize(pricing.PriceData{})
	assert.Nil(t, empty.MarketAnalysis)
	assert.Empty(t, empty.Suggestions)
	assert.Empty(t, empty.PriceAdjustments)
}

func TestFromContent(t *testing.T) {
	c := domain.Content{
		Hotel: domain.HotelInfo{Name: "Sample"},
		Pricing: domain.Pricing{
			DayTypes: domain.DefaultDayTypes(),
			Lodges: []domain.Lodge{{Name: "Main", Rooms: []domain.RoomPrice{
				{RoomType: "Deluxe", View: "City", Prices: map[string]int64{"saturday": 220000, "weekday": 150000, "friday": 180000}},
			}}},
		},
	}
	d := pricing.FromContent(c)
	require.Len(t, d.RoomTypes, 1)
	pt := d.RoomTypes[0].Types[0]
	assert.Equal(t, "Deluxe City", pt.Name)
	days := pt.Prices[0].Days
	assert.Equal(t, []string{"weekday", "friday", "saturday"}, []string{days[0].Day, days[1].Day, days[2].Day})
	assert.Equal(t, int64(550000), calc().Total(d).Total)
}

func TestDispatcher(t *testing.T) {
	disp := pricing.NewDispatcher(calc(), 2)

	assert.Equal(t, pricing.Response{Type: pricing.TypeError, Error: "Unknown message type"}, disp.Handle(pricing.Request{Type: "NOPE"}))

	reqs := []pricing.Request{
		{Type: pricing.TypeCalculateTotal, Data: sample(t)},
		{Type: pricing.TypeValidate, Data: sample(t)},
		{Type: pricing.TypeReport, Data: sample(t)},
		{Type: pricing.TypeOptimize, Data: sample(t)},
	}
	out, err := disp.Batch(context.Background(), reqs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		pricing.TypeTotalCalculated, pricing.TypeDataValidated, pricing.TypeReportGenerated, pricing.TypeStructureOptimized,
	}, []string{out[0].Type, out[1].Type, out[2].Type, out[3].Type})
	assert.Equal(t, int64(1480000), out[0].Result.(pricing.TotalResult).Total)
}

func TestMetricType(t *testing.T) {
	assert.Equal(t, pricing.TypeReport, pricing.MetricType(pricing.TypeReport))
	assert.Equal(t, "unknown", pricing.MetricType("TOTAL_PRICE_CALCULATED"))
	assert.Equal(t, "unknown", pricing.MetricType(""))
}

func TestDispatcher_CancelledBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pricing.NewDispatcher(calc(), 1).Batch(ctx, []pricing.Request{{Type: pricing.TypeValidate}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", pricing.FormatAmount(0))
	assert.Equal(t, "999", pricing.FormatAmount(999))
	assert.Equal(t, "1,200,000", pricing.FormatAmount(1200000))
	assert.Equal(t, "1,234.5", pricing.FormatAmount(1234.5))
	assert.Equal(t, "150,000원", pricing.FormatWon(150000))

	n, ok := pricing.ParseAmount("120,000원")
	assert.True(t, ok)
	assert.Equal(t, int64(120000), n)
	_, ok = pricing.ParseAmount("free")
	assert.False(t, ok)
}
