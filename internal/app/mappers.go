package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"hotel_detail/internal/domain"
	"hotel_detail/internal/pricing"
)

/********** alias registries (single source of truth) **********/

// hotelAliases maps each HotelInfo field to the paths older editor builds
// used for it. Lookups run against the request root.
var hotelAliases = map[string][]string{
	"name":        {"hotel.name", "hotel.hotelName", "hotelName", "name"},
	"address":     {"hotel.address", "address"},
	"phone":       {"hotel.phone", "hotel.tel", "phone", "tel"},
	"email":       {"hotel.email", "email"},
	"website":     {"hotel.website", "website"},
	"description": {"hotel.description", "description"},
	"imageUrl":    {"hotel.imageUrl", "imageUrl", "hotel.image"},
}

var facilityAliases = []string{"facilities", "features", "hotel.facilities", "hotel.features"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					out = append(out, strings.TrimSpace(t))
				case map[string]any:
					for _, f := range []string{"url", "src", "name"} {
						if u, ok := t[f].(string); ok && u != "" {
							out = append(out, u)
							break
						}
					}
				}
			}
			if out = lo.Uniq(lo.Compact(out)); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// idString accepts a numeric or string id ("hotelId": 3 or "hotelId": "3").
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case json.Number:
		return t.String()
	}
	return ""
}

// priceValue: number, or a formatted amount like "120,000원".
func priceValue(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		return pricing.ParseAmount(t)
	}
	return 0, false
}

/********** content mapper **********/

// DecodeContent turns an editor payload into an aggregate. It accepts the
// canonical document as well as the flat legacy shape (hotelName, tel,
// features, images[]) and price cells typed as formatted strings.
func DecodeContent(raw []byte) (domain.Content, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Content{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	if m == nil {
		return domain.Content{}, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalid)
	}

	m["hotel"] = mapHotel(m)
	if _, ok := m["facilities"].(map[string]any); !ok {
		if items := firstSliceStrings(m, facilityAliases...); len(items) > 0 {
			m["facilities"] = map[string]any{"general": items}
		} else {
			delete(m, "facilities")
		}
	}
	if p, ok := m["pricing"].(map[string]any); ok {
		normalizePrices(p)
	}

	b, err := json.Marshal(m)
	if err != nil {
		log.Error().Err(err).Str("context", "DecodeContent").Msg("re-marshal payload failed")
		return domain.Content{}, err
	}
	var c domain.Content
	if err := json.Unmarshal(b, &c); err != nil {
		return domain.Content{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return c, nil
}

func mapHotel(m map[string]any) map[string]any {
	hotel, _ := m["hotel"].(map[string]any)
	if hotel == nil {
		hotel = map[string]any{}
	}
	for field := range hotelAliases {
		if s := firstNonEmptyAlias(m, hotelAliases, field); s != nil {
			hotel[field] = *s
		}
	}
	if lookupStr(hotel, "imageUrl") == "" {
		if imgs := firstSliceStrings(m, "images", "hotel.images"); len(imgs) > 0 {
			hotel["imageUrl"] = imgs[0]
		}
	}
	return hotel
}

// normalizePrices rewrites lodges[].rooms[].prices in place, keeping only
// cells that parse as amounts.
func normalizePrices(p map[string]any) {
	lodges, _ := p["lodges"].([]any)
	for _, l := range lodges {
		lodge, _ := l.(map[string]any)
		rooms, _ := lookupAny(lodge, "rooms").([]any)
		for _, r := range rooms {
			room, _ := r.(map[string]any)
			cells, ok := lookupAny(room, "prices").(map[string]any)
			if !ok {
				continue
			}
			clean := make(map[string]any, len(cells))
			for day, v := range cells {
				if n, ok := priceValue(v); ok {
					clean[day] = n
				}
			}
			room["prices"] = clean
		}
	}
}

/********** price config mapper **********/

// DecodePriceConfig reads {hotelId, additionalChargesInfo, lodges, dayTypes}.
func DecodePriceConfig(raw []byte) (string, domain.Pricing, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", domain.Pricing{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	id := idString(m["hotelId"])
	if id == "" {
		return "", domain.Pricing{}, fmt.Errorf("%w: hotelId is required", domain.ErrInvalid)
	}
	normalizePrices(m)
	b, err := json.Marshal(m)
	if err != nil {
		return "", domain.Pricing{}, err
	}
	var p domain.Pricing
	if err := json.Unmarshal(b, &p); err != nil {
		return "", domain.Pricing{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return id, p, nil
}
