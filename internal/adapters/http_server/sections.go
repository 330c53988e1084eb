package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_detail/internal/app"
	"hotel_detail/internal/domain"
)

// Section endpoints answer with sample data when no hotelId is given, so
// the editor can seed an empty form.

func wantsHTML(r *http.Request) bool { return r.URL.Query().Get("format") == "html" }

/********** booking **********/

func (h *Handlers) bookingOf(r *http.Request, hotelID string) (domain.Booking, error) {
	if hotelID == "" {
		return app.SampleBooking(), nil
	}
	c, err := h.Content.Get(r.Context(), hotelID)
	if err != nil {
		return domain.Booking{}, err
	}
	return c.Booking, nil
}

func (h *Handlers) writeBooking(w http.ResponseWriter, r *http.Request, b domain.Booking) {
	if wantsHTML(r) {
		html, err := h.Pages.BookingFragment(b)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeHTML(w, html)
		return
	}
	writeOK(w, http.StatusOK, "", b)
}

func (h *Handlers) getBookingInfo(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookingOf(r, r.URL.Query().Get("hotelId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeBooking(w, r, b)
}

type bookingBody struct {
	HotelID string `json:"hotelId"`
	// Content is the single-text form older editors post.
	Content string `json:"content"`
	domain.Booking
}

func (h *Handlers) postBookingInfo(w http.ResponseWriter, r *http.Request) {
	var body bookingBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.HotelID == "" {
		if body.Content == "" {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "필수 필드 누락: content")
			return
		}
		writeOK(w, http.StatusOK, "예약 안내가 성공적으로 저장되었습니다.", map[string]string{"content": body.Content})
		return
	}
	b := body.Booking
	if b.PurchaseGuide == "" {
		b.PurchaseGuide = body.Content
	}
	c, err := h.Content.UpdateBooking(r.Context(), body.HotelID, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "예약 안내가 성공적으로 저장되었습니다.", c.Booking)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("hotelId")
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "hotelId is required")
		return
	}
	b, err := h.bookingOf(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeBooking(w, r, b)
}

func (h *Handlers) postBooking(w http.ResponseWriter, r *http.Request) {
	var body bookingBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.HotelID == "" {
		body.HotelID = r.URL.Query().Get("hotelId")
	}
	if body.HotelID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "hotelId is required")
		return
	}
	c, err := h.Content.UpdateBooking(r.Context(), body.HotelID, body.Booking)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "예약 안내가 성공적으로 저장되었습니다.", c.Booking)
}

/********** cancel **********/

func (h *Handlers) getCancel(w http.ResponseWriter, r *http.Request) {
	cp := app.SampleCancelPolicy()
	if id := r.URL.Query().Get("hotelId"); id != "" {
		c, err := h.Content.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cp = c.Cancel
	}
	if wantsHTML(r) {
		html, err := h.Pages.CancelFragment(cp)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeHTML(w, html)
		return
	}
	writeOK(w, http.StatusOK, "", cp)
}

func (h *Handlers) postCancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HotelID    string               `json:"hotelId"`
		CancelData *domain.CancelPolicy `json:"cancelData"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.CancelData == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "필수 필드 누락: cancelData")
		return
	}
	cp := *body.CancelData
	if body.HotelID != "" {
		c, err := h.Content.UpdateCancel(r.Context(), body.HotelID, cp)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cp = c.Cancel
	}
	writeOK(w, http.StatusOK, "취소 규정이 성공적으로 저장되었습니다.", map[string]any{"cancelData": cp})
}

/********** price **********/

func (h *Handlers) getPrice(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("hotelId")
	if id == "" {
		writeOK(w, http.StatusOK, "", app.SamplePricing())
		return
	}
	p, err := h.Content.Pricing(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", p)
}

func (h *Handlers) postPrice(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, p, err := app.DecodePriceConfig(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Content.UpdatePricing(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "요금 정보가 저장되었습니다.", c.Pricing)
}

/********** templates **********/

// templateStore describes a per-hotel template endpoint: the kind it stores,
// the body field carrying the data and its response messages.
type templateStore struct {
	kind  domain.TemplateKind
	field string
	label string
}

var (
	noticeStore  = templateStore{kind: domain.TemplateNotice, field: "notices", label: "공지사항 템플릿"}
	roomStore    = templateStore{kind: domain.TemplateRoom, field: "rooms", label: "객실 템플릿"}
	packageStore = templateStore{kind: domain.TemplatePackage, field: "packages", label: "패키지 템플릿"}
	priceStore   = templateStore{kind: domain.TemplatePrice, field: "template", label: "요금표 템플릿"}
)

func (h *Handlers) listScopedTemplates(ts templateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.Templates.List(r.Context(), ts.kind, r.URL.Query().Get("hotelId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, ts.label+" 목록을 성공적으로 조회했습니다.", out)
	}
}

func (h *Handlers) saveScopedTemplate(ts templateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := decodeBody(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		var name, hotelID string
		if err := unmarshalOptional(body["name"], &name); err != nil {
			writeError(w, r, err)
			return
		}
		if err := unmarshalOptional(body["hotelId"], &hotelID); err != nil {
			writeError(w, r, err)
			return
		}
		t, err := h.Templates.Save(r.Context(), domain.Template{
			Kind:    ts.kind,
			Name:    name,
			HotelID: hotelID,
			Data:    body[ts.field],
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, ts.label+"이 성공적으로 저장되었습니다.", t)
	}
}

func unmarshalOptional(raw json.RawMessage, dst *string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return nil
}

func (h *Handlers) listTemplates(w http.ResponseWriter, r *http.Request) {
	kind := domain.TemplateKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = domain.TemplateHotel
	}
	out, err := h.Templates.List(r.Context(), kind, r.URL.Query().Get("hotelId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "템플릿 목록을 성공적으로 조회했습니다.", out)
}

func (h *Handlers) saveTemplate(w http.ResponseWriter, r *http.Request) {
	var t domain.Template
	if err := decodeBody(r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	if t.Kind == "" {
		t.Kind = domain.TemplateHotel
	}
	t, err := h.Templates.Save(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "템플릿이 성공적으로 저장되었습니다.", t)
}

func (h *Handlers) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Templates.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "템플릿이 성공적으로 삭제되었습니다.", map[string]string{"id": id})
}
