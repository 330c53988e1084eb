// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_detail/internal/adapters/observability"
	"hotel_detail/internal/app"
	"hotel_detail/internal/domain"
	"hotel_detail/internal/preview"
	"hotel_detail/internal/pricing"
)

type Handlers struct {
	Content   *app.ContentService
	Templates *app.TemplateService
	Errors    *app.ErrorIntakeService
	Publisher *app.PublishService
	Pages     *preview.Renderer
	Prices    *pricing.Dispatcher
	Notifier  domain.Notifier // optional
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// envelope is the success body every JSON endpoint answers with.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/hotels", h.listHotels)
		r.Post("/hotels", h.createHotel)
		r.Get("/hotels/{id}", h.getHotel)
		r.Put("/hotels/{id}", h.replaceHotel)
		r.Delete("/hotels/{id}", h.deleteHotel)
		r.Post("/hotels/{id}/duplicate", h.duplicateHotel)
		r.Get("/hotels/{id}/export", h.exportHotel)
		r.Get("/hotels/{id}/preview", h.previewHotel)
		r.Put("/hotels/{id}/notices", h.saveHotelNotices)

		r.Get("/bookingInfo", h.getBookingInfo)
		r.Post("/bookingInfo", h.postBookingInfo)
		r.Get("/booking", h.getBooking)
		r.Post("/booking", h.postBooking)
		r.Get("/cancel", h.getCancel)
		r.Post("/cancel", h.postCancel)
		r.Get("/price", h.getPrice)
		r.Post("/price", h.postPrice)
		r.Post("/price/calculate", h.calculatePrice)

		r.Get("/notices/save", h.listScopedTemplates(noticeStore))
		r.Post("/notices/save", h.saveScopedTemplate(noticeStore))
		r.Get("/rooms/save", h.listScopedTemplates(roomStore))
		r.Post("/rooms/save", h.saveScopedTemplate(roomStore))
		r.Get("/packages/save", h.listScopedTemplates(packageStore))
		r.Post("/packages/save", h.saveScopedTemplate(packageStore))
		r.Get("/price-templates", h.listScopedTemplates(priceStore))
		r.Post("/price-templates", h.saveScopedTemplate(priceStore))
		r.Get("/templates", h.listTemplates)
		r.Post("/templates", h.saveTemplate)
		r.Delete("/templates/{id}", h.deleteTemplate)

		r.Post("/generate-html", h.generateHTML)
		r.Post("/log-error", h.logError)
		r.Post("/agent/notify", h.agentNotify)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.As(err, &tooBig):
		writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeOK(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: msg, Data: data})
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, html); err != nil {
		log.Error().Err(err).Msg("write HTML response failed")
	}
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalid, err)
	}
	return nil
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

/********** hotels **********/

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := domain.ContentQuery{TemplatesOnly: r.URL.Query().Get("templates") == "true"}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		q.Limit = l
	}
	out, err := h.Content.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "호텔 목록을 성공적으로 조회했습니다.", out)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := app.DecodeContent(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err = h.Content.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "호텔이 성공적으로 저장되었습니다.", c)
}

// etagMatches reports whether an If-None-Match header covers etag. The
// header may be "*" or a comma-separated list; comparison is weak.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	c, err := h.Content.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(envelope{Success: true, Data: c})
	// If client already has this version, short-circuit.
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) replaceHotel(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := app.DecodeContent(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err = h.Content.Replace(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "호텔 정보가 성공적으로 수정되었습니다.", c)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Content.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "호텔 정보가 성공적으로 삭제되었습니다.", map[string]string{"id": id})
}

func (h *Handlers) duplicateHotel(w http.ResponseWriter, r *http.Request) {
	c, err := h.Content.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "템플릿이 성공적으로 복제되었습니다.", c)
}

func (h *Handlers) exportHotel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exp, err := h.Content.Export(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="hotel-%s.json"`, id))
	writeOK(w, http.StatusOK, "템플릿이 성공적으로 내보내기되었습니다.", exp)
}

func (h *Handlers) previewHotel(w http.ResponseWriter, r *http.Request) {
	html, err := h.Content.Preview(r.Context(), chi.URLParam(r, "id"))
	if !errors.Is(err, domain.ErrNotFound) {
		observability.ObserveRender(err)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeHTML(w, html)
}

func (h *Handlers) saveHotelNotices(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notices []domain.Notice `json:"notices"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Content.SaveNotices(r.Context(), chi.URLParam(r, "id"), body.Notices)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "공지사항이 성공적으로 업데이트되었습니다.", c.Notices)
}
