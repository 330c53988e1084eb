package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"hotel_detail/internal/adapters/observability"
	"hotel_detail/internal/app"
	"hotel_detail/internal/domain"
	"hotel_detail/internal/pricing"
)

// calculatePrice accepts one {type, data} message or an array of them.
func (h *Handlers) calculatePrice(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []pricing.Request
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			writeError(w, r, fmt.Errorf("%w: malformed price requests: %v", domain.ErrInvalid, err))
			return
		}
		for _, req := range reqs {
			observability.ObservePrice(pricing.MetricType(req.Type))
		}
		out, err := h.Prices.Batch(r.Context(), reqs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, "", out)
		return
	}

	var req pricing.Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed price request: %v", domain.ErrInvalid, err))
		return
	}
	observability.ObservePrice(pricing.MetricType(req.Type))
	writeOK(w, http.StatusOK, "", h.Prices.Handle(req))
}

// generateHTML renders a posted aggregate; ?save=true also publishes it.
func (h *Handlers) generateHTML(w http.ResponseWriter, r *http.Request) {
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
	html, err := h.Pages.RenderString(c)
	observability.ObserveRender(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("save") == "true" {
		path, err := h.Publisher.Publish(r.Context(), c)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("X-Generated-File", filepath.Base(path))
	}
	writeHTML(w, html)
}

func (h *Handlers) logError(w http.ResponseWriter, r *http.Request) {
	var b domain.ErrorBatch
	if err := decodeBody(r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.UserAgent = r.UserAgent()
	b.Referer = r.Referer()

	a, err := h.Errors.Intake(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveClientErrors(a.Accepted, a.Duplicates)
	writeOK(w, http.StatusOK, "오류가 수집되고 분석되었습니다.", a)
}

// agentNotify relays a {title, message, extra} event to the notifier.
func (h *Handlers) agentNotify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title   string         `json:"title"`
		Message string         `json:"message"`
		Extra   map[string]any `json:"extra"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Title == "" && body.Message == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "title or message is required")
		return
	}

	forwarded := false
	if h.Notifier != nil {
		if err := h.Notifier.Notify(r.Context(), body.Title, body.Message, body.Extra); err != nil {
			log.Warn().Err(err).Str("title", body.Title).Msg("agent notify forward failed")
		} else {
			forwarded = true
		}
	} else {
		log.Info().Str("title", body.Title).Str("message", body.Message).Msg("agent notify (no notifier configured)")
	}
	writeOK(w, http.StatusOK, "", map[string]bool{"forwarded": forwarded})
}
