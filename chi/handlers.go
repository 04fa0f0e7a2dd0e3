package chi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/indexnow"
)

// handleStatus reports the queue size and last outcome.
// GET /status
//
// The reply carries an ETag so pollers can use If-None-Match.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body, err := json.Marshal(st)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(body, '\n'))
}

// handleSubmit flushes the queue now. With force=1 the rate limit clock is
// reset first.
// POST /submit[?force=1]
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	flush := h.svc.Flush
	if force {
		flush = h.svc.ForceFlush
	}
	res, err := flush(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleClear empties the queue.
// POST /clear
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVerify checks that the key file is reachable.
// POST /verify
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	check, err := h.svc.VerifyKey(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// handleGetSettings returns the normalized settings with the key masked.
// GET /settings
func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Config(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.MaskedSettings())
}

// handlePutSettings merges a partial settings object over the stored one.
// A key equal to the masked form of the current key is ignored, so a GET
// response can be sent back unchanged.
// PUT /settings
func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch indexnow.Settings
	if err := decode(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	if key, ok := patch[indexnow.SettingKey].(string); ok {
		cur, err := h.svc.Config(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if key != "" && key == indexnow.MaskKey(cur.Key) {
			delete(patch, indexnow.SettingKey)
		}
	}
	cfg, err := h.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.MaskedSettings())
}

// eventsResponse reports how many events queued a URL.
type eventsResponse struct {
	Received int `json:"received"`
	Queued   int `json:"queued"`
}

// handleEvents accepts one change event or an array of them.
// POST /events
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decode(r, &raw); err != nil {
		h.writeError(w, r, err)
		return
	}

	var events []indexnow.ChangeEvent
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &events); err != nil {
			h.writeError(w, r, indexnow.Errorf(indexnow.EINVALID, "invalid events: %v", err))
			return
		}
	} else {
		var ev indexnow.ChangeEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			h.writeError(w, r, indexnow.Errorf(indexnow.EINVALID, "invalid event: %v", err))
			return
		}
		events = append(events, ev)
	}

	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	resp := eventsResponse{Received: len(events)}
	for _, ev := range events {
		queued, err := h.svc.HandleChange(r.Context(), ev)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if queued {
			resp.Queued++
		}
	}
	writeJSON(w, http.StatusAccepted, resp)
}
