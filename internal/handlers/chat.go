package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/sessions"

	"github.com/theMessiMagic/if-fashion/internal/chat"
	"github.com/theMessiMagic/if-fashion/internal/metrics"
	"github.com/theMessiMagic/if-fashion/internal/models"
	"github.com/theMessiMagic/if-fashion/internal/store"
)

const historyKey = "history"

type ChatHandler struct {
	Assistant    *chat.Assistant
	Store        *store.Store
	SessionStore sessions.Store
	Metrics      *metrics.Metrics
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply     string `json:"reply"`
	Admin     bool   `json:"admin"`
	TicketID  string `json:"ticket_id,omitempty"`
	ReplyHTML string `json:"reply_html,omitempty"`
}

// maxStoredTurnBytes bounds each turn kept in the chat cookie so a full
// history stays under the 4096 byte cookie limit after encoding.
const maxStoredTurnBytes = 250

// storedHistory copies turns with each text clipped to maxStoredTurnBytes.
func storedHistory(turns []models.ChatTurn) []models.ChatTurn {
	out := make([]models.ChatTurn, len(turns))
	for i, turn := range turns {
		out[i] = models.ChatTurn{Role: turn.Role, Text: clipText(turn.Text, maxStoredTurnBytes)}
	}
	return out
}

// clipText cuts s to at most n bytes without splitting a rune.
func clipText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write JSON response", "error", err)
	}
}

// Chat answers one visitor message. The conversation history lives in the
// chat session cookie.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	session, _ := h.SessionStore.Get(r, chatSessionName)
	history, _ := session.Values[historyKey].([]models.ChatTurn)

	reply, err := h.Assistant.Respond(r.Context(), history, req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required"})
		return
	}
	if err != nil {
		slog.Error("Failed to answer chat message", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}

	session.Values[historyKey] = storedHistory(reply.History)
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save chat session, starting a new conversation", "error", err)
		delete(session.Values, historyKey)
		if err := session.Save(r, w); err != nil {
			slog.Error("Failed to reset chat session", "error", err)
		}
	}

	resp := chatResponse{Reply: reply.Text, Admin: reply.Admin, TicketID: reply.TicketID}
	if reply.Admin {
		h.Metrics.ChatReply(metrics.OutcomeEscalated)
	} else {
		h.Metrics.ChatReply(metrics.OutcomeAnswered)
		if html, err := chat.RenderMarkdown(reply.Text); err == nil {
			resp.ReplyHTML = html
		} else {
			slog.Warn("Failed to render chat reply", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Check reports the admin's reply to a ticket, null until answered.
func (h *ChatHandler) Check(w http.ResponseWriter, r *http.Request) {
	reply, err := h.Store.TicketReply(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("Failed to check ticket", "ticket_id", r.PathValue("id"), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]*string{"reply": reply})
}

func isJSON(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/json"
}

// ReplyTicket answers a pending ticket. JSON callers get {"ok": bool}; the
// dashboard form is redirected back.
func (h *AdminHandler) ReplyTicket(w http.ResponseWriter, r *http.Request) {
	var id, reply string
	if isJSON(r) {
		var body struct {
			ID    string `json:"id"`
			Reply string `json:"reply"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]bool{"ok": false})
			return
		}
		id, reply = body.ID, body.Reply
	} else {
		id, reply = r.FormValue("id"), r.FormValue("reply")
	}
	id = strings.TrimSpace(id)
	reply = strings.TrimSpace(reply)

	ok := false
	if id != "" && reply != "" {
		_, err := h.Store.AnswerTicket(r.Context(), id, reply)
		switch {
		case err == nil:
			ok = true
			h.Metrics.TicketAnswered()
			slog.Info("Chat ticket answered", "ticket_id", id)
		case errors.Is(err, store.ErrNotFound):
		default:
			slog.Error("Failed to answer ticket", "ticket_id", id, "error", err)
			if isJSON(r) {
				writeJSON(w, http.StatusInternalServerError, map[string]bool{"ok": false})
			} else {
				http.Error(w, "Failed to save reply", http.StatusInternalServerError)
			}
			return
		}
	}

	if isJSON(r) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
		return
	}
	h.backToDashboard(w, r)
}
