package handlers

import (
	"net/http"
)

// handleAdminTick forces a phase-machine evaluation right now instead of
// waiting for the scheduler interval.
func (h *Handlers) handleAdminTick(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Tick(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, PhaseResponse{Phase: h.Engine.Phase().String()})
}

// handleAdminBindMessage attaches a platform message id to a bracket
// entry, so reactions and ballots on re-posted announcements resolve.
func (h *Handlers) handleAdminBindMessage(w http.ResponseWriter, r *http.Request) {
	var req BindMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ChannelID == "" || req.MessageID == "" {
		respondError(w, BadRequest("channel_id and message_id are required"))
		return
	}

	if err := h.Engine.BindMessage(r.Context(), req.ChannelID, req.ThreadID, req.MessageID, req.Index); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Message bound")
}

// handleAdminContest dumps the full contest state for inspection.
func (h *Handlers) handleAdminContest(w http.ResponseWriter, r *http.Request) {
	c := h.Engine.Contest()
	if c == nil {
		respondError(w, NotFound("no contest attached"))
		return
	}
	respondOK(w, c)
}
