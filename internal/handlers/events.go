package handlers

import (
	"net/http"

	"github.com/ateliervote/concours/internal/platform"
)

// handleSubmissionEvent records a new entry posted on the platform.
func (h *Handlers) handleSubmissionEvent(w http.ResponseWriter, r *http.Request) {
	var ev platform.SubmissionEvent
	if err := decodeJSON(r, &ev); err != nil {
		respondError(w, err)
		return
	}
	if ev.AuthorID == "" || ev.ChannelID == "" || ev.MessageID == "" {
		respondError(w, BadRequest("author_id, channel_id and message_id are required"))
		return
	}

	index, err := h.Engine.HandleSubmission(r.Context(), ev)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, SubmissionResponse{Index: index})
}

// handleWithdrawalEvent removes an entry whose message was deleted.
func (h *Handlers) handleWithdrawalEvent(w http.ResponseWriter, r *http.Request) {
	var ev platform.WithdrawalEvent
	if err := decodeJSON(r, &ev); err != nil {
		respondError(w, err)
		return
	}
	if ev.ChannelID == "" || ev.MessageID == "" {
		respondError(w, BadRequest("channel_id and message_id are required"))
		return
	}

	entry, err := h.Engine.HandleWithdrawal(r.Context(), ev)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, WithdrawalResponse{Entry: entry})
}

// handleReactionEvent records a public point reaction. Unknown emojis
// are acknowledged and ignored.
func (h *Handlers) handleReactionEvent(w http.ResponseWriter, r *http.Request) {
	var ev platform.ReactionEvent
	if err := decodeJSON(r, &ev); err != nil {
		respondError(w, err)
		return
	}
	if ev.VoterID == "" || ev.ChannelID == "" || ev.MessageID == "" {
		respondError(w, BadRequest("voter_id, channel_id and message_id are required"))
		return
	}

	if err := h.Engine.HandleReaction(r.Context(), ev); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Reaction recorded")
}

// handleBallotEvent records a ranked jury ballot.
func (h *Handlers) handleBallotEvent(w http.ResponseWriter, r *http.Request) {
	var ev platform.BallotEvent
	if err := decodeJSON(r, &ev); err != nil {
		respondError(w, err)
		return
	}
	if ev.VoterID == "" || ev.ChannelID == "" || len(ev.MessageIDs) == 0 {
		respondError(w, BadRequest("voter_id, channel_id and message_ids are required"))
		return
	}

	if err := h.Engine.HandleBallot(r.Context(), ev); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Ballot recorded")
}
