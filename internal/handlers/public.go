package handlers

import (
	"net/http"
)

// handleGetPhase reports the current phase.
func (h *Handlers) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	respondOK(w, PhaseResponse{Phase: h.Engine.Phase().String()})
}

// handleGetCompetitions lists every bracket.
func (h *Handlers) handleGetCompetitions(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Engine.Competitions())
}

// handleGetCurrentCompetitions lists the brackets open right now.
func (h *Handlers) handleGetCurrentCompetitions(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Engine.CurrentCompetitions())
}

// handleGetTally returns the live totals of one bracket.
func (h *Handlers) handleGetTally(w http.ResponseWriter, r *http.Request) {
	index, err := parseIntParam(r, "index")
	if err != nil {
		respondError(w, err)
		return
	}

	tally, err := h.Engine.Tally(index)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, tally)
}

// handleGetResults returns the contest outcome.
func (h *Handlers) handleGetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Engine.Results()
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, results)
}

// handleGetExport returns the audit rows written at finish.
func (h *Handlers) handleGetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Engine.Export(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ExportResponse{Rows: rows})
}

// handleGetResultsQR serves a QR code PNG pointing at the results page.
func (h *Handlers) handleGetResultsQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Links.GenerateResultsQR()
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
