package httpapi

import (
	"net/http"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

func (s *Server) handleListTurnstiles(w http.ResponseWriter, r *http.Request) {
	es, err := s.tracker.List(r.Context(), nil)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}

func (s *Server) handleOpenTurnstile(w http.ResponseWriter, r *http.Request) {
	var req types.TurnstileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	e, err := s.tracker.Open(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetTurnstile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.tracker.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleCloseTurnstile stamps exit_time with server time; the body, if
// any, is ignored.
func (s *Server) handleCloseTurnstile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.tracker.Close(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteTurnstile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.Delete(r.Context(), id); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTurnstileLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	scans, err := s.scans.List(r.Context(), &id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.scans.List(r.Context(), nil)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

// handleRecordScan accepts JSON or, from turnstile readers, a binary
// google.protobuf.Struct with the same keys.
func (s *Server) handleRecordScan(w http.ResponseWriter, r *http.Request) {
	var req types.ScanRequest
	if isProtobuf(r) {
		msg, err := readStruct(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_proto", "invalid protobuf body", "")
			return
		}
		if req, err = scanRequestFromStruct(msg); err != nil {
			writeError(w, http.StatusBadRequest, "bad_proto", err.Error(), "")
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	scan, err := s.scans.Record(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, scan)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	scan, err := s.scans.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}
