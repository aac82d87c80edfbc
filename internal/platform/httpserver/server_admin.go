package httpserver

import (
	"net/http"
	"time"
)

func (s *Server) handleOutboxPending(w http.ResponseWriter, r *http.Request) {
	_, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	pending, err := s.outbox.PendingCount(r.Context())
	if err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outbox_queue_size": pending})
}

// handleOutboxRequeue resets a FAILED entry to PENDING so the dispatcher
// picks it up again.
func (s *Server) handleOutboxRequeue(w http.ResponseWriter, r *http.Request) {
	_, correlationID, ok := s.tenantContext(w, r)
	if !ok {
		return
	}

	outboxID := r.PathValue("outbox_id")
	if err := s.outbox.Requeue(r.Context(), outboxID, time.Now().UTC()); err != nil {
		s.writeFault(w, correlationID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outbox_id": outboxID, "status": "PENDING"})
}
