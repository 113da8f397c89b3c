package server

import (
	"errors"
	"io"
	"net/http"

	"lead-capture/internal/store"
	"lead-capture/internal/submission"
)

const (
	msgInvalidJSON   = "Invalid JSON"
	msgNotFound      = "Not found"
	msgTooLarge      = "Request body too large"
	msgInternalError = "Internal server error"
)

// handleSubmit validates, stamps and appends one submission.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.metrics.RecordSubmissionRejected()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	sub, err := submission.Decode(body)
	if err != nil {
		s.metrics.RecordSubmissionRejected()
		s.log.Debug().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Msg("submission rejected")
		writeError(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	if err := s.stamper.Stamp(sub); err != nil {
		var reserved *submission.ReservedFieldError
		if errors.As(err, &reserved) {
			s.metrics.RecordSubmissionRejected()
			writeError(w, r, http.StatusBadRequest, "Reserved field: "+reserved.Field)
			return
		}
		s.log.Error().Err(err).Msg("stamp submission")
		writeError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	total, err := s.store.Append(r.Context(), sub)
	if err != nil {
		s.storeFailure(err, "append submission")
		writeError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.metrics.RecordSubmissionAccepted()
	s.log.Info().Str("name", sub.Name()).Int("total", total).Msg("new enquiry")

	if s.notifier != nil {
		s.notifier.Notify(sub, total)
	}

	writeJSON(w, r, http.StatusOK, submitResponse{
		Success:          true,
		Message:          s.branding.ConfirmationMessage,
		TotalSubmissions: total,
	})
}

// handleList returns every stored submission in insertion order.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.Load(r.Context())
	if err != nil {
		s.storeFailure(err, "load submissions")
		writeError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.metrics.RecordList()
	if err := writeIndented(w, http.StatusOK, subs); err != nil {
		s.log.Warn().Err(err).Msg("write submissions list")
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, msgNotFound)
}

func (s *Server) storeFailure(err error, op string) {
	s.metrics.RecordStoreError()
	ev := s.log.Error().Err(err)
	if errors.Is(err, store.ErrCorrupt) {
		ev = ev.Bool("corrupt", true)
	}
	ev.Msg(op)
}
