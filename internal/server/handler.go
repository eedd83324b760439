package server

import (
	"net/http"
	"strings"

	"hireforge/internal/audio"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/formatters"
	"hireforge/internal/observability"
	"hireforge/internal/session"
	"hireforge/internal/types"
	"hireforge/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// lookupSession resolves the {id} path value, writing 404 when it is unknown.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return nil, false
	}
	return sess, true
}

func sessionResponse(sess *session.Session) SessionResponse {
	running := sess.Store().Running()
	if running == nil {
		running = []types.Task{}
	}
	return SessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Assets:    sess.Store().Snapshot(),
		Running:   running,
	}
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.Sessions.Create()
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("session.id", sess.ID))
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

var exportContentTypes = map[string]string{
	"json":     "application/json",
	"text":     "text/plain; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
}

// exportHandler renders the session artifacts as ?format=text|markdown|json.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	contentType, known := exportContentTypes[format]
	if !known {
		s.writeAppError(w, r, appErrors.NewValidationError(appErrors.ErrCodeInvalidFormat,
			"format must be one of json, text, markdown", nil).WithContext("format", format))
		return
	}

	out, err := formatters.NewFormatterRegistry(s.AppConfig.AI.Language).Format(sess.Store().Snapshot(), format)
	if err != nil {
		s.writeAppError(w, r, appErrors.NewInternalError("EXPORT_FAILED", "Failed to render session", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.Sessions.Delete(id) {
		s.writeAppError(w, r, appErrors.NewNotFoundError(appErrors.ErrCodeSessionNotFound,
			"Session not found or expired", nil).WithContext("session_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// jobAssetsHandler runs the base generation. The session's previous
// artifacts are cleared before the call.
func (s *Server) jobAssetsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req GenerateJobAssetsRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("request.notes_length", len(req.Notes)),
		attribute.Bool("request.has_image", req.Image != nil),
	)

	assets, err := sess.Controller.GenerateJobAssets(r.Context(), types.GenerateJobAssetsInput{
		Notes: req.Notes,
		Image: req.Image,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	s.om.RecordBusinessMetric(r.Context(), observability.EventQuestionsGenerated, len(assets.InterviewQuestions))
	span.SetAttributes(attribute.Int("response.questions", len(assets.InterviewQuestions)))
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) profilesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	profiles, err := sess.Controller.GenerateCandidateProfiles(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	s.om.RecordBusinessMetric(r.Context(), observability.EventProfilesGenerated, len(profiles))
	writeJSON(w, http.StatusOK, map[string]any{"candidateProfiles": profiles})
}

func (s *Server) advancedHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	assets, err := sess.Controller.GenerateAdvancedAssets(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	s.om.RecordBusinessMetric(r.Context(), observability.EventAdvancedGenerated, 1)
	writeJSON(w, http.StatusOK, assets)
}

// subAssetsHandler generates profiles and advanced assets in parallel. A
// failure of one half is reported next to the other half's result.
func (s *Server) subAssetsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	snapshot, err := sess.Controller.GenerateSubAssets(r.Context())
	if err != nil && snapshot.JobDescription == nil {
		s.writeAppError(w, r, err)
		return
	}

	s.om.RecordBusinessMetric(r.Context(), observability.EventProfilesGenerated, len(snapshot.CandidateProfiles))
	if snapshot.AdvancedAssets != nil {
		s.om.RecordBusinessMetric(r.Context(), observability.EventAdvancedGenerated, 1)
	}

	status := http.StatusOK
	resp := SubAssetsResponse{Assets: snapshot}
	if err != nil {
		status = statusFor(err)
		resp.Error = errorResponseFor(err)
		s.Logger.LogError(err, "Sub-asset generation partially failed", "session_id", sess.ID)
	}
	writeJSON(w, status, resp)
}

// updateJobDescriptionHandler stores a user-edited job description.
func (s *Server) updateJobDescriptionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var jd types.JobDescription
	if err := parseJSONRequest(r, &jd); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := validation.EditedJobDescription(jd); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := sess.Store().UpdateJobDescription(jd); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Store().JobDescription())
}

func (s *Server) chatMessagesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": sess.Chat.Messages(),
		"activeId": sess.Chat.ActiveID(),
	})
}

// speechHandler reads text aloud and returns a WAV file.
func (s *Server) speechHandler(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeAppError(w, r, appErrors.NewValidationError(appErrors.ErrCodeEmptyText, "text must not be empty", nil))
		return
	}

	speech, err := s.Generator.GenerateSpeech(r.Context(), req.Text)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	wav, err := audio.SpeechToWAV(speech)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	s.om.RecordBusinessMetric(r.Context(), observability.EventSpeechSynthesized, 1)
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wav); err != nil {
		s.Logger.LogError(err, "Failed to write speech response")
	}
}
