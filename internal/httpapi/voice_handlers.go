package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atom-sv/leadagent/internal/conversation"
	"github.com/atom-sv/leadagent/internal/eventlog"
)

const maxAudioUpload = 10 << 20 // 10 MiB

// transcriptApology is spoken back when the recording could not be understood.
const transcriptApology = "Disculpa, no pude entender lo que dijiste. ¿Podrías repetirlo?"

// handleSessionVoice accepts an audio recording, transcribes it and runs the
// regular turn path on the transcript. Transcription failures degrade to an
// apology instead of failing the request.
func (r *Router) handleSessionVoice(w http.ResponseWriter, req *http.Request) {
	s := r.sessionFromRequest(w, req)
	if s == nil {
		return
	}

	if err := req.ParseMultipartForm(maxAudioUpload); err != nil {
		http.Error(w, `{"error": "invalid multipart form"}`, http.StatusBadRequest)
		return
	}

	file, header, err := req.FormFile("audio")
	if err != nil {
		http.Error(w, `{"error": "missing audio file"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	transcript, err := r.stt.Transcribe(req.Context(), file, header.Filename)
	transcript = strings.TrimSpace(transcript)
	if err != nil || transcript == "" {
		if err != nil {
			r.logger.Printf("session %s: transcription failed: %v", s.ID(), err)
			r.eventLog.LogAsync(s.ID(), nil, eventlog.EventSTTError, map[string]any{
				"error": err.Error(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"transcript": "",
			"reply":      transcriptApology,
		})
		return
	}

	result, err := s.SubmitUtterance(req.Context(), transcript)
	if err != nil {
		if errors.Is(err, conversation.ErrNotActive) {
			http.Error(w, `{"error": "session is not active"}`, http.StatusConflict)
			return
		}
		r.logger.Printf("session %s: voice turn failed: %v", s.ID(), err)
		captureError(req, err, "voice turn failed")
		http.Error(w, `{"error": "failed to process recording"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transcript": transcript,
		"reply":      result.Reply,
		"intent":     result.Intent,
		"fields":     result.Fields,
	})
}

// handleSessionAudio synthesizes the most recent agent reply as MP3.
func (r *Router) handleSessionAudio(w http.ResponseWriter, req *http.Request) {
	s := r.sessionFromRequest(w, req)
	if s == nil {
		return
	}

	if r.tts == nil {
		http.Error(w, `{"error": "audio not available"}`, http.StatusNotFound)
		return
	}

	reply := s.LastReply()
	if reply == "" {
		http.Error(w, `{"error": "nothing to synthesize"}`, http.StatusNotFound)
		return
	}

	audio, err := r.tts.Synthesize(req.Context(), reply)
	if err != nil {
		r.logger.Printf("session %s: synthesis failed: %v", s.ID(), err)
		r.eventLog.LogAsync(s.ID(), nil, eventlog.EventTTSError, map[string]any{
			"error": err.Error(),
		})
		http.Error(w, `{"error": "synthesis failed"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
