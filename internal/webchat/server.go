// Package webchat serves the browser chat surface. Like the other surfaces
// it only renders pipeline results and keeps presentation state (usage
// counter, language confirmation) in the session manager.
package webchat

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"gensupport/internal/pipeline"
	"gensupport/internal/session"
	"gensupport/internal/ticket"
)

type Handler interface {
	Handle(ctx context.Context, q pipeline.Query) (pipeline.Result, error)
}

type TicketLister interface {
	ListTickets() ([]ticket.Ticket, error)
}

type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

type Server struct {
	handler  Handler
	sessions *session.Manager
	detector LanguageDetector
	tickets  TicketLister
	server   *http.Server
	port     int
}

func NewServer(handler Handler, sessions *session.Manager, detector LanguageDetector, tickets TicketLister, port int) *Server {
	return &Server{handler: handler, sessions: sessions, detector: detector, tickets: tickets, port: port}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/tickets", s.handleTickets)
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("webchat listening on :%d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webchat server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type chatRequest struct {
	SessionID          string `json:"session_id"`
	Message            string `json:"message"`
	LanguagePreference string `json:"language_preference,omitempty"`
}

type chatResponse struct {
	TicketID          int64    `json:"ticket_id"`
	Intent            string   `json:"intent"`
	Sentiment         string   `json:"sentiment"`
	AgentAction       string   `json:"agent_action"`
	RetrievedContext  []string `json:"retrieved_context"`
	ResponseEmail     string   `json:"response_email"`
	Remaining         int      `json:"remaining_free_queries"`
	SuggestedLanguage string   `json:"suggested_language,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.SessionID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	if req.LanguagePreference != "" {
		s.sessions.ConfirmLanguage(req.SessionID, req.LanguagePreference)
	}
	if !s.sessions.Use(req.SessionID) {
		writeError(w, http.StatusTooManyRequests, "free usage limit reached for this session")
		return
	}

	// First message of a session: surface a language suggestion for the
	// page to confirm. The suggestion is never consumed automatically.
	if s.detector != nil && req.LanguagePreference == "" &&
		s.sessions.Language(req.SessionID) == "" && s.sessions.PendingLanguage(req.SessionID) == "" {
		if lang, err := s.detector.DetectLanguage(r.Context(), req.Message); err == nil && lang != "" {
			s.sessions.SuggestLanguage(req.SessionID, lang)
		}
	}

	metadata := map[string]string{}
	if lang := s.sessions.Language(req.SessionID); lang != "" {
		metadata["language_preference"] = lang
	}

	result, err := s.handler.Handle(r.Context(), pipeline.Query{
		Text:       req.Message,
		SourceType: pipeline.SourceChatUI,
		UserID:     req.SessionID,
		Metadata:   metadata,
	})
	if err != nil {
		log.Printf("pipeline run failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to handle query")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		TicketID:          result.TicketID,
		Intent:            string(result.Intent),
		Sentiment:         string(result.Sentiment),
		AgentAction:       string(result.AgentAction),
		RetrievedContext:  result.RetrievedContext,
		ResponseEmail:     result.ResponseEmail,
		Remaining:         s.sessions.Remaining(req.SessionID),
		SuggestedLanguage: s.sessions.PendingLanguage(req.SessionID),
	})
}

func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	if s.tickets == nil {
		writeError(w, http.StatusNotFound, "ticket listing disabled")
		return
	}
	tickets, err := s.tickets.ListTickets()
	if err != nil {
		log.Printf("failed to list tickets: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatPage.Execute(w, nil); err != nil {
		log.Printf("failed to render chat page: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var chatPage = template.Must(template.New("chat").Parse(`<!DOCTYPE html>
<html>
<head><title>GenSupport</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2em auto; }
#log { border: 1px solid #ccc; padding: 1em; min-height: 240px; white-space: pre-wrap; }
.user { color: #333; font-weight: bold; }
.assistant { color: #06c; }
</style>
</head>
<body>
<h2>GenSupport - Customer Support</h2>
<div id="log"></div>
<p><input id="msg" size="60" placeholder="Describe your issue..."> <button onclick="send()">Send</button></p>
<script>
const sid = Math.random().toString(36).slice(2);
let langPref = '';
async function send() {
  const input = document.getElementById('msg');
  const text = input.value.trim();
  if (!text) return;
  input.value = '';
  append('user', text);
  const resp = await fetch('/api/chat', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({session_id: sid, message: text, language_preference: langPref})
  });
  const data = await resp.json();
  if (!resp.ok) { append('assistant', data.error); return; }
  append('assistant', data.response_email + '\n[ticket #' + data.ticket_id + ', ' + data.agent_action + ']');
  if (data.suggested_language && !langPref) {
    if (confirm('Detected language: ' + data.suggested_language + '. Receive replies in it?')) {
      langPref = data.suggested_language;
    } else {
      langPref = 'english';
    }
  }
}
function append(cls, text) {
  const div = document.createElement('div');
  div.className = cls;
  div.textContent = (cls === 'user' ? 'You: ' : 'Support: ') + text;
  document.getElementById('log').appendChild(div);
}
</script>
</body>
</html>`))
