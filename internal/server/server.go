// Package server exposes the drafting sessions over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tendergen/internal/config"
	"tendergen/internal/conversation"
	"tendergen/internal/docx"
	"tendergen/internal/field"
	"tendergen/internal/ingest"
	"tendergen/internal/llm"
	"tendergen/internal/placeholder"
	"tendergen/internal/prompt"
	"tendergen/internal/render"
	"tendergen/internal/resolver"
	"tendergen/internal/suggest"
)

const maxUploadBytes = 10 << 20

// Server wires the conversation state machine, the model client and the
// document pipeline behind a JSON API.
type Server struct {
	cfg       *config.Config
	client    llm.Client
	system    string
	sessions  *SessionStore
	prompts   *prompt.Builder
	resolver  *resolver.Resolver
	suggester *suggest.Generator
	log       *slog.Logger
}

// New builds a Server. systemInstruction is the operator-supplied drafting
// instruction already loaded from disk.
func New(cfg *config.Config, client llm.Client, systemInstruction string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		client:    client,
		system:    systemInstruction,
		sessions:  NewSessionStore(),
		prompts:   &prompt.Builder{},
		resolver:  resolver.New(logger),
		suggester: suggest.New(logger),
		log:       logger,
	}
}

// Routes assembles the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.cfg.Server.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.handleTemplates)
		r.Post("/sessions", s.handleCreateSession)
		r.Post("/sessions/upload", s.handleCreateEditSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/messages", s.handleMessage)
			r.Post("/suggestions/select", s.handleSelectSuggestion)
			r.Post("/templates/select", s.handleSelectTemplate)
			r.Get("/placeholders", s.handlePlaceholders)
			r.Post("/fields", s.handleApplyFields)
			r.Get("/fields/{name}/help", s.handleFieldHelp)
			r.Get("/export", s.handleExport)
		})
	})
	return r
}

type sessionResponse struct {
	SessionID   string              `json:"session_id"`
	Turns       []conversation.Turn `json:"turns"`
	Suggestions []string            `json:"suggestions"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": prompt.SectionTemplates()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	chat, err := s.client.NewChat(r.Context(), s.system)
	if err != nil {
		s.log.Error("failed to open drafting chat", "error", err)
		writeError(w, http.StatusBadGateway, "drafting service unavailable")
		return
	}
	sess := s.sessions.Create(conversation.NewState(prompt.Greeting), chat)
	s.log.Info("session created", "session_id", sess.ID, "provider", s.client.Name())
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:   sess.ID,
		Turns:       sess.State.Turns,
		Suggestions: sess.State.Suggestions,
	})
}

// handleCreateEditSession seeds a session from an uploaded document: the
// extracted text is embedded verbatim into the drafting system instruction.
func (s *Server) handleCreateEditSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing document file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	text, err := ingest.ExtractText(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	chat, err := s.client.NewChat(r.Context(), s.prompts.BuildEditSystemInstruction(s.system, text))
	if err != nil {
		s.log.Error("failed to open editing chat", "error", err)
		writeError(w, http.StatusBadGateway, "drafting service unavailable")
		return
	}
	sess := s.sessions.Create(conversation.NewState(prompt.Greeting), chat)
	s.log.Info("edit session created", "session_id", sess.ID, "upload", header.Filename, "chars", len(text))
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:   sess.ID,
		Turns:       sess.State.Turns,
		Suggestions: sess.State.Suggestions,
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:   sess.ID,
		Turns:       sess.State.Turns,
		Suggestions: sess.State.Suggestions,
	})
}

type messageRequest struct {
	Text string `json:"text"`
}

type fieldInfo struct {
	Name string     `json:"name"`
	Kind field.Kind `json:"kind"`
}

type effectResponse struct {
	Kind         string            `json:"kind"`
	Section      string            `json:"section"`
	Values       map[string]string `json:"values,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
	Placeholders []fieldInfo       `json:"placeholders"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	s.handleEvent(w, r, conversation.EventUserMessage)
}

func (s *Server) handleSelectSuggestion(w http.ResponseWriter, r *http.Request) {
	s.handleEvent(w, r, conversation.EventSelectSuggestion)
}

func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	s.handleEvent(w, r, conversation.EventSelectTemplate)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request, kind conversation.EventKind) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	effect, err := conversation.Transition(r.Context(), sess.State, conversation.Event{Kind: kind, Text: req.Text}, conversation.Deps{
		Chat:      sess.Chat,
		Client:    s.client,
		Resolver:  s.resolver,
		Suggester: s.suggester,
		Prompts:   s.prompts,
		Log:       s.log,
	})
	if err != nil {
		// Prior state is intact; the client may simply retry.
		s.log.Error("drafting turn failed", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusBadGateway, "drafting failed, please try again")
		return
	}
	writeJSON(w, http.StatusOK, toEffectResponse(effect))
}

func (s *Server) handlePlaceholders(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"placeholders": fieldInfos(placeholder.Detect(sess.State.LastSection)),
	})
}

type fieldInput struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

type applyFieldsRequest struct {
	Values map[string]fieldInput `json:"values"`
}

// handleApplyFields is the explicit form-collected path: every value is
// validated up front and the batch is all-or-nothing.
func (s *Server) handleApplyFields(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req applyFieldsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "values are required")
		return
	}

	rendered := make(map[string]string, len(req.Values))
	var errs []field.ValidationError
	for name, in := range req.Values {
		value, err := collectValue(name, in)
		if err != nil {
			var verr field.ValidationError
			if errors.As(err, &verr) {
				errs = append(errs, verr)
			} else {
				errs = append(errs, field.ValidationError{Field: name, Message: err.Error()})
			}
			continue
		}
		rendered[name] = value.Render()
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
		return
	}

	sess.Lock()
	defer sess.Unlock()
	effect, err := conversation.ApplyValues(sess.State, rendered)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEffectResponse(effect))
}

// collectValue turns one form input into a typed field value.
func collectValue(name string, in fieldInput) (field.Value, error) {
	switch field.KindOf(name) {
	case field.KindDate:
		t, err := field.ParseDate(in.Value)
		if err != nil {
			return field.Value{}, field.ValidationError{Field: name, Message: "must be a valid calendar date"}
		}
		return field.DateValue(t), nil
	case field.KindCurrency:
		if strings.TrimSpace(in.Unit) == "" {
			return field.Value{}, field.ValidationError{Field: name, Message: "currency unit is required"}
		}
		if err := field.Validate(name, strings.TrimSpace(in.Value)+" "+in.Unit); err != nil {
			return field.Value{}, err
		}
		return field.CurrencyValue(strings.TrimSpace(in.Value), strings.TrimSpace(in.Unit)), nil
	default:
		if err := field.Validate(name, in.Value); err != nil {
			return field.Value{}, err
		}
		return field.TextValue(strings.TrimSpace(in.Value)), nil
	}
}

func (s *Server) handleFieldHelp(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	sess.Lock()
	defer sess.Unlock()
	if help, cached := sess.HelpFor(name); cached {
		writeJSON(w, http.StatusOK, map[string]string{"name": name, "help": help})
		return
	}

	help := fmt.Sprintf("Provide a value for %s.", name)
	if chat, err := s.client.NewChat(r.Context(), prompt.HelpSystemInstruction); err == nil {
		if text, err := chat.Send(r.Context(), s.prompts.BuildFieldHelpPrompt(name)); err == nil {
			help = strings.TrimSpace(text)
		} else {
			s.log.Warn("field help request failed", "field", name, "error", err)
		}
	}
	sess.CacheHelp(name, help)
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "help": help})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	model := render.Render(sess.State.Turns, render.Metadata{
		TenderTitle:  s.cfg.Tender.Title,
		TenderNumber: s.cfg.Tender.Number,
		IssueDate:    s.cfg.IssueDate(),
	})
	sess.Unlock()

	data, err := docx.Write(model)
	if err != nil {
		s.log.Error("document export failed", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "document export failed")
		return
	}
	w.Header().Set("Content-Type", docx.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+docx.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func toEffectResponse(effect conversation.Effect) effectResponse {
	return effectResponse{
		Kind:         string(effect.Kind),
		Section:      effect.Section,
		Values:       effect.Values,
		Suggestions:  effect.Suggestions,
		Placeholders: fieldInfos(effect.Placeholders),
	}
}

func fieldInfos(names []string) []fieldInfo {
	infos := make([]fieldInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, fieldInfo{Name: name, Kind: field.KindOf(name)})
	}
	return infos
}
