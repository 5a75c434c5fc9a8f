// Package fakeapi is an in-process stand-in for the assistant REST backend.
// It mirrors the status codes and payload shapes of the real service closely
// enough for SDK tests: users, actions, macros, and the audio endpoints.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/paul-bokelman/hem/client/internal/types"
)

// Route names used by Calls and FailNext.
const (
	RouteCreateUser   = "createUser"
	RouteGetUser      = "getUser"
	RouteDeleteUser   = "deleteUser"
	RouteUserMacros   = "userMacros"
	RouteListActions  = "listActions"
	RouteCreateAction = "createAction"
	RouteEditAction   = "editAction"
	RouteDeleteAction = "deleteAction"
	RouteCreateMacro  = "createMacro"
	RouteEditMacro    = "editMacro"
	RouteDeleteMacro  = "deleteMacro"
	RouteRespond      = "respond"
	RouteUpload       = "upload"
)

type macroRecord struct {
	owner string
	macro types.Macro
}

// Server holds the fake backend state.
type Server struct {
	*httptest.Server

	adminKey string

	mu      sync.Mutex
	users   map[string]bool
	actions map[string]types.Action
	macros  map[string]*macroRecord
	calls   map[string]int
	faults  map[string][]int
	headers map[string]http.Header // last request headers per route
}

// New starts a fake backend. adminKey guards the action write endpoints.
func New(adminKey string) *Server {
	s := &Server{
		adminKey: adminKey,
		users:    make(map[string]bool),
		actions:  make(map[string]types.Action),
		macros:   make(map[string]*macroRecord),
		calls:    make(map[string]int),
		faults:   make(map[string][]int),
		headers:  make(map[string]http.Header),
	}

	r := mux.NewRouter()
	r.HandleFunc("/users", s.track(RouteCreateUser, s.createUser)).Methods(http.MethodPost)
	r.HandleFunc("/users/{userId}", s.track(RouteGetUser, s.getUser)).Methods(http.MethodGet)
	r.HandleFunc("/users/{userId}", s.track(RouteDeleteUser, s.deleteUser)).Methods(http.MethodDelete)
	r.HandleFunc("/users/{userId}/macros", s.track(RouteUserMacros, s.userMacros)).Methods(http.MethodGet)

	r.HandleFunc("/actions", s.track(RouteListActions, s.listActions)).Methods(http.MethodGet)
	r.HandleFunc("/actions", s.track(RouteCreateAction, s.admin(s.createAction))).Methods(http.MethodPost)
	r.HandleFunc("/actions/{actionId}", s.track(RouteEditAction, s.admin(s.editAction))).Methods(http.MethodPut)
	r.HandleFunc("/actions/{actionId}", s.track(RouteDeleteAction, s.admin(s.deleteAction))).Methods(http.MethodDelete)

	r.HandleFunc("/macros", s.track(RouteCreateMacro, s.createMacro)).Methods(http.MethodPost)
	r.HandleFunc("/macros/{macroId}", s.track(RouteEditMacro, s.editMacro)).Methods(http.MethodPut)
	r.HandleFunc("/macros/{macroId}", s.track(RouteDeleteMacro, s.deleteMacro)).Methods(http.MethodDelete)

	r.HandleFunc("/respond", s.track(RouteRespond, s.respond)).Methods(http.MethodPost)
	r.HandleFunc("/upload", s.track(RouteUpload, s.upload)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// SeedAction adds an action directly and returns it.
func (s *Server) SeedAction(name, description string) types.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := types.Action{ID: uuid.NewString(), Name: name, Description: description}
	s.actions[a.ID] = a
	return a
}

// SeedUser registers a user id as existing.
func (s *Server) SeedUser(id string) {
	s.mu.Lock()
	s.users[id] = true
	s.mu.Unlock()
}

// HasUser reports whether id exists.
func (s *Server) HasUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastHeader returns header name from the most recent request to route.
func (s *Server) LastHeader(route, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.headers[route]
	if !ok {
		return ""
	}
	return h.Get(name)
}

// FailNext makes the next len(statuses) requests to route fail with those statuses.
func (s *Server) FailNext(route string, statuses ...int) {
	s.mu.Lock()
	s.faults[route] = append(s.faults[route], statuses...)
	s.mu.Unlock()
}

func (s *Server) track(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		s.headers[route] = r.Header.Clone()
		var fault int
		if q := s.faults[route]; len(q) > 0 {
			fault, s.faults[route] = q[0], q[1:]
		}
		s.mu.Unlock()

		if fault != 0 {
			http.Error(w, http.StatusText(fault), fault)
			return
		}
		h(w, r)
	}
}

func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" || r.Header.Get("X-Admin-Key") != s.adminKey {
			http.Error(w, "Admin key required", http.StatusForbidden)
			return
		}
		h(w, r)
	}
}

// caller returns the user named by X-User-ID, or writes 401.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		http.Error(w, "Missing X-User-ID", http.StatusUnauthorized)
		return "", false
	}
	s.mu.Lock()
	ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Invalid User ID", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------- users

func (s *Server) createUser(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	s.mu.Lock()
	s.users[id] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, types.User{ID: id})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	if !s.HasUser(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, types.User{ID: id})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.users[id] {
		http.NotFound(w, r)
		return
	}
	delete(s.users, id)
	for mid, rec := range s.macros {
		if rec.owner == id {
			delete(s.macros, mid)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) userMacros(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["userId"]
	s.mu.Lock()
	if !s.users[id] {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	out := []types.Macro{}
	for _, rec := range s.macros {
		if rec.owner == id {
			out = append(out, rec.macro)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

// --------------------------------------------------------------- actions

func (s *Server) listActions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]types.Action, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	var in types.ActionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	a := s.SeedAction(in.Name, in.Description)
	writeJSON(w, http.StatusCreated, types.Action{ID: a.ID, Name: a.Name})
}

func (s *Server) editAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["actionId"]
	var in types.ActionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	a, ok := s.actions[id]
	if ok {
		if in.Name != "" {
			a.Name = in.Name
		}
		a.Description = in.Description
		s.actions[id] = a
	}
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, types.Action{ID: a.ID, Name: a.Name})
}

func (s *Server) deleteAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["actionId"]
	s.mu.Lock()
	_, ok := s.actions[id]
	delete(s.actions, id)
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------- macros

func (s *Server) resolveActions(ids []string) []types.Action {
	out := []types.Action{}
	for _, id := range ids {
		if a, ok := s.actions[id]; ok {
			out = append(out, types.Action{ID: a.ID, Name: a.Name})
		}
	}
	return out
}

func (s *Server) createMacro(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.caller(w, r)
	if !ok {
		return
	}
	var in types.MacroInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	m := types.Macro{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Prompt:            in.Prompt,
		AllowOtherActions: in.AllowOtherActions,
		RequiredActions:   s.resolveActions(in.RequiredActions),
	}
	s.macros[m.ID] = &macroRecord{owner: owner, macro: m}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, types.Macro{ID: m.ID, Name: m.Name})
}

func (s *Server) editMacro(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.caller(w, r)
	if !ok {
		return
	}
	var in types.MacroInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	id := mux.Vars(r)["macroId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.macros[id]
	if !found {
		http.NotFound(w, r)
		return
	}
	if rec.owner != owner {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	rec.macro.Name = in.Name
	rec.macro.Prompt = in.Prompt
	rec.macro.AllowOtherActions = in.AllowOtherActions
	rec.macro.RequiredActions = s.resolveActions(in.RequiredActions)
	writeJSON(w, http.StatusOK, types.Macro{ID: rec.macro.ID, Name: rec.macro.Name})
}

func (s *Server) deleteMacro(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.caller(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["macroId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, found := s.macros[id]
	if !found {
		http.NotFound(w, r)
		return
	}
	if rec.owner != owner {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	delete(s.macros, id)
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------- audio

// readUpload returns the multipart "file" part or writes 400.
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part"})
		return "", nil, false
	}
	defer func() { _ = f.Close() }()
	if hdr.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No selected file"})
		return "", nil, false
	}
	b, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return "", nil, false
	}
	return hdr.Filename, b, true
}

// respond echoes the upload back as "audio/wav", prefixed so tests can tell
// the reply from the request.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.caller(w, r); !ok {
		return
	}
	_, b, ok := readUpload(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append([]byte("reply:"), b...))
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.caller(w, r)
	if !ok {
		return
	}
	name, _, ok := readUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, types.Upload{Filename: name, Path: "uploads/" + owner + "_" + name})
}
