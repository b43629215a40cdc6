// Package fakeapi is an in-memory stand-in for the notebook REST API used by
// tests. It keeps records in insertion order, assigns numeric ids, returns
// JHipster-style alert headers and problem bodies, and records every request.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

const AppName = "notebookApp"

// Collections served by the fake, keyed by the path below /api/.
var collections = map[string]string{
	"note-books": "noteBook",
	"notes":      "note",
	"shares":     "share",
	"users":      "user",
}

type Record = map[string]any

type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int64
	data     map[string][]Record
	calls    []Call
	failures map[string][]failure
	token    string
	router   http.Handler
	// Hold, when set, is called before a matching request is served.
	holds map[string]func()
}

func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		nextID:   1000,
		data:     make(map[string][]Record),
		failures: make(map[string][]failure),
		holds:    make(map[string]func()),
	}
	s.router = s.routes()
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// RequireToken makes every /api request other than /api/authenticate
// demand the given bearer token; /api/authenticate hands it out.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Seed stores records as if they had been created through the API and
// returns their assigned ids.
func (s *Server) Seed(collection string, records ...Record) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(records))
	for _, r := range records {
		rec := copyRecord(r)
		if _, ok := rec["id"]; !ok {
			s.nextID++
			rec["id"] = s.nextID
		}
		ids = append(ids, toInt64(rec["id"]))
		s.data[collection] = append(s.data[collection], rec)
	}
	return ids
}

func (s *Server) Records(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.data[collection]))
	for _, r := range s.data[collection] {
		out = append(out, copyRecord(r))
	}
	return out
}

// Fail makes the next request matching "METHOD /path" (path prefix) answer
// with status and a problem body carrying title.
func (s *Server) Fail(method, path string, status int, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, _ := json.Marshal(map[string]any{
		"type":    "https://www.jhipster.tech/problem/problem-with-message",
		"title":   title,
		"status":  status,
		"message": "error.http." + strconv.Itoa(status),
	})
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: string(body)})
}

// Hold runs fn before serving the next request matching "METHOD /path".
func (s *Server) Hold(method, path string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[method+" "+path] = fn
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallLines renders the recorded calls as "METHOD /path" strings.
func (s *Server) CallLines() []string {
	calls := s.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.problem(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.problem(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/api/authenticate", s.authenticate).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("/{collection}", s.list).Methods(http.MethodGet)
	api.HandleFunc("/{collection}", s.create).Methods(http.MethodPost)
	api.HandleFunc("/{collection}/{id}", s.get).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/{id}", s.update).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/{collection}/{id}", s.remove).Methods(http.MethodDelete)
	return r
}

// serve records the request, applies injected holds and failures, and
// hands the request to the router with the store locked.
func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		dec := json.NewDecoder(r.Body)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			body = raw
		}
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	hold := s.takeHold(r)
	s.mu.Unlock()

	if hold != nil {
		hold()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.takeFailure(r); ok {
		w.Header().Set("Content-Type", "application/problem+json")
		w.Header().Set("X-"+AppName+"-error", "error.http."+strconv.Itoa(f.status))
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return
	}

	s.router.ServeHTTP(w, r)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			s.problem(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// collection resolves the {collection} route variable to its entity name.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	collection := mux.Vars(r)["collection"]
	entityName, ok := collections[collection]
	if !ok {
		s.problem(w, http.StatusNotFound, "Not Found")
		return "", "", false
	}
	return collection, entityName, true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	collection, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	list := s.data[collection]
	if list == nil {
		list = []Record{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	collection, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	if rec, _ := s.find(collection, mux.Vars(r)["id"]); rec != nil {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	s.problem(w, http.StatusNotFound, "Not Found")
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	collection, entityName, ok := s.collection(w, r)
	if !ok {
		return
	}

	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.problem(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if _, ok := rec["id"]; ok {
		s.problemWithKey(w, http.StatusBadRequest, "Bad Request", "A new "+entityName+" cannot already have an ID", "error.idexists")
		return
	}
	s.nextID++
	rec["id"] = s.nextID
	s.data[collection] = append(s.data[collection], rec)

	s.alert(w, entityName+".created", strconv.FormatInt(s.nextID, 10))
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	collection, entityName, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var in Record
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.problem(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if fmt.Sprint(in["id"]) != id {
		s.problemWithKey(w, http.StatusBadRequest, "Bad Request", "Invalid ID", "error.idinvalid")
		return
	}
	rec, idx := s.find(collection, id)
	if rec == nil {
		s.problemWithKey(w, http.StatusBadRequest, "Bad Request", "Entity not found", "error.idnotfound")
		return
	}

	if r.Method == http.MethodPut {
		rec = in
	} else {
		for k, v := range in {
			if v == nil {
				delete(rec, k)
			} else {
				rec[k] = v
			}
		}
	}
	rec["id"] = toInt64(in["id"])
	s.data[collection][idx] = rec

	s.alert(w, entityName+".updated", id)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	collection, entityName, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	_, idx := s.find(collection, id)
	if idx < 0 {
		s.problem(w, http.StatusNotFound, "Not Found")
		return
	}
	s.data[collection] = append(s.data[collection][:idx], s.data[collection][idx+1:]...)
	s.alert(w, entityName+".deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Username == "" || in.Password != in.Username || s.token == "" {
		s.problem(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id_token": s.token})
}

func (s *Server) find(collection, id string) (Record, int) {
	for i, rec := range s.data[collection] {
		if fmt.Sprint(rec["id"]) == id {
			return copyRecord(rec), i
		}
	}
	return nil, -1
}

func (s *Server) takeFailure(r *http.Request) (failure, bool) {
	for key, fs := range s.failures {
		method, path, _ := strings.Cut(key, " ")
		if method == r.Method && strings.HasPrefix(r.URL.Path, path) && len(fs) > 0 {
			s.failures[key] = fs[1:]
			return fs[0], true
		}
	}
	return failure{}, false
}

func (s *Server) takeHold(r *http.Request) func() {
	for key, fn := range s.holds {
		method, path, _ := strings.Cut(key, " ")
		if method == r.Method && strings.HasPrefix(r.URL.Path, path) {
			delete(s.holds, key)
			return fn
		}
	}
	return nil
}

func (s *Server) alert(w http.ResponseWriter, key, param string) {
	w.Header().Set("X-"+AppName+"-alert", AppName+"."+key)
	w.Header().Set("X-"+AppName+"-params", param)
}

func (s *Server) problem(w http.ResponseWriter, status int, title string) {
	s.problemWithKey(w, status, title, "", "error.http."+strconv.Itoa(status))
}

func (s *Server) problemWithKey(w http.ResponseWriter, status int, title, detail, key string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":   title,
		"status":  status,
		"detail":  detail,
		"message": key,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func copyRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
