package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"sync"

	"github.com/dekarrin/ebnfgen/internal/bootstrap"
	"github.com/dekarrin/ebnfgen/internal/ebnf"
	"github.com/dekarrin/ebnfgen/internal/lr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EndpointFunc is one endpoint's business logic, deferred until the
// wrapper in Endpoint is ready to write its result.
type EndpointFunc func(req *http.Request) EndpointResult

// Endpoint wraps fn as an http.HandlerFunc, recovering a panic into an
// HTTP-500 and stamping every response with a per-request X-Request-Id
// correlation header.
func Endpoint(fn EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		defer panicTo500(w, req)
		result := fn(req)
		result.writeResponse(w, req)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if p := recover(); p != nil {
		res := jsonInternalServerError(fmt.Sprintf("panic: %v\n%s", p, debug.Stack()))
		res.writeResponse(w, req)
	}
}

// API serves the bootstrap harness over HTTP: compiled grammars are held in
// an in-memory registry (an id->GeneratorResult map is all this resource
// needs -- no queries, no joins, see DESIGN.md for why this isn't backed by
// modernc.org/sqlite), keyed by a uuid handle returned from CompileGrammar.
type API struct {
	mu       sync.RWMutex
	grammars map[string]*ebnf.GeneratorResult
}

// New returns a ready-to-use API with an empty grammar registry.
func New() *API {
	return &API{grammars: map[string]*ebnf.GeneratorResult{}}
}

// Router builds the chi.Router SPEC_FULL.md §E.2 names: POST /v1/grammars,
// POST /v1/grammars/{id}/parse.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/grammars", Endpoint(a.epCompileGrammar))
	r.Post("/v1/grammars/{id}/parse", Endpoint(a.epParseInput))
	return r
}

// CompileGrammarResponse is the JSON body `POST /v1/grammars` returns.
type CompileGrammarResponse struct {
	ID      string   `json:"id"`
	Symbols []string `json:"symbols"`
}

func (a *API) epCompileGrammar(req *http.Request) EndpointResult {
	body, err := readAll(req)
	if err != nil {
		return jsonBadRequest("could not read request body", err.Error())
	}

	gen, err := bootstrap.Compile(string(body))
	if err != nil {
		return jsonUnprocessable(err.Error(), "compile: "+err.Error())
	}

	id := uuid.NewString()
	a.mu.Lock()
	a.grammars[id] = gen
	a.mu.Unlock()

	return jsonOK(CompileGrammarResponse{ID: id, Symbols: gen.Symbols.TerminalNames()}, "compiled grammar "+id)
}

// ParseErrorResponse is the JSON body `POST /v1/grammars/{id}/parse`
// returns on a parse failure, per SPEC_FULL.md §E.2's "ParseError envelope".
type ParseErrorResponse struct {
	Error string `json:"error"`
}

func (a *API) epParseInput(req *http.Request) EndpointResult {
	id := chi.URLParam(req, "id")

	a.mu.RLock()
	gen, ok := a.grammars[id]
	a.mu.RUnlock()
	if !ok {
		return jsonNotFound("no compiled grammar with id " + id)
	}

	body, err := readAll(req)
	if err != nil {
		return jsonBadRequest("could not read request body", err.Error())
	}

	result, err := bootstrap.Parse(gen, string(body), &lr.DefaultAction{})
	if err != nil {
		return EndpointResult{
			status:      http.StatusUnprocessableEntity,
			isErr:       true,
			internalMsg: "parse: " + err.Error(),
			resp:        ParseErrorResponse{Error: err.Error()},
		}
	}

	return jsonOK(result, "parsed input against grammar "+id)
}

func readAll(req *http.Request) ([]byte, error) {
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}
