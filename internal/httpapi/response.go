// Package httpapi is the supplemental HTTP front-end SPEC_FULL.md §E.2
// describes: `POST /v1/grammars` compiles a grammar and returns a handle,
// `POST /v1/grammars/{id}/parse` parses input text against it. This is
// ambient tooling around the core, not part of the core's contract --
// simplified down to the one resource this system actually has (compiled
// grammars), with no auth/session machinery since no principal exists to
// authenticate against in a grammar compiler (see DESIGN.md).
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
)

// EndpointResult is the uniform return value of every endpoint function,
// deferring the actual response write until the handler wrapper is ready
// for it. JSON-only: this API never serves plain text.
type EndpointResult struct {
	status      int
	internalMsg string
	resp        interface{}
	isErr       bool
	hdrs        [][2]string
}

// ErrorResponse is the JSON body of any non-2xx EndpointResult.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func jsonOK(respObj interface{}, internalMsg string) EndpointResult {
	return EndpointResult{status: http.StatusOK, resp: respObj, internalMsg: internalMsg}
}

func jsonBadRequest(userMsg, internalMsg string) EndpointResult {
	return EndpointResult{
		status:      http.StatusBadRequest,
		isErr:       true,
		internalMsg: internalMsg,
		resp:        ErrorResponse{Error: userMsg, Status: http.StatusBadRequest},
	}
}

func jsonNotFound(internalMsg string) EndpointResult {
	return EndpointResult{
		status:      http.StatusNotFound,
		isErr:       true,
		internalMsg: internalMsg,
		resp:        ErrorResponse{Error: "The requested grammar was not found", Status: http.StatusNotFound},
	}
}

func jsonUnprocessable(userMsg, internalMsg string) EndpointResult {
	return EndpointResult{
		status:      http.StatusUnprocessableEntity,
		isErr:       true,
		internalMsg: internalMsg,
		resp:        ErrorResponse{Error: userMsg, Status: http.StatusUnprocessableEntity},
	}
}

func jsonInternalServerError(internalMsg string) EndpointResult {
	return EndpointResult{
		status:      http.StatusInternalServerError,
		isErr:       true,
		internalMsg: internalMsg,
		resp:        ErrorResponse{Error: "An internal server error occurred", Status: http.StatusInternalServerError},
	}
}

func (r EndpointResult) withHeader(name, val string) EndpointResult {
	r.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return r
}

func (r EndpointResult) writeResponse(w http.ResponseWriter, req *http.Request) {
	if r.status == 0 {
		logResponse(req, http.StatusInternalServerError, "endpoint result was never populated")
		http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
		return
	}

	respJSON, err := json.Marshal(r.resp)
	if err != nil {
		res := jsonInternalServerError("could not marshal JSON response: " + err.Error())
		res.writeResponse(w, req)
		return
	}

	logResponse(req, r.status, r.internalMsg)

	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(r.status)
	w.Write(respJSON)
}

func logResponse(req *http.Request, status int, msg string) {
	log.Printf("%s %s -> %d: %s", req.Method, req.URL.Path, status, msg)
}

