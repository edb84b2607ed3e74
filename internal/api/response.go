package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope. Grammar errors also carry
// the failing rule text and position.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
	Col    int    `json:"col,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeGrammarError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var syn *grammar.SyntaxError
	var sem *grammar.SemanticError
	switch {
	case errors.As(err, &syn):
		resp.Kind, resp.Source, resp.Line, resp.Col = "syntax", syn.Source, syn.Pos.Line, syn.Pos.Col
	case errors.As(err, &sem):
		resp.Kind, resp.Source, resp.Line, resp.Col = "semantic", sem.Source, sem.Pos.Line, sem.Pos.Col
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}
