package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cellgraph/pkg/cache"
	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/position"
	"github.com/matzehuels/cellgraph/pkg/render"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

const maxBodyBytes = 64 << 10

// CellResponse is the JSON form of a cell.
type CellResponse struct {
	Ref        string   `json:"ref"`
	Kind       string   `json:"kind"`
	Text       string   `json:"text"`
	Value      string   `json:"value"`
	ValueKind  string   `json:"value_kind"`
	References []string `json:"references"`
	Dependents []string `json:"dependents"`
}

// SetRequest is the body of PUT /cells/{ref}.
type SetRequest struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var valueKinds = []string{"string", "number", "error"}

func newCellResponse(c *sheet.Cell) CellResponse {
	v := c.Value()
	return CellResponse{
		Ref:        c.Position().String(),
		Kind:       string(c.Kind()),
		Text:       c.Text(),
		Value:      v.String(),
		ValueKind:  valueKinds[v.Kind()],
		References: refs(c.ReferencedCells()),
		Dependents: refs(c.Dependents()),
	}
}

func refs(ps []position.Position) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}

func (s *Server) getCell(w http.ResponseWriter, r *http.Request) {
	pos, err := cgerrors.ValidateCellRef(chi.URLParam(r, "ref"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.sheet.Cell(pos)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c == nil {
		s.writeError(w, r, cgerrors.New(cgerrors.ErrCodeNotFound, "cell %s is not set", pos))
		return
	}
	writeJSON(w, http.StatusOK, newCellResponse(c))
}

func (s *Server) putCell(w http.ResponseWriter, r *http.Request) {
	pos, err := cgerrors.ValidateCellRef(chi.URLParam(r, "ref"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SetRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sheet.SetCell(pos, req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := s.sheet.Cell(pos)
	if c == nil {
		// Setting "" on an unset cell may leave nothing behind.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newCellResponse(c))
}

func (s *Server) deleteCell(w http.ResponseWriter, r *http.Request) {
	pos, err := cgerrors.ValidateCellRef(chi.URLParam(r, "ref"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sheet.ClearCell(pos); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) printSheet(values bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		var err error
		if values {
			s.mu.Lock()
			err = s.sheet.PrintValues(&buf)
			s.mu.Unlock()
		} else {
			s.mu.RLock()
			err = s.sheet.PrintTexts(&buf)
			s.mu.RUnlock()
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

var contentTypes = map[string]string{
	"dot": "text/vnd.graphviz; charset=utf-8",
	"svg": "image/svg+xml",
	"png": "image/png",
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if err := cgerrors.ValidateFormat(format, render.Formats...); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	dot := render.ToDOT(s.sheet, render.Options{Values: true})
	s.mu.Unlock()

	key := cache.ArtifactKey(dot, cache.ArtifactKeyOpts{Format: format})
	// Waiters share one render; one of them hanging up must not cancel it.
	ctx := context.WithoutCancel(r.Context())
	v, err, _ := s.renders.Do(key, func() (any, error) {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
		data, err := render.Render(ctx, dot, format)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, data, 0); err != nil {
			loggerFrom(r).Warn("cache write failed", "err", err)
		}
		return data, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(v.([]byte))
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch cgerrors.GetCode(err) {
	case cgerrors.ErrCodeInvalidInput, cgerrors.ErrCodeInvalidPosition,
		cgerrors.ErrCodeInvalidFormat, cgerrors.ErrCodeFormulaParse:
		return http.StatusBadRequest
	case cgerrors.ErrCodeCircularDependency, cgerrors.ErrCodeDependencyTooDeep:
		return http.StatusConflict
	case cgerrors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(cgerrors.GetCode(err))
	if code == "" {
		code = string(cgerrors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		loggerFrom(r).Error("request failed", "err", err)
	} else {
		loggerFrom(r).Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: cgerrors.UserMessage(err)})
}
