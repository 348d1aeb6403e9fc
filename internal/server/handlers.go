package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mcncl/jsonkit/internal/converter"
	"github.com/mcncl/jsonkit/internal/differ"
	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/formatter"
	"github.com/mcncl/jsonkit/internal/output"
	"github.com/mcncl/jsonkit/internal/parser"
	"github.com/mcncl/jsonkit/internal/password"
	"github.com/mcncl/jsonkit/internal/query"
)

// requestError is a client mistake that maps to a status code.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(format string, args ...any) *requestError {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

type body map[string]json.RawMessage

// decodeBody reads a JSON object. With allowEmpty, an empty body decodes to
// an empty object.
func decodeBody(r *http.Request, allowEmpty bool) (body, error) {
	var b body
	err := json.NewDecoder(r.Body).Decode(&b)
	switch {
	case err == nil:
	case allowEmpty && stderrors.Is(err, io.EOF):
		return body{}, nil
	default:
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, &requestError{
				status:  http.StatusRequestEntityTooLarge,
				message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			}
		}
		return nil, badRequest("request body must be a JSON object")
	}
	if b == nil {
		return nil, badRequest("request body must be a JSON object")
	}
	return b, nil
}

// str returns a required string field.
func (b body) str(name string) (string, error) {
	raw, ok := b[name]
	if !ok {
		return "", badRequest("field %q is required", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", badRequest("field %q must be a string", name)
	}
	return s, nil
}

// optional decodes a field into dst when present.
func (b body) optional(name string, dst any) error {
	raw, ok := b[name]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return badRequest("field %q has the wrong type", name)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// fail maps err onto a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if stderrors.As(err, &reqErr) {
		writeError(w, reqErr.status, reqErr.message)
		return
	}
	if stderrors.Is(err, errors.ErrUnsupportedFormat) {
		writeError(w, http.StatusUnprocessableEntity, errors.ErrUnsupportedFormat.Error())
		return
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Type {
		case errors.ErrorTypeInput, errors.ErrorTypeParsing, errors.ErrorTypeFormat, errors.ErrorTypeQuery:
			writeError(w, http.StatusBadRequest, errors.UserFriendlyError(err))
			return
		case errors.ErrorTypeConvert:
			writeError(w, http.StatusUnprocessableEntity, errors.UserFriendlyError(err))
			return
		}
	}

	s.log.WithField("request_id", RequestID(r.Context())).WithError(err).Error("unexpected failure")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDiff always answers 200: unparseable documents come back as a single
// error record.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	original, err := b.str("original")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	candidate, err := b.str("candidate")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records := s.differ.DiffText(original, candidate)
	writeJSON(w, http.StatusOK, output.Report{Records: records, Summary: differ.Summarize(records)})
}

type convertResponse struct {
	Format converter.Format `json:"format"`
	Output string           `json:"output"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name, err := b.str("format")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var root string
	if err := b.optional("root", &root); err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := parser.ParseString(input)
	if err != nil {
		s.fail(w, r, badRequest("%s", errors.UserFriendlyError(err)))
		return
	}
	format, err := converter.ParseFormat(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := s.cfg.ConverterOptions()
	if root != "" {
		opts.RootName = root
	}
	out, err := converter.NewConverterWithOptions(opts).Convert(doc.Root, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Format: format, Output: out})
}

type textResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.cfg.FormatterOptions()
	if err := b.optional("indent", &opts.Indent); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := b.optional("sort_keys", &opts.SortKeys); err != nil {
		s.fail(w, r, err)
		return
	}
	if opts.Indent < 0 || opts.Indent > 16 {
		s.fail(w, r, badRequest("indent must be between 0 and 16"))
		return
	}

	out, err := formatter.NewFormatterWithOptions(opts).Format([]byte(input))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Output: string(out)})
}

func (s *Server) handleMinify(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := formatter.NewFormatter().Minify([]byte(input))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Output: string(out)})
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// handleValidate reports invalid documents in the body, not the status.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := formatter.Validate([]byte(input)); err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Error: errors.UserFriendlyError(err)})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	path, err := b.str("path")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := query.Get([]byte(input), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	path, err := b.str("path")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// The new value is any JSON value, embedded as is.
	value, ok := b["value"]
	if !ok {
		s.fail(w, r, badRequest("field %q is required", "value"))
		return
	}

	out, err := query.Set([]byte(input), path, string(value))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Output: string(out)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input, err := b.str("json")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	path, err := b.str("path")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := query.Delete([]byte(input), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Output: string(out)})
}

type passwordResponse struct {
	Password string            `json:"password"`
	Strength password.Strength `json:"strength"`
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := s.cfg.PasswordOptions()
	fields := []struct {
		name string
		dst  any
	}{
		{"length", &opts.Length},
		{"lower", &opts.Lower},
		{"upper", &opts.Upper},
		{"digits", &opts.Digits},
		{"symbols", &opts.Symbols},
		{"exclude_ambiguous", &opts.ExcludeAmbiguous},
	}
	for _, f := range fields {
		if err := b.optional(f.name, f.dst); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	pw, err := s.passwords.Generate(opts)
	if err != nil {
		s.fail(w, r, badRequest("%s", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, passwordResponse{Password: pw, Strength: password.Check(pw)})
}

func (s *Server) handlePasswordStrength(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pw, err := b.str("password")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, password.Check(pw))
}

func (s *Server) handleCaptcha(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.captchas.New())
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

func (s *Server) handleCaptchaVerify(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := b.str("id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	raw, ok := b["answer"]
	if !ok {
		s.fail(w, r, badRequest("field %q is required", "answer"))
		return
	}
	// Accept both "7" and 7.
	var answer string
	if err := json.Unmarshal(raw, &answer); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			s.fail(w, r, badRequest("field %q must be a string or number", "answer"))
			return
		}
		answer = n.String()
	}

	writeJSON(w, http.StatusOK, verifyResponse{Valid: s.captchas.Verify(id, answer)})
}
