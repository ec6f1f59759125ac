package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/relc-lang/relc/internal/ast"
)

// Report is the canonical structured diagnostic record for relc. Every
// stage (lexer, parser, resolver, validator, generator) accumulates these
// rather than failing fast, and a non-empty batch halts the pipeline at
// the stage boundary.
type Report struct {
	Schema  string         `json:"schema"` // always "relc.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     *ast.Pos       `json:"pos,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report so it survives errors.As() unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	if e.Rep.Pos != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Rep.Code, e.Rep.Pos.String(), e.Rep.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Rep.Code, e.Rep.Message)
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New constructs a Report for the given phase/code/message at an optional
// position.
func New(phase, code, message string, pos *ast.Pos) *Report {
	return &Report{Schema: "relc.error/v1", Phase: phase, Code: code, Message: message, Pos: pos}
}

// ToJSON renders the report as deterministic JSON.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// StageLabel returns the user-visible stage-failure label
// ("tokenization failed", "parsing failed", …).
func StageLabel(phase string) string {
	switch phase {
	case PhaseLexer:
		return "tokenization failed"
	case PhaseParser:
		return "parsing failed"
	case PhaseResolver:
		return "dependency resolution failed"
	case PhaseValidator:
		return "validation failed"
	case PhaseGenerator:
		return "code generation failed"
	default:
		return "compilation failed"
	}
}

// StageSuccess is the user-visible message for a fully successful compile.
const StageSuccess = "compilation completed"
