package lang

import (
	"context"
	"strings"
	"time"

	"github.com/ardnew/numscript/number"
)

// Record is the structured outcome of one statement.
type Record struct {
	Kind    StatementKind `json:"kind"    yaml:"kind"`
	Input   string        `json:"input"   yaml:"input"`
	Output  []string      `json:"output"  yaml:"output"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Value is the number the statement produced, if any.
	Value number.Value `json:"-" yaml:"-"`
}

// String joins the record's output items with spaces.
func (r Record) String() string { return strings.Join(r.Output, " ") }

// Result collects the records of one run.
type Result struct {
	Backend string        `json:"backend"          yaml:"backend"`
	Records []Record      `json:"records"          yaml:"records"`
	Last    number.Value  `json:"-"                yaml:"-"`
	Elapsed time.Duration `json:"elapsed"          yaml:"elapsed"`
}

// LastString returns the last produced value formatted, or "" if no
// statement produced a value.
func (r *Result) LastString() string {
	if r == nil || r.Last == nil {
		return ""
	}

	return r.Last.String()
}

// Outputs returns the formatted output of every record.
func (r *Result) Outputs() []string {
	if r == nil {
		return nil
	}

	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.String()
	}

	return out
}

// InputRequest describes a pending call to the input built-in.
type InputRequest struct {
	// Offset and Length locate the input call in the source.
	Offset int `json:"offset" yaml:"offset"`
	Length int `json:"length" yaml:"length"`

	// Statement is the source of the statement being executed.
	Statement string `json:"statement" yaml:"statement"`
}

// InputFunc answers an input request with the text of a number.
type InputFunc func(ctx context.Context, req InputRequest) (string, error)
