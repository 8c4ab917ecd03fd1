// Package script applies batches of cell edits described in TOML.
//
// A script is an ordered list of operations:
//
//	[[op]]
//	cell = "A1"
//	text = "1"
//
//	[[op]]
//	cell = "B1"
//	text = "=A1*2"
//
//	[[op]]
//	action = "clear"
//	cell = "A1"
//
// action defaults to "set". Scripts are an input format only; nothing in
// cellgraph writes them.
package script

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/position"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

// Actions a script operation can perform.
const (
	ActionSet   = "set"
	ActionClear = "clear"
)

// Op is one edit.
type Op struct {
	Action string `toml:"action"`
	Cell   string `toml:"cell"`
	Text   string `toml:"text"`

	pos position.Position
}

// Position returns the parsed cell reference.
func (o Op) Position() position.Position { return o.pos }

// Script is a decoded batch of operations.
type Script struct {
	Ops []Op `toml:"op"`
}

// Result reports the outcome of one operation.
type Result struct {
	Op  Op
	Err error
}

// Load reads and decodes the script at path.
func Load(path string) (*Script, error) {
	if err := cgerrors.ValidateScriptPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "script %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a script from r. Unknown keys, unknown actions and
// malformed cell references are rejected before anything is applied.
func Decode(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "unknown keys in script: %s", strings.Join(keys, ", "))
	}

	for i := range s.Ops {
		op := &s.Ops[i]
		if op.Action == "" {
			op.Action = ActionSet
		}
		if op.Action != ActionSet && op.Action != ActionClear {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "op %d: unknown action %q", i+1, op.Action)
		}
		if op.Action == ActionClear && op.Text != "" {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "op %d: clear takes no text", i+1)
		}
		pos, err := cgerrors.ValidateCellRef(op.Cell)
		if err != nil {
			return nil, cgerrors.Wrap(cgerrors.GetCode(err), err, "op %d", i+1)
		}
		op.pos = pos
	}
	return &s, nil
}

// ApplyOptions controls [Script.Apply].
type ApplyOptions struct {
	// Strict stops at the first failing operation.
	Strict bool
}

// Apply runs the operations against sh in order and returns one result
// per operation attempted. Failed edits leave sh unchanged, so later
// operations see the sheet as if the failed one never ran.
func (s *Script) Apply(sh *sheet.Sheet, opts ApplyOptions) []Result {
	results := make([]Result, 0, len(s.Ops))
	for _, op := range s.Ops {
		var err error
		switch op.Action {
		case ActionClear:
			err = sh.ClearCell(op.pos)
		default:
			err = sh.SetCell(op.pos, op.Text)
		}
		results = append(results, Result{Op: op, Err: err})
		if err != nil && opts.Strict {
			break
		}
	}
	return results
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
