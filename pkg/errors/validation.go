package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/cellgraph/pkg/position"
)

// ValidateCellRef validates an A1 cell reference supplied by a user and
// returns the position it names.
//
// Lower-case references are accepted and upper-cased. References that are
// well formed but beyond the grid are reported as INVALID_POSITION; anything
// else that fails to parse is INVALID_INPUT.
func ValidateCellRef(ref string) (position.Position, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return position.None, New(ErrCodeInvalidInput, "cell reference cannot be empty")
	}
	if len(ref) > 16 {
		return position.None, New(ErrCodeInvalidInput, "cell reference too long: %q", ref)
	}

	pos, err := position.Parse(strings.ToUpper(ref))
	if err != nil {
		return position.None, Wrap(ErrCodeInvalidInput, err, "invalid cell reference")
	}
	if !pos.IsValid() {
		return position.None, New(ErrCodeInvalidPosition, "cell %s is outside the %dx%d grid", ref, position.MaxRows, position.MaxCols)
	}
	return pos, nil
}

// ValidateScriptPath validates the path of a script or config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Extension must be .toml
func ValidateScriptPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if !strings.EqualFold(filepath.Ext(path), ".toml") {
		return New(ErrCodeInvalidPath, "expected a .toml file, got %q", filepath.Base(path))
	}

	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
