package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
)

// maxNameLength bounds mesh names accepted from files and requests.
const maxNameLength = 256

// ValidateName validates a mesh name for safety.
//
// Names are stored verbatim and echoed in logs and rendered titles, so the
// rules are conservative:
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// An empty name is allowed.
func ValidateName(name string) error {
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "mesh name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "mesh name contains invalid control characters")
		}
	}
	return nil
}

// ValidateMeshID validates a stored mesh identifier, which must be a UUID.
func ValidateMeshID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "mesh id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid mesh id %q", id)
	}
	return nil
}

// ValidatePoints rejects empty point lists and non-finite coordinates.
func ValidatePoints(points []r2.Point) error {
	if len(points) == 0 {
		return New(ErrCodeInvalidMesh, "mesh has no points")
	}
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			return New(ErrCodeInvalidMesh, "point %d has non-finite coordinates (%v, %v)", i, p.X, p.Y)
		}
	}
	return nil
}

// ValidateLoops checks that every loop has at least three points and only
// references existing points. The first loop is the outer boundary.
func ValidateLoops(numPoints int, loops [][]int) error {
	if len(loops) == 0 {
		return New(ErrCodeInvalidMesh, "mesh has no loops")
	}
	for i, loop := range loops {
		if len(loop) < 3 {
			return New(ErrCodeInvalidMesh, "loop %d has %d points (need at least 3)", i, len(loop))
		}
		for _, idx := range loop {
			if idx < 0 || idx >= numPoints {
				return New(ErrCodeInvalidMesh, "loop %d references point %d of %d", i, idx, numPoints)
			}
		}
	}
	return nil
}

// ValidatePath validates an output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
