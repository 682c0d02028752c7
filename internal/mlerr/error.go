// Package mlerr defines the single error taxonomy shared by every layer of
// the meld engine, from the GLB codec up through the public API.
package mlerr

import "fmt"

// Code is a stable discriminant for a meld engine failure. Callers that need
// to branch on failure kind should switch on Code rather than match error
// strings.
type Code int

const (
	// CodeUnknown is never produced directly; it signals a bug if observed.
	CodeUnknown Code = iota
	CodeIoError
	CodeMalformedContainer
	CodeUnsupportedURI
	CodeUnknownMime
	CodeMissingDefaultTag
	CodeDefaultTagMismatch
	CodeDefaultTagInconsistency
	CodeDuplicateMeshKey
	CodeMissingMeshName
	CodeMissingPositions
	CodeMissingIndices
	CodeCollidingFingerprints
	CodeUnmatchedMesh
	CodePrimitiveCountMismatch
	CodeUnmatchedPrimitive
	CodeTagMaterialConflict
	CodeUnknownMaterialKey
	CodeOutOfRange
)

var names = map[Code]string{
	CodeUnknown:                 "Unknown",
	CodeIoError:                 "IoError",
	CodeMalformedContainer:      "MalformedContainer",
	CodeUnsupportedURI:          "UnsupportedUri",
	CodeUnknownMime:             "UnknownMime",
	CodeMissingDefaultTag:       "MissingDefaultTag",
	CodeDefaultTagMismatch:      "DefaultTagMismatch",
	CodeDefaultTagInconsistency: "DefaultTagInconsistency",
	CodeDuplicateMeshKey:        "DuplicateMeshKey",
	CodeMissingMeshName:         "MissingMeshName",
	CodeMissingPositions:        "MissingPositions",
	CodeMissingIndices:          "MissingIndices",
	CodeCollidingFingerprints:   "CollidingFingerprints",
	CodeUnmatchedMesh:           "UnmatchedMesh",
	CodePrimitiveCountMismatch:  "PrimitiveCountMismatch",
	CodeUnmatchedPrimitive:      "UnmatchedPrimitive",
	CodeTagMaterialConflict:     "TagMaterialConflict",
	CodeUnknownMaterialKey:      "UnknownMaterialKey",
	CodeOutOfRange:              "OutOfRange",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "Unknown"
}

// Error is the single error type surfaced across the meld engine's API
// boundary. It always carries a stable Code plus a human-readable detail,
// and may wrap an underlying cause (e.g. an os.PathError).
type Error struct {
	Code   Code
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so callers can
// write errors.Is(err, mlerr.New(mlerr.CodeOutOfRange, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds an *Error with the given code and detail message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that carries an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...), Cause: cause}
}
