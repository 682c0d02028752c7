package gltfvariantmeld

import "github.com/facebookincubator/glTFVariantMeld/internal/mlerr"

// Code discriminates the kind of failure an Error carries. Callers that
// need to branch on failure kind should switch on Code rather than match
// error strings.
type Code = mlerr.Code

// Error is the error type returned by every operation in this package.
type Error = mlerr.Error

// Failure codes, re-exported from the internal error taxonomy so callers
// never need to import an internal package.
const (
	CodeUnknown                 = mlerr.CodeUnknown
	CodeIoError                 = mlerr.CodeIoError
	CodeMalformedContainer      = mlerr.CodeMalformedContainer
	CodeUnsupportedURI          = mlerr.CodeUnsupportedURI
	CodeUnknownMime             = mlerr.CodeUnknownMime
	CodeMissingDefaultTag       = mlerr.CodeMissingDefaultTag
	CodeDefaultTagMismatch      = mlerr.CodeDefaultTagMismatch
	CodeDefaultTagInconsistency = mlerr.CodeDefaultTagInconsistency
	CodeDuplicateMeshKey        = mlerr.CodeDuplicateMeshKey
	CodeMissingMeshName         = mlerr.CodeMissingMeshName
	CodeMissingPositions        = mlerr.CodeMissingPositions
	CodeMissingIndices          = mlerr.CodeMissingIndices
	CodeCollidingFingerprints   = mlerr.CodeCollidingFingerprints
	CodeUnmatchedMesh           = mlerr.CodeUnmatchedMesh
	CodePrimitiveCountMismatch  = mlerr.CodePrimitiveCountMismatch
	CodeUnmatchedPrimitive      = mlerr.CodeUnmatchedPrimitive
	CodeTagMaterialConflict     = mlerr.CodeTagMaterialConflict
	CodeUnknownMaterialKey      = mlerr.CodeUnknownMaterialKey
	CodeOutOfRange              = mlerr.CodeOutOfRange
)
