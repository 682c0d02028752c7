// Package fingerprint computes an order-independent floating-point
// Fingerprint for a glTF primitive, used to match the primitives of two
// same-named meshes across assets, since primitives carry no names of their
// own.
package fingerprint

import (
	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

// Tolerance is the maximum absolute difference between two Fingerprints that
// should still be treated as the same primitive.
const Tolerance = 1e-6

// Weights applied to position and color components. They're irrational
// multiples of one another so that no plausible vertex arrangement produces
// a collision by coincidence of integer or simple-fraction coordinates.
const (
	weightX = 1.6180339887498949 // golden ratio
	weightY = 2.2360679774997896 // sqrt(5)
	weightZ = 3.1415926535897932 // pi
	weightR = 0.0577350269189626 // 1/sqrt(3), scaled down so color rarely dominates geometry
	weightG = 0.0707106781186548 // 1/(10*sqrt(2))
	weightB = 0.0866025403784439 // sqrt(3)/20
	weightA = 0.0316227766016838 // 1/sqrt(1000)
)

// Build computes prim's Fingerprint: the average, over every entry k of its
// indices accessor, of a shear-weighted sum of POSITION[indices[k]] and
// COLOR_0[indices[k]] (if present). Indexing (rather than iterating the
// POSITION accessor directly) means a vertex shared by several triangles
// contributes once per triangle, and a position-buffer entry no triangle
// references doesn't contribute at all. Averaging rather than summing keeps
// the result's scale independent of vertex/triangle count, so a fixed
// absolute Tolerance means the same thing for a dense mesh as a sparse one.
// Summing rather than hashing makes the result independent of vertex and
// index ordering, so two primitives exported from different tools with the
// same geometry still match.
func Build(doc *gltf.Document, blob []byte, prim *gltf.Primitive) (float64, error) {
	posIx, ok := prim.Attributes["POSITION"]
	if !ok {
		return 0, mlerr.New(mlerr.CodeMissingPositions, "primitive has no POSITION attribute")
	}
	if prim.Indices == nil {
		return 0, mlerr.New(mlerr.CodeMissingIndices, "primitive has no indices accessor")
	}

	positions, err := readVectors(doc, blob, doc.Accessors[posIx])
	if err != nil {
		return 0, err
	}

	indexRows, err := readVectors(doc, blob, doc.Accessors[*prim.Indices])
	if err != nil {
		return 0, err
	}
	if len(indexRows) == 0 {
		return 0, mlerr.New(mlerr.CodeMissingIndices, "primitive's indices accessor is empty")
	}

	var colors [][]float64
	if colorIx, ok := prim.Attributes["COLOR_0"]; ok {
		colors, err = readVectors(doc, blob, doc.Accessors[colorIx])
		if err != nil {
			return 0, err
		}
	}

	var sum float64
	for _, row := range indexRows {
		vi := int(row[0])
		if vi < 0 || vi >= len(positions) {
			return 0, mlerr.New(mlerr.CodeOutOfRange, "index %d exceeds POSITION accessor of length %d", vi, len(positions))
		}
		p := positions[vi]
		sum += p[0]*weightX + p[1]*weightY + p[2]*weightZ
		if vi < len(colors) {
			c := colors[vi]
			sum += c[0] * weightR
			if len(c) > 1 {
				sum += c[1] * weightG
			}
			if len(c) > 2 {
				sum += c[2] * weightB
			}
			if len(c) > 3 {
				sum += c[3] * weightA
			}
		}
	}
	return sum / float64(len(indexRows)), nil
}

// Matches reports whether a and b are within Tolerance of one another.
func Matches(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= Tolerance
}
