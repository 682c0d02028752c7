package fingerprint

import (
	"encoding/binary"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/blobview"
	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.Scalar:
		return 1
	case gltf.Vec2:
		return 2
	case gltf.Vec3:
		return 3
	case gltf.Vec4:
		return 4
	case gltf.Mat2:
		return 4
	case gltf.Mat3:
		return 9
	case gltf.Mat4:
		return 16
	default:
		return 0
	}
}

func componentByteSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	default:
		return 0
	}
}

// readVectors decodes accessor into Count rows of componentCount(accessor.Type)
// float64 values each, dereferencing normalized integer formats per the glTF
// normalization rules.
func readVectors(doc *gltf.Document, blob []byte, accessor *gltf.Accessor) ([][]float64, error) {
	if accessor.BufferView == nil {
		return nil, mlerr.New(mlerr.CodeMalformedContainer, "accessor has no buffer view (sparse/zero-filled accessors unsupported)")
	}
	view := doc.BufferViews[*accessor.BufferView]
	data, err := blobview.Extract(blob, view)
	if err != nil {
		return nil, err
	}

	ncomp := componentCount(accessor.Type)
	csize := componentByteSize(accessor.ComponentType)
	if ncomp == 0 || csize == 0 {
		return nil, mlerr.New(mlerr.CodeMalformedContainer, "unsupported accessor type/component combination")
	}
	elemSize := ncomp * csize
	stride := elemSize
	if view.ByteStride != nil && *view.ByteStride != 0 {
		stride = int(*view.ByteStride)
	}

	base := int(accessor.ByteOffset)
	rows := make([][]float64, accessor.Count)
	for i := 0; i < int(accessor.Count); i++ {
		off := base + i*stride
		if off+elemSize > len(data) {
			return nil, mlerr.New(mlerr.CodeOutOfRange, "accessor element %d exceeds buffer view", i)
		}
		row := make([]float64, ncomp)
		for c := 0; c < ncomp; c++ {
			row[c] = readComponent(data[off+c*csize:], accessor.ComponentType, accessor.Normalized)
		}
		rows[i] = row
	}
	return rows, nil
}

func readComponent(b []byte, ct gltf.ComponentType, normalized bool) float64 {
	switch ct {
	case gltf.ComponentByte:
		v := int8(b[0])
		if normalized {
			return math.Max(float64(v)/127.0, -1.0)
		}
		return float64(v)
	case gltf.ComponentUbyte:
		v := b[0]
		if normalized {
			return float64(v) / 255.0
		}
		return float64(v)
	case gltf.ComponentShort:
		v := int16(binary.LittleEndian.Uint16(b))
		if normalized {
			return math.Max(float64(v)/32767.0, -1.0)
		}
		return float64(v)
	case gltf.ComponentUshort:
		v := binary.LittleEndian.Uint16(b)
		if normalized {
			return float64(v) / 65535.0
		}
		return float64(v)
	case gltf.ComponentUint:
		return float64(binary.LittleEndian.Uint32(b))
	case gltf.ComponentFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}
