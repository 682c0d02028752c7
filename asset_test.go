package gltfvariantmeld

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/glb"
	"github.com/facebookincubator/glTFVariantMeld/internal/variantext"
)

func f32bytes(vals ...float32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func ptr[T any](v T) *T { return &v }

// buildTriangleGLB produces a minimal, self-contained GLB asset: one mesh
// named meshName with a single primitive whose own material (defaultColor)
// is mapped under defaultTag; if variantTag differs from defaultTag, a
// second material (variantColor) is mapped under variantTag instead of
// reusing the default.
func buildTriangleGLB(t *testing.T, meshName, defaultTag, variantTag string, defaultColor, variantColor [4]float32) []byte {
	t.Helper()

	posBytes := f32bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	idxBytes := []byte{0, 1, 2, 0}
	blob := append([]byte(nil), posBytes...)
	blob = append(blob, idxBytes...)

	materials := []*gltf.Material{
		{Name: "default", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &defaultColor}},
	}
	variants := map[string]int{defaultTag: 0}
	tags := []string{defaultTag}
	if variantTag != defaultTag {
		materials = append(materials, &gltf.Material{Name: "variant", PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &variantColor}})
		variants[variantTag] = 1
		tags = append(tags, variantTag)
	}

	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Buffers: []*gltf.Buffer{
			{ByteLength: uint32(len(blob))},
		},
		BufferViews: []*gltf.BufferView{
			{ByteOffset: 0, ByteLength: uint32(len(posBytes))},
			{ByteOffset: uint32(len(posBytes)), ByteLength: 3},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: ptr(uint32(0)), ComponentType: gltf.ComponentFloat, Type: gltf.Vec3, Count: 3},
			{BufferView: ptr(uint32(1)), ComponentType: gltf.ComponentUbyte, Type: gltf.Scalar, Count: 3},
		},
		Materials: materials,
		Meshes: []*gltf.Mesh{
			{
				Name: meshName,
				Primitives: []*gltf.Primitive{
					{
						Attributes: map[string]uint32{"POSITION": 0},
						Indices:    ptr(uint32(1)),
						Material:   ptr(uint32(0)),
					},
				},
			},
		},
	}

	variantext.WriteRootVariantLookup(doc, tags)
	variantext.SetDefaultTag(doc, defaultTag)
	tagToIx := make(map[string]int, len(tags))
	for i, tag := range tags {
		tagToIx[tag] = i
	}
	variantext.WriteVariantMap(doc.Meshes[0].Primitives[0], variants, tagToIx)

	jsonChunk, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshaling fixture document: %v", err)
	}
	data, err := glb.Encode(jsonChunk, blob)
	if err != nil {
		t.Fatalf("encoding fixture GLB: %v", err)
	}
	return data
}

func TestFromSliceAndMeldRoundTrip(t *testing.T) {
	base, err := FromSlice(buildTriangleGLB(t, "Gear", "matte", "matte", [4]float32{1, 0, 0, 1}, [4]float32{1, 0, 0, 1}), "", "")
	if err != nil {
		t.Fatalf("FromSlice base: %v", err)
	}
	other, err := FromSlice(buildTriangleGLB(t, "Gear", "matte", "shiny", [4]float32{1, 0, 0, 1}, [4]float32{0, 0, 1, 1}), "", "")
	if err != nil {
		t.Fatalf("FromSlice other: %v", err)
	}

	merged, err := base.Meld(other)
	if err != nil {
		t.Fatalf("Meld: %v", err)
	}

	tag, err := merged.DefaultTag()
	if err != nil || tag != "matte" {
		t.Errorf("DefaultTag() = %q, %v; want matte, nil", tag, err)
	}

	data, err := merged.GLB()
	if err != nil {
		t.Fatalf("GLB: %v", err)
	}
	if _, _, err := glb.Decode(data); err != nil {
		t.Errorf("merged GLB failed to decode: %v", err)
	}

	meta, err := merged.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if len(meta.PerTagTextureBytes) != 2 {
		t.Errorf("expected 2 tags in Metadata, got %#v", meta.PerTagTextureBytes)
	}
}

func TestFromSliceRejectsMismatchedDefaultTag(t *testing.T) {
	data := buildTriangleGLB(t, "Gear", "matte", "matte", [4]float32{1, 0, 0, 1}, [4]float32{1, 0, 0, 1})
	if _, err := FromSlice(data, "", "shiny"); err == nil {
		t.Error("expected DefaultTagMismatch")
	}
}

func TestMeldRejectsDifferentGeometry(t *testing.T) {
	base, err := FromSlice(buildTriangleGLB(t, "Gear", "matte", "matte", [4]float32{1, 0, 0, 1}, [4]float32{1, 0, 0, 1}), "", "")
	if err != nil {
		t.Fatalf("FromSlice base: %v", err)
	}
	other, err := FromSlice(buildTriangleGLB(t, "Bolt", "matte", "shiny", [4]float32{1, 0, 0, 1}, [4]float32{0, 0, 1, 1}), "", "")
	if err != nil {
		t.Fatalf("FromSlice other: %v", err)
	}

	if _, err := base.Meld(other); err == nil {
		t.Error("expected UnmatchedMesh error")
	} else if e, ok := err.(*Error); !ok || e.Code != CodeUnmatchedMesh {
		t.Errorf("expected CodeUnmatchedMesh, got %v", err)
	}
}
