package workasset

import (
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/glb"
)

func TestExportProducesDecodableGLB(t *testing.T) {
	doc, blob := newTriangleAsset("Gear", "matte", "matte", [4]float32{1, 0, 0, 1}, [4]float32{1, 0, 0, 1})
	asset, err := build(doc, blob, "", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	data, defaultTag, meta, err := asset.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if defaultTag != "matte" {
		t.Errorf("defaultTag = %q, want matte", defaultTag)
	}

	jsonChunk, _, err := glb.Decode(data)
	if err != nil {
		t.Fatalf("exported GLB failed to decode: %v", err)
	}
	if len(jsonChunk) == 0 {
		t.Error("expected non-empty JSON chunk")
	}
	if meta.TotalTextureBytes != 0 {
		t.Errorf("expected no textures in this fixture, got %d bytes", meta.TotalTextureBytes)
	}
}

// TestComputeMetadataUnionOfNonDefaultTags exercises the case that an
// intersection-based "shared baseline" computation gets wrong: every tag
// (including the default) reaches the very same image. variational must
// still be the union of the non-default tags' reach (not zero just because
// every tag happens to agree), and each tag's own entry must be its full
// reach, not that minus whatever the tags have in common.
func TestComputeMetadataUnionOfNonDefaultTags(t *testing.T) {
	imageData := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	tex := uint32(0)

	a := &WorkAsset{
		DefaultTag: "matte",
		Document: &gltf.Document{
			Images:      []*gltf.Image{{BufferView: ptr(uint32(0))}},
			BufferViews: []*gltf.BufferView{{ByteLength: uint32(len(imageData))}},
			Textures:    []*gltf.Texture{{Source: ptr(uint32(0))}},
			Materials: []*gltf.Material{
				{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: tex}}},
				{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: tex}}},
				{PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: tex}}},
			},
			Meshes: []*gltf.Mesh{{Name: "Gear", Primitives: []*gltf.Primitive{{}}}},
		},
		Blob:       imageData,
		Primitives: [][]PrimitiveInfo{{{Variants: map[string]int{"matte": 0, "shinyA": 1, "shinyB": 2}}}},
	}

	meta, err := a.computeMetadata([]string{"matte", "shinyA", "shinyB"})
	if err != nil {
		t.Fatalf("computeMetadata: %v", err)
	}
	if meta.TotalTextureBytes != len(imageData) {
		t.Errorf("TotalTextureBytes = %d, want %d", meta.TotalTextureBytes, len(imageData))
	}
	if meta.VariationalTextureBytes != len(imageData) {
		t.Errorf("VariationalTextureBytes = %d, want %d (union of shinyA/shinyB, not zero)", meta.VariationalTextureBytes, len(imageData))
	}
	for _, tag := range []string{"matte", "shinyA", "shinyB"} {
		if meta.PerTagTextureBytes[tag] != len(imageData) {
			t.Errorf("PerTagTextureBytes[%q] = %d, want %d (full reach, not minus shared)", tag, meta.PerTagTextureBytes[tag], len(imageData))
		}
	}
}

func TestExportMetadataHasEntryPerTag(t *testing.T) {
	baseDoc, baseBlob := newTriangleAsset("Gear", "matte", "matte", [4]float32{1, 0, 0, 1}, [4]float32{1, 0, 0, 1})
	base, err := build(baseDoc, baseBlob, "", nil)
	if err != nil {
		t.Fatalf("build base: %v", err)
	}
	otherDoc, otherBlob := newTriangleAsset("Gear", "matte", "shiny", [4]float32{1, 0, 0, 1}, [4]float32{0, 0, 1, 1})
	other, err := build(otherDoc, otherBlob, "", nil)
	if err != nil {
		t.Fatalf("build other: %v", err)
	}

	merged, err := Meld(base, other)
	if err != nil {
		t.Fatalf("Meld: %v", err)
	}

	_, _, meta, err := merged.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(meta.PerTagTextureBytes) != 2 {
		t.Errorf("expected per-tag entries for both tags, got %#v", meta.PerTagTextureBytes)
	}
}
