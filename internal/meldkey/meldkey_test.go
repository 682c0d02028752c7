package meldkey

import (
	"testing"

	"github.com/qmuntal/gltf"
)

func TestImageKeyMatchesIdenticalBytes(t *testing.T) {
	doc := &gltf.Document{
		BufferViews: []*gltf.BufferView{
			{ByteOffset: 0, ByteLength: 4},
			{ByteOffset: 4, ByteLength: 4},
		},
	}
	blob := []byte{1, 2, 3, 4, 1, 2, 3, 4}

	a, err := ImageKey(doc, blob, &gltf.Image{Name: "a", BufferView: ptr(uint32(0))})
	if err != nil {
		t.Fatalf("ImageKey a: %v", err)
	}
	b, err := ImageKey(doc, blob, &gltf.Image{Name: "b", BufferView: ptr(uint32(1))})
	if err != nil {
		t.Fatalf("ImageKey b: %v", err)
	}
	if a != b {
		t.Errorf("identical bytes produced different keys: %q vs %q", a, b)
	}
}

func TestImageKeyMissingBufferView(t *testing.T) {
	doc := &gltf.Document{}
	if _, err := ImageKey(doc, nil, &gltf.Image{Name: "unresolved", URI: "x.png"}); err == nil {
		t.Fatal("expected error for image without buffer view")
	}
}

func TestSamplerKeyDistinguishesFilters(t *testing.T) {
	a := SamplerKey(&gltf.Sampler{MagFilter: 9728})
	b := SamplerKey(&gltf.Sampler{MagFilter: 9729})
	if a == b {
		t.Error("expected different mag filters to produce different keys")
	}
}

func TestTextureKeyReferencesSamplerAndImage(t *testing.T) {
	samplerKeys := []string{"s0"}
	imageKeys := []string{"i0"}
	key := TextureKey(&gltf.Texture{Sampler: ptr(uint32(0)), Source: ptr(uint32(0))}, samplerKeys, imageKeys)
	if key != "[sampler=s0,source=i0]" {
		t.Errorf("unexpected texture key: %q", key)
	}
}

func TestMaterialKeyDeterministicForEqualMaterials(t *testing.T) {
	m1 := &gltf.Material{Name: "a", DoubleSided: true}
	m2 := &gltf.Material{Name: "b", DoubleSided: true}
	if MaterialKey(m1, nil) != MaterialKey(m2, nil) {
		t.Error("materials differing only by Name should produce the same key")
	}
}

func TestMeshKeyRequiresName(t *testing.T) {
	if _, err := MeshKey(&gltf.Mesh{}); err == nil {
		t.Error("expected error for unnamed mesh")
	}
	key, err := MeshKey(&gltf.Mesh{Name: "Gear"})
	if err != nil || key != "Gear" {
		t.Errorf("MeshKey(Gear) = %q, %v", key, err)
	}
}

func TestBuildRejectsDuplicateMeshNames(t *testing.T) {
	doc := &gltf.Document{
		Meshes: []*gltf.Mesh{{Name: "Gear"}, {Name: "Gear"}},
	}
	if _, err := Build(doc, nil); err == nil {
		t.Error("expected error for duplicate mesh names")
	}
}

func ptr[T any](v T) *T { return &v }
