// Package workasset holds the in-memory representation one glTF asset takes
// while participating in a meld: its document tree, binary blob, resolved
// default tag, and the per-object MeldKey and per-primitive Fingerprint/tag
// tables used to match content against another asset.
package workasset

import (
	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/meldkey"
)

// PrimitiveInfo is the derived data kept for one mesh primitive: its
// Fingerprint for cross-asset matching, and its Tag→material-index map
// decoded from KHR_materials_variants.
type PrimitiveInfo struct {
	Fingerprint float64
	Variants    map[string]int
}

// WorkAsset is one glTF asset loaded for melding.
type WorkAsset struct {
	Document   *gltf.Document
	Blob       []byte
	DefaultTag string

	// Keys holds every object's MeldKey, indexed in parallel with the
	// corresponding Document slice (Keys.Mesh[i] is Document.Meshes[i]'s key).
	Keys *meldkey.Tables

	// Primitives[meshIx][primIx] is the derived data for
	// Document.Meshes[meshIx].Primitives[primIx].
	Primitives [][]PrimitiveInfo
}

// Mesh returns a's meshIx'th mesh.
func (a *WorkAsset) Mesh(meshIx int) *gltf.Mesh {
	return a.Document.Meshes[meshIx]
}

// MeshKey returns a's meshIx'th mesh's MeldKey.
func (a *WorkAsset) MeshKey(meshIx int) string {
	return a.Keys.Mesh[meshIx]
}

// FindMeshByKey returns the index of the mesh in a.Document.Meshes with the
// given MeldKey, or -1 if none matches.
func (a *WorkAsset) FindMeshByKey(key string) int {
	for i, k := range a.Keys.Mesh {
		if k == key {
			return i
		}
	}
	return -1
}

// Tags returns the set of tags in use across every primitive's variant map,
// plus a.DefaultTag.
func (a *WorkAsset) Tags() map[string]bool {
	tags := map[string]bool{a.DefaultTag: true}
	for _, prims := range a.Primitives {
		for _, p := range prims {
			for tag := range p.Variants {
				tags[tag] = true
			}
		}
	}
	return tags
}
