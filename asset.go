package gltfvariantmeld

import "github.com/facebookincubator/glTFVariantMeld/internal/workasset"

// VariationalAsset is a glTF asset loaded for melding: its geometry, a
// default tag, and a per-primitive map from tag to the material that tag
// selects.
type VariationalAsset struct {
	inner *workasset.WorkAsset
}

// FromFile loads a .gltf or .glb asset from path. tag, if non-empty,
// supplies the asset's default tag when the document carries none, and
// must agree with the document's own default tag if it has one.
func FromFile(path string, tag string) (*VariationalAsset, error) {
	inner, err := workasset.FromFile(path, tagPtr(tag))
	if err != nil {
		return nil, err
	}
	return &VariationalAsset{inner: inner}, nil
}

// FromSlice builds a VariationalAsset from raw file bytes, either a GLB
// container or a plain .gltf JSON document. basePath resolves any relative
// URIs the document contains.
func FromSlice(data []byte, basePath string, tag string) (*VariationalAsset, error) {
	inner, err := workasset.FromSlice(data, basePath, tagPtr(tag))
	if err != nil {
		return nil, err
	}
	return &VariationalAsset{inner: inner}, nil
}

func tagPtr(tag string) *string {
	if tag == "" {
		return nil
	}
	return &tag
}

// Meld returns a new VariationalAsset carrying a's geometry with other's
// tagged materials folded in. a and other must describe the same
// geometry (matched mesh-by-mesh and primitive-by-primitive) and share the
// same default tag.
func (a *VariationalAsset) Meld(other *VariationalAsset) (*VariationalAsset, error) {
	merged, err := workasset.Meld(a.inner, other.inner)
	if err != nil {
		return nil, err
	}
	return &VariationalAsset{inner: merged}, nil
}

// GLB serializes a to a binary glTF (GLB) container, writing its
// KHR_materials_variants and FB_material_variants extensions from the
// asset's accumulated tag→material mappings.
func (a *VariationalAsset) GLB() ([]byte, error) {
	data, _, _, err := a.inner.Export()
	return data, err
}

// DefaultTag returns a's default tag.
func (a *VariationalAsset) DefaultTag() (string, error) {
	_, tag, _, err := a.inner.Export()
	return tag, err
}

// Metadata returns a's texture-size Metadata.
func (a *VariationalAsset) Metadata() (Metadata, error) {
	_, _, meta, err := a.inner.Export()
	if err != nil {
		return Metadata{}, err
	}
	return fromInternalMetadata(meta), nil
}
