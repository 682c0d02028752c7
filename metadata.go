package gltfvariantmeld

import "github.com/facebookincubator/glTFVariantMeld/internal/workasset"

// Metadata summarizes a melded asset's texture footprint: in total, under
// non-default tags, and per tag.
type Metadata struct {
	// TotalTextureBytes is the size of every image in the asset.
	TotalTextureBytes int
	// VariationalTextureBytes is the size of every image reached by some
	// primitive's material assignment under a non-default tag.
	VariationalTextureBytes int
	// PerTagTextureBytes is, for each tag, the full size of the images that
	// tag's material assignments reach (falling back to a primitive's
	// default-tag assignment where it has none of its own), including images
	// other tags reach too.
	PerTagTextureBytes map[string]int
}

func fromInternalMetadata(m workasset.Metadata) Metadata {
	return Metadata{
		TotalTextureBytes:       m.TotalTextureBytes,
		VariationalTextureBytes: m.VariationalTextureBytes,
		PerTagTextureBytes:      m.PerTagTextureBytes,
	}
}
