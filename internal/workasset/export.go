package workasset

import (
	"encoding/json"
	"sort"

	"github.com/facebookincubator/glTFVariantMeld/internal/blobview"
	"github.com/facebookincubator/glTFVariantMeld/internal/glb"
	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
	"github.com/facebookincubator/glTFVariantMeld/internal/variantext"
)

// Metadata summarizes how much of a melded asset's texture payload varies
// by tag versus how much each tag individually pulls in.
type Metadata struct {
	// TotalTextureBytes is the size of every image in the exported asset.
	TotalTextureBytes int
	// VariationalTextureBytes is the size of every image reached by some
	// primitive's material assignment under a non-default tag.
	VariationalTextureBytes int
	// PerTagTextureBytes is, for each tag, the total size of the images that
	// tag's material assignments reach (falling back to the primitive's
	// default-tag assignment where a primitive has none of its own).
	PerTagTextureBytes map[string]int
}

// Export finalizes a's document (writing its KHR_materials_variants and
// FB_material_variants extensions from the asset's accumulated per-primitive
// variant maps) and serializes it to a GLB container, returning it alongside
// a's default tag and its texture-size Metadata.
func (a *WorkAsset) Export() (glbBytes []byte, defaultTag string, meta Metadata, err error) {
	tags := a.Tags()
	sortedTags := make([]string, 0, len(tags))
	for tag := range tags {
		sortedTags = append(sortedTags, tag)
	}
	sort.Strings(sortedTags)

	tagToVariantIx := make(map[string]int, len(sortedTags))
	for ix, tag := range sortedTags {
		tagToVariantIx[tag] = ix
	}

	for mi, mesh := range a.Document.Meshes {
		for pi, prim := range mesh.Primitives {
			info := a.Primitives[mi][pi]
			variantext.WriteVariantMap(prim, info.Variants, tagToVariantIx)
		}
	}
	variantext.SetDefaultTag(a.Document, a.DefaultTag)
	variantext.WriteRootVariantLookup(a.Document, sortedTags)

	meta, err = a.computeMetadata(sortedTags)
	if err != nil {
		return nil, "", Metadata{}, err
	}

	jsonChunk, err := json.Marshal(a.Document)
	if err != nil {
		return nil, "", Metadata{}, mlerr.Wrap(mlerr.CodeMalformedContainer, err, "marshaling document")
	}
	glbBytes, err = glb.Encode(jsonChunk, a.Blob)
	if err != nil {
		return nil, "", Metadata{}, err
	}
	return glbBytes, a.DefaultTag, meta, nil
}

func (a *WorkAsset) computeMetadata(sortedTags []string) (Metadata, error) {
	imageBytes := make([]int, len(a.Document.Images))
	for i, img := range a.Document.Images {
		if img.BufferView == nil {
			continue
		}
		view := a.Document.BufferViews[*img.BufferView]
		data, err := blobview.Extract(a.Blob, view)
		if err != nil {
			return Metadata{}, err
		}
		imageBytes[i] = len(data)
	}

	total := 0
	for _, n := range imageBytes {
		total += n
	}

	perTagImages := make(map[string]map[int]bool, len(sortedTags))
	for _, tag := range sortedTags {
		set := map[int]bool{}
		for mi, mesh := range a.Document.Meshes {
			for pi := range mesh.Primitives {
				info := a.Primitives[mi][pi]
				materialIx, ok := info.Variants[tag]
				if !ok {
					materialIx, ok = info.Variants[a.DefaultTag]
				}
				if !ok {
					continue
				}
				a.collectMaterialImages(materialIx, set)
			}
		}
		perTagImages[tag] = set
	}

	variational := map[int]bool{}
	for mi, mesh := range a.Document.Meshes {
		for pi := range mesh.Primitives {
			for tag, materialIx := range a.Primitives[mi][pi].Variants {
				if tag != a.DefaultTag {
					a.collectMaterialImages(materialIx, variational)
				}
			}
		}
	}
	variationalBytes := 0
	for img := range variational {
		variationalBytes += imageBytes[img]
	}

	perTag := make(map[string]int, len(sortedTags))
	for _, tag := range sortedTags {
		sum := 0
		for img := range perTagImages[tag] {
			sum += imageBytes[img]
		}
		perTag[tag] = sum
	}

	return Metadata{
		TotalTextureBytes:       total,
		VariationalTextureBytes: variationalBytes,
		PerTagTextureBytes:      perTag,
	}, nil
}

func (a *WorkAsset) collectMaterialImages(materialIx int, set map[int]bool) {
	mat := a.Document.Materials[materialIx]
	addTex := func(texIx *uint32) {
		if texIx == nil {
			return
		}
		tex := a.Document.Textures[*texIx]
		if tex.Source != nil {
			set[int(*tex.Source)] = true
		}
	}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			addTex(&pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			addTex(&pbr.MetallicRoughnessTexture.Index)
		}
	}
	if mat.NormalTexture != nil {
		addTex(&mat.NormalTexture.Index)
	}
	if mat.OcclusionTexture != nil {
		addTex(&mat.OcclusionTexture.Index)
	}
	if mat.EmissiveTexture != nil {
		addTex(&mat.EmissiveTexture.Index)
	}
}
