package workasset

import (
	"encoding/json"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/blobview"
	"github.com/facebookincubator/glTFVariantMeld/internal/fingerprint"
	"github.com/facebookincubator/glTFVariantMeld/internal/meldkey"
	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

// Meld returns a new WorkAsset carrying base's geometry with other's tagged
// materials folded in. base and other are matched mesh-by-mesh via MeldKey
// and primitive-by-primitive via Fingerprint; every piece of geometry other
// references must already exist in base. Materials, textures, images and
// samplers that other introduces are deduplicated against base's by MeldKey
// and cloned in only when genuinely new.
func Meld(base, other *WorkAsset) (*WorkAsset, error) {
	if base.DefaultTag != other.DefaultTag {
		return nil, mlerr.New(mlerr.CodeDefaultTagInconsistency, "base default tag %q != melded-in default tag %q", base.DefaultTag, other.DefaultTag)
	}

	result, err := clone(base)
	if err != nil {
		return nil, err
	}

	for oi, otherMesh := range other.Document.Meshes {
		meshKey := other.MeshKey(oi)
		ri := result.FindMeshByKey(meshKey)
		if ri < 0 {
			return nil, mlerr.New(mlerr.CodeUnmatchedMesh, "mesh %q in melded-in asset has no match in base asset", meshKey)
		}
		resultMesh := result.Mesh(ri)
		if len(resultMesh.Primitives) != len(otherMesh.Primitives) {
			return nil, mlerr.New(mlerr.CodePrimitiveCountMismatch, "mesh %q has %d primitives in base, %d in melded-in asset", meshKey, len(resultMesh.Primitives), len(otherMesh.Primitives))
		}

		for opi, otherPrim := range other.Primitives[oi] {
			rpi := findPrimitiveByFingerprint(result.Primitives[ri], otherPrim.Fingerprint)
			if rpi < 0 {
				return nil, mlerr.New(mlerr.CodeUnmatchedPrimitive, "mesh %q primitive %d in melded-in asset matches no base primitive by fingerprint", meshKey, opi)
			}

			ensureDefaultVariant(result, ri, rpi)
			ensureDefaultVariant(other, oi, opi)

			for tag, otherMaterialIx := range other.Primitives[oi][opi].Variants {
				resultMaterialIx, err := meldInMaterial(result, other, otherMaterialIx)
				if err != nil {
					return nil, err
				}
				resultInfo := &result.Primitives[ri][rpi]
				if resultInfo.Variants == nil {
					resultInfo.Variants = map[string]int{}
				}
				if existing, ok := resultInfo.Variants[tag]; ok && existing != resultMaterialIx {
					return nil, mlerr.New(mlerr.CodeTagMaterialConflict, "tag %q already maps to a different material on mesh %q", tag, meshKey)
				}
				resultInfo.Variants[tag] = resultMaterialIx
			}
		}
	}

	return result, nil
}

// ensureDefaultVariant folds a primitive's own document-level default
// material into its Variants map under asset.DefaultTag if it isn't already
// there, so that two assets whose matched primitives carry different default
// materials are compared (and conflict) like any other tag during melding,
// rather than having one side's default silently dropped.
func ensureDefaultVariant(asset *WorkAsset, meshIx, primIx int) {
	info := &asset.Primitives[meshIx][primIx]
	if _, ok := info.Variants[asset.DefaultTag]; ok {
		return
	}
	prim := asset.Document.Meshes[meshIx].Primitives[primIx]
	if prim.Material == nil {
		return
	}
	if info.Variants == nil {
		info.Variants = map[string]int{}
	}
	info.Variants[asset.DefaultTag] = int(*prim.Material)
}

func findPrimitiveByFingerprint(infos []PrimitiveInfo, fp float64) int {
	for i, info := range infos {
		if fingerprint.Matches(info.Fingerprint, fp) {
			return i
		}
	}
	return -1
}

// meldInMaterial returns the index in result.Document.Materials holding a
// material equivalent (by MeldKey) to other's otherMaterialIx'th material,
// cloning it (and recursively its textures/images/samplers) in if absent.
func meldInMaterial(result, other *WorkAsset, otherMaterialIx int) (int, error) {
	key := other.Keys.Material[otherMaterialIx]
	for i, k := range result.Keys.Material {
		if k == key {
			return i, nil
		}
	}

	src := other.Document.Materials[otherMaterialIx]
	clone, err := cloneValue(src)
	if err != nil {
		return 0, err
	}

	if pbr := clone.PBRMetallicRoughness; pbr != nil {
		if err := remapTextureInfo(result, other, pbr.BaseColorTexture); err != nil {
			return 0, err
		}
		if err := remapTextureInfo(result, other, pbr.MetallicRoughnessTexture); err != nil {
			return 0, err
		}
	}
	if err := remapNormalTexture(result, other, clone.NormalTexture); err != nil {
		return 0, err
	}
	if err := remapOcclusionTexture(result, other, clone.OcclusionTexture); err != nil {
		return 0, err
	}
	if err := remapTextureInfo(result, other, clone.EmissiveTexture); err != nil {
		return 0, err
	}

	result.Document.Materials = append(result.Document.Materials, clone)
	result.Keys.Material = append(result.Keys.Material, key)
	return len(result.Document.Materials) - 1, nil
}

func remapTextureInfo(result, other *WorkAsset, info *gltf.TextureInfo) error {
	if info == nil {
		return nil
	}
	ix, err := meldInTexture(result, other, int(info.Index))
	if err != nil {
		return err
	}
	info.Index = uint32(ix)
	return nil
}

func remapNormalTexture(result, other *WorkAsset, info *gltf.NormalTexture) error {
	if info == nil {
		return nil
	}
	ix, err := meldInTexture(result, other, int(info.Index))
	if err != nil {
		return err
	}
	info.Index = uint32(ix)
	return nil
}

func remapOcclusionTexture(result, other *WorkAsset, info *gltf.OcclusionTexture) error {
	if info == nil {
		return nil
	}
	ix, err := meldInTexture(result, other, int(info.Index))
	if err != nil {
		return err
	}
	info.Index = uint32(ix)
	return nil
}

func meldInTexture(result, other *WorkAsset, otherTextureIx int) (int, error) {
	key := other.Keys.Texture[otherTextureIx]
	for i, k := range result.Keys.Texture {
		if k == key {
			return i, nil
		}
	}

	src := other.Document.Textures[otherTextureIx]
	clone, err := cloneValue(src)
	if err != nil {
		return 0, err
	}

	if clone.Sampler != nil {
		ix, err := meldInSampler(result, other, int(*clone.Sampler))
		if err != nil {
			return 0, err
		}
		u := uint32(ix)
		clone.Sampler = &u
	}
	if clone.Source != nil {
		ix, err := meldInImage(result, other, int(*clone.Source))
		if err != nil {
			return 0, err
		}
		u := uint32(ix)
		clone.Source = &u
	}

	result.Document.Textures = append(result.Document.Textures, clone)
	result.Keys.Texture = append(result.Keys.Texture, key)
	return len(result.Document.Textures) - 1, nil
}

func meldInSampler(result, other *WorkAsset, otherSamplerIx int) (int, error) {
	key := other.Keys.Sampler[otherSamplerIx]
	for i, k := range result.Keys.Sampler {
		if k == key {
			return i, nil
		}
	}
	clone, err := cloneValue(other.Document.Samplers[otherSamplerIx])
	if err != nil {
		return 0, err
	}
	result.Document.Samplers = append(result.Document.Samplers, clone)
	result.Keys.Sampler = append(result.Keys.Sampler, key)
	return len(result.Document.Samplers) - 1, nil
}

func meldInImage(result, other *WorkAsset, otherImageIx int) (int, error) {
	key := other.Keys.Image[otherImageIx]
	for i, k := range result.Keys.Image {
		if k == key {
			return i, nil
		}
	}

	src := other.Document.Images[otherImageIx]
	clone, err := cloneValue(src)
	if err != nil {
		return 0, err
	}

	srcView := other.Document.BufferViews[*src.BufferView]
	payload, err := blobview.Extract(other.Blob, srcView)
	if err != nil {
		return 0, err
	}
	viewIx := blobview.Append(result.Document, &result.Blob, payload)
	blobview.SetRootBuffer(result.Document, result.Blob)
	clone.BufferView = &viewIx

	result.Document.Images = append(result.Document.Images, clone)
	result.Keys.Image = append(result.Keys.Image, key)
	return len(result.Document.Images) - 1, nil
}

// clone deep-copies a WorkAsset's document and blob so melding never
// mutates either input asset.
func clone(a *WorkAsset) (*WorkAsset, error) {
	docCopy, err := cloneValue(a.Document)
	if err != nil {
		return nil, err
	}
	blobCopy := append([]byte(nil), a.Blob...)
	keysCopy := &meldkey.Tables{
		Image:    append([]string(nil), a.Keys.Image...),
		Sampler:  append([]string(nil), a.Keys.Sampler...),
		Texture:  append([]string(nil), a.Keys.Texture...),
		Material: append([]string(nil), a.Keys.Material...),
		Mesh:     append([]string(nil), a.Keys.Mesh...),
	}

	primsCopy := make([][]PrimitiveInfo, len(a.Primitives))
	for i, infos := range a.Primitives {
		cp := make([]PrimitiveInfo, len(infos))
		for j, info := range infos {
			variants := make(map[string]int, len(info.Variants))
			for k, v := range info.Variants {
				variants[k] = v
			}
			cp[j] = PrimitiveInfo{Fingerprint: info.Fingerprint, Variants: variants}
		}
		primsCopy[i] = cp
	}

	return &WorkAsset{
		Document:   docCopy,
		Blob:       blobCopy,
		DefaultTag: a.DefaultTag,
		Keys:       keysCopy,
		Primitives: primsCopy,
	}, nil
}

func cloneValue[T any](v T) (T, error) {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return out, mlerr.Wrap(mlerr.CodeMalformedContainer, err, "cloning value")
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, mlerr.Wrap(mlerr.CodeMalformedContainer, err, "cloning value")
	}
	return out, nil
}
