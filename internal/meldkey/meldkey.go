// Package meldkey derives the content-addressed MeldKey strings used to
// detect duplicate glTF sub-objects across assets being melded. Dependency
// order is strict: image, then sampler, then texture, then material, then
// mesh, since each kind's key folds in the keys of what it references.
package meldkey

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/blobview"
	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

// Tables holds the per-kind MeldKey sequence for a document, parallel to its
// Images/Samplers/Textures/Materials/Meshes slices.
type Tables struct {
	Image    []string
	Sampler  []string
	Texture  []string
	Material []string
	Mesh     []string
}

// Build computes every kind's key table, in the order later kinds'
// keys depend on.
func Build(doc *gltf.Document, blob []byte) (*Tables, error) {
	t := &Tables{}

	t.Image = make([]string, len(doc.Images))
	for i, img := range doc.Images {
		key, err := ImageKey(doc, blob, img)
		if err != nil {
			return nil, err
		}
		t.Image[i] = key
	}

	t.Sampler = make([]string, len(doc.Samplers))
	for i, s := range doc.Samplers {
		t.Sampler[i] = SamplerKey(s)
	}

	t.Texture = make([]string, len(doc.Textures))
	for i, tex := range doc.Textures {
		t.Texture[i] = TextureKey(tex, t.Sampler, t.Image)
	}

	t.Material = make([]string, len(doc.Materials))
	for i, mat := range doc.Materials {
		t.Material[i] = MaterialKey(mat, t.Texture)
	}

	t.Mesh = make([]string, len(doc.Meshes))
	seen := map[string]bool{}
	for i, mesh := range doc.Meshes {
		key, err := MeshKey(mesh)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, mlerr.New(mlerr.CodeDuplicateMeshKey, "duplicate mesh name %q", key)
		}
		seen[key] = true
		t.Mesh[i] = key
	}

	return t, nil
}

// ImageKey is the hex-encoded SHA-1 of an image's raw encoded bytes, so
// byte-identical payloads across assets key identically regardless of MIME
// type or source path.
func ImageKey(doc *gltf.Document, blob []byte, img *gltf.Image) (string, error) {
	if img.BufferView == nil {
		return "", mlerr.New(mlerr.CodeMalformedContainer, "image %q has no buffer view; URIs must be resolved first", img.Name)
	}
	view := doc.BufferViews[*img.BufferView]
	data, err := blobview.Extract(blob, view)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// SamplerKey is a deterministic stringification of a sampler's filter/wrap
// attributes.
func SamplerKey(s *gltf.Sampler) string {
	return fmt.Sprintf("[mag_filter=%d,min_filter=%d,wrap_s=%d,wrap_t=%d]",
		s.MagFilter, s.MinFilter, s.WrapS, s.WrapT)
}

// TextureKey combines a texture's sampler and image keys.
func TextureKey(tex *gltf.Texture, samplerKeys, imageKeys []string) string {
	return fmt.Sprintf("[sampler=%s,source=%s]",
		keyOrEmpty(samplerKeys, tex.Sampler), keyOrEmpty(imageKeys, tex.Source))
}

// MaterialKey concatenates every PBR factor and texture-slot reference into
// a deterministic string.
func MaterialKey(mat *gltf.Material, textureKeys []string) string {
	pbr := mat.PBRMetallicRoughness
	var bcf any
	var bct, mrt string
	var mf, rf any = float64(1), float64(1)
	if pbr != nil {
		bcf = pbr.BaseColorFactorOrDefault()
		bct = texInfoKey(pbr.BaseColorTexture, textureKeys)
		mrt = texInfoKey(pbr.MetallicRoughnessTexture, textureKeys)
		mf = floatPtrOr(pbr.MetallicFactor, 1)
		rf = floatPtrOr(pbr.RoughnessFactor, 1)
	} else {
		bct, mrt = "[]", "[]"
	}

	return fmt.Sprintf(
		"[[pbr=[bcf=%v, bct=%s, mf=%v, rf=%v, mrt=%s], nt=%s, ot=%s, et=%s, ef=%v, am=%v, ac=%v, ds=%v]",
		bcf, bct, mf, rf, mrt,
		normalTexInfoKey(mat.NormalTexture, textureKeys),
		occlusionTexInfoKey(mat.OcclusionTexture, textureKeys),
		texInfoKey(mat.EmissiveTexture, textureKeys),
		mat.EmissiveFactorOrDefault(),
		mat.AlphaMode,
		floatPtrOr(mat.AlphaCutoff, 0.5),
		mat.DoubleSided,
	)
}

// MeshKey is a mesh's glTF name; missing names are fatal, since an unnamed
// mesh has no way to match across assets.
func MeshKey(mesh *gltf.Mesh) (string, error) {
	if mesh.Name == "" {
		return "", mlerr.New(mlerr.CodeMissingMeshName, "mesh has no name")
	}
	return mesh.Name, nil
}

func texInfoKey(info *gltf.TextureInfo, textureKeys []string) string {
	if info == nil {
		return "[]"
	}
	return fmt.Sprintf("[tc=%d,src=%s]", info.TexCoord, keyAt(textureKeys, info.Index))
}

func normalTexInfoKey(info *gltf.NormalTexture, textureKeys []string) string {
	if info == nil {
		return "[]"
	}
	return fmt.Sprintf("[s=%v,tc=%d,src=%s]", info.ScaleOrDefault(), info.TexCoord, keyAt(textureKeys, info.Index))
}

func occlusionTexInfoKey(info *gltf.OcclusionTexture, textureKeys []string) string {
	if info == nil {
		return "[]"
	}
	return fmt.Sprintf("[s=%v,tc=%d,src=%s]", info.StrengthOrDefault(), info.TexCoord, keyAt(textureKeys, info.Index))
}

func keyAt(keys []string, ix uint32) string {
	if int(ix) >= len(keys) {
		return ""
	}
	return keys[ix]
}

func keyOrEmpty(keys []string, ix *uint32) string {
	if ix == nil {
		return ""
	}
	return keyAt(keys, *ix)
}

func floatPtrOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
