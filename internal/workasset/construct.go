package workasset

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/fingerprint"
	"github.com/facebookincubator/glTFVariantMeld/internal/glb"
	"github.com/facebookincubator/glTFVariantMeld/internal/meldkey"
	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
	"github.com/facebookincubator/glTFVariantMeld/internal/uriresolve"
	"github.com/facebookincubator/glTFVariantMeld/internal/variantext"
)

// FromFile loads a .gltf or .glb asset from path. argTag, if non-nil,
// supplies the default tag when the document itself carries none (and must
// agree with one if it does).
func FromFile(path string, argTag *string) (*WorkAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlerr.Wrap(mlerr.CodeIoError, err, "reading %s", path)
	}
	return FromSlice(data, filepath.Dir(path), argTag)
}

// FromSlice builds a WorkAsset from raw file bytes, either a GLB container
// or a plain .gltf JSON document. basePath resolves any relative URIs the
// document contains.
func FromSlice(data []byte, basePath string, argTag *string) (*WorkAsset, error) {
	var jsonChunk, binChunk []byte
	if isGLB(data) {
		var err error
		jsonChunk, binChunk, err = glb.Decode(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonChunk = data
	}

	var doc gltf.Document
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, mlerr.Wrap(mlerr.CodeMalformedContainer, err, "parsing glTF JSON")
	}

	return build(&doc, binChunk, basePath, argTag)
}

func isGLB(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[0:4], []byte("glTF"))
}

func build(doc *gltf.Document, blob []byte, basePath string, argTag *string) (*WorkAsset, error) {
	if err := uriresolve.Resolve(doc, &blob, basePath); err != nil {
		return nil, err
	}

	defaultTag, err := variantext.GetValidatedDefaultTag(doc, argTag)
	if err != nil {
		return nil, err
	}

	keys, err := meldkey.Build(doc, blob)
	if err != nil {
		return nil, err
	}

	lookup, err := variantext.GetVariantLookup(doc)
	if err != nil {
		return nil, err
	}

	asset := &WorkAsset{
		Document:   doc,
		Blob:       blob,
		DefaultTag: defaultTag,
		Keys:       keys,
	}

	asset.Primitives = make([][]PrimitiveInfo, len(doc.Meshes))
	for mi, mesh := range doc.Meshes {
		infos := make([]PrimitiveInfo, len(mesh.Primitives))
		for pi, prim := range mesh.Primitives {
			fp, err := fingerprint.Build(doc, blob, prim)
			if err != nil {
				return nil, err
			}
			variants, err := variantext.ExtractVariantMap(prim, lookup)
			if err != nil {
				return nil, err
			}
			infos[pi] = PrimitiveInfo{Fingerprint: fp, Variants: variants}
		}
		if err := ensureUniqueishFingerprints(infos); err != nil {
			return nil, err
		}
		asset.Primitives[mi] = infos
	}

	return asset, nil
}

// ensureUniqueishFingerprints rejects meshes whose primitives collide
// within fingerprint.Tolerance: the fingerprint could no longer distinguish
// them during a meld.
func ensureUniqueishFingerprints(infos []PrimitiveInfo) error {
	for i := range infos {
		for j := i + 1; j < len(infos); j++ {
			if fingerprint.Matches(infos[i].Fingerprint, infos[j].Fingerprint) {
				return mlerr.New(mlerr.CodeCollidingFingerprints, "primitives %d and %d have indistinguishable fingerprints", i, j)
			}
		}
	}
	return nil
}
