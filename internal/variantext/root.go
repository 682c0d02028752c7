// Package variantext reads and writes the materials-variants extensions on
// a glTF document: the published KHR_materials_variants extension (root
// variant table + per-primitive material mappings) and this project's own
// FB_material_variants convention for tracking a default tag.
package variantext

import (
	"encoding/json"
	"sort"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

// Extension names installed by this package.
const (
	KHRMaterialsVariants = "KHR_materials_variants"
	FBMaterialVariants   = "FB_material_variants"
)

type rootVariantEntry struct {
	Name string `json:"name"`
}

type rootExtension struct {
	Variants []rootVariantEntry `json:"variants"`
}

type fbRootExtension struct {
	DefaultTag string `json:"default_tag"`
}

// VariantLookup maps a root variant table index to its Tag.
type VariantLookup map[int]string

// GetVariantLookup returns the root KHR_materials_variants variant table as
// an index→Tag lookup. If the extension is absent, it returns an empty
// lookup, per spec.
func GetVariantLookup(doc *gltf.Document) (VariantLookup, error) {
	lookup := VariantLookup{}
	raw, ok := extensionValue(doc.Extensions, KHRMaterialsVariants)
	if !ok {
		return lookup, nil
	}
	var ext rootExtension
	if err := decodeExtension(raw, &ext); err != nil {
		return nil, mlerr.Wrap(mlerr.CodeMalformedContainer, err, "bad JSON in %s root extension", KHRMaterialsVariants)
	}
	for ix, entry := range ext.Variants {
		lookup[ix] = entry.Name
	}
	return lookup, nil
}

// GetValidatedDefaultTag resolves this project's FB_material_variants
// default-tag convention against an optional caller-supplied tag:
//
//   - both present and equal      -> that tag
//   - both present and different  -> DefaultTagMismatch
//   - only argument present       -> argument
//   - only in-document present    -> in-document value
//   - neither present             -> MissingDefaultTag
func GetValidatedDefaultTag(doc *gltf.Document, argTag *string) (string, error) {
	docTag, hasDocTag, err := getDocumentDefaultTag(doc)
	if err != nil {
		return "", err
	}
	switch {
	case argTag != nil && hasDocTag:
		if *argTag != docTag {
			return "", mlerr.New(mlerr.CodeDefaultTagMismatch, "argument default tag %q != document default tag %q", *argTag, docTag)
		}
		return docTag, nil
	case argTag != nil:
		return *argTag, nil
	case hasDocTag:
		return docTag, nil
	default:
		return "", mlerr.New(mlerr.CodeMissingDefaultTag, "no default tag supplied or present in document")
	}
}

func getDocumentDefaultTag(doc *gltf.Document) (string, bool, error) {
	raw, ok := extensionValue(doc.Extensions, FBMaterialVariants)
	if !ok {
		return "", false, nil
	}
	var ext fbRootExtension
	if err := decodeExtension(raw, &ext); err != nil {
		return "", false, mlerr.Wrap(mlerr.CodeMalformedContainer, err, "bad JSON in %s root extension", FBMaterialVariants)
	}
	if ext.DefaultTag == "" {
		return "", false, nil
	}
	return ext.DefaultTag, true, nil
}

// SetDefaultTag installs the FB_material_variants root extension carrying
// defaultTag.
func SetDefaultTag(doc *gltf.Document, defaultTag string) {
	setExtensionValue(&doc.Extensions, FBMaterialVariants, fbRootExtension{DefaultTag: defaultTag})
}

// WriteRootVariantLookup installs the KHR_materials_variants root extension,
// one entry per tag in tagsInUse, in the order given. Callers that need a
// deterministic table should pass tagsInUse pre-sorted.
func WriteRootVariantLookup(doc *gltf.Document, tagsInUse []string) {
	entries := make([]rootVariantEntry, len(tagsInUse))
	for i, tag := range tagsInUse {
		entries[i] = rootVariantEntry{Name: tag}
	}
	setExtensionValue(&doc.Extensions, KHRMaterialsVariants, rootExtension{Variants: entries})
	installExtensionUsed(doc, KHRMaterialsVariants)
}

// InvertLookup builds a Tag→variant-index map from a VariantLookup.
func (l VariantLookup) InvertLookup() map[string]int {
	inv := make(map[string]int, len(l))
	for ix, tag := range l {
		inv[tag] = ix
	}
	return inv
}

// SortedTags returns l's tags in ascending order.
func (l VariantLookup) SortedTags() []string {
	tags := make([]string, 0, len(l))
	for _, tag := range l {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func installExtensionUsed(doc *gltf.Document, name string) {
	for _, used := range doc.ExtensionsUsed {
		if used == name {
			return
		}
	}
	doc.ExtensionsUsed = append(doc.ExtensionsUsed, name)
}

func extensionValue(exts gltf.Extensions, name string) (any, bool) {
	if exts == nil {
		return nil, false
	}
	v, ok := exts[name]
	return v, ok
}

func setExtensionValue(exts *gltf.Extensions, name string, value any) {
	if *exts == nil {
		*exts = gltf.Extensions{}
	}
	(*exts)[name] = value
}

func decodeExtension(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
