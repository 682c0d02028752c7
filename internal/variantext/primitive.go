package variantext

import (
	"sort"

	"github.com/qmuntal/gltf"
)

type primitiveMappingEntry struct {
	Material uint32   `json:"material"`
	Variants []uint32 `json:"variants"`
}

type primitiveExtension struct {
	Mappings []primitiveMappingEntry `json:"mappings"`
}

// ExtractVariantMap parses a primitive's KHR_materials_variants mapping
// (if any) into a Tag→material-index map, resolving variant indices through
// lookup. Absent extension yields an empty map.
func ExtractVariantMap(prim *gltf.Primitive, lookup VariantLookup) (map[string]int, error) {
	result := map[string]int{}
	raw, ok := extensionValue(prim.Extensions, KHRMaterialsVariants)
	if !ok {
		return result, nil
	}
	var ext primitiveExtension
	if err := decodeExtension(raw, &ext); err != nil {
		return nil, err
	}
	for _, entry := range ext.Mappings {
		for _, variantIx := range entry.Variants {
			if tag, ok := lookup[int(variantIx)]; ok {
				result[tag] = int(entry.Material)
			}
		}
	}
	return result, nil
}

// WriteVariantMap writes tagToIx (Tag→material-index) onto prim in
// KHR_materials_variants form, resolving each tag to a variant index via
// variantIxLookup (Tag→variant-index). Materials are grouped, sorted
// ascending by material index, and each material's variant-index list is
// sorted ascending, for deterministic output. An empty tagToIx removes the
// extension entirely.
func WriteVariantMap(prim *gltf.Primitive, tagToIx map[string]int, variantIxLookup map[string]int) {
	if len(tagToIx) == 0 {
		if prim.Extensions != nil {
			delete(prim.Extensions, KHRMaterialsVariants)
		}
		return
	}

	byMaterial := map[uint32][]uint32{}
	for tag, materialIx := range tagToIx {
		variantIx := uint32(variantIxLookup[tag])
		byMaterial[uint32(materialIx)] = append(byMaterial[uint32(materialIx)], variantIx)
	}

	materials := make([]uint32, 0, len(byMaterial))
	for materialIx := range byMaterial {
		materials = append(materials, materialIx)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i] < materials[j] })

	entries := make([]primitiveMappingEntry, 0, len(materials))
	for _, materialIx := range materials {
		variants := byMaterial[materialIx]
		sort.Slice(variants, func(i, j int) bool { return variants[i] < variants[j] })
		entries = append(entries, primitiveMappingEntry{Material: materialIx, Variants: variants})
	}

	setExtensionValue(&prim.Extensions, KHRMaterialsVariants, primitiveExtension{Mappings: entries})
}
