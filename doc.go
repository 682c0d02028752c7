// Package gltfvariantmeld melds KHR_materials_variants tags from multiple
// glTF/GLB assets that share the same underlying geometry into a single
// asset, deduplicating identical materials, textures, images and samplers
// by content as it goes.
package gltfvariantmeld
