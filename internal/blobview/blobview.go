// Package blobview manages the single binary blob backing a glTF document's
// buffer views, and the document's buffer-view/buffer bookkeeping that goes
// with it.
package blobview

import (
	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

// Extract returns the byte range of blob addressed by view, failing with
// CodeOutOfRange if that range exceeds the blob.
func Extract(blob []byte, view *gltf.BufferView) ([]byte, error) {
	start := int(view.ByteOffset)
	end := start + int(view.ByteLength)
	if start < 0 || end > len(blob) || start > end {
		return nil, mlerr.New(mlerr.CodeOutOfRange, "buffer view [%d:%d] exceeds blob of length %d", start, end, len(blob))
	}
	return blob[start:end], nil
}

// Append pads blob to a 4-byte boundary with zero bytes, appends payload,
// creates a BufferView sized exactly to it on doc, and returns that view's
// new index. Successive calls produce monotonically increasing indices.
func Append(doc *gltf.Document, blob *[]byte, payload []byte) uint32 {
	for len(*blob)%4 != 0 {
		*blob = append(*blob, 0x00)
	}
	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(len(*blob)),
		ByteLength: uint32(len(payload)),
	}
	*blob = append(*blob, payload...)
	doc.BufferViews = append(doc.BufferViews, view)
	return uint32(len(doc.BufferViews) - 1)
}

// SetRootBuffer replaces doc's buffer list with a single buffer describing
// blob in its entirety; an empty blob leaves doc with no buffers. Called once
// buffer-view bookkeeping for a document is complete, so every buffer view
// can address index 0 unambiguously.
func SetRootBuffer(doc *gltf.Document, blob []byte) {
	if len(blob) == 0 {
		doc.Buffers = nil
		return
	}
	doc.Buffers = []*gltf.Buffer{{ByteLength: uint32(len(blob))}}
}
