// Package uriresolve inlines externally-referenced buffer and image files
// into a glTF document's single binary blob, so that downstream melding
// never has to chase filesystem paths.
package uriresolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/facebookincubator/glTFVariantMeld/internal/blobview"
	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

// Resolve rewrites doc so that every buffer and image is backed by blob
// rather than a URI, resolving relative paths against basePath. After this
// call the document contains no URIs, and its buffer list is the single
// root buffer describing blob (see blobview.SetRootBuffer).
func Resolve(doc *gltf.Document, blob *[]byte, basePath string) error {
	if err := resolveBuffers(doc, blob, basePath); err != nil {
		return err
	}
	if err := resolveImages(doc, blob, basePath); err != nil {
		return err
	}
	blobview.SetRootBuffer(doc, *blob)
	return nil
}

func resolveBuffers(doc *gltf.Document, blob *[]byte, basePath string) error {
	for len(*blob)%4 != 0 {
		*blob = append(*blob, 0x00)
	}
	offsets := make([]uint32, len(doc.Buffers))
	for i, buf := range doc.Buffers {
		if buf.URI == "" {
			continue
		}
		bytes, err := readFromURI(buf.URI, basePath)
		if err != nil {
			return err
		}
		offsets[i] = uint32(len(*blob))
		*blob = append(*blob, bytes...)
		for len(*blob)%4 != 0 {
			*blob = append(*blob, 0x00)
		}
		buf.URI = ""
	}
	for _, view := range doc.BufferViews {
		if int(view.Buffer) < len(offsets) {
			view.ByteOffset += offsets[view.Buffer]
			view.Buffer = 0
		}
	}
	return nil
}

func resolveImages(doc *gltf.Document, blob *[]byte, basePath string) error {
	for _, img := range doc.Images {
		if img.BufferView != nil || img.URI == "" {
			continue
		}
		bytes, err := readFromURI(img.URI, basePath)
		if err != nil {
			return err
		}
		mime, err := guessMimeType(img.URI)
		if err != nil {
			return err
		}
		viewIx := blobview.Append(doc, blob, bytes)
		img.BufferView = &viewIx
		img.MimeType = mime
		img.URI = ""
	}
	return nil
}

func guessMimeType(uri string) (string, error) {
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	default:
		return "", mlerr.New(mlerr.CodeUnknownMime, "can't guess MIME type of URI: %s", uri)
	}
}

func readFromURI(uri string, basePath string) ([]byte, error) {
	path := uri
	switch {
	case strings.HasPrefix(uri, "file://"):
		path = uri[len("file://"):]
	case strings.HasPrefix(uri, "file:"):
		path = uri[len("file:"):]
	case strings.Contains(uri, "://"):
		return nil, mlerr.New(mlerr.CodeUnsupportedURI, "unsupported URI scheme: %s", uri)
	default:
		if idx := strings.Index(uri, ":"); idx >= 0 && isKnownScheme(uri[:idx]) {
			return nil, mlerr.New(mlerr.CodeUnsupportedURI, "unsupported URI scheme: %s", uri)
		}
	}
	if !filepath.IsAbs(path) && basePath != "" {
		path = filepath.Join(basePath, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlerr.Wrap(mlerr.CodeIoError, err, "reading %s", path)
	}
	return data, nil
}

func isKnownScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https", "data", "ftp":
		return true
	default:
		return false
	}
}
