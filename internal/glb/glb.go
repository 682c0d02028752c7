// Package glb reads and writes the binary glTF (GLB) container: a 12-byte
// header followed by a JSON chunk and an optional BIN chunk. Decoding is
// hand-rolled rather than routed through a general container reader because
// each failure mode below carries its own stable error code.
package glb

import (
	"encoding/binary"

	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

const (
	magicGlTF = 0x46546C67 // "glTF", little-endian read as uint32
	version   = 2

	chunkTypeJSON = 0x4E4F534A
	chunkTypeBIN  = 0x004E4942

	headerSize     = 12
	chunkHeaderLen = 8
)

// Decode splits a GLB byte slice into its JSON and BIN chunk payloads, as
// stored in the container (any 4-byte alignment padding is kept). BIN is nil
// if the container carries no second chunk.
func Decode(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < headerSize {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "GLB too short for header: %d bytes", len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != magicGlTF {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "bad magic 0x%08X", magic)
	}
	ver := binary.LittleEndian.Uint32(data[4:8])
	if ver != version {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "unsupported version %d", ver)
	}
	totalLength := binary.LittleEndian.Uint32(data[8:12])
	if int(totalLength) != len(data) {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "declared length %d != actual %d", totalLength, len(data))
	}

	offset := headerSize

	readChunk := func() (chunkType uint32, payload []byte, next int, err error) {
		if offset+chunkHeaderLen > len(data) {
			return 0, nil, offset, mlerr.New(mlerr.CodeMalformedContainer, "truncated chunk header at offset %d", offset)
		}
		length := binary.LittleEndian.Uint32(data[offset : offset+4])
		chunkType = binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		start := offset + chunkHeaderLen
		end := start + int(length)
		if end > len(data) {
			return 0, nil, offset, mlerr.New(mlerr.CodeMalformedContainer, "chunk of length %d overruns container at offset %d", length, offset)
		}
		return chunkType, data[start:end], end, nil
	}

	chunkType, payload, next, err := readChunk()
	if err != nil {
		return nil, nil, err
	}
	if chunkType != chunkTypeJSON {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "first chunk is 0x%08X, not JSON", chunkType)
	}
	jsonChunk = payload
	offset = next

	if offset == len(data) {
		return jsonChunk, nil, nil
	}

	chunkType, payload, next, err = readChunk()
	if err != nil {
		return nil, nil, err
	}
	if chunkType != chunkTypeBIN {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "second chunk is 0x%08X, not BIN", chunkType)
	}
	binChunk = payload
	offset = next

	if offset != len(data) {
		return nil, nil, mlerr.New(mlerr.CodeMalformedContainer, "trailing data after BIN chunk: %d bytes", len(data)-offset)
	}

	return jsonChunk, binChunk, nil
}

// Encode assembles a GLB container from a JSON chunk and an optional BIN
// chunk. The JSON chunk is always written first, padded with 0x20; the BIN
// chunk, if non-empty, is written second, padded with 0x00.
func Encode(jsonChunk, binChunk []byte) ([]byte, error) {
	if jsonChunk == nil {
		return nil, mlerr.New(mlerr.CodeMalformedContainer, "first GLB chunk must be JSON, got nil")
	}

	out := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(out[0:4], magicGlTF)
	binary.LittleEndian.PutUint32(out[4:8], version)
	// total length patched in below

	appendChunk := func(buf []byte, chunkType uint32, payload []byte, pad byte) []byte {
		padded := append([]byte(nil), payload...)
		for len(padded)%4 != 0 {
			padded = append(padded, pad)
		}
		hdr := make([]byte, chunkHeaderLen)
		binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(padded)))
		binary.LittleEndian.PutUint32(hdr[4:8], chunkType)
		buf = append(buf, hdr...)
		buf = append(buf, padded...)
		return buf
	}

	out = appendChunk(out, chunkTypeJSON, jsonChunk, 0x20)
	if len(binChunk) > 0 {
		out = appendChunk(out, chunkTypeBIN, binChunk, 0x00)
	}

	binary.LittleEndian.PutUint32(out[8:12], uint32(len(out)))
	return out, nil
}
