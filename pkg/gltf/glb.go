package gltf

import (
	"encoding/binary"
	"fmt"
)

// GLB container constants. A GLB file is a 12-byte header followed by
// chunks of {length u32, type u32, data}.
const (
	glbMagic   = 0x46546C67 // "glTF"
	glbVersion = 2

	chunkJSON = 0x4E4F534A // "JSON"
	chunkBIN  = 0x004E4942 // "BIN\0"

	glbHeaderSize = 12
	glbChunkSize  = 8
)

// IsGLB reports whether data starts with the GLB magic.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

// decodeGLB splits a GLB container into its JSON chunk and optional BIN
// chunk. Chunk boundaries are validated against the actual data length so a
// lying header can never cause an out-of-bounds read.
func decodeGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < glbHeaderSize {
		return nil, nil, fmt.Errorf("%w: GLB shorter than header", ErrMalformedAsset)
	}
	magic := binary.LittleEndian.Uint32(data[0:])
	version := binary.LittleEndian.Uint32(data[4:])
	total := binary.LittleEndian.Uint32(data[8:])

	if magic != glbMagic {
		return nil, nil, fmt.Errorf("%w: bad GLB magic 0x%08X", ErrMalformedAsset, magic)
	}
	if version != glbVersion {
		return nil, nil, fmt.Errorf("%w: unsupported GLB version %d", ErrMalformedAsset, version)
	}
	if int(total) > len(data) {
		return nil, nil, fmt.Errorf("%w: GLB declares %d bytes, have %d", ErrMalformedAsset, total, len(data))
	}

	offset := glbHeaderSize
	for chunkIndex := 0; offset < int(total); chunkIndex++ {
		if offset+glbChunkSize > int(total) {
			return nil, nil, fmt.Errorf("%w: truncated GLB chunk header", ErrMalformedAsset)
		}
		length := int(binary.LittleEndian.Uint32(data[offset:]))
		ctype := binary.LittleEndian.Uint32(data[offset+4:])
		offset += glbChunkSize

		if length < 0 || offset+length > int(total) {
			return nil, nil, fmt.Errorf("%w: GLB chunk overruns container", ErrMalformedAsset)
		}
		payload := data[offset : offset+length]
		offset += length

		switch {
		case chunkIndex == 0:
			if ctype != chunkJSON {
				return nil, nil, fmt.Errorf("%w: first GLB chunk is not JSON", ErrMalformedAsset)
			}
			jsonChunk = payload
		case ctype == chunkBIN:
			if binChunk != nil {
				return nil, nil, fmt.Errorf("%w: multiple BIN chunks", ErrMalformedAsset)
			}
			binChunk = payload
		default:
			// Unknown chunk types after the first are skipped per spec.
		}
	}

	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: GLB has no JSON chunk", ErrMalformedAsset)
	}
	return jsonChunk, binChunk, nil
}
