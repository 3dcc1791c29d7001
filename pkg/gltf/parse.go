package gltf

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parse parses a glTF asset from a byte buffer, auto-detecting the GLB
// container by its magic. dir is the directory used to resolve side-car
// buffer and image URIs; it may be empty for fully self-contained assets.
func Parse(data []byte, dir string) (*Document, error) {
	var jsonChunk, binChunk []byte
	if IsGLB(data) {
		var err error
		jsonChunk, binChunk, err = decodeGLB(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonChunk = data
	}

	var doc Document
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, fmt.Errorf("%w: JSON syntax: %v", ErrMalformedAsset, err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: unsupported glTF version %q", ErrMalformedAsset, doc.Asset.Version)
	}

	if err := doc.resolveBuffers(binChunk, dir); err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile parses a .gltf or .glb file from disk. Side-car buffers and
// images are resolved relative to the file's directory.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceNotFound, path, err)
	}
	doc, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// resolveBuffers materializes every buffer's payload: the GLB BIN chunk for
// an empty URI, base64 data URIs inline, anything else as a file read.
func (d *Document) resolveBuffers(binChunk []byte, dir string) error {
	d.bin = make([][]byte, len(d.Buffers))
	for i := range d.Buffers {
		b := &d.Buffers[i]
		var data []byte

		switch {
		case b.URI == "":
			if binChunk == nil {
				return fmt.Errorf("%w: buffer %d has no URI and no BIN chunk", ErrMalformedAsset, i)
			}
			data = binChunk
		case strings.HasPrefix(b.URI, "data:"):
			decoded, err := decodeDataURI(b.URI)
			if err != nil {
				return fmt.Errorf("%w: buffer %d: %v", ErrMalformedAsset, i, err)
			}
			data = decoded
		default:
			raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(b.URI)))
			if err != nil {
				return fmt.Errorf("%w: buffer %d (%s): %v", ErrResourceNotFound, i, b.URI, err)
			}
			data = raw
		}

		if b.ByteLength < 0 || len(data) < b.ByteLength {
			return fmt.Errorf("%w: buffer %d declares %d bytes, have %d", ErrMalformedAsset, i, b.ByteLength, len(data))
		}
		d.bin[i] = data[:b.ByteLength]
	}
	return nil
}

// ImageData returns the raw bytes of image i, reading external files
// relative to dir. Embedded images (data URI or buffer view) need no disk
// access.
func (d *Document) ImageData(i int, dir string) ([]byte, error) {
	if i < 0 || i >= len(d.Images) {
		return nil, fmt.Errorf("%w: image index %d out of range", ErrMalformedAsset, i)
	}
	img := &d.Images[i]

	switch {
	case img.BufferView != nil:
		bv := &d.BufferViews[*img.BufferView]
		buf := d.BufferData(bv.Buffer)
		if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset+bv.ByteLength > len(buf) {
			return nil, fmt.Errorf("%w: image %d buffer view exceeds buffer", ErrMalformedAsset, i)
		}
		return buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
	case strings.HasPrefix(img.URI, "data:"):
		data, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrMalformedAsset, i, err)
		}
		return data, nil
	case img.URI != "":
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(img.URI)))
		if err != nil {
			return nil, fmt.Errorf("%w: image %d (%s): %v", ErrResourceNotFound, i, img.URI, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: image %d has no source", ErrMalformedAsset, i)
}

// decodeDataURI decodes a base64 "data:" URI payload.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("data URI has no payload")
	}
	meta := uri[:comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data URI is not base64-encoded")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}
