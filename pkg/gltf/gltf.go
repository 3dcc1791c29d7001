// Package gltf parses glTF 2.0 assets (JSON and binary GLB containers) into
// an immutable in-memory document, and decodes accessor data into typed
// slices. A parsed Document is read-only and may be shared by any number of
// model instances.
package gltf

import "errors"

// Error taxonomy. Parse-time structural problems always surface as
// ErrMalformedAsset; missing side-car files surface as ErrResourceNotFound.
var (
	ErrMalformedAsset   = errors.New("gltf: malformed asset")
	ErrResourceNotFound = errors.New("gltf: resource not found")
)

// Document is the root of a parsed glTF asset. All cross-references between
// elements are integer indices into the sibling slices, as in the glTF
// schema itself. Optional references use pointers so that index 0 remains
// distinguishable from "absent".
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Samplers    []Sampler    `json:"samplers,omitempty"`
	Skins       []Skin       `json:"skins,omitempty"`
	Animations  []Animation  `json:"animations,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`

	// Resolved binary payload per buffer, populated during Parse.
	bin [][]byte
}

// Asset holds the glTF asset header.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Scene names a set of root nodes.
type Scene struct {
	Nodes []int  `json:"nodes,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Node is one element of the document node hierarchy. The local transform is
// either the raw Matrix (which takes precedence when present) or the
// decomposed TRS components with glTF defaults.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Skin        *int         `json:"skin,omitempty"`
	Camera      *int         `json:"camera,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"` // Default [0 0 0].
	Rotation    *[4]float32  `json:"rotation,omitempty"`    // Default [0 0 0 1].
	Scale       *[3]float32  `json:"scale,omitempty"`       // Default [1 1 1].
}

// Mesh is a named set of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive maps attribute semantics (POSITION, NORMAL, TEXCOORD_0,
// JOINTS_0, WEIGHTS_0, ...) to accessor indices.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"` // Default TRIANGLES.
}

// Primitive modes.
const (
	ModePoints = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

// Material carries the metallic-roughness subset the renderer consumes.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
}

// PBRMetallicRoughness holds base color and texture bindings.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"` // Default [1 1 1 1].
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

// TextureInfo references a texture by index.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// Texture pairs an image source with sampler settings.
type Texture struct {
	Source  *int   `json:"source,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Image is an external, embedded or buffer-view image.
type Image struct {
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Sampler holds texture filtering and wrap modes.
type Sampler struct {
	MagFilter int `json:"magFilter,omitempty"`
	MinFilter int `json:"minFilter,omitempty"`
	WrapS     int `json:"wrapS,omitempty"`
	WrapT     int `json:"wrapT,omitempty"`
}

// Skin binds an ordered joint list to inverse bind matrices. Joint order is
// significant: it fixes the shader matrix array slot for every joint.
type Skin struct {
	Name                string `json:"name,omitempty"`
	Joints              []int  `json:"joints"`
	InverseBindMatrices *int   `json:"inverseBindMatrices,omitempty"`
	Skeleton            *int   `json:"skeleton,omitempty"`
}

// Animation groups channels with their keyframe samplers.
type Animation struct {
	Name     string             `json:"name,omitempty"`
	Channels []AnimationChannel `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

// AnimationChannel routes one sampler to one node property.
type AnimationChannel struct {
	Sampler int `json:"sampler"`
	Target  struct {
		Node *int   `json:"node,omitempty"`
		Path string `json:"path"`
	} `json:"target"`
}

// AnimationSampler pairs a keyframe-time accessor with a value accessor.
type AnimationSampler struct {
	Input         int    `json:"input"`
	Output        int    `json:"output"`
	Interpolation string `json:"interpolation,omitempty"` // Default LINEAR.
}

// animation.channel.target.path values.
const (
	PathTranslation = "translation"
	PathRotation    = "rotation"
	PathScale       = "scale"
	PathWeights     = "weights"
)

// animation.sampler.interpolation values.
const (
	InterpolationLinear      = "LINEAR"
	InterpolationStep        = "STEP"
	InterpolationCubicSpline = "CUBICSPLINE"
)

// Buffer describes one binary payload: a side-car file, a data URI, or the
// GLB BIN chunk (empty URI).
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
	Name       string `json:"name,omitempty"`
}

// BufferView is a typed window into a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"` // 0 means tightly packed.
	Target     int `json:"target,omitempty"`
}

// Accessor describes how to interpret a buffer view slice as typed elements.
type Accessor struct {
	BufferView    *int    `json:"bufferView,omitempty"`
	ByteOffset    int     `json:"byteOffset,omitempty"`
	ComponentType int     `json:"componentType"`
	Normalized    bool    `json:"normalized,omitempty"`
	Count         int     `json:"count"`
	Type          string  `json:"type"`
	Sparse        *Sparse `json:"sparse,omitempty"`
	Name          string  `json:"name,omitempty"`
}

// Sparse substitutes values at specific element indices over the base data.
type Sparse struct {
	Count   int `json:"count"`
	Indices struct {
		BufferView    int `json:"bufferView"`
		ByteOffset    int `json:"byteOffset,omitempty"`
		ComponentType int `json:"componentType"`
	} `json:"indices"`
	Values struct {
		BufferView int `json:"bufferView"`
		ByteOffset int `json:"byteOffset,omitempty"`
	} `json:"values"`
}

// accessor.componentType values.
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// accessor.type values.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat4   = "MAT4"
)

// componentSize returns the byte size of one component, or 0 if the
// component type is unknown.
func componentSize(componentType int) int {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	}
	return 0
}

// componentCount returns the number of components per element for an
// accessor type, or 0 if the type is unknown.
func componentCount(accessorType string) int {
	switch accessorType {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat4:
		return 16
	}
	return 0
}

// BufferData returns the resolved payload of buffer i, or nil if it was not
// resolved at parse time.
func (d *Document) BufferData(i int) []byte {
	if i < 0 || i >= len(d.bin) {
		return nil
	}
	return d.bin[i]
}
