// Package render draws extracted model meshes with OpenGL, covering both
// static placement and GPU skinning.
package render

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/arclight3d/arclight/internal/engine/model"
	"github.com/arclight3d/arclight/internal/engine/render/shaders"
	"github.com/arclight3d/arclight/internal/engine/scene"
	"github.com/arclight3d/arclight/internal/engine/shader"
	"github.com/arclight3d/arclight/internal/engine/texture"
	"github.com/arclight3d/arclight/pkg/gltf"
	"github.com/arclight3d/arclight/pkg/math"
)

// Interleaved vertex layout: position, normal, texcoord, joints, weights.
const vertexStride = 3*4 + 3*4 + 2*4 + 4*2 + 4*4

type primBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// ModelRenderer owns the model shader program and the GPU buffers built
// lazily per primitive. It implements model.Renderer. All methods must run
// on the GL thread.
type ModelRenderer struct {
	program uint32

	locViewProj   int32
	locModel      int32
	locJoints     int32
	locJointCount int32
	locSkinned    int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locBaseColor  int32
	locTexture    int32
	locHasTexture int32

	viewProj math.Mat4

	fallbackTex uint32
	prims       map[*model.Primitive]*primBuffers
	textures    map[*gltf.Document]map[int]uint32
}

// NewModelRenderer compiles the model shader and creates the fallback
// texture. Requires a current GL context.
func NewModelRenderer() (*ModelRenderer, error) {
	program, err := shader.CompileProgram(shaders.ModelVertexShader, shaders.ModelFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("model shader: %w", err)
	}

	r := &ModelRenderer{
		program:  program,
		prims:    make(map[*model.Primitive]*primBuffers),
		textures: make(map[*gltf.Document]map[int]uint32),
	}
	r.locViewProj = shader.GetUniform(program, "uViewProj")
	r.locModel = shader.GetUniform(program, "uModel")
	r.locJoints = shader.GetUniform(program, "uJointMatrices")
	r.locJointCount = shader.GetUniform(program, "uJointCount")
	r.locSkinned = shader.GetUniform(program, "uSkinned")
	r.locLightDir = shader.GetUniform(program, "uLightDir")
	r.locAmbient = shader.GetUniform(program, "uAmbient")
	r.locDiffuse = shader.GetUniform(program, "uDiffuse")
	r.locBaseColor = shader.GetUniform(program, "uBaseColor")
	r.locTexture = shader.GetUniform(program, "uTexture")
	r.locHasTexture = shader.GetUniform(program, "uHasTexture")

	fallback := texture.Checkerboard(8, [4]uint8{200, 200, 200, 255}, [4]uint8{120, 120, 120, 255})
	r.fallbackTex = UploadTexture(fallback.Pix, fallback.Bounds().Dx(), fallback.Bounds().Dy())

	return r, nil
}

// Begin activates the program and sets frame-wide state. Call once per
// frame before drawing models.
func (r *ModelRenderer) Begin(viewProj math.Mat4, lightDir, ambient, diffuse [3]float32) {
	r.viewProj = viewProj
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, &r.viewProj[0])
	gl.Uniform3f(r.locLightDir, lightDir[0], lightDir[1], lightDir[2])
	gl.Uniform3f(r.locAmbient, ambient[0], ambient[1], ambient[2])
	gl.Uniform3f(r.locDiffuse, diffuse[0], diffuse[1], diffuse[2])
	gl.Uniform1i(r.locTexture, 0)
	gl.Enable(gl.DEPTH_TEST)
}

// LoadTextures uploads every base color texture the document's materials
// reference. dir is the directory external image URIs resolve against.
// Failed images fall back to the checkerboard.
func (r *ModelRenderer) LoadTextures(doc *gltf.Document, dir string) {
	cache, ok := r.textures[doc]
	if !ok {
		cache = make(map[int]uint32)
		r.textures[doc] = cache
	}

	for mi := range doc.Materials {
		pbr := doc.Materials[mi].PBRMetallicRoughness
		if pbr == nil || pbr.BaseColorTexture == nil {
			continue
		}
		ti := pbr.BaseColorTexture.Index
		if ti < 0 || ti >= len(doc.Textures) || doc.Textures[ti].Source == nil {
			continue
		}
		src := *doc.Textures[ti].Source
		if _, done := cache[src]; done {
			continue
		}

		data, err := doc.ImageData(src, dir)
		if err != nil {
			cache[src] = r.fallbackTex
			continue
		}
		img, err := texture.Decode(data)
		if err != nil {
			cache[src] = r.fallbackTex
			continue
		}
		cache[src] = UploadTexture(img.Pix, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

// DrawMesh draws one primitive with a static world transform.
func (r *ModelRenderer) DrawMesh(m *model.Model, mesh *model.Mesh, prim *model.Primitive, world math.Mat4) {
	gl.UniformMatrix4fv(r.locModel, 1, false, &world[0])
	gl.Uniform1i(r.locSkinned, 0)
	r.draw(m, mesh, prim)
}

// DrawSkinnedMesh draws one primitive posed by the joint palette.
func (r *ModelRenderer) DrawSkinnedMesh(m *model.Model, mesh *model.Mesh, prim *model.Primitive, joints []math.Mat4) {
	if len(joints) == 0 || len(joints) > scene.MaxJoints {
		return
	}
	gl.UniformMatrix4fv(r.locJoints, int32(len(joints)), false, &joints[0][0])
	gl.Uniform1i(r.locJointCount, int32(len(joints)))
	gl.Uniform1i(r.locSkinned, 1)
	r.draw(m, mesh, prim)
}

func (r *ModelRenderer) draw(m *model.Model, mesh *model.Mesh, prim *model.Primitive) {
	bufs := r.buffers(prim)
	if bufs == nil {
		return
	}
	r.bindMaterial(m, mesh, prim)

	gl.BindVertexArray(bufs.vao)
	glMode := uint32(gl.TRIANGLES)
	switch prim.Mode {
	case gltf.ModeTriangleStrip:
		glMode = gl.TRIANGLE_STRIP
	case gltf.ModeTriangleFan:
		glMode = gl.TRIANGLE_FAN
	case gltf.ModeLines:
		glMode = gl.LINES
	case gltf.ModePoints:
		glMode = gl.POINTS
	}
	gl.DrawElements(glMode, bufs.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (r *ModelRenderer) bindMaterial(m *model.Model, mesh *model.Mesh, prim *model.Primitive) {
	base := [4]float32{1, 1, 1, 1}
	tex := uint32(0)

	if prim.Material >= 0 && prim.Material < len(m.Doc.Materials) {
		mat := &m.Doc.Materials[prim.Material]
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				base = *pbr.BaseColorFactor
			}
			if pbr.BaseColorTexture != nil {
				ti := pbr.BaseColorTexture.Index
				if ti >= 0 && ti < len(m.Doc.Textures) && m.Doc.Textures[ti].Source != nil {
					if cache, ok := r.textures[m.Doc]; ok {
						tex = cache[*m.Doc.Textures[ti].Source]
					}
				}
			}
		}
		if mat.DoubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}
	}

	// Caller-injected override takes priority over the document material.
	if override, ok := m.TextureOverride(mesh.Name, "uTexture"); ok {
		tex = override
	}

	gl.Uniform4f(r.locBaseColor, base[0], base[1], base[2], base[3])
	if tex != 0 {
		gl.Uniform1i(r.locHasTexture, 1)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
	} else {
		gl.Uniform1i(r.locHasTexture, 0)
	}
}

// buffers uploads the primitive on first use and caches the VAO after.
func (r *ModelRenderer) buffers(prim *model.Primitive) *primBuffers {
	if bufs, ok := r.prims[prim]; ok {
		return bufs
	}
	if len(prim.Positions) == 0 || len(prim.Indices) == 0 {
		r.prims[prim] = nil
		return nil
	}

	data := interleave(prim)
	bufs := &primBuffers{indexCount: int32(len(prim.Indices))}

	gl.GenVertexArrays(1, &bufs.vao)
	gl.BindVertexArray(bufs.vao)

	gl.GenBuffers(1, &bufs.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, bufs.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexStride, 24)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribIPointerWithOffset(3, 4, gl.UNSIGNED_SHORT, vertexStride, 32)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, vertexStride, 40)
	gl.EnableVertexAttribArray(4)

	gl.GenBuffers(1, &bufs.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, bufs.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(prim.Indices)*4, unsafe.Pointer(&prim.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	r.prims[prim] = bufs
	return bufs
}

// interleave packs the primitive's attribute slices into the VBO layout.
// Missing attributes are zero-filled; missing joints get the sentinel id
// so the shader skips them.
func interleave(prim *model.Primitive) []byte {
	n := len(prim.Positions)
	data := make([]byte, n*vertexStride)

	for i := 0; i < n; i++ {
		off := i * vertexStride
		putVec3(data[off:], prim.Positions[i])
		if prim.Normals != nil {
			putVec3(data[off+12:], prim.Normals[i])
		}
		if prim.TexCoords != nil {
			putFloat(data[off+24:], prim.TexCoords[i].X)
			putFloat(data[off+28:], prim.TexCoords[i].Y)
		}
		if prim.Joints != nil {
			for j := 0; j < 4; j++ {
				putUint16(data[off+32+j*2:], prim.Joints[i][j])
			}
		} else {
			for j := 0; j < 4; j++ {
				putUint16(data[off+32+j*2:], model.JointSentinel)
			}
		}
		if prim.Weights != nil {
			for j := 0; j < 4; j++ {
				putFloat(data[off+40+j*4:], prim.Weights[i][j])
			}
		}
	}
	return data
}

// Destroy releases every GL resource the renderer created.
func (r *ModelRenderer) Destroy() {
	for _, bufs := range r.prims {
		if bufs == nil {
			continue
		}
		gl.DeleteVertexArrays(1, &bufs.vao)
		gl.DeleteBuffers(1, &bufs.vbo)
		gl.DeleteBuffers(1, &bufs.ebo)
	}
	for _, cache := range r.textures {
		for _, tex := range cache {
			if tex != r.fallbackTex {
				gl.DeleteTextures(1, &tex)
			}
		}
	}
	gl.DeleteTextures(1, &r.fallbackTex)
	gl.DeleteProgram(r.program)
	r.prims = make(map[*model.Primitive]*primBuffers)
	r.textures = make(map[*gltf.Document]map[int]uint32)
}

// UploadTexture creates a mipmapped GL texture from RGBA pixels.
func UploadTexture(pix []byte, w, h int) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return tex
}
