package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/treemorph/treert/rt/foliage"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	FoliageUniformSize  = 160
	OrnamentCameraSize  = 96
	foliageVertexStride = 28
)

// EncodeFoliageUniforms packs the per-frame foliage block.
//
//	struct Frame {
//	  view_proj: mat4x4<f32>,  -- 0
//	  view: mat4x4<f32>,       -- 64
//	  base_color: vec4<f32>,   -- 128
//	  time: f32,               -- 144
//	  progress: f32,           -- 148
//	  viewport: vec2<f32>,     -- 152
//	} -> 160 bytes
func EncodeFoliageUniforms(dst []byte, viewProj, view mgl32.Mat4, u foliage.Uniforms, viewport [2]float32) []byte {
	if cap(dst) < FoliageUniformSize {
		dst = make([]byte, FoliageUniformSize)
	}
	buf := dst[:FoliageUniformSize]

	putMat4(buf[0:], viewProj)
	putMat4(buf[64:], view)
	putVec4(buf[128:], u.BaseColor.RGBA())
	putFloat(buf[144:], u.Time)
	putFloat(buf[148:], u.Progress)
	putFloat(buf[152:], viewport[0])
	putFloat(buf[156:], viewport[1])
	return buf
}

// EncodeOrnamentCamera packs the ornament camera block.
//
//	struct Camera {
//	  view_proj: mat4x4<f32>,  -- 0
//	  cam_pos: vec4<f32>,      -- 64
//	  light_dir: vec4<f32>,    -- 80
//	} -> 96 bytes
func EncodeOrnamentCamera(dst []byte, viewProj mgl32.Mat4, camPos, lightDir mgl32.Vec3) []byte {
	if cap(dst) < OrnamentCameraSize {
		dst = make([]byte, OrnamentCameraSize)
	}
	buf := dst[:OrnamentCameraSize]

	putMat4(buf[0:], viewProj)
	putVec4(buf[64:], [4]float32{camPos[0], camPos[1], camPos[2], 1})
	putVec4(buf[80:], [4]float32{lightDir[0], lightDir[1], lightDir[2], 0})
	return buf
}

func putMat4(buf []byte, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

func putVec4(buf []byte, v [4]float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

func putFloat(buf []byte, f float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
}
