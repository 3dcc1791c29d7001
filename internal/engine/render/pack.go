package render

import (
	"encoding/binary"
	gomath "math"

	"github.com/arclight3d/arclight/pkg/math"
)

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, gomath.Float32bits(f))
}

func putUint16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

func putVec3(b []byte, v math.Vec3) {
	putFloat(b, v.X)
	putFloat(b[4:], v.Y)
	putFloat(b[8:], v.Z)
}
