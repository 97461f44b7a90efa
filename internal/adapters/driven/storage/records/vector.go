package records

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/custodia-labs/pharmacy-rag/internal/core/domain"
)

// EncodeBlob packs a vector as little-endian float32 bytes.
func EncodeBlob(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeBlob unpacks little-endian float32 bytes.
func DecodeBlob(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: blob of %d bytes", domain.ErrMalformedVector, len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}
