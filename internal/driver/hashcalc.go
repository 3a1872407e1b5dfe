package driver

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Digest is a blake3-256 sum.
type Digest [32]byte

// cacheKey: H(schema || content || config fingerprint || flags).
// Любое изменение настроек отступов даёт новый ключ.
func cacheKey(content [32]byte, fingerprint string, checkOnSyntaxError bool) Digest {
	h := blake3.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	_, _ = h.Write(schema[:])
	_, _ = h.Write(content[:])
	_, _ = h.Write([]byte(fingerprint))
	flag := byte(0)
	if checkOnSyntaxError {
		flag = 1
	}
	_, _ = h.Write([]byte{flag})

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
