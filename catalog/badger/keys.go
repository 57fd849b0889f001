package badger

import (
	"fmt"

	"github.com/sonafind/sonafind/core"
)

// Key prefixes for different data types
const (
	productPrefix      = "prodrec"
	productTuplePrefix = "prodnb"
)

// makeProductKey generates a key for a product by ID.
func makeProductKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", productPrefix, id))
}

// makeProductTupleKey generates a composite key for product lookup by
// (name, brand). Format: prefix:brand:name
func makeProductTupleKey(name, brand string) []byte {
	prefix := productTuplePrefix + ":"
	totalSize := len(prefix) + len(brand) + 1 + len(name)
	buf := make([]byte, totalSize)
	offset := copy(buf, []byte(prefix))
	offset += copy(buf[offset:], []byte(brand))
	buf[offset] = ':'
	offset++
	copy(buf[offset:], []byte(name))
	return buf
}
