package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog entries.
// It is derived from record content so that re-ingesting the same catalog
// produces the same identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PhoneticCode holds per-token sound-alike codes for a piece of text.
// Primary and Alternate are index-aligned: Alternate[i] is the secondary
// encoding of the token behind Primary[i], or "" when the token has only
// one plausible pronunciation.
type PhoneticCode struct {
	Primary   []string
	Alternate []string
}

// IsEmpty reports whether the code carries no tokens.
func (c PhoneticCode) IsEmpty() bool {
	return len(c.Primary) == 0
}

// Tokens returns the number of encoded tokens.
func (c PhoneticCode) Tokens() int {
	return len(c.Primary)
}

// String renders the code as "PRIM/ALT PRIM ..." for logs and debug output.
func (c PhoneticCode) String() string {
	parts := make([]string, 0, len(c.Primary))
	for i, p := range c.Primary {
		if i < len(c.Alternate) && c.Alternate[i] != "" && c.Alternate[i] != p {
			parts = append(parts, p+"/"+c.Alternate[i])
		} else {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Product represents one catalog entry. Products are immutable once ingested;
// the Phonetic field is populated during index construction so queries never
// recompute codes for stored products.
type Product struct {
	ID       ID
	Name     string
	Brand    string
	Category string
	Phonetic PhoneticCode
}

// IndexMeta records build-time provenance for a persisted index.
// It is consumed at load time to validate artifact compatibility before
// any query is served.
type IndexMeta struct {
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	Rows      int       `json:"rows"`
	BuiltAt   time.Time `json:"built_at"`
}

// SearchResult represents a ranked query hit with its scoring breakdown.
type SearchResult struct {
	Product       Product
	Score         float64
	Distance      float32
	PhoneticScore float64
}
