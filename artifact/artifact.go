package artifact

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/index"
)

// Artifact file names inside an artifact directory.
const (
	VectorFile = "index.vec"
	LookupFile = "lookup.mus"
	MetaFile   = "meta.json"
	VocabFile  = "vocab.json"
)

const (
	vectorMagic   = uint32(0x53465658) // "SFVX"
	vectorVersion = uint32(1)
)

// Set is one complete, mutually consistent artifact set: the vector index,
// the row-aligned product lookup, and the build provenance.
type Set struct {
	Index  *index.Index
	Lookup []core.Product
	Meta   core.IndexMeta
}

// Validate checks the in-memory invariants that Load enforces on disk.
func (s *Set) Validate() error {
	if s.Index == nil {
		return fmt.Errorf("%w: no vector index", ErrArtifactMismatch)
	}
	if s.Index.Len() != len(s.Lookup) {
		return fmt.Errorf("%w: index has %d rows, lookup has %d",
			ErrArtifactMismatch, s.Index.Len(), len(s.Lookup))
	}
	if s.Meta.Rows != s.Index.Len() {
		return fmt.Errorf("%w: meta declares %d rows, index has %d",
			ErrArtifactMismatch, s.Meta.Rows, s.Index.Len())
	}
	if s.Meta.Dimension != s.Index.Dim() {
		return fmt.Errorf("%w: meta declares dimension %d, index has %d",
			core.ErrDimensionMismatch, s.Meta.Dimension, s.Index.Dim())
	}
	return nil
}

// Write persists the set into dir, creating it if needed. The caller must
// hand over a fully built set; Write never produces a partial artifact
// directory on a consistent set.
func Write(dir string, set *Set) error {
	if err := set.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := writeVectors(filepath.Join(dir, VectorFile), set.Index); err != nil {
		return fmt.Errorf("writing vector file: %w", err)
	}
	if err := writeLookup(filepath.Join(dir, LookupFile), set.Lookup); err != nil {
		return fmt.Errorf("writing lookup file: %w", err)
	}
	if err := writeMeta(filepath.Join(dir, MetaFile), set.Meta); err != nil {
		return fmt.Errorf("writing meta file: %w", err)
	}
	if err := writeVocab(filepath.Join(dir, VocabFile), set.Lookup); err != nil {
		return fmt.Errorf("writing vocab file: %w", err)
	}
	return nil
}

// Load reads an artifact set from dir and cross-validates it:
// the lookup row count must equal the vector row count, and the meta file
// must agree with both. Any disagreement is fatal; nothing is truncated or
// padded to fit.
func Load(dir string) (*Set, error) {
	ix, err := readVectors(filepath.Join(dir, VectorFile))
	if err != nil {
		return nil, fmt.Errorf("reading vector file: %w", err)
	}
	lookup, err := readLookup(filepath.Join(dir, LookupFile))
	if err != nil {
		return nil, fmt.Errorf("reading lookup file: %w", err)
	}
	meta, err := readMeta(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("reading meta file: %w", err)
	}

	set := &Set{Index: ix, Lookup: lookup, Meta: meta}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func writeVectors(path string, ix *index.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header := []uint32{vectorMagic, vectorVersion, uint32(ix.Len()), uint32(ix.Dim())}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, ix.Flat()); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func readVectors(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic, version, rows, dim uint32
	for _, v := range []*uint32{&magic, &version, &rows, &dim} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("%w: short header", ErrBadFormat)
		}
	}
	if magic != vectorMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrBadFormat, magic)
	}
	if version != vectorVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, version)
	}
	if rows == 0 || dim == 0 {
		return nil, fmt.Errorf("%w: header declares %d rows of dimension %d", ErrBadFormat, rows, dim)
	}

	// The header geometry is untrusted until it agrees with the actual file
	// size; it must never drive the allocation on its own.
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	const headerBytes = 16
	dataBytes := info.Size() - headerBytes
	if dataBytes < 0 || dataBytes%4 != 0 || uint64(dataBytes/4) != uint64(rows)*uint64(dim) {
		return nil, fmt.Errorf("%w: header declares %d rows of dimension %d, file holds %d data bytes",
			ErrArtifactMismatch, rows, dim, dataBytes)
	}

	data := make([]float32, int(dataBytes/4))
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: vector data shorter than header declares", ErrArtifactMismatch)
	}
	// Trailing bytes mean the header lies about the row count.
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: vector data longer than header declares", ErrArtifactMismatch)
	}

	return index.FromFlat(data, int(rows), int(dim))
}

func writeLookup(path string, lookup []core.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint32(len(lookup))); err != nil {
		return err
	}
	for i := range lookup {
		bs := make([]byte, core.ProductMUS.Size(lookup[i]))
		core.ProductMUS.Marshal(lookup[i], bs)
		if _, err := w.Write(bs); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func readLookup(path string) ([]core.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: short lookup header", ErrBadFormat)
	}

	count := binary.LittleEndian.Uint32(data)
	offset := 4
	lookup := make([]core.Product, 0, count)
	for i := uint32(0); i < count; i++ {
		product, n, err := core.ProductMUS.Unmarshal(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrArtifactMismatch, i, err)
		}
		offset += n
		lookup = append(lookup, product)
	}
	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d records",
			ErrArtifactMismatch, len(data)-offset, count)
	}
	return lookup, nil
}

func writeMeta(path string, meta core.IndexMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func readMeta(path string) (core.IndexMeta, error) {
	var meta core.IndexMeta
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if meta.Model == "" {
		return meta, fmt.Errorf("%w: meta missing model identifier", ErrBadFormat)
	}
	return meta, nil
}

// writeVocab persists the distinct phonetic codes of the catalog, sorted.
// The vocab file is informational and never read back by the serving path.
func writeVocab(path string, lookup []core.Product) error {
	seen := make(map[string]struct{})
	for i := range lookup {
		for _, c := range lookup[i].Phonetic.Primary {
			seen[c] = struct{}{}
		}
		for _, c := range lookup[i].Phonetic.Alternate {
			if c != "" {
				seen[c] = struct{}{}
			}
		}
	}
	vocab := make([]string, 0, len(seen))
	for c := range seen {
		vocab = append(vocab, c)
	}
	sort.Strings(vocab)

	data, err := json.Marshal(vocab)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
