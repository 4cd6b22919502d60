package vectorindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// On-disk layout, all little-endian:
//
//	magic   [4]byte  "CTMI"
//	version uint32
//	count   uint32
//	dim     uint32
//	vectors count*dim float32 (already normalized)
//	ids     count x (uint32 length + raw bytes)
var fileMagic = [4]byte{'C', 'T', 'M', 'I'}

const fileVersion uint32 = 1

// WriteFile persists the index. Vectors are written post-normalization, so
// a loaded index searches identically to the one that produced the file.
func (x *Index) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(fileMagic[:]); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}
	for _, v := range []uint32{fileVersion, uint32(len(x.vectors)), uint32(x.dim)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write index header: %w", err)
		}
	}
	for _, vec := range x.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("failed to write vectors: %w", err)
		}
	}
	for _, id := range x.ids {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("failed to write ids: %w", err)
		}
		if _, err := w.WriteString(id); err != nil {
			return fmt.Errorf("failed to write ids: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush index file: %w", err)
	}
	return nil
}

// ReadFile loads a previously persisted index.
func ReadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read index header: %w", err)
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("not an index file: bad magic %q", magic)
	}

	var version, count, dim uint32
	for _, p := range []*uint32{&version, &count, &dim} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("failed to read index header: %w", err)
		}
	}
	if version != fileVersion {
		return nil, fmt.Errorf("unsupported index version: %d", version)
	}
	if dim == 0 && count > 0 {
		return nil, fmt.Errorf("index file has %d vectors but dimension 0", count)
	}

	idx := &Index{
		dim:     int(dim),
		vectors: make([][]float32, count),
		ids:     make([]string, count),
	}
	for i := range idx.vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("failed to read vector %d: %w", i, err)
		}
		idx.vectors[i] = vec
	}
	for i := range idx.ids {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read id %d: %w", i, err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read id %d: %w", i, err)
		}
		idx.ids[i] = string(buf)
	}
	return idx, nil
}
