// Package gzi parses and writes a gztool-style gzip/bgzip side-index format,
// module-internal rather than wire-compatible with gztool's own .gzi files: a
// sequence of access points, each recording a compressed/decompressed offset
// pair and the inflate window needed to resume decompression from that point
// without reading from the start of the stream.
package gzi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// magic identifies a side-index file written by this package.
var magic = [4]byte{'G', 'Z', 'I', '1'}

// AccessPoint is one entry of the side index.
type AccessPoint struct {
	CompressedOffset   int64
	DecompressedOffset int64
	WindowBits         int    // number of valid bits carried over from the prior deflate block
	Window             []byte // up to 32KiB of inflate history preceding this point
}

// Index is the full ordered sequence of access points, ascending by both offsets.
type Index struct {
	Points []AccessPoint
}

// Load reads a side index written by Save.
func Load(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	var got [4]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return nil, fmt.Errorf("gzi: reading magic: %w", err)
	}
	if got != magic {
		return nil, fmt.Errorf("gzi: bad magic %q", got)
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("gzi: reading count: %w", err)
	}
	idx := &Index{Points: make([]AccessPoint, count)}
	for i := range idx.Points {
		p := &idx.Points[i]
		var fields [3]int64
		if err := binary.Read(br, binary.LittleEndian, &fields); err != nil {
			return nil, fmt.Errorf("gzi: reading point %d: %w", i, err)
		}
		p.CompressedOffset, p.DecompressedOffset = fields[0], fields[1]
		p.WindowBits = int(fields[2])
		var winLen uint32
		if err := binary.Read(br, binary.LittleEndian, &winLen); err != nil {
			return nil, fmt.Errorf("gzi: reading point %d window length: %w", i, err)
		}
		if winLen == 0 {
			continue
		}
		p.Window = make([]byte, winLen)
		if _, err := io.ReadFull(br, p.Window); err != nil {
			return nil, fmt.Errorf("gzi: reading point %d window: %w", i, err)
		}
	}
	return idx, nil
}

// Save writes the side index in the format Load reads back.
func (idx *Index) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(idx.Points))); err != nil {
		return err
	}
	for _, p := range idx.Points {
		fields := [3]int64{p.CompressedOffset, p.DecompressedOffset, int64(p.WindowBits)}
		if err := binary.Write(bw, binary.LittleEndian, fields); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(p.Window))); err != nil {
			return err
		}
		if _, err := bw.Write(p.Window); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Floor returns the access point with the largest DecompressedOffset <= offset.
func (idx *Index) Floor(offset int64) (AccessPoint, bool) {
	var best AccessPoint
	found := false
	for _, p := range idx.Points {
		if p.DecompressedOffset <= offset && (!found || p.DecompressedOffset > best.DecompressedOffset) {
			best, found = p, true
		}
	}
	return best, found
}

// Ceil returns the access point with the smallest DecompressedOffset >= offset,
// or the final point (end of stream) if none qualifies.
func (idx *Index) Ceil(offset int64) (AccessPoint, bool) {
	var best AccessPoint
	found := false
	for _, p := range idx.Points {
		if p.DecompressedOffset >= offset && (!found || p.DecompressedOffset < best.DecompressedOffset) {
			best, found = p, true
		}
	}
	if !found && len(idx.Points) > 0 {
		return idx.Points[len(idx.Points)-1], true
	}
	return best, found
}
