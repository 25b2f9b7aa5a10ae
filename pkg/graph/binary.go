package graph

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
	"unsafe"
)

const (
	magicBytes    = "WKROUTER"
	version       = uint32(1)
	maxNodes      = 50_000_000
	maxEdges      = 2_000_000_000
	maxTitleBytes = math.MaxUint32

	flagRedirect    = 1 << 0
	flagDateRelated = 1 << 1
	flagListArticle = 1 << 2
)

var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrLimitExceeded      = errors.New("size limit exceeded")
	ErrChecksum           = errors.New("checksum mismatch")
)

// fileHeader is the uncompressed binary header.
type fileHeader struct {
	Magic       [8]byte
	Version     uint32
	Codec       uint32
	NumNodes    uint32
	NumFwdEdges uint32
	NumBwdEdges uint32
	_           uint32
	TitleBytes  uint64
}

// WriteBinary serializes g to path, compressing the payload with codec.
// The file is written to path+".tmp" and renamed into place.
func WriteBinary(path string, g *Graph, codec Codec) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := Encode(bw, g, codec); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Encode writes g to w. The CRC32 covers the header and the uncompressed
// payload and is stored as the last four bytes of the (possibly compressed)
// payload stream, so a reader never consumes bytes past the stream.
func Encode(w io.Writer, g *Graph, codec Codec) error {
	numNodes := len(g.Nodes)
	if numNodes > maxNodes {
		return fmt.Errorf("%w: %d nodes, limit %d", ErrLimitExceeded, numNodes, maxNodes)
	}
	if len(g.FwdEdges) > maxEdges || len(g.BwdEdges) > maxEdges {
		return fmt.Errorf("%w: edge count exceeds %d", ErrLimitExceeded, maxEdges)
	}

	// Flatten per-node fields into columns.
	ids := make([]uint32, numNodes)
	ns := make([]int32, numNodes)
	flags := make([]byte, numNodes)
	fwdStart := make([]uint32, numNodes)
	fwdEnd := make([]uint32, numNodes)
	bwdStart := make([]uint32, numNodes)
	bwdEnd := make([]uint32, numNodes)
	titleOffsets := make([]uint32, numNodes+1)
	var titleBytes uint64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		ids[i] = n.ID
		ns[i] = n.NS
		flags[i] = packFlags(n)
		fwdStart[i], fwdEnd[i] = n.Fwd.Start, n.Fwd.End
		bwdStart[i], bwdEnd[i] = n.Bwd.Start, n.Bwd.End
		titleOffsets[i] = uint32(titleBytes)
		titleBytes += uint64(len(n.Title))
		if titleBytes > maxTitleBytes {
			return fmt.Errorf("%w: titles exceed %d bytes", ErrLimitExceeded, uint64(maxTitleBytes))
		}
	}
	titleOffsets[numNodes] = uint32(titleBytes)

	h := crc32.NewIEEE()

	hdr := fileHeader{
		Version:     version,
		Codec:       uint32(codec),
		NumNodes:    uint32(numNodes),
		NumFwdEdges: uint32(len(g.FwdEdges)),
		NumBwdEdges: uint32(len(g.BwdEdges)),
		TitleBytes:  titleBytes,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(&crc32Writer{w: w, hash: h}, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	stream, err := codec.compressor(w)
	if err != nil {
		return err
	}
	cw := &crc32Writer{w: stream, hash: h}

	columns := []struct {
		name  string
		write func() error
	}{
		{"IDs", func() error { return writeUint32Slice(cw, ids) }},
		{"NS", func() error { return writeInt32Slice(cw, ns) }},
		{"Flags", func() error { _, err := cw.Write(flags); return err }},
		{"FwdStart", func() error { return writeUint32Slice(cw, fwdStart) }},
		{"FwdEnd", func() error { return writeUint32Slice(cw, fwdEnd) }},
		{"BwdStart", func() error { return writeUint32Slice(cw, bwdStart) }},
		{"BwdEnd", func() error { return writeUint32Slice(cw, bwdEnd) }},
		{"TitleOffsets", func() error { return writeUint32Slice(cw, titleOffsets) }},
		{"Titles", func() error { return writeTitles(cw, g.Nodes) }},
		{"FwdEdges", func() error { return writeUint32Slice(cw, g.FwdEdges) }},
		{"BwdEdges", func() error { return writeUint32Slice(cw, g.BwdEdges) }},
	}
	for _, c := range columns {
		if err := c.write(); err != nil {
			return fmt.Errorf("write %s: %w", c.name, err)
		}
	}

	// CRC32 trailer, outside the checksum.
	if err := binary.Write(stream, binary.LittleEndian, h.Sum32()); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("close %s stream: %w", codec, err)
	}
	return nil
}

// ReadBinary deserializes a graph from a local file.
func ReadBinary(path string) (*Graph, error) {
	var g *Graph
	err := withFileReader(path, func(r io.Reader) error {
		var err error
		g, err = Decode(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Decode reads a graph written by Encode and validates it.
func Decode(r io.Reader) (*Graph, error) {
	h := crc32.NewIEEE()

	// Read and validate header.
	var hdr fileHeader
	if err := binary.Read(&crc32Reader{r: r, hash: h}, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("%w: NumNodes %d, limit %d", ErrLimitExceeded, hdr.NumNodes, maxNodes)
	}
	if hdr.NumFwdEdges > maxEdges || hdr.NumBwdEdges > maxEdges {
		return nil, fmt.Errorf("%w: edge count exceeds %d", ErrLimitExceeded, maxEdges)
	}
	if hdr.TitleBytes > maxTitleBytes {
		return nil, fmt.Errorf("%w: TitleBytes %d", ErrLimitExceeded, hdr.TitleBytes)
	}

	stream, err := Codec(hdr.Codec).decompressor(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	cr := &crc32Reader{r: stream, hash: h}

	n := int(hdr.NumNodes)
	var (
		ids, fwdStart, fwdEnd, bwdStart, bwdEnd, titleOffsets []uint32
		ns                                                    []int32
		flags, titles                                         []byte
		fwdEdges, bwdEdges                                    []uint32
	)
	columns := []struct {
		name string
		read func() error
	}{
		{"IDs", func() (err error) { ids, err = readUint32Slice(cr, n); return }},
		{"NS", func() (err error) { ns, err = readInt32Slice(cr, n); return }},
		{"Flags", func() (err error) { flags, err = readBytes(cr, n); return }},
		{"FwdStart", func() (err error) { fwdStart, err = readUint32Slice(cr, n); return }},
		{"FwdEnd", func() (err error) { fwdEnd, err = readUint32Slice(cr, n); return }},
		{"BwdStart", func() (err error) { bwdStart, err = readUint32Slice(cr, n); return }},
		{"BwdEnd", func() (err error) { bwdEnd, err = readUint32Slice(cr, n); return }},
		{"TitleOffsets", func() (err error) { titleOffsets, err = readUint32Slice(cr, n+1); return }},
		{"Titles", func() (err error) { titles, err = readBytes(cr, int(hdr.TitleBytes)); return }},
		{"FwdEdges", func() (err error) { fwdEdges, err = readUint32Slice(cr, int(hdr.NumFwdEdges)); return }},
		{"BwdEdges", func() (err error) { bwdEdges, err = readUint32Slice(cr, int(hdr.NumBwdEdges)); return }},
	}
	for _, c := range columns {
		if err := c.read(); err != nil {
			return nil, fmt.Errorf("read %s: %w", c.name, err)
		}
	}

	// Read and validate CRC32.
	expectedCRC := h.Sum32()
	var storedCRC uint32
	if err := binary.Read(stream, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("%w: stored=%08x computed=%08x", ErrChecksum, storedCRC, expectedCRC)
	}

	// Titles share one backing string; each node holds a substring of it.
	if err := validateOffsets(titleOffsets, hdr.TitleBytes); err != nil {
		return nil, err
	}
	allTitles := string(titles)

	g := &Graph{
		Nodes:    make([]Node, n),
		FwdEdges: fwdEdges,
		BwdEdges: bwdEdges,
	}
	for i := range g.Nodes {
		g.Nodes[i] = Node{
			ID:            ids[i],
			NS:            ns[i],
			Title:         allTitles[titleOffsets[i]:titleOffsets[i+1]],
			IsRedirect:    flags[i]&flagRedirect != 0,
			IsDateRelated: flags[i]&flagDateRelated != 0,
			IsListArticle: flags[i]&flagListArticle != 0,
			Fwd:           Range{Start: fwdStart[i], End: fwdEnd[i]},
			Bwd:           Range{Start: bwdStart[i], End: bwdEnd[i]},
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func packFlags(n *Node) byte {
	var f byte
	if n.IsRedirect {
		f |= flagRedirect
	}
	if n.IsDateRelated {
		f |= flagDateRelated
	}
	if n.IsListArticle {
		f |= flagListArticle
	}
	return f
}

// validateOffsets checks that title offsets are monotone and end at total.
func validateOffsets(offsets []uint32, total uint64) error {
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("%w: title offsets not monotonic at %d: %d < %d", ErrInvalidGraph, i, offsets[i], offsets[i-1])
		}
	}
	if uint64(offsets[len(offsets)-1]) != total {
		return fmt.Errorf("%w: last title offset %d != %d title bytes", ErrInvalidGraph, offsets[len(offsets)-1], total)
	}
	return nil
}

func writeTitles(w io.Writer, nodes []Node) error {
	for i := range nodes {
		if _, err := io.WriteString(w, nodes[i].Title); err != nil {
			return err
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice. The on-disk byte order is the
// host's, which is little-endian on every platform we build for.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeInt32Slice(w io.Writer, s []int32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt32Slice(r io.Reader, n int) ([]int32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash hash.Hash32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash hash.Hash32
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
