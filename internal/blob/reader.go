package blob

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/fxamacker/cbor/v2"
	"github.com/nanotrie/subword/internal/errs"
)

// Mapped is an Artifact restored from a memory-mapped blob file. Close
// unmaps the underlying pages; the Artifact must not be used afterward.
type Mapped struct {
	*Artifact
	data mmap.MMap
	file *os.File
}

// Close releases the memory mapping and underlying file handle.
func (m *Mapped) Close() error {
	if err := m.data.Unmap(); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: unmapping")
	}
	return m.file.Close()
}

// Open memory-maps path (github.com/edsrzf/mmap-go) and restores an
// Artifact from it. The region directory indexes directly into the mapped
// pages: FeatureStrings aliases the mapping with no copy; CharToID and
// Features are decoded into freshly allocated slices since their element
// type (int32 / fixed-size records) cannot be reinterpreted from raw
// little-endian bytes without an unsafe cast.
func Open(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.IoFailed, err, "blob: opening sink")
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.IoFailed, err, "blob: mapping sink")
	}

	a, err := parse([]byte(data))
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}

	return &Mapped{Artifact: a, data: data, file: f}, nil
}

type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, errs.New(errs.CorruptBlob, "blob: truncated while reading u32")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, errs.New(errs.CorruptBlob, "blob: truncated while reading bytes")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) lenPrefixedString() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parse(buf []byte) (*Artifact, error) {
	r := &byteReader{buf: buf}

	m, err := r.u32()
	if err != nil {
		return nil, err
	}
	if m != magic {
		return nil, errs.New(errs.CorruptBlob, "blob: bad magic")
	}
	version, err := r.u32()
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, errs.Newf(errs.CorruptBlob, "blob: unsupported version %d", version)
	}
	numRegions, err := r.u32()
	if err != nil {
		return nil, err
	}

	regions := make([]Region, numRegions)
	for i := range regions {
		reg, err := readDirectoryEntry(r)
		if err != nil {
			return nil, err
		}
		regions[i] = reg
	}

	dataStart := r.pos
	byName := make(map[string]Region, len(regions))
	for _, reg := range regions {
		byName[reg.Name] = reg
		end := dataStart + int(reg.Offset) + int(reg.ByteLength)
		if end > len(buf) || dataStart+int(reg.Offset) < 0 {
			return nil, errs.Newf(errs.CorruptBlob, "blob: region %q out of bounds", reg.Name)
		}
	}

	a := &Artifact{}

	if reg, ok := byName[RegionCharToID]; ok {
		body := buf[dataStart+int(reg.Offset) : dataStart+int(reg.Offset)+int(reg.ByteLength)]
		if len(body)%4 != 0 {
			return nil, errs.New(errs.CorruptBlob, "blob: char_to_id region misaligned")
		}
		a.CharToID = make([]int32, len(body)/4)
		for i := range a.CharToID {
			a.CharToID[i] = int32(binary.LittleEndian.Uint32(body[i*4 : i*4+4]))
		}
	}

	if reg, ok := byName[RegionFeatureStrings]; ok {
		a.FeatureStrings = buf[dataStart+int(reg.Offset) : dataStart+int(reg.Offset)+int(reg.ByteLength)]
	}

	if reg, ok := byName[RegionFeatures]; ok {
		body := buf[dataStart+int(reg.Offset) : dataStart+int(reg.Offset)+int(reg.ByteLength)]
		if len(body)%featureRecordSize != 0 {
			return nil, errs.New(errs.CorruptBlob, "blob: features region misaligned")
		}
		n := len(body) / featureRecordSize
		a.Features = make([]FeatureRecord, n)
		for i := 0; i < n; i++ {
			off := i * featureRecordSize
			a.Features[i] = FeatureRecord{
				PosID:  int32(binary.LittleEndian.Uint32(body[off : off+4])),
				Offset: binary.LittleEndian.Uint32(body[off+4 : off+8]),
				Length: binary.LittleEndian.Uint32(body[off+8 : off+12]),
			}
			if int(a.Features[i].Offset+a.Features[i].Length) > len(a.FeatureStrings) {
				return nil, errs.Newf(errs.CorruptBlob, "blob: feature %d string span out of bounds", i)
			}
		}
	}

	// Advance past the region data payloads to reach the metadata trailer.
	var dataLen uint32
	for _, reg := range regions {
		if reg.Offset+reg.ByteLength > dataLen {
			dataLen = reg.Offset + reg.ByteLength
		}
	}
	r.pos = dataStart + int(dataLen)

	metaLen, err := r.u32()
	if err != nil {
		return nil, errs.Wrap(errs.CorruptBlob, err, "blob: reading metadata length")
	}
	metaBytes, err := r.bytes(int(metaLen))
	if err != nil {
		return nil, errs.Wrap(errs.CorruptBlob, err, "blob: reading metadata")
	}
	meta := map[string]string{}
	if err := cbor.Unmarshal(metaBytes, &meta); err != nil {
		return nil, errs.Wrap(errs.CorruptBlob, err, "blob: decoding metadata")
	}
	a.Metadata = meta

	return a, nil
}

func readDirectoryEntry(r *byteReader) (Region, error) {
	name, err := r.lenPrefixedString()
	if err != nil {
		return Region{}, err
	}
	dtype, err := r.lenPrefixedString()
	if err != nil {
		return Region{}, err
	}
	offset, err := r.u32()
	if err != nil {
		return Region{}, err
	}
	byteLength, err := r.u32()
	if err != nil {
		return Region{}, err
	}
	shapeLen, err := r.u32()
	if err != nil {
		return Region{}, err
	}
	shape := make([]uint32, shapeLen)
	for i := range shape {
		dim, err := r.u32()
		if err != nil {
			return Region{}, err
		}
		shape[i] = dim
	}
	return Region{Name: name, DType: dtype, Offset: offset, ByteLength: byteLength, Shape: shape}, nil
}
