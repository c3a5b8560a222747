package blob

import (
	"encoding/binary"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/nanotrie/subword/internal/errs"
)

// WriteOptions controls blob-write side effects not captured by the
// Artifact itself.
type WriteOptions struct {
	// Creator, if empty, defaults to "subword-trainer/<uuid>" (spec.md's
	// DOMAIN STACK "Run identity" decision).
	Creator string
}

// Write serializes a to path: header, region directory, region payloads,
// then a CBOR-encoded metadata trailer. The path is flock'd for the
// duration of the write (github.com/gofrs/flock) so two writers cannot
// step on the same sink concurrently; per spec.md §5, a failed write still
// leaves a partially-written file for the caller to discard.
func Write(path string, a *Artifact, opts WriteOptions) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: acquiring write lock")
	}
	if !locked {
		return errs.New(errs.IoFailed, "blob: sink is locked by another writer")
	}
	defer lock.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: creating sink")
	}
	defer f.Close()

	creator := opts.Creator
	if creator == "" {
		creator = "subword-trainer/" + uuid.NewString()
	}
	meta := make(map[string]string, len(a.Metadata)+1)
	for k, v := range a.Metadata {
		meta[k] = v
	}
	meta["creator"] = creator

	metaBytes, err := cbor.Marshal(meta)
	if err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: encoding metadata")
	}

	regions := buildRegionPayloads(a)

	var dataLen uint32
	for i := range regions {
		regions[i].region.Offset = dataLen
		dataLen += regions[i].region.ByteLength
	}

	headerBuf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(headerBuf[0:4], magic)
	binary.LittleEndian.PutUint32(headerBuf[4:8], formatVersion)
	binary.LittleEndian.PutUint32(headerBuf[8:12], uint32(len(regions)))
	if _, err := f.Write(headerBuf); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing header")
	}

	for _, rp := range regions {
		if err := writeDirectoryEntry(f, rp.region); err != nil {
			return err
		}
	}

	for _, rp := range regions {
		if _, err := f.Write(rp.payload); err != nil {
			return errs.Wrap(errs.IoFailed, err, "blob: writing region payload")
		}
	}

	var metaLenBuf [4]byte
	binary.LittleEndian.PutUint32(metaLenBuf[:], uint32(len(metaBytes)))
	if _, err := f.Write(metaLenBuf[:]); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing metadata length")
	}
	if _, err := f.Write(metaBytes); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing metadata")
	}

	return nil
}

type regionPayload struct {
	region  Region
	payload []byte
}

func buildRegionPayloads(a *Artifact) []regionPayload {
	charToID := make([]byte, len(a.CharToID)*4)
	for i, v := range a.CharToID {
		binary.LittleEndian.PutUint32(charToID[i*4:i*4+4], uint32(v))
	}

	features := make([]byte, len(a.Features)*featureRecordSize)
	for i, r := range a.Features {
		off := i * featureRecordSize
		binary.LittleEndian.PutUint32(features[off:off+4], uint32(r.PosID))
		binary.LittleEndian.PutUint32(features[off+4:off+8], r.Offset)
		binary.LittleEndian.PutUint32(features[off+8:off+12], r.Length)
	}

	return []regionPayload{
		{region: Region{Name: RegionCharToID, DType: "int32", ByteLength: uint32(len(charToID)), Shape: []uint32{uint32(len(a.CharToID))}}, payload: charToID},
		{region: Region{Name: RegionFeatureStrings, DType: "uint8", ByteLength: uint32(len(a.FeatureStrings)), Shape: []uint32{uint32(len(a.FeatureStrings))}}, payload: a.FeatureStrings},
		{region: Region{Name: RegionFeatures, DType: "feature_t", ByteLength: uint32(len(features)), Shape: []uint32{uint32(len(a.Features))}}, payload: features},
	}
}

// writeDirectoryEntry writes one region directory entry: name (length-
// prefixed), dtype (length-prefixed), offset, byte_length, shape (length-
// prefixed u32 array).
func writeDirectoryEntry(f *os.File, r Region) error {
	if err := writeLenPrefixedString(f, r.Name); err != nil {
		return err
	}
	if err := writeLenPrefixedString(f, r.DType); err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], r.Offset)
	binary.LittleEndian.PutUint32(buf[4:8], r.ByteLength)
	if _, err := f.Write(buf[:]); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing region directory entry")
	}

	var shapeLen [4]byte
	binary.LittleEndian.PutUint32(shapeLen[:], uint32(len(r.Shape)))
	if _, err := f.Write(shapeLen[:]); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing region shape length")
	}
	for _, dim := range r.Shape {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], dim)
		if _, err := f.Write(b[:]); err != nil {
			return errs.Wrap(errs.IoFailed, err, "blob: writing region shape dim")
		}
	}
	return nil
}

func writeLenPrefixedString(f *os.File, s string) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := f.Write(lenBuf[:]); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing string length")
	}
	if _, err := f.Write([]byte(s)); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: writing string bytes")
	}
	return nil
}

// headerSize is magic + version + region count, each a u32.
const headerSize = 3 * 4
