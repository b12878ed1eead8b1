package taskindex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"slices"
	"time"

	"github.com/natefinch/atomic"
)

// Snapshot format constants. The blob is header, records sorted by id,
// then a checksum footer:
//
//	[0:4)   magic "TIX1"
//	[4:6)   codec version, little-endian uint16
//	[6:14)  index version, little-endian uint64
//	[14:18) record count, little-endian uint32
//	...     records, variable length
//	[-8:-4) CRC-32C of everything before the footer
//	[-4:)   bitwise NOT of the CRC, so a zeroed tail never verifies
const (
	snapshotMagic      = "TIX1"
	snapshotVersion    = 1
	snapshotHeaderSize = 18
	snapshotFooterSize = 8

	maxString1 = 255
	maxString2 = 65535
)

// snapCRC is the checksum table for the snapshot footer.
var snapCRC = crc32.MakeTable(crc32.Castagnoli) //nolint:gochecknoglobals

// Serialize encodes the primary mapping and the version counter into a
// self-verifying binary blob. Secondary indices, the front cache and its
// counters are derived state and deliberately not included; Deserialize
// rebuilds them.
//
// Records are encoded in id order, so equal index contents always produce
// byte-identical blobs.
func (idx *Index) Serialize() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make([]string, 0, len(idx.tasks))
	for id := range idx.tasks {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	w := &snapWriter{}
	w.buf.WriteString(snapshotMagic)
	w.writeUint16(snapshotVersion)
	w.writeUint64(idx.version)
	w.writeUint32(uint32(len(ids)))

	for _, id := range ids {
		encodeRecord(w, idx.tasks[id])
	}

	if w.err != nil {
		return nil, fmt.Errorf("serialize: %w", w.err)
	}

	crc := crc32.Checksum(w.buf.Bytes(), snapCRC)
	w.writeUint32(crc)
	w.writeUint32(^crc)

	return w.buf.Bytes(), nil
}

// Deserialize replaces the entire index state with the contents of a
// blob produced by [Index.Serialize]. The blob is validated in full
// before any state is touched, so a malformed blob leaves the index
// unchanged and returns [ErrSnapshotDecode].
//
// Records are replayed through the normal insert path, which rebuilds
// every secondary index. The front cache is purged and its counters
// reset; the version counter is restored verbatim.
func (idx *Index) Deserialize(data []byte) error {
	recs, version, err := decodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotDecode, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tasks = make(map[string]*Record, len(recs))
	idx.files = make(map[string]idSet)
	idx.statuses = make(map[Status]idSet)
	idx.projects = make(map[string]idSet)
	idx.priorities = make(map[Priority]idSet)
	idx.due.Clear(false)
	idx.cache.Purge()
	idx.hits = 0
	idx.misses = 0

	for i := range recs {
		idx.insertLocked(recs[i])
	}

	idx.version = version

	return nil
}

// WriteSnapshot serializes the index and atomically replaces the file at
// path, so readers never observe a partially written snapshot.
func (idx *Index) WriteSnapshot(path string) error {
	data, err := idx.Serialize()
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	return nil
}

// ReadSnapshot loads the blob at path into the index. Missing files
// surface as the underlying os error; malformed contents as
// [ErrSnapshotDecode]. Either way the index is left unchanged on failure.
func (idx *Index) ReadSnapshot(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	return idx.Deserialize(data)
}

func encodeRecord(w *snapWriter, rec *Record) {
	w.writeString1("id", rec.ID)
	w.writeString2("file", rec.File)
	w.writeUint32(uint32(rec.Line))
	w.writeByte(byte(rec.Status))
	w.writeString2("text", rec.Text)
	w.writeString1("project", rec.Project)
	w.writeUint16(uint16(rec.Due.Year))
	w.writeByte(byte(rec.Due.Month))
	w.writeByte(byte(rec.Due.Day))
	w.writeByte(byte(rec.Priority))
	w.writeTime(rec.Created)
	w.writeTime(rec.Updated)
	w.writeTime(rec.Completed)

	w.writeUint16(uint16(len(rec.Tags)))
	for _, tag := range rec.Tags {
		w.writeString1("tag", tag)
	}

	keys := make([]string, 0, len(rec.Props))
	for k := range rec.Props {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	w.writeUint16(uint16(len(keys)))
	for _, k := range keys {
		w.writeString1("property key", k)
		w.writeString2("property value", rec.Props[k])
	}
}

func decodeRecord(r *snapReader) Record {
	rec := Record{
		ID:   r.readString1(),
		File: r.readString2(),
		Line: int(r.readUint32()),
	}

	if status := r.readByte(); status <= byte(StatusDone) {
		rec.Status = Status(status)
	} else {
		r.fail("unknown status byte %d", status)
	}

	rec.Text = r.readString2()
	rec.Project = r.readString1()

	year := int(r.readUint16())
	month := int(r.readByte())
	day := int(r.readByte())

	switch {
	case year == 0 && month == 0 && day == 0:
	case month >= 1 && month <= 12 && day >= 1 && day <= 31:
		rec.Due = NewDate(year, time.Month(month), day)
	default:
		r.fail("invalid due date %04d-%02d-%02d", year, month, day)
	}

	if priority := r.readByte(); priority <= byte(PriorityLow) {
		rec.Priority = Priority(priority)
	} else {
		r.fail("unknown priority byte %d", priority)
	}

	rec.Created = r.readTime()
	rec.Updated = r.readTime()
	rec.Completed = r.readTime()

	if n := int(r.readUint16()); n > 0 && r.err == nil {
		rec.Tags = make([]string, 0, n)
		for i := 0; i < n; i++ {
			rec.Tags = append(rec.Tags, r.readString1())
		}
	}

	if n := int(r.readUint16()); n > 0 && r.err == nil {
		rec.Props = make(map[string]string, n)
		for i := 0; i < n; i++ {
			k := r.readString1()
			rec.Props[k] = r.readString2()
		}
	}

	if rec.ID == "" && r.err == nil {
		r.fail("record id is empty")
	}

	return rec
}

// decodeSnapshot validates the checksum footer and header, then decodes
// every record. No partial results: either the whole blob parses or an
// error describes the first defect.
func decodeSnapshot(data []byte) ([]Record, uint64, error) {
	if len(data) < snapshotHeaderSize+snapshotFooterSize {
		return nil, 0, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}

	body := data[:len(data)-snapshotFooterSize]
	footer := data[len(data)-snapshotFooterSize:]

	crc := binary.LittleEndian.Uint32(footer[0:4])
	crcInv := binary.LittleEndian.Uint32(footer[4:8])

	if ^crc != crcInv {
		return nil, 0, errors.New("checksum footer mismatch")
	}

	if got := crc32.Checksum(body, snapCRC); got != crc {
		return nil, 0, fmt.Errorf("checksum mismatch: stored %08x, computed %08x", crc, got)
	}

	r := &snapReader{data: body}

	if magic := string(r.take(4)); magic != snapshotMagic {
		return nil, 0, fmt.Errorf("bad magic %q", magic)
	}

	if v := r.readUint16(); v != snapshotVersion {
		return nil, 0, fmt.Errorf("unsupported snapshot version %d", v)
	}

	version := r.readUint64()

	count := int(r.readUint32())
	if count > len(body) {
		return nil, 0, fmt.Errorf("record count %d exceeds snapshot size", count)
	}

	recs := make([]Record, 0, count)

	for i := 0; i < count; i++ {
		rec := decodeRecord(r)
		if r.err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", i, r.err)
		}

		recs = append(recs, rec)
	}

	if r.pos != len(body) {
		return nil, 0, fmt.Errorf("%d trailing bytes after %d records", len(body)-r.pos, count)
	}

	return recs, version, nil
}

// snapWriter appends little-endian fields to a buffer. The first
// over-limit string sticks as err; later writes become no-ops.
type snapWriter struct {
	buf bytes.Buffer
	err error
}

func (w *snapWriter) writeByte(b byte) {
	if w.err != nil {
		return
	}

	w.buf.WriteByte(b)
}

func (w *snapWriter) writeUint16(v uint16) {
	if w.err != nil {
		return
	}

	var b [2]byte

	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *snapWriter) writeUint32(v uint32) {
	if w.err != nil {
		return
	}

	var b [4]byte

	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *snapWriter) writeUint64(v uint64) {
	if w.err != nil {
		return
	}

	var b [8]byte

	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// writeTime encodes t as Unix nanoseconds. The zero time encodes as 0 so
// "never completed" survives a round trip.
func (w *snapWriter) writeTime(t time.Time) {
	if t.IsZero() {
		w.writeUint64(0)

		return
	}

	w.writeUint64(uint64(t.UnixNano()))
}

func (w *snapWriter) writeString1(field, s string) {
	if w.err != nil {
		return
	}

	if len(s) > maxString1 {
		w.err = fmt.Errorf("%s exceeds %d bytes", field, maxString1)

		return
	}

	w.buf.WriteByte(byte(len(s)))
	w.buf.WriteString(s)
}

func (w *snapWriter) writeString2(field, s string) {
	if w.err != nil {
		return
	}

	if len(s) > maxString2 {
		w.err = fmt.Errorf("%s exceeds %d bytes", field, maxString2)

		return
	}

	w.writeUint16(uint16(len(s)))
	w.buf.WriteString(s)
}

// snapReader consumes little-endian fields from a byte slice. The first
// truncation or malformed field sticks as err; later reads return zero
// values.
type snapReader struct {
	data []byte
	pos  int
	err  error
}

func (r *snapReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

func (r *snapReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}

	if r.pos+n > len(r.data) {
		r.fail("truncated at byte %d", r.pos)

		return nil
	}

	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b
}

func (r *snapReader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *snapReader) readUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint16(b)
}

func (r *snapReader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *snapReader) readUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint64(b)
}

func (r *snapReader) readTime() time.Time {
	n := r.readUint64()
	if n == 0 {
		return time.Time{}
	}

	return time.Unix(0, int64(n))
}

func (r *snapReader) readString1() string {
	length := int(r.readByte())

	return string(r.take(length))
}

func (r *snapReader) readString2() string {
	length := int(r.readUint16())

	return string(r.take(length))
}
