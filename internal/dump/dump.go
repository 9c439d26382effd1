package dump

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Borislavv/go-freq-sketch/config"
	"github.com/rs/zerolog/log"
)

var ErrDumpNotEnabled = errors.New("dump mode is not enabled")

// File layout: magic, version, slot count, tally, sample multiplier, payload
// CRC32 (zero when disabled), then the packed slots, all little-endian. The
// payload is the exact counter table bit layout, so a loaded sketch
// estimates identically. The multiplier travels with the file because the
// tally is only meaningful relative to the aging window it was taken under.
var magic = [4]byte{'F', 'S', 'K', '1'}

const (
	formatVersion = 1
	headerSize    = 32

	// maxSlotCount bounds the allocation driven by an untrusted header.
	// 1<<32 slots is already a 32GiB table, far past any sane config.
	maxSlotCount = 1 << 32
)

// Source is sketch state the dumper persists and restores.
type Source interface {
	Snapshot() ([]uint64, int)
	Restore(slots []uint64, tally int) error
	SampleMultiplier() int
}

type Dumper interface {
	Dump(ctx context.Context) error
	Load(ctx context.Context) error
}

type Dump struct {
	cfg *config.DumpCfg
	src Source
}

func New(cfg *config.DumpCfg, src Source) *Dump {
	return &Dump{cfg: cfg, src: src}
}

// Dump writes the current table snapshot to disk via a tmp file and an
// atomic rename, so a crash mid-write never corrupts a previous dump.
// A failed write removes its tmp file.
func (d *Dump) Dump(ctx context.Context) error {
	start := time.Now()
	if !d.cfg.Enabled() {
		return ErrDumpNotEnabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}

	name := d.fileName()
	tmp := name + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create dump file %s: %w", tmp, err)
	}
	discard := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	var (
		writer io.Writer = f
		gw     *gzip.Writer
	)
	if d.cfg.Gzip {
		gw = gzip.NewWriter(f)
		writer = gw
	}
	bw := bufio.NewWriterSize(writer, 512*1024)

	slots, tally := d.src.Snapshot()
	payload := encodeSlots(slots)

	var crc uint32
	if d.cfg.Crc32Control {
		crc = crc32.ChecksumIEEE(payload)
	}

	var header [headerSize]byte
	copy(header[0:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(slots)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(tally))
	binary.LittleEndian.PutUint32(header[24:28], uint32(d.src.SampleMultiplier()))
	binary.LittleEndian.PutUint32(header[28:32], crc)

	if _, err = bw.Write(header[:]); err != nil {
		discard()
		return fmt.Errorf("write dump header: %w", err)
	}
	if _, err = bw.Write(payload); err != nil {
		discard()
		return fmt.Errorf("write dump payload: %w", err)
	}

	if err = bw.Flush(); err != nil {
		discard()
		return fmt.Errorf("flush dump: %w", err)
	}
	if gw != nil {
		if err = gw.Close(); err != nil {
			discard()
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close dump file: %w", err)
	}
	if err = os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename dump file: %w", err)
	}

	log.Info().
		Int("slots", len(slots)).
		Str("file", name).
		Str("elapsed", time.Since(start).String()).
		Msg("sketch dump finished")

	return nil
}

// Load reads the latest dump and restores it into the source wholesale.
// Header fields are untrusted: the slot count is bounds-checked before any
// allocation and the sample multiplier must match the destination table's.
func (d *Dump) Load(ctx context.Context) error {
	start := time.Now()
	if !d.cfg.Enabled() {
		return ErrDumpNotEnabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := d.fileName()
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open dump file %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if d.cfg.Gzip {
		gr, gerr := gzip.NewReader(f)
		if gerr != nil {
			return fmt.Errorf("open gzip reader: %w", gerr)
		}
		defer func() { _ = gr.Close() }()
		reader = gr
	}
	br := bufio.NewReaderSize(reader, 512*1024)

	var header [headerSize]byte
	if _, err = io.ReadFull(br, header[:]); err != nil {
		return fmt.Errorf("read dump header: %w", err)
	}
	if [4]byte(header[0:4]) != magic {
		return fmt.Errorf("dump file %s: bad magic", name)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != formatVersion {
		return fmt.Errorf("dump file %s: unsupported version %d", name, v)
	}

	slotCount := binary.LittleEndian.Uint64(header[8:16])
	tally := binary.LittleEndian.Uint64(header[16:24])
	multiplier := binary.LittleEndian.Uint32(header[24:28])
	crc := binary.LittleEndian.Uint32(header[28:32])

	if slotCount == 0 || slotCount >= maxSlotCount || slotCount&(slotCount-1) != 0 {
		return fmt.Errorf("dump file %s: implausible slot count %d", name, slotCount)
	}
	if want := d.src.SampleMultiplier(); int(multiplier) != want {
		return fmt.Errorf("dump file %s: sample multiplier mismatch: dump %d, table %d",
			name, multiplier, want)
	}

	payload := make([]byte, slotCount*8)
	if _, err = io.ReadFull(br, payload); err != nil {
		return fmt.Errorf("read dump payload: %w", err)
	}
	if d.cfg.Crc32Control && crc != crc32.ChecksumIEEE(payload) {
		return fmt.Errorf("dump file %s: crc32 mismatch", name)
	}

	if err = d.src.Restore(decodeSlots(payload), int(tally)); err != nil {
		return fmt.Errorf("restore sketch from %s: %w", name, err)
	}

	log.Info().
		Int("slots", int(slotCount)).
		Str("file", name).
		Str("elapsed", time.Since(start).String()).
		Msg("sketch dump loaded")

	return nil
}

func (d *Dump) fileName() string {
	ext := ".dump"
	if d.cfg.Gzip {
		ext += ".gz"
	}
	return filepath.Join(d.cfg.Dir, d.cfg.Name+ext)
}

func encodeSlots(slots []uint64) []byte {
	out := make([]byte, len(slots)*8)
	for i, s := range slots {
		binary.LittleEndian.PutUint64(out[i*8:], s)
	}
	return out
}

func decodeSlots(payload []byte) []uint64 {
	out := make([]uint64, len(payload)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(payload[i*8:])
	}
	return out
}
