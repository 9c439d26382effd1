package dump

import (
	"context"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/Borislavv/go-freq-sketch/config"
	"github.com/Borislavv/go-freq-sketch/internal/freq"
	"github.com/stretchr/testify/require"
)

func hashOf(i int) uint32 {
	x := uint64(i)*0x9E3779B97F4A7C15 + 0x632BE59BD9B4E019
	x ^= x >> 29
	return uint32(x)
}

func populatedTable(t *testing.T) *freq.Table {
	t.Helper()
	tbl, err := freq.NewTable(256, 0)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		tbl.Increment(hashOf(i % 100))
	}
	return tbl
}

// TestDump_RoundTrip verifies estimates survive a dump/load cycle exactly.
func TestDump_RoundTrip(t *testing.T) {
	for _, gzipOn := range []bool{false, true} {
		name := "plain"
		if gzipOn {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			cfg := &config.DumpCfg{
				Dir:          t.TempDir(),
				Name:         "sketch",
				Gzip:         gzipOn,
				Crc32Control: true,
			}

			src := populatedTable(t)
			require.NoError(t, New(cfg, src).Dump(context.Background()))

			dst, err := freq.NewTable(1, 0)
			require.NoError(t, err)
			require.NoError(t, New(cfg, dst).Load(context.Background()))

			require.Equal(t, src.Len(), dst.Len())
			for i := 0; i < 100; i++ {
				require.Equal(t, src.Estimate(hashOf(i)), dst.Estimate(hashOf(i)))
			}
		})
	}
}

// TestDump_DisabledReturnsSentinel verifies the nil-config path.
func TestDump_DisabledReturnsSentinel(t *testing.T) {
	d := New(nil, populatedTable(t))
	require.ErrorIs(t, d.Dump(context.Background()), ErrDumpNotEnabled)
	require.ErrorIs(t, d.Load(context.Background()), ErrDumpNotEnabled)
}

// TestLoad_DetectsCorruption verifies crc32 control catches payload damage.
func TestLoad_DetectsCorruption(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch", Crc32Control: true}

	src := populatedTable(t)
	require.NoError(t, New(cfg, src).Dump(context.Background()))

	// Flip one payload byte past the header.
	path := filepath.Join(cfg.Dir, "sketch.dump")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[100] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	dst, err := freq.NewTable(1, 0)
	require.NoError(t, err)
	require.ErrorContains(t, New(cfg, dst).Load(context.Background()), "crc32 mismatch")
}

// TestLoad_RejectsBadMagic verifies foreign files are refused.
func TestLoad_RejectsBadMagic(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch"}
	path := filepath.Join(cfg.Dir, "sketch.dump")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	dst, err := freq.NewTable(1, 0)
	require.NoError(t, err)
	require.ErrorContains(t, New(cfg, dst).Load(context.Background()), "bad magic")
}

// TestLoad_MissingFile verifies a clean error when no dump exists yet.
func TestLoad_MissingFile(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch"}
	dst, err := freq.NewTable(1, 0)
	require.NoError(t, err)
	require.Error(t, New(cfg, dst).Load(context.Background()))
}

// buildRawDump writes a dump file byte-for-byte for header validation tests.
func buildRawDump(t *testing.T, path string, slotCount, tally uint64, multiplier uint32, payload []byte) {
	t.Helper()
	header := make([]byte, 32)
	copy(header[0:4], "FSK1")
	binary.LittleEndian.PutUint32(header[4:8], 1)
	binary.LittleEndian.PutUint64(header[8:16], slotCount)
	binary.LittleEndian.PutUint64(header[16:24], tally)
	binary.LittleEndian.PutUint32(header[24:28], multiplier)
	binary.LittleEndian.PutUint32(header[28:32], crc32.ChecksumIEEE(payload))
	require.NoError(t, os.WriteFile(path, append(header, payload...), 0o644))
}

// TestLoad_RejectsImplausibleSlotCount verifies a corrupt or hostile header
// slot count fails with an error instead of driving a huge allocation.
func TestLoad_RejectsImplausibleSlotCount(t *testing.T) {
	tests := []struct {
		name      string
		slotCount uint64
	}{
		{"huge", 1 << 60},
		{"zero", 0},
		{"not_pow2", 3},
		{"at_cap", 1 << 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch"}
			buildRawDump(t, filepath.Join(cfg.Dir, "sketch.dump"), tt.slotCount, 0, 10, nil)

			dst, err := freq.NewTable(1, 0)
			require.NoError(t, err)
			require.ErrorContains(t, New(cfg, dst).Load(context.Background()),
				"implausible slot count")
		})
	}
}

// TestLoad_RejectsSampleMultiplierMismatch verifies a dump taken under one
// aging window cannot silently land in a table with another.
func TestLoad_RejectsSampleMultiplierMismatch(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch"}

	src, err := freq.NewTable(256, 12)
	require.NoError(t, err)
	src.Increment(hashOf(1))
	require.NoError(t, New(cfg, src).Dump(context.Background()))

	dst, err := freq.NewTable(1, 0) // default multiplier 10
	require.NoError(t, err)
	require.ErrorContains(t, New(cfg, dst).Load(context.Background()),
		"sample multiplier mismatch")
}

// TestDump_HighTallyRoundTrip verifies a tally past the default window is
// accepted when source and destination share the same multiplier.
func TestDump_HighTallyRoundTrip(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch", Crc32Control: true}

	src, err := freq.NewTable(16, 12) // window = 16 * 12 = 192
	require.NoError(t, err)
	for i := 0; i < 170; i++ {
		src.Increment(hashOf(i))
	}
	_, tally := src.Snapshot()
	require.GreaterOrEqual(t, tally, 160, "tally must sit past the default 10x window")

	require.NoError(t, New(cfg, src).Dump(context.Background()))

	dst, err := freq.NewTable(1, 12)
	require.NoError(t, err)
	require.NoError(t, New(cfg, dst).Load(context.Background()))

	_, got := dst.Snapshot()
	require.Equal(t, tally, got)
}

// TestDump_FailedWriteLeavesNoTmp verifies failed dumps remove their tmp file.
func TestDump_FailedWriteLeavesNoTmp(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch"}

	// A directory squatting on the target name makes the final rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(cfg.Dir, "sketch.dump"), 0o755))

	require.Error(t, New(cfg, populatedTable(t)).Dump(context.Background()))

	_, err := os.Stat(filepath.Join(cfg.Dir, "sketch.dump.tmp"))
	require.True(t, os.IsNotExist(err), "tmp file must be removed on failure")
}

// TestDump_CancelledContext verifies ctx cancellation is honored up front.
func TestDump_CancelledContext(t *testing.T) {
	cfg := &config.DumpCfg{Dir: t.TempDir(), Name: "sketch"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, New(cfg, populatedTable(t)).Dump(ctx), context.Canceled)
}
