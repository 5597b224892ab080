package matrix

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// DiskMat is a random-access accessor over a row-major, headerless
// float64-or-float32 matrix on disk, per spec §6 "Distance-matrix on disk":
// "Row-major contiguous f32/f64 of shape (nrows, ncols) ... No header —
// dimensions come from the caller." The local-search searcher treats the
// distance matrix this way so it "makes no assumption about in-core
// residency" (spec §5) and can operate on matrices too large to load
// entirely into memory.
//
// DiskMat reads through the OS page cache via ReadAt rather than an
// explicit mmap syscall, which keeps it portable across platforms while
// preserving the same "random-access 2D accessor, caller supplies
// dimensions" contract; repeatedly read pages stay resident in the page
// cache exactly as a real mmap would leave them, so the access pattern
// recommended by spec §5 (sequential row scans within evaluate_swap) gets
// the same locality benefit.
type DiskMat struct {
	f         *os.File
	rows, cols int
	elemSize   int // 4 for float32, 8 for float64
	f32        bool
}

var _ Matrix = (*DiskMat)(nil)

// OpenDiskMat opens an existing on-disk matrix of the given shape. f32
// selects the 4-byte float32 element width; otherwise float64 (8 bytes) is
// assumed, matching the "f = 4 for float32, 8 for float64, fixed by build"
// element-width note in spec §6.
func OpenDiskMat(path string, rows, cols int, f32 bool) (*DiskMat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("matrix.OpenDiskMat: %w", err)
	}
	elemSize := 8
	if f32 {
		elemSize = 4
	}
	return &DiskMat{f: f, rows: rows, cols: cols, elemSize: elemSize, f32: f32}, nil
}

// CreateDiskMat creates a new zero-initialized on-disk matrix of the given
// shape and element width, ready for Set calls during construction (e.g.
// populating it from a ShortestPaths computation row by row).
func CreateDiskMat(path string, rows, cols int, f32 bool) (*DiskMat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("matrix.CreateDiskMat: %w", err)
	}
	elemSize := 8
	if f32 {
		elemSize = 4
	}
	if err := f.Truncate(int64(rows) * int64(cols) * int64(elemSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("matrix.CreateDiskMat: %w", err)
	}
	return &DiskMat{f: f, rows: rows, cols: cols, elemSize: elemSize, f32: f32}, nil
}

// Close releases the underlying file handle.
func (m *DiskMat) Close() error { return m.f.Close() }

// Rows returns the row count.
func (m *DiskMat) Rows() int { return m.rows }

// Cols returns the column count.
func (m *DiskMat) Cols() int { return m.cols }

func (m *DiskMat) offset(row, col int) int64 {
	return (int64(row)*int64(m.cols) + int64(col)) * int64(m.elemSize)
}

// At reads the element at (row, col) directly from disk (through the page
// cache).
func (m *DiskMat) At(row, col int) (float64, error) {
	if err := boundsCheck("At", row, col, m.rows, m.cols); err != nil {
		return 0, err
	}
	buf := make([]byte, m.elemSize)
	if _, err := m.f.ReadAt(buf, m.offset(row, col)); err != nil {
		return 0, fmt.Errorf("matrix.DiskMat.At: %w", err)
	}
	if m.f32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// Set writes v at (row, col).
func (m *DiskMat) Set(row, col int, v float64) error {
	if err := boundsCheck("Set", row, col, m.rows, m.cols); err != nil {
		return err
	}
	buf := make([]byte, m.elemSize)
	if m.f32 {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	} else {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	}
	if _, err := m.f.WriteAt(buf, m.offset(row, col)); err != nil {
		return fmt.Errorf("matrix.DiskMat.Set: %w", err)
	}
	return nil
}

// SetRow writes an entire row in one buffered call, used by ShortestPaths
// producers that compute one source's distances at a time.
func (m *DiskMat) SetRow(row int, values []float64) error {
	if row < 0 || row >= m.rows {
		return fmt.Errorf("matrix.DiskMat.SetRow(%d): %w", row, ErrOutOfRange)
	}
	if len(values) != m.cols {
		return ErrDimensionMismatch
	}
	w := bufio.NewWriterSize(&sectionWriter{m.f, m.offset(row, 0)}, m.elemSize*m.cols)
	buf := make([]byte, m.elemSize)
	for _, v := range values {
		if m.f32 {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		} else {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("matrix.DiskMat.SetRow: %w", err)
		}
	}
	return w.Flush()
}

// sectionWriter adapts an *os.File + fixed start offset into an io.Writer
// that writes sequentially from that offset, so bufio.Writer can batch the
// per-element WriteAt calls SetRow would otherwise make one at a time.
type sectionWriter struct {
	f      *os.File
	offset int64
}

func (s *sectionWriter) Write(p []byte) (int, error) {
	n, err := s.f.WriteAt(p, s.offset)
	s.offset += int64(n)
	return n, err
}
