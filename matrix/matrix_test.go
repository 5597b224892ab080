package matrix_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/coreset/matrix"
	"github.com/katalvlaran/coreset/oracle"
)

func TestDense_SetAndAt(t *testing.T) {
	d, err := matrix.NewDense(2, 3)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	if err := d.Set(1, 2, 4.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := d.At(1, 2)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got != 4.5 {
		t.Fatalf("At(1,2) = %g, want 4.5", got)
	}
	if _, err := d.At(5, 0); !errors.Is(err, matrix.ErrOutOfRange) {
		t.Fatalf("want ErrOutOfRange, got %v", err)
	}
}

func TestDense_CloneIsIndependent(t *testing.T) {
	d, _ := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	clone := d.Clone()
	if err := clone.Set(0, 0, 99); err != nil {
		t.Fatalf("Set: %v", err)
	}
	orig, _ := d.At(0, 0)
	if orig != 1 {
		t.Fatalf("mutating clone affected original: %g", orig)
	}
}

func TestNewDenseFromRows_RejectsRaggedRows(t *testing.T) {
	if _, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3}}); !errors.Is(err, matrix.ErrDimensionMismatch) {
		t.Fatalf("want ErrDimensionMismatch, got %v", err)
	}
}

func TestSparse_AtMatchesDenseEquivalent(t *testing.T) {
	// Row 0: (1, 5.0); Row 1: empty; Row 2: (0, 2.0), (2, 7.0).
	rowPtr := []int{0, 1, 1, 3}
	colIdx := []int{1, 0, 2}
	values := []float64{5.0, 2.0, 7.0}
	s, err := matrix.NewSparseCSR(3, 3, rowPtr, colIdx, values)
	if err != nil {
		t.Fatalf("NewSparseCSR: %v", err)
	}
	cases := map[[2]int]float64{
		{0, 1}: 5.0,
		{0, 0}: 0,
		{2, 0}: 2.0,
		{2, 2}: 7.0,
		{1, 1}: 0,
	}
	for pos, want := range cases {
		got, err := s.At(pos[0], pos[1])
		if err != nil {
			t.Fatalf("At%v: %v", pos, err)
		}
		if got != want {
			t.Fatalf("At%v = %g, want %g", pos, got, want)
		}
	}
}

func TestSparse_SetIsUnsupported(t *testing.T) {
	s, _ := matrix.NewSparseCSR(1, 1, []int{0, 0}, nil, nil)
	if err := s.Set(0, 0, 1); !errors.Is(err, matrix.ErrNotImplemented) {
		t.Fatalf("want ErrNotImplemented, got %v", err)
	}
}

func TestDenseOracle_RowDistanceMatchesEval(t *testing.T) {
	d, _ := matrix.NewDenseFromRows([][]float64{{0, 0}, {3, 4}})
	o, err := matrix.NewDenseOracle(d, oracle.L2, oracle.NoPrior)
	if err != nil {
		t.Fatalf("NewDenseOracle: %v", err)
	}
	dist, err := o.RowDistance(0, 1)
	if err != nil {
		t.Fatalf("RowDistance: %v", err)
	}
	if math.Abs(dist-5) > 1e-9 {
		t.Fatalf("RowDistance = %g, want 5", dist)
	}
}

func TestDenseOracle_RejectsUnknownMeasure(t *testing.T) {
	d, _ := matrix.NewDenseFromRows([][]float64{{1, 2}})
	if _, err := matrix.NewDenseOracle(d, oracle.Measure(999), oracle.NoPrior); !errors.Is(err, oracle.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestSparseOracle_RowDistanceDensifiesCorrectly(t *testing.T) {
	rowPtr := []int{0, 1, 2}
	colIdx := []int{0, 1}
	values := []float64{3, 4}
	s, _ := matrix.NewSparseCSR(2, 2, rowPtr, colIdx, values)
	o, err := matrix.NewSparseOracle(s, oracle.L1, oracle.NoPrior)
	if err != nil {
		t.Fatalf("NewSparseOracle: %v", err)
	}
	dist, err := o.RowDistance(0, 1)
	if err != nil {
		t.Fatalf("RowDistance: %v", err)
	}
	if dist != 7 {
		t.Fatalf("RowDistance = %g, want 7", dist)
	}
}

func TestPrecomputedOracle_RejectsNonSquare(t *testing.T) {
	d, _ := matrix.NewDense(2, 3)
	if _, err := matrix.NewPrecomputedOracle(d); !errors.Is(err, matrix.ErrNotSquare) {
		t.Fatalf("want ErrNotSquare, got %v", err)
	}
}

func TestPrecomputedOracle_RowIsUnsupported(t *testing.T) {
	d, _ := matrix.NewDense(2, 2)
	o, err := matrix.NewPrecomputedOracle(d)
	if err != nil {
		t.Fatalf("NewPrecomputedOracle: %v", err)
	}
	if _, err := o.Row(0); !errors.Is(err, matrix.ErrNotImplemented) {
		t.Fatalf("want ErrNotImplemented, got %v", err)
	}
}

func TestDiskMat_SetRowAndAtRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.bin")
	m, err := matrix.CreateDiskMat(path, 3, 3, false)
	if err != nil {
		t.Fatalf("CreateDiskMat: %v", err)
	}
	defer m.Close()

	rows := [][]float64{{0, 1, 2}, {1, 0, 1}, {2, 1, 0}}
	for i, row := range rows {
		if err := m.SetRow(i, row); err != nil {
			t.Fatalf("SetRow(%d): %v", i, err)
		}
	}

	for i, row := range rows {
		for j, want := range row {
			got, err := m.At(i, j)
			if err != nil {
				t.Fatalf("At(%d,%d): %v", i, j, err)
			}
			if got != want {
				t.Fatalf("At(%d,%d) = %g, want %g", i, j, got, want)
			}
		}
	}
}

func TestDiskMat_Float32RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist32.bin")
	m, err := matrix.CreateDiskMat(path, 2, 2, true)
	if err != nil {
		t.Fatalf("CreateDiskMat: %v", err)
	}
	defer m.Close()

	if err := m.Set(0, 1, 1.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.At(0, 1)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got != 1.5 {
		t.Fatalf("At(0,1) = %g, want 1.5", got)
	}
}

func TestOpenDiskMat_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.bin")
	m, err := matrix.CreateDiskMat(path, 2, 2, false)
	if err != nil {
		t.Fatalf("CreateDiskMat: %v", err)
	}
	if err := m.Set(1, 1, 9); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := matrix.OpenDiskMat(path, 2, 2, false)
	if err != nil {
		t.Fatalf("OpenDiskMat: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.At(1, 1)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got != 9 {
		t.Fatalf("At(1,1) = %g, want 9", got)
	}
}
