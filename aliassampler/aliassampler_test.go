package aliassampler_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/coreset/aliassampler"
)

// TestSample_EmpiricalFrequency_MatchesDistribution exercises scenario S1:
// draw a large number of samples from a small distribution and check each
// bin's empirical frequency lands close to its true probability.
func TestSample_EmpiricalFrequency_MatchesDistribution(t *testing.T) {
	p := []float64{0.1, 0.2, 0.3, 0.4}
	s, err := aliassampler.New(p, nil, 1337)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const draws = 1_000_000
	counts := make([]int, len(p))
	for i := 0; i < draws; i++ {
		counts[s.Sample()]++
	}

	for i, want := range p {
		got := float64(counts[i]) / float64(draws)
		if math.Abs(got-want) > 0.005 {
			t.Fatalf("bin %d: empirical freq %v, want %v +-0.005", i, got, want)
		}
	}
}

func TestNew_RejectsInvalidDistributions(t *testing.T) {
	cases := []struct {
		name  string
		probs []float64
	}{
		{"empty", nil},
		{"negative", []float64{0.5, -0.1, 0.6}},
		{"zero sum", []float64{0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := aliassampler.New(tc.probs, nil, 1); !errors.Is(err, aliassampler.ErrInvalidDistribution) {
				t.Fatalf("want ErrInvalidDistribution, got %v", err)
			}
		})
	}
}

func TestSample_DeterministicUnderSameSeed(t *testing.T) {
	p := []float64{0.25, 0.25, 0.25, 0.25}
	s1, _ := aliassampler.New(p, nil, 42)
	s2, _ := aliassampler.New(p, nil, 42)

	for i := 0; i < 1000; i++ {
		if s1.Sample() != s2.Sample() {
			t.Fatalf("sample %d diverged between identically-seeded samplers", i)
		}
	}
}

func TestWriteRead_RoundTrips(t *testing.T) {
	p := []float64{0.1, 0.2, 0.3, 0.4}
	w := []float64{1, 2, 3, 4}
	s, err := aliassampler.New(p, w, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Write(&buf, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := aliassampler.Read(&buf, false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !s.Equal(got) {
		t.Fatalf("round-tripped sampler not Equal to original")
	}
	if !got.HasWeights() {
		t.Fatalf("expected round-tripped sampler to retain weights")
	}
}

func TestWriteRead_Float32RoundTrips(t *testing.T) {
	p := []float64{0.5, 0.5}
	s, err := aliassampler.New(p, nil, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := s.Write(&buf, true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := aliassampler.Read(&buf, true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !s.Equal(got) {
		t.Fatalf("f32 round-tripped sampler not Equal to original")
	}
}

func TestEqual_DiffersOnDifferentProbs(t *testing.T) {
	s1, _ := aliassampler.New([]float64{0.5, 0.5}, nil, 1)
	s2, _ := aliassampler.New([]float64{0.9, 0.1}, nil, 1)
	if s1.Equal(s2) {
		t.Fatalf("samplers over different distributions should not be Equal")
	}
}
