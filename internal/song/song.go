// Package song holds the timing features level generation consumes: beat
// timestamps, intensity sections and tempo. Audio analysis happens
// elsewhere; this package only cleans up what it is given.
package song

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"

	"github.com/AppIemon/umm-sub002/internal/core"
)

// Section is a span of the song with a coarse intensity in [0, 1].
type Section struct {
	Start     float64
	End       float64
	Intensity float64
}

// Features is the input contract of the generator.
type Features struct {
	Title         string
	BeatTimes     []float64 // seconds, any order
	Sections      []Section
	Duration      float64
	BPM           float64
	MeasureLength float64 // seconds, 0 = derive from BPM
}

// Beats returns the sorted, de-duplicated beat times in
// [minOffset, Duration). The second result is true when no usable beat
// was found and a periodic grid with the given interval was synthesized.
func (f Features) Beats(minOffset, fallbackInterval float64) ([]float64, bool) {
	beats := make([]float64, 0, len(f.BeatTimes))
	for _, b := range f.BeatTimes {
		if math.IsNaN(b) || math.IsInf(b, 0) || b < minOffset || b >= f.Duration {
			continue
		}
		beats = append(beats, b)
	}
	sort.Float64s(beats)

	out := beats[:0]
	for _, b := range beats {
		if len(out) > 0 && b == out[len(out)-1] {
			continue
		}
		out = append(out, b)
	}
	if len(out) > 0 {
		return out, false
	}
	return FallbackGrid(f.Duration, minOffset, fallbackInterval), true
}

// FallbackGrid returns beats every interval seconds, starting at the first
// multiple of interval that is not below minOffset.
func FallbackGrid(duration, minOffset, interval float64) []float64 {
	if !(interval > 0) || !(duration > 0) {
		return nil
	}
	var grid []float64
	start := math.Ceil(minOffset/interval) * interval
	if start <= 0 {
		start = interval
	}
	for i := 0; ; i++ {
		b := start + float64(i)*interval
		if b >= duration {
			break
		}
		grid = append(grid, b)
	}
	return grid
}

// MeasureSeconds returns the length of a measure. An explicit measure length
// wins over the BPM; without either, fallbackInterval is used as the beat.
func (f Features) MeasureSeconds(beatsPerMeasure int, fallbackInterval float64) float64 {
	if f.MeasureLength > 0 && !math.IsInf(f.MeasureLength, 0) {
		return f.MeasureLength
	}
	beat := fallbackInterval
	if f.BPM > 0 && !math.IsInf(f.BPM, 0) {
		beat = 60 / f.BPM
	}
	return beat * float64(beatsPerMeasure)
}

// CleanSections drops empty or non-finite sections, clamps intensities and
// sorts by start time.
func (f Features) CleanSections() []Section {
	out := make([]Section, 0, len(f.Sections))
	for _, s := range f.Sections {
		if math.IsNaN(s.Start) || math.IsNaN(s.End) || !(s.End > s.Start) {
			continue
		}
		s.Intensity = core.ClampF(core.Finite(s.Intensity, 0), 0, 1)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// IntensityAt returns the intensity of the first section covering t, or def.
// sections must come from CleanSections.
func IntensityAt(sections []Section, t, def float64) float64 {
	for _, s := range sections {
		if s.Start > t {
			break
		}
		if t < s.End {
			return s.Intensity
		}
	}
	return def
}

// Key returns a short stable identifier of the timing data, used to tie
// stored levels to the song they were generated from.
func (f Features) Key() string {
	h := sha256.New()
	var buf [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	put(f.Duration)
	put(f.BPM)
	put(f.MeasureLength)
	for _, b := range f.BeatTimes {
		put(b)
	}
	for _, s := range f.Sections {
		put(s.Start)
		put(s.End)
		put(s.Intensity)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
