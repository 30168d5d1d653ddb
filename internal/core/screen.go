package core

import "strings"

// Blank is the rune an untouched screen cell holds.
const Blank = ' '

// Screen is a fixed-size grid of glyphs. Level previews rasterize into it
// and the platform layer styles each glyph when printing.
type Screen struct {
	width, height int
	cells         []rune
}

// NewScreen returns a blank width x height screen. Negative sizes clamp to 0.
func NewScreen(width, height int) *Screen {
	width, height = max(width, 0), max(height, 0)
	s := &Screen{width: width, height: height, cells: make([]rune, width*height)}
	s.Fill(Blank)
	return s
}

func (s *Screen) Width() int  { return s.width }
func (s *Screen) Height() int { return s.height }

// Fill sets every cell to r.
func (s *Screen) Fill(r rune) {
	for i := range s.cells {
		s.cells[i] = r
	}
}

func (s *Screen) index(x, y int) (int, bool) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return 0, false
	}
	return y*s.width + x, true
}

// Set writes r at (x, y). Cells outside the screen are ignored.
func (s *Screen) Set(x, y int, r rune) {
	if i, ok := s.index(x, y); ok {
		s.cells[i] = r
	}
}

// Mark writes r at (x, y) only if the cell is still blank, and reports
// whether it did.
func (s *Screen) Mark(x, y int, r rune) bool {
	i, ok := s.index(x, y)
	if !ok || s.cells[i] != Blank {
		return false
	}
	s.cells[i] = r
	return true
}

// Get returns the glyph at (x, y), or Blank outside the screen.
func (s *Screen) Get(x, y int) rune {
	if i, ok := s.index(x, y); ok {
		return s.cells[i]
	}
	return Blank
}

// Row returns row y as a string; rows outside the screen are blank.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(string(Blank), s.width)
	}
	return string(s.cells[y*s.width : (y+1)*s.width])
}

// String joins all rows with newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)
	for y := range s.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Row(y))
	}
	return sb.String()
}
