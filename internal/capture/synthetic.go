package capture

// Synthetic is a deterministic capture source used by tests, smoke-mode
// runs, and cmd/mfxvnc -source=synthetic. It never blocks or errors;
// each call advances an internal frame counter and redraws a moving bar
// so the damage detector has something nontrivial to chase.
type Synthetic struct {
	W, H int
	buf  []byte
	n    int
}

// NewSynthetic returns a source producing w x h BGRX frames.
func NewSynthetic(w, h int) *Synthetic {
	return &Synthetic{W: w, H: h, buf: make([]byte, w*h*4)}
}

func (s *Synthetic) Frame() (data []byte, stride, w, h int, err error) {
	barWidth := 8
	barX := s.n % s.W
	s.n++

	for y := 0; y < s.H; y++ {
		row := s.buf[y*s.W*4 : (y+1)*s.W*4]
		for x := 0; x < s.W; x++ {
			i := x * 4
			if x >= barX && x < barX+barWidth {
				row[i+0], row[i+1], row[i+2] = 0xff, 0xff, 0xff
			} else {
				row[i+0], row[i+1], row[i+2] = 0, 0, 0
			}
			row[i+3] = 0
		}
	}
	return s.buf, s.W, s.W, s.H, nil
}
