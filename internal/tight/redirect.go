package tight

// redirectWriter lets a single long-lived flate.Writer (and the LZ77
// window it has built up) keep writing into a different destination
// slice on each call, by redirecting the io.Writer the flate.Writer
// holds rather than resetting the compressor itself.
type redirectWriter struct {
	dst []byte
}

func (w *redirectWriter) Write(p []byte) (int, error) {
	w.dst = append(w.dst, p...)
	return len(p), nil
}
