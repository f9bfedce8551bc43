package otpatch

// binWriter accumulates big-endian binary table data. Offsets recorded with
// mark can be patched once the target position is known.
type binWriter struct {
	b []byte
}

func (w *binWriter) len() int {
	return len(w.b)
}

func (w *binWriter) bytes() []byte {
	return w.b
}

func (w *binWriter) u16(v uint16) {
	w.b = append(w.b, byte(v>>8), byte(v))
}

func (w *binWriter) i16(v int16) {
	w.u16(uint16(v))
}

func (w *binWriter) u32(v uint32) {
	w.b = append(w.b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *binWriter) raw(data []byte) {
	w.b = append(w.b, data...)
}

// mark reserves a uint16 slot and returns its position for setU16.
func (w *binWriter) mark() int {
	pos := len(w.b)
	w.u16(0)
	return pos
}

// mark32 reserves a uint32 slot.
func (w *binWriter) mark32() int {
	pos := len(w.b)
	w.u32(0)
	return pos
}

func (w *binWriter) setU16(pos int, v uint16) {
	w.b[pos] = byte(v >> 8)
	w.b[pos+1] = byte(v)
}

func (w *binWriter) setU32(pos int, v uint32) {
	w.b[pos] = byte(v >> 24)
	w.b[pos+1] = byte(v >> 16)
	w.b[pos+2] = byte(v >> 8)
	w.b[pos+3] = byte(v)
}

// pad4 pads with zero bytes to a 4-byte boundary.
func (w *binWriter) pad4() {
	for len(w.b)%4 != 0 {
		w.b = append(w.b, 0)
	}
}
