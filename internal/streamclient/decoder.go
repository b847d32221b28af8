package streamclient

import "unicode/utf8"

// decoder reassembles UTF-8 text from arbitrary byte chunks. A multi-byte
// rune split across chunks is held back until its remaining bytes arrive, so
// every Write result is valid UTF-8 and the concatenation of all results plus
// Flush equals the input byte stream exactly.
type decoder struct {
	pending []byte
}

// Write consumes the next chunk and returns the longest decodable prefix.
func (d *decoder) Write(p []byte) string {
	b := append(d.pending, p...)
	cut := completePrefix(b)
	out := string(b[:cut])
	d.pending = append(d.pending[:0], b[cut:]...)
	return out
}

// Flush drains whatever is still held back. Called at end of stream; a
// trailing incomplete sequence is emitted as-is so the final content matches
// the wire bytes.
func (d *decoder) Flush() string {
	out := string(d.pending)
	d.pending = d.pending[:0]
	return out
}

// completePrefix returns the length of the longest prefix of b that does not
// end inside a multi-byte rune.
func completePrefix(b []byte) int {
	end := len(b)
	if end == 0 {
		return 0
	}

	// Find the start of the last rune; it can begin at most UTFMax-1 bytes
	// before the end.
	start := end - 1
	for start > 0 && end-start < utf8.UTFMax && !utf8.RuneStart(b[start]) {
		start--
	}
	if !utf8.RuneStart(b[start]) {
		// No rune boundary in reach: the bytes are not UTF-8, pass through.
		return end
	}
	if utf8.FullRune(b[start:]) {
		return end
	}
	return start
}
