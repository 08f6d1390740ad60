package token

// Stream is an immutable view over a sequence of symbols. Consuming symbols
// yields a new Stream; the receiver is never modified.
type Stream struct {
	syms []rune
	pos  int // offset of syms[0] within the original input
}

func New(syms []rune) Stream {
	return Stream{syms: syms}
}

func FromString(s string) Stream {
	return New([]rune(s))
}

func (s Stream) Len() int    { return len(s.syms) }
func (s Stream) Empty() bool { return len(s.syms) == 0 }

// Offset reports how many symbols of the original input precede this stream.
func (s Stream) Offset() int { return s.pos }

// Peek returns the next symbol without consuming it.
func (s Stream) Peek() (rune, bool) {
	if len(s.syms) == 0 {
		return 0, false
	}
	return s.syms[0], true
}

func (s Stream) At(i int) rune {
	return s.syms[i]
}

// Advance drops the first n symbols.
func (s Stream) Advance(n int) Stream {
	if n > len(s.syms) {
		n = len(s.syms)
	}
	return Stream{syms: s.syms[n:], pos: s.pos + n}
}

// Take returns the first n symbols as a string.
func (s Stream) Take(n int) string {
	if n > len(s.syms) {
		n = len(s.syms)
	}
	return string(s.syms[:n])
}

func (s Stream) HasPrefix(prefix []rune) bool {
	if len(prefix) > len(s.syms) {
		return false
	}
	for i, r := range prefix {
		if s.syms[i] != r {
			return false
		}
	}
	return true
}

// Window returns the interior symbols [from, to) as a standalone stream that
// keeps its offset relative to the original input.
func (s Stream) Window(from, to int) Stream {
	return Stream{syms: s.syms[from:to], pos: s.pos + from}
}

func (s Stream) String() string {
	return string(s.syms)
}
