package listener

import (
	"bytes"
	"io"
)

const maxEscapeLen = 16

// Final bytes of the cursor key sequences (ESC [ A or ESC O A) and the key
// names they are reported as.
var cursorKeys = map[byte]string{
	'A': "up",
	'B': "down",
	'C': "right",
	'D': "left",
}

// lineConn adapts a client stream to the line protocol. Reads turn CR and CRLF
// into LF and cursor keys into key names, so an arrow key followed by enter
// taps that key. A lone escape is reported as "escape". Writes turn LF into
// CRLF.
type lineConn struct {
	rw io.ReadWriter

	esc []byte
	cr  bool
	out []byte
	err error
}

func newLineConn(rw io.ReadWriter) io.ReadWriter {
	return &lineConn{rw: rw}
}

func (c *lineConn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	buf := make([]byte, max(len(p), 64))
	for len(c.out) == 0 && c.err == nil {
		n, err := c.rw.Read(buf)
		for _, b := range buf[:n] {
			c.out = c.feed(c.out, b)
		}
		if err != nil {
			if len(c.esc) > 0 {
				c.out = c.flushEscape(c.out)
			}
			c.err = err
		}
	}

	if len(c.out) == 0 {
		return 0, c.err
	}
	n := copy(p, c.out)
	c.out = c.out[n:]
	return n, nil
}

func (c *lineConn) feed(out []byte, b byte) []byte {
	switch {
	case len(c.esc) == 1:
		if b == '[' || b == 'O' {
			c.esc = append(c.esc, b)
			return out
		}
		out = c.flushEscape(out)
		return c.feed(out, b)

	case len(c.esc) > 1:
		// Parameter bytes, as in ESC [ 1 ; 5 A.
		if b >= 0x30 && b <= 0x3f && len(c.esc) < maxEscapeLen {
			c.esc = append(c.esc, b)
			return out
		}
		c.esc = c.esc[:0]
		if key, ok := cursorKeys[b]; ok {
			out = append(out, key...)
			out = append(out, ' ')
		}
		return out
	}

	switch b {
	case 0x1b:
		c.esc = append(c.esc, b)
	case '\r':
		// Telnet sends CRLF, ssh without a pty sends a bare CR.
		c.cr = true
		return append(out, '\n')
	case '\n':
		if !c.cr {
			out = append(out, '\n')
		}
	default:
		out = append(out, b)
	}
	c.cr = false
	return out
}

func (c *lineConn) flushEscape(out []byte) []byte {
	c.esc = c.esc[:0]
	return append(out, "escape "...)
}

func (c *lineConn) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	_, err := c.rw.Write(converted)
	// Report the caller's length, not the expanded one.
	return len(p), err
}
