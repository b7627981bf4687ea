package listener

import (
	"bytes"
	"io"
	"net"
)

// crlfConn converts \n to \r\n on writes and normalizes \r\n and \r to \n
// on reads, for terminals that speak CRLF.
type crlfConn struct {
	rwc io.ReadWriteCloser
}

func newCRLFConn(rwc io.ReadWriteCloser) io.ReadWriteCloser {
	return &crlfConn{rwc: rwc}
}

func (c *crlfConn) Read(p []byte) (int, error) {
	n, err := c.rwc.Read(p)
	if n > 0 {
		// Telnet sends \r\n, SSH with a PTY sends just \r.
		data := bytes.ReplaceAll(p[:n], []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)
	}
	return n, err
}

func (c *crlfConn) Write(p []byte) (int, error) {
	_, err := c.rwc.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *crlfConn) Close() error {
	return c.rwc.Close()
}

func (c *crlfConn) RemoteAddr() net.Addr {
	if ra, ok := c.rwc.(interface{ RemoteAddr() net.Addr }); ok {
		return ra.RemoteAddr()
	}
	return nil
}
