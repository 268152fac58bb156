package bytesource

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grailbio/base/retry"
)

// ftpSource issues ranged RETR commands (REST + RETR over a PASV data connection)
// against an FTP server. There is no FTP client in the example corpus; this is the
// standard minimal way to do ranged FTP retrieval with only net/textproto, see
// DESIGN.md.
type ftpSource struct {
	addr string
	path string
	opts Options
	size int64
}

// OpenFTP opens a remote flatfile reachable over FTP. rawURL is an ftp:// URL.
func OpenFTP(rawURL string, opts Options) (Source, error) {
	opts = opts.withDefaults()
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bytesource: bad ftp url %q: %w", rawURL, err)
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}
	return &ftpSource{addr: addr, path: u.Path, opts: opts}, nil
}

func (s *ftpSource) dial(ctx context.Context) (*textproto.Conn, error) {
	d := net.Dialer{Timeout: s.opts.RequestTimeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, err
	}
	tc := textproto.NewConn(conn)
	if _, _, err := tc.ReadResponse(220); err != nil {
		return nil, fmt.Errorf("bytesource: ftp greeting: %w", err)
	}
	user, pass := s.opts.FTPUser, s.opts.FTPPass
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	if err := tc.PrintfLine("USER %s", user); err != nil {
		return nil, err
	}
	if _, _, err := tc.ReadResponse(331); err != nil {
		return nil, fmt.Errorf("bytesource: ftp USER: %w", err)
	}
	if err := tc.PrintfLine("PASS %s", pass); err != nil {
		return nil, err
	}
	if _, _, err := tc.ReadResponse(230); err != nil {
		return nil, fmt.Errorf("bytesource: ftp PASS: %w", err)
	}
	if err := tc.PrintfLine("TYPE I"); err != nil {
		return nil, err
	}
	if _, _, err := tc.ReadResponse(200); err != nil {
		return nil, fmt.Errorf("bytesource: ftp TYPE: %w", err)
	}
	return tc, nil
}

// passive issues PASV and returns the address of the data connection it opens.
func passive(tc *textproto.Conn) (string, error) {
	if err := tc.PrintfLine("PASV"); err != nil {
		return "", err
	}
	_, msg, err := tc.ReadResponse(227)
	if err != nil {
		return "", fmt.Errorf("bytesource: ftp PASV: %w", err)
	}
	start := strings.IndexByte(msg, '(')
	end := strings.IndexByte(msg, ')')
	if start < 0 || end < 0 || end <= start {
		return "", fmt.Errorf("bytesource: ftp PASV: unparsable reply %q", msg)
	}
	parts := strings.Split(msg[start+1:end], ",")
	if len(parts) != 6 {
		return "", fmt.Errorf("bytesource: ftp PASV: unparsable reply %q", msg)
	}
	p1, err := strconv.Atoi(parts[4])
	if err != nil {
		return "", err
	}
	p2, err := strconv.Atoi(parts[5])
	if err != nil {
		return "", err
	}
	host := strings.Join(parts[:4], ".")
	port := p1*256 + p2
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func (s *ftpSource) readOnce(ctx context.Context, offset, length int64) ([]byte, error) {
	tc, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer tc.Close()

	dataAddr, err := passive(tc)
	if err != nil {
		return nil, err
	}
	if err := tc.PrintfLine("REST %d", offset); err != nil {
		return nil, err
	}
	if _, _, err := tc.ReadResponse(350); err != nil {
		return nil, fmt.Errorf("bytesource: ftp REST: %w", err)
	}
	if err := tc.PrintfLine("RETR %s", s.path); err != nil {
		return nil, err
	}
	if _, _, err := tc.ReadResponse(150); err != nil {
		return nil, fmt.Errorf("bytesource: ftp RETR: %w", err)
	}

	d := net.Dialer{Timeout: s.opts.RequestTimeout}
	dataConn, err := d.DialContext(ctx, "tcp", dataAddr)
	if err != nil {
		return nil, err
	}
	defer dataConn.Close()

	buf := make([]byte, length)
	n, err := io.ReadFull(dataConn, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("bytesource: ftp data read: %w", err)
	}
	if _, _, err := tc.ReadResponse(226); err != nil {
		return nil, fmt.Errorf("bytesource: ftp transfer complete: %w", err)
	}
	return buf[:n], nil
}

func (s *ftpSource) ReadAt(ctx context.Context, offset, length int64) ([]byte, error) {
	policy := retry.MaxRetries(retry.Backoff(200*time.Millisecond, 5*time.Second, 2), s.opts.MaxRetries)
	var lastErr error
	for retries := 0; ; retries++ {
		data, err := s.readOnce(ctx, offset, length)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if waitErr := retry.Wait(ctx, policy, retries); waitErr != nil {
			return nil, fmt.Errorf("bytesource: ftp read at %d failed after retries: %w", offset, lastErr)
		}
	}
}

func (s *ftpSource) Size(ctx context.Context) (int64, error) {
	if s.size > 0 {
		return s.size, nil
	}
	tc, err := s.dial(ctx)
	if err != nil {
		return 0, err
	}
	defer tc.Close()
	if err := tc.PrintfLine("SIZE %s", s.path); err != nil {
		return 0, err
	}
	_, msg, err := tc.ReadResponse(213)
	if err != nil {
		return 0, fmt.Errorf("bytesource: ftp SIZE: %w", err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(msg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bytesource: ftp SIZE reply %q: %w", msg, err)
	}
	s.size = n
	return n, nil
}

func (s *ftpSource) Close() error { return nil }
