package mailer

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// tlsHandshake is recorded in the command log when a STARTTLS upgrade
// completes, so tests can check what was sent before and after it.
const tlsHandshake = "<tls handshake>"

// fakeRelay is a minimal SMTP server speaking just enough of the protocol
// for net/smtp: EHLO, STARTTLS, AUTH, MAIL, RCPT, DATA and QUIT.
type fakeRelay struct {
	ln        net.Listener
	authReply string
	tls       *tls.Config

	mu       sync.Mutex
	conns    []net.Conn
	accepted int
	closed   int
	commands []string
	data     string
	wg       sync.WaitGroup
}

type relayOptions struct {
	addr      string      // listen address, 127.0.0.1:0 when empty
	authReply string      // reply to any AUTH command
	tls       *tls.Config // advertises STARTTLS when set
}

func startRelay(t *testing.T, authReply string) *fakeRelay {
	return startRelayWith(t, relayOptions{authReply: authReply})
}

func startRelayWith(t *testing.T, opts relayOptions) *fakeRelay {
	t.Helper()
	addr := opts.addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)

	r := &fakeRelay{ln: ln, authReply: opts.authReply, tls: opts.tls}
	r.wg.Add(1)
	go r.serve()
	t.Cleanup(func() {
		ln.Close()
		r.mu.Lock()
		for _, c := range r.conns {
			c.Close()
		}
		r.mu.Unlock()
		r.wg.Wait()
	})
	return r
}

// relayTLS returns a server config with the httptest self-signed
// certificate, valid for 127.0.0.1, and a client config trusting it.
func relayTLS(t *testing.T) (server, client *tls.Config) {
	t.Helper()
	srv := httptest.NewTLSServer(nil)
	cert := srv.TLS.Certificates[0]
	roots := x509.NewCertPool()
	roots.AddCert(srv.Certificate())
	srv.Close()

	server = &tls.Config{Certificates: []tls.Certificate{cert}}
	client = &tls.Config{RootCAs: roots, ServerName: "127.0.0.1", MinVersion: tls.VersionTLS12}
	return server, client
}

func (r *fakeRelay) host() string {
	return r.ln.Addr().(*net.TCPAddr).IP.String()
}

func (r *fakeRelay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) serve() {
	defer r.wg.Done()
	for {
		conn, err := r.ln.Accept()
		if err != nil {
			return
		}
		r.mu.Lock()
		r.accepted++
		r.conns = append(r.conns, conn)
		r.mu.Unlock()
		r.wg.Add(1)
		go r.handle(conn)
	}
}

func (r *fakeRelay) record(line string) {
	r.mu.Lock()
	r.commands = append(r.commands, line)
	r.mu.Unlock()
}

func (r *fakeRelay) handle(conn net.Conn) {
	defer r.wg.Done()
	defer func() {
		conn.Close()
		r.mu.Lock()
		r.closed++
		r.mu.Unlock()
	}()

	secure := false
	tp := textproto.NewConn(conn)
	tp.PrintfLine("220 fake.local ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		r.record(line)

		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO":
			tp.PrintfLine("250-fake.local")
			if r.tls != nil && !secure {
				tp.PrintfLine("250-STARTTLS")
			}
			tp.PrintfLine("250 AUTH PLAIN LOGIN")
		case "STARTTLS":
			if r.tls == nil || secure {
				tp.PrintfLine("502 not implemented")
				continue
			}
			tp.PrintfLine("220 ready to start TLS")
			tlsConn := tls.Server(conn, r.tls)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			r.record(tlsHandshake)
			secure = true
			conn = tlsConn
			tp = textproto.NewConn(tlsConn)
		case "AUTH":
			tp.PrintfLine("%s", r.authReply)
		case "MAIL", "RCPT", "RSET", "NOOP":
			tp.PrintfLine("250 OK")
		case "DATA":
			tp.PrintfLine("354 go ahead")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			r.mu.Lock()
			r.data = string(data)
			r.mu.Unlock()
			tp.PrintfLine("250 queued")
		case "QUIT":
			tp.PrintfLine("221 bye")
			return
		default:
			tp.PrintfLine("502 not implemented")
		}
	}
}

func (r *fakeRelay) snapshot() (accepted, closed int, commands []string, data string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accepted, r.closed, append([]string(nil), r.commands...), r.data
}

func (r *fakeRelay) sawCommand(prefix string) bool {
	_, _, commands, _ := r.snapshot()
	for _, c := range commands {
		if strings.HasPrefix(strings.ToUpper(c), prefix) {
			return true
		}
	}
	return false
}
