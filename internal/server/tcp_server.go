package server

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/pool"
	"github.com/jroosing/stubns/internal/responder"
)

// lenBufPool reduces allocations for TCP length prefix reads/writes.
// Each buffer is exactly 2 bytes for the DNS-over-TCP length field.
var lenBufPool = pool.New(func() *[]byte {
	buf := make([]byte, 2)
	return &buf
})

const (
	// maxTCPMessageSize is the largest message the 2-byte length prefix
	// can describe.
	maxTCPMessageSize = 65535

	// tcpReadTimeout bounds each read and write on a connection, so a
	// peer that trickles bytes cannot hold a handler goroutine forever.
	tcpReadTimeout = 10 * time.Second
)

// TCPServer answers queries over TCP, one exchange per connection.
//
// TCP DNS message format (RFC 1035 section 4.2.2): each message is
// prefixed with a 2-byte big-endian length field. The connection is
// closed after the single exchange.
type TCPServer struct {
	Logger    *slog.Logger         // optional
	Responder *responder.Responder // request pipeline

	ln net.Listener
	wg sync.WaitGroup // tracks active connections
}

// Run starts the TCP server, listening on the given address.
func (s *TCPServer) Run(ctx context.Context, addr string) error {
	ln, err := listenTCP(ctx, addr)
	if err != nil {
		return err
	}
	return s.RunOnListener(ctx, ln)
}

// RunOnListener accepts connections on ln until the context is
// cancelled or the listener is closed. Each connection is served on its
// own goroutine; the entry list is read-only, so handlers share it
// without locking.
func (s *TCPServer) RunOnListener(ctx context.Context, ln net.Listener) error {
	s.ln = ln
	defer ln.Close()

	for {
		c, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		conn := c
		s.wg.Go(func() {
			s.handleConnection(ctx, conn)
		})
	}
}

// handleConnection reads one length-prefixed query, runs the pipeline,
// and writes back the length-prefixed answer. Dropped requests get no
// response; the connection just closes.
func (s *TCPServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	payload, ok := s.readRequest(ctx, conn)
	if !ok {
		return
	}

	res := s.Responder.Handle(ctx, datafile.TransportTCP, conn.RemoteAddr().String(), payload)
	if len(res.ResponseBytes) == 0 {
		return
	}

	if !s.writeResponse(conn, res.ResponseBytes) && s.Logger != nil {
		s.Logger.WarnContext(ctx, "tcp write failed", "peer", conn.RemoteAddr().String())
	}
}

// readRequest reads the 2-byte big-endian length prefix and then exactly
// that many payload bytes. Declared lengths beyond the inbound buffer
// capacity are rejected and logged.
func (s *TCPServer) readRequest(ctx context.Context, conn net.Conn) ([]byte, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(tcpReadTimeout))

	lenBufPtr := lenBufPool.Get()
	lenBuf := *lenBufPtr
	_, err := io.ReadFull(conn, lenBuf)
	msgLen := int(binary.BigEndian.Uint16(lenBuf))
	lenBufPool.Put(lenBufPtr)
	if err != nil {
		return nil, false
	}

	if msgLen == 0 {
		return nil, false
	}
	if msgLen > inbufSize {
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "tcp query too large",
				"peer", conn.RemoteAddr().String(),
				"bytes", msgLen,
				"limit", inbufSize,
			)
		}
		return nil, false
	}

	payload := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, false
	}
	return payload, true
}

// writeResponse writes the length prefix and message body using writev
// (net.Buffers) to avoid a combined allocation. Responses too large for
// the length prefix are dropped rather than sent truncated.
func (s *TCPServer) writeResponse(conn net.Conn, response []byte) bool {
	respLen := len(response)
	if respLen > maxTCPMessageSize {
		return false
	}

	_ = conn.SetWriteDeadline(time.Now().Add(tcpReadTimeout))

	lenBufPtr := lenBufPool.Get()
	lenBuf := *lenBufPtr
	binary.BigEndian.PutUint16(lenBuf, uint16(respLen))

	bufs := net.Buffers{lenBuf, response}
	_, err := bufs.WriteTo(conn)

	lenBufPool.Put(lenBufPtr)
	return err == nil
}

// Stop closes the listener and waits for in-flight connections.
func (s *TCPServer) Stop(timeout time.Duration) error {
	if s.ln != nil {
		_ = s.ln.Close()
	}

	if timeout <= 0 {
		s.wg.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("tcp server: timeout waiting for connections")
	}
}
