package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/pool"
	"github.com/jroosing/stubns/internal/responder"
)

// inbufSize is the maximum size for incoming queries. Datagrams are read
// into a buffer this large and TCP payloads beyond it are rejected.
const inbufSize = 4096

// bufferPool reduces allocations for incoming UDP packets.
var bufferPool = pool.New(func() *[]byte {
	buf := make([]byte, inbufSize)
	return &buf
})

// UDPServer answers queries over UDP, one datagram per exchange.
//
// Datagrams are handled strictly in arrival order on the read loop, so
// per-query log lines interleave deterministically. Test harnesses
// scrape the log, which makes that ordering part of the contract.
type UDPServer struct {
	Logger    *slog.Logger         // optional
	Responder *responder.Responder // request pipeline

	conn *net.UDPConn
}

// Run starts the UDP server, listening on the given address.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	conn, err := listenUDP(ctx, addr)
	if err != nil {
		return err
	}
	return s.RunOnConn(ctx, conn)
}

// RunOnConn runs the server on an existing UDP connection. Useful for
// testing and when the caller manages the socket.
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) error {
	s.conn = conn
	defer conn.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}

		bufPtr := bufferPool.Get()
		buf := *bufPtr

		// The short deadline lets the loop notice shutdown.
		_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			bufferPool.Put(bufPtr)
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if s.Logger != nil {
				s.Logger.WarnContext(ctx, "udp read failed", "err", err)
			}
			continue
		}

		res := s.Responder.Handle(ctx, datafile.TransportUDP, remote.String(), buf[:n])
		if len(res.ResponseBytes) > 0 {
			if _, err := conn.WriteToUDP(res.ResponseBytes, remote); err != nil && s.Logger != nil {
				s.Logger.WarnContext(ctx, "udp write failed", "peer", remote.String(), "err", err)
			}
		}
		bufferPool.Put(bufPtr)
	}
}

// Stop closes the socket, unblocking the read loop.
func (s *UDPServer) Stop() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
