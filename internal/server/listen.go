package server

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrConfig returns a ListenConfig that sets SO_REUSEADDR, so the
// responder can rebind its well-known port immediately between test
// runs without waiting out TIME_WAIT sockets.
func reuseAddrConfig() *net.ListenConfig {
	return &net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var serr error
			err := c.Control(func(fd uintptr) {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return serr
		},
	}
}

func listenTCP(ctx context.Context, addr string) (net.Listener, error) {
	return reuseAddrConfig().Listen(ctx, "tcp", addr)
}

func listenUDP(ctx context.Context, addr string) (*net.UDPConn, error) {
	pc, err := reuseAddrConfig().ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, net.UnknownNetworkError("udp")
	}
	return conn, nil
}
