// Package udp
// Author: momentics <momentics@gmail.com>
//
// Socket helpers shared by all platforms.

package udp

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"
)

// Open binds a UDP socket on addr and applies buffer sizes (0 keeps the
// OS default). The caller owns the returned socket.
func Open(addr string, readBuffer, writeBuffer int) (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", addr, err)
	}
	if err := tuneSocket(conn, readBuffer, writeBuffer); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tune socket: %w", err)
	}
	return conn, nil
}

// recvDeadline polls conn by arming an already expired read deadline.
func recvDeadline(conn DatagramConn, p []byte) (int, netip.AddrPort, bool, error) {
	if err := conn.SetReadDeadline(time.Now()); err != nil {
		return 0, netip.AddrPort{}, false, err
	}
	defer conn.SetReadDeadline(time.Time{})
	n, from, err := conn.ReadFromUDPAddrPort(p)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, netip.AddrPort{}, false, nil
		}
		return 0, netip.AddrPort{}, false, err
	}
	return n, from, false, nil
}
