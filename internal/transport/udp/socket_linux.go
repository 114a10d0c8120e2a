//go:build linux
// +build linux

// internal/transport/udp/socket_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux receive path: a single recvfrom with MSG_DONTWAIT|MSG_TRUNC on the
// raw descriptor, so truncation is detected instead of silently clipped.

package udp

import (
	"net"
	"net/netip"
	"syscall"

	"golang.org/x/sys/unix"
)

func recvOnce(conn DatagramConn, p []byte) (int, netip.AddrPort, bool, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return recvDeadline(conn, p)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return recvDeadline(conn, p)
	}
	var (
		n    int
		sa   unix.Sockaddr
		rerr error
	)
	err = raw.Read(func(fd uintptr) bool {
		n, sa, rerr = unix.Recvfrom(int(fd), p, unix.MSG_DONTWAIT|unix.MSG_TRUNC)
		return true
	})
	if err != nil {
		return 0, netip.AddrPort{}, false, err
	}
	if rerr != nil {
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
			return 0, netip.AddrPort{}, false, nil
		}
		return 0, netip.AddrPort{}, false, rerr
	}
	from := sockaddrToAddrPort(sa)
	if n > len(p) {
		return len(p), from, true, nil
	}
	return n, from, false, nil
}

func sockaddrToAddrPort(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr).Unmap(), uint16(a.Port))
	default:
		return netip.AddrPort{}
	}
}

// tuneSocket sets SO_RCVBUF/SO_SNDBUF directly on the descriptor.
func tuneSocket(conn *net.UDPConn, readBuffer, writeBuffer int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	err = raw.Control(func(fd uintptr) {
		if readBuffer > 0 {
			if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, readBuffer); e != nil {
				serr = e
				return
			}
		}
		if writeBuffer > 0 {
			serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, writeBuffer)
		}
	})
	if err != nil {
		return err
	}
	return serr
}
