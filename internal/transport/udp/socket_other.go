//go:build !linux
// +build !linux

// internal/transport/udp/socket_other.go
// Author: momentics <momentics@gmail.com>
//
// Portable receive path based on read deadlines.

package udp

import (
	"net"
	"net/netip"
)

func recvOnce(conn DatagramConn, p []byte) (int, netip.AddrPort, bool, error) {
	return recvDeadline(conn, p)
}

func tuneSocket(conn *net.UDPConn, readBuffer, writeBuffer int) error {
	if readBuffer > 0 {
		if err := conn.SetReadBuffer(readBuffer); err != nil {
			return err
		}
	}
	if writeBuffer > 0 {
		return conn.SetWriteBuffer(writeBuffer)
	}
	return nil
}
