package udp_test

import (
	"bytes"
	"errors"
	"net"
	"net/netip"
	"runtime"
	"testing"
	"time"

	"github.com/momentics/hioload-net/api"
	"github.com/momentics/hioload-net/internal/transport/udp"
)

func loopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := udp.Open("127.0.0.1:0", 1<<16, 1<<16)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func addrOf(conn *net.UDPConn) netip.AddrPort {
	return conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// recvWithin retries the non-blocking Recv until a datagram shows up.
func recvWithin(t *testing.T, tr *udp.Transport, buf []byte, from *netip.AddrPort) (int, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := tr.Recv(buf, from)
		if n != 0 || err != nil {
			return n, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no datagram received")
	return 0, nil
}

func TestTransport_InitAndName(t *testing.T) {
	tr := udp.New(nil, 0, nil)
	if err := tr.Init(); err != nil {
		t.Fatal(err)
	}
	tr.Shutdown()
	if tr.Name() != "UDP" {
		t.Errorf("Name = %q", tr.Name())
	}
	if tr.Poll() != 0 {
		t.Error("Poll without socket should be 0")
	}
	if n, err := tr.Recv(make([]byte, 8), nil); n != 0 || err != nil {
		t.Errorf("Recv without socket = %d, %v", n, err)
	}
	if _, err := tr.Send([]byte("x"), netip.AddrPort{}); !errors.Is(err, api.ErrNotReady) {
		t.Errorf("Send without socket err = %v", err)
	}
}

func TestTransport_RoundTrip(t *testing.T) {
	a, b := loopback(t), loopback(t)
	ta, tb := udp.New(a, 0, nil), udp.New(b, 0, nil)

	msg := []byte("hello over udp")
	n, err := ta.Send(msg, addrOf(b))
	if err != nil || n != len(msg) {
		t.Fatalf("Send = %d, %v", n, err)
	}
	if tb.Poll() == 0 {
		t.Fatal("Poll should hint a receive may succeed")
	}
	buf := make([]byte, 64)
	var from netip.AddrPort
	n, err = recvWithin(t, tb, buf, &from)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], msg) {
		t.Fatalf("payload = %q", buf[:n])
	}
	if from.Port() != addrOf(a).Port() {
		t.Errorf("from = %v, want port %d", from, addrOf(a).Port())
	}
	if st := tb.Stats(); st.Received != 1 || st.State != api.StateReady {
		t.Errorf("stats = %+v", st)
	}
}

func TestTransport_RecvEmptyIsZero(t *testing.T) {
	tr := udp.New(loopback(t), 0, nil)
	n, err := tr.Recv(make([]byte, 16), nil)
	if n != 0 || err != nil {
		t.Fatalf("Recv on idle socket = %d, %v", n, err)
	}
}

func TestTransport_RecvTooSmall(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("truncation detection is linux only")
	}
	a, b := loopback(t), loopback(t)
	ta, tb := udp.New(a, 0, nil), udp.New(b, 0, nil)
	if _, err := ta.Send(make([]byte, 100), addrOf(b)); err != nil {
		t.Fatal(err)
	}
	small := make([]byte, 10)
	_, err := recvWithin(t, tb, small, nil)
	if !errors.Is(err, api.ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}
	if n, err := tb.Recv(small, nil); n != 0 || err != nil {
		t.Fatalf("dropped datagram still pending: %d, %v", n, err)
	}
}

func TestTransport_SendOversize(t *testing.T) {
	tr := udp.New(loopback(t), 512, nil)
	_, err := tr.Send(make([]byte, 513), netip.MustParseAddrPort("127.0.0.1:9"))
	if !errors.Is(err, api.ErrOversize) {
		t.Fatalf("expected ErrOversize, got %v", err)
	}
}

type shortConn struct {
	*net.UDPConn
	written int
	err     error
}

func (c *shortConn) WriteToUDPAddrPort(b []byte, _ netip.AddrPort) (int, error) {
	return c.written, c.err
}

func TestTransport_SendFailuresPropagate(t *testing.T) {
	base := loopback(t)
	to := netip.MustParseAddrPort("127.0.0.1:9")

	short := udp.New(&shortConn{UDPConn: base, written: 3}, 0, nil)
	if n, err := short.Send([]byte("abcdef"), to); err == nil || n != 0 {
		t.Fatalf("short write = %d, %v", n, err)
	}

	boom := errors.New("boom")
	failing := udp.New(&shortConn{UDPConn: base, err: boom}, 0, nil)
	if _, err := failing.Send([]byte("abc"), to); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped socket error, got %v", err)
	}
	if failing.Stats().SendFailures != 1 {
		t.Error("send failure not counted")
	}
}

func TestTransport_Attach(t *testing.T) {
	tr := udp.New(nil, 0, nil)
	conn := loopback(t)
	if prev := tr.Attach(conn); prev != nil {
		t.Fatal("expected no previous socket")
	}
	if tr.Poll() != 1 {
		t.Fatal("Poll should return hint once attached")
	}
}
