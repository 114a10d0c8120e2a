// Package api
// Author: momentics
//
// Mock/testing utilities for core contracts.

package api

import "net/netip"

// MockTransport is a test and mock-friendly implementation of Transport.
// Nil funcs behave as a transport that is always empty.
type MockTransport struct {
	NameValue    string
	InitFunc     func() error
	ShutdownFunc func()
	SendFunc     func(p []byte, to netip.AddrPort) (int, error)
	PollFunc     func() int
	RecvFunc     func(p []byte, from *netip.AddrPort) (int, error)
}

func (m *MockTransport) Init() error {
	if m.InitFunc == nil {
		return nil
	}
	return m.InitFunc()
}

func (m *MockTransport) Shutdown() {
	if m.ShutdownFunc != nil {
		m.ShutdownFunc()
	}
}

func (m *MockTransport) Send(p []byte, to netip.AddrPort) (int, error) {
	if m.SendFunc == nil {
		return len(p), nil
	}
	return m.SendFunc(p, to)
}

func (m *MockTransport) Poll() int {
	if m.PollFunc == nil {
		return 0
	}
	return m.PollFunc()
}

func (m *MockTransport) Recv(p []byte, from *netip.AddrPort) (int, error) {
	if m.RecvFunc == nil {
		return 0, nil
	}
	return m.RecvFunc(p, from)
}

func (m *MockTransport) Name() string { return m.NameValue }
