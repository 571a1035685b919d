package nio

import (
	"fmt"
	"net"

	goreuseport "github.com/kavu/go_reuseport"
)

// ListenReusable opens n listeners bound to the same TCP address via
// SO_REUSEPORT, wrapping each as an Endpoint. This is for the common
// multi-core pattern of running one Selector per OS thread, each with its
// own listener, so the kernel load-balances inbound connections across
// them instead of funneling them through a single accept queue.
func ListenReusable(network, address string, n int) ([]Endpoint, error) {
	if n < 1 {
		return nil, fmt.Errorf("nio: ListenReusable count must be >= 1, got %d", n)
	}

	eps := make([]Endpoint, 0, n)
	for i := 0; i < n; i++ {
		ln, err := goreuseport.Listen(network, address)
		if err != nil {
			closeAll(eps)
			return nil, fmt.Errorf("nio: reuseport listen: %w", err)
		}
		tcpLn, ok := ln.(*net.TCPListener)
		if !ok {
			ln.Close()
			closeAll(eps)
			return nil, fmt.Errorf("nio: reuseport listener is %T, not *net.TCPListener", ln)
		}
		ep, err := NewEndpoint(tcpLn)
		if err != nil {
			tcpLn.Close()
			closeAll(eps)
			return nil, err
		}
		// Pin subsequent listeners to the port the first one picked, in
		// case address requested an ephemeral port.
		address = tcpLn.Addr().String()
		tcpLn.Close() // ep holds a dup'd fd; the Go-side listener is no longer needed.
		eps = append(eps, ep)
	}
	return eps, nil
}

// ListenPacketReusable is ListenReusable's UDP counterpart.
func ListenPacketReusable(network, address string, n int) ([]Endpoint, error) {
	if n < 1 {
		return nil, fmt.Errorf("nio: ListenPacketReusable count must be >= 1, got %d", n)
	}

	eps := make([]Endpoint, 0, n)
	for i := 0; i < n; i++ {
		pc, err := goreuseport.ListenPacket(network, address)
		if err != nil {
			closeAll(eps)
			return nil, fmt.Errorf("nio: reuseport listen packet: %w", err)
		}
		udpConn, ok := pc.(*net.UDPConn)
		if !ok {
			pc.Close()
			closeAll(eps)
			return nil, fmt.Errorf("nio: reuseport packet conn is %T, not *net.UDPConn", pc)
		}
		ep, err := NewEndpoint(udpConn)
		if err != nil {
			udpConn.Close()
			closeAll(eps)
			return nil, err
		}
		address = udpConn.LocalAddr().String()
		udpConn.Close()
		eps = append(eps, ep)
	}
	return eps, nil
}

func closeAll(eps []Endpoint) {
	for _, ep := range eps {
		_ = closeFd(ep.Fd())
	}
}
