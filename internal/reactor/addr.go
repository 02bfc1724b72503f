package reactor

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// resolveAddr turns a "host:port" string into a raw sockaddr, preferring
// IPv4 since the reference server binds a plain dotted-quad loopback
// address; IPv6 literals are still accepted.
func resolveAddr(addr string) (unix.Sockaddr, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, 0, fmt.Errorf("reactor: bad address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, 0, fmt.Errorf("reactor: bad port %q: %w", portStr, err)
	}

	if host == "" {
		host = "0.0.0.0"
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, 0, fmt.Errorf("reactor: cannot resolve host %q", host)
		}
		ip = ips[0]
		for _, cand := range ips {
			if cand.To4() != nil {
				ip = cand
				break
			}
		}
	}

	if ip4 := ip.To4(); ip4 != nil {
		var sa unix.SockaddrInet4
		sa.Port = port
		copy(sa.Addr[:], ip4)
		return &sa, unix.AF_INET, nil
	}

	var sa unix.SockaddrInet6
	sa.Port = port
	copy(sa.Addr[:], ip.To16())
	return &sa, unix.AF_INET6, nil
}

// boundAddr reads back the listening socket's actual local address, which
// differs from the configured addr when the port was 0.
func (r *Reactor) boundAddr() string {
	sa, err := unix.Getsockname(r.listenFd)
	if err != nil {
		return r.addr
	}
	return remoteString(sa)
}

// remoteString renders a peer sockaddr as host:port for logging.
func remoteString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		ip := net.IP(a.Addr[:])
		return net.JoinHostPort(ip.String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		ip := net.IP(a.Addr[:])
		return net.JoinHostPort(ip.String(), strconv.Itoa(a.Port))
	default:
		return "unknown"
	}
}
