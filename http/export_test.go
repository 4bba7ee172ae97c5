package http

import "net"

// SetListener replaces the bound listener.
func (s *Server) SetListener(ln net.Listener) { s.ln = ln }
