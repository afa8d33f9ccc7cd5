package gaffer

// Resettable is the lifecycle hook honored by Container.Reset. Cached shared
// instances implementing it are given a chance to release state before the
// container forgets them.
//
// Example:
//
//	type ConnectionPool struct {
//	    conns []*Conn
//	}
//
//	func (p *ConnectionPool) ResetService() {
//	    for _, c := range p.conns {
//	        c.Close()
//	    }
//	    p.conns = nil
//	}
type Resettable interface {
	// ResetService releases any state held on behalf of the container.
	ResetService()
}
