// Package request implements the edge-request protocol from spec.md
// §3/§4.4: a node records outstanding requests for edges matching a
// source and/or target (and a time window), and whenever a new edge
// arrives it is checked against every bucket of outstanding requests
// and forwarded to whichever nodes asked for it. Grounded on
// original_source/SamSrc/{EdgeRequest,EdgeRequestMap}.hpp.
package request

import "math"

// noVertex marks an unset source or target — any vertex will do.
const noVertex = ""

// Request is one outstanding ask for edges matching Source and/or
// Target within a time window, to be delivered to ReturnNode.
type Request struct {
	Source          string
	Target          string
	StartTimeFirst  float64
	StartTimeSecond float64
	EndTimeFirst    float64
	EndTimeSecond   float64
	ReturnNode      uint32
}

// HasSource reports whether the request constrains the edge source.
func (r Request) HasSource() bool { return r.Source != noVertex }

// HasTarget reports whether the request constrains the edge target.
func (r Request) HasTarget() bool { return r.Target != noVertex }

// IsExpired reports whether currentTime has moved past the request's
// end-time window, per EdgeRequest::isExpired.
func (r Request) IsExpired(currentTime float64) bool {
	return currentTime > r.EndTimeSecond
}

// matches reports whether e satisfies r's source/target constraints.
func (r Request) matches(srcOf, trgOf func() string) bool {
	if r.HasSource() && r.Source != srcOf() {
		return false
	}
	if r.HasTarget() && r.Target != trgOf() {
		return false
	}
	return true
}

// NewUnboundedRequest constructs a Request with no time-window
// constraint, matching any edge time — used by callers that only care
// about source/target and let the caller's own logic age the request
// out via a separate mechanism.
func NewUnboundedRequest(source, target string, returnNode uint32) Request {
	return Request{
		Source:          source,
		Target:          target,
		ReturnNode:      returnNode,
		StartTimeFirst:  math.Inf(-1),
		StartTimeSecond: math.Inf(1),
		EndTimeFirst:    math.Inf(-1),
		EndTimeSecond:   math.Inf(1),
	}
}
