// Package batch executes ordered sequences of requests with
// stop-on-first-failure semantics.
package batch

import (
	"context"

	"tabctl/internal/protocol"
)

// Exchanger performs one request/response exchange. Satisfied by
// *transport.Transport.
type Exchanger interface {
	Exchange(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// Result aggregates a batch run. Completed counts requests actually
// attempted; Success is true only if every attempted exchange succeeded at
// the transport level and returned success.
type Result struct {
	Success   bool                 `json:"success"`
	Results   []*protocol.Response `json:"results"`
	Completed int                  `json:"completed"`
	Total     int                  `json:"total"`
}

// Run processes requests strictly in order, one exchange each. It stops at
// the first response with success=false, or the first exchange failure
// (synthesized into a failure response carrying the request's id and the
// error text). Request N+1 is never sent before request N has resolved.
//
// Batches are not transactional or resumable: a failed batch must be
// retried from the start by the caller.
func Run(ctx context.Context, ex Exchanger, requests []*protocol.Request) *Result {
	result := &Result{
		Success: true,
		Results: make([]*protocol.Response, 0, len(requests)),
		Total:   len(requests),
	}

	for _, req := range requests {
		resp, err := ex.Exchange(ctx, req)
		if err != nil {
			resp = protocol.Failure(req, err)
		}
		result.Results = append(result.Results, resp)
		result.Completed++

		if !resp.Success {
			result.Success = false
			break
		}
	}

	return result
}
