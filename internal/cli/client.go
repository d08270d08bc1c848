package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tabctl/internal/protocol"
	"tabctl/internal/supervisor"
	"tabctl/internal/transport"
)

// runTokens is the shared client path for every browser verb: encode the
// tokens, make sure a daemon is reachable, exchange once, and render the
// response. A failed response exits 1 after printing.
func runTokens(cmd *cobra.Command, tokens []string) error {
	req := protocol.Encode(tokens)
	if req == nil {
		return exitErr(fmt.Errorf("unknown command: %s", strings.Join(tokens, " ")))
	}

	resp, err := exchange(cmd.Context(), req)
	if err != nil {
		return exitErr(err)
	}

	display(resp)
	if !resp.Success {
		return ErrSilent
	}
	return nil
}

// exchange ensures a daemon is running for the active session, then
// performs one request/response round trip over a fresh connection.
func exchange(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	tr, err := newTransportAfterEnsure(ctx)
	if err != nil {
		return nil, err
	}
	return tr.Exchange(ctx, req)
}

// newTransportAfterEnsure hands back a transport for the session's socket
// once a daemon is guaranteed reachable, so callers can run one exchange
// or many (batch) against it.
func newTransportAfterEnsure(ctx context.Context) (*transport.Transport, error) {
	sup := supervisor.New(sess,
		supervisor.WithReadyPoll(cfg.ReadyAttempts, cfg.ReadyInterval()))
	if err := sup.EnsureRunning(ctx); err != nil {
		return nil, fmt.Errorf("ensure daemon: %w", err)
	}
	return transport.New(sess.SocketPath(), cfg.RequestTimeout()), nil
}
