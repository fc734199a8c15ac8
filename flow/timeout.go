package flow

import (
	"context"
	"fmt"
	"time"
)

// nodeTimeout resolves the timeout for a node: a per-node override
// beats the engine default; zero means unlimited.
func nodeTimeout(override, defaultTimeout time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if defaultTimeout > 0 {
		return defaultTimeout
	}
	return 0
}

// runNodeWithTimeout executes a node under its resolved timeout.
//
// Model calls inside a node are uninterruptible from the engine's view;
// the timeout context lets the underlying client abort the HTTP request
// while the engine simply observes the deadline error afterwards.
func runNodeWithTimeout[S any](
	ctx context.Context,
	node Node[S],
	nodeID string,
	state S,
	override, defaultTimeout time.Duration,
) (NodeResult[S], error) {
	timeout := nodeTimeout(override, defaultTimeout)
	if timeout == 0 {
		return node.Run(ctx, state), nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := node.Run(timeoutCtx, state)
	if timeoutCtx.Err() == context.DeadlineExceeded {
		return result, &EngineError{
			Message: fmt.Sprintf("node %s exceeded timeout of %v", nodeID, timeout),
			Code:    "NODE_TIMEOUT",
		}
	}
	return result, nil
}
