// Package errors provides structured error types for better observability
// and programmatic error handling across the agent.
//
// Every failure surfaced at a package boundary carries an ErrorCode so
// callers can branch on the kind of failure without matching strings:
//
//	params, err := resolver.Get(ctx)
//	if errors.HasCode(err, errors.ErrCodeVirtualMediaBoot) {
//	    // no virtual media attached, fall back to defaults
//	}
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeVirtualMediaBoot,
//	    "failed to mount virtual media",
//	    cause,
//	    map[string]any{
//	        "device": "/dev/sdc",
//	    },
//	)
package errors
