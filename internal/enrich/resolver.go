package enrich

import (
	"context"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultResolveTimeout = 2 * time.Second

// ReverseResolver performs best-effort PTR lookups. Concurrent lookups for
// the same address collapse into one query through the singleflight group;
// the at-most-once-per-session guarantee itself comes from the pipeline
// only resolving newly created addresses.
type ReverseResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
	group    singleflight.Group
}

func NewReverseResolver(timeout time.Duration) *ReverseResolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	return &ReverseResolver{
		resolver: net.DefaultResolver,
		timeout:  timeout,
	}
}

// Resolve returns the first PTR name for address, or an error when nothing
// resolved. Callers treat any error as absence of data, not a failure.
func (r *ReverseResolver) Resolve(ctx context.Context, address string) (string, error) {
	name, err, _ := r.group.Do(address, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		names, err := r.resolver.LookupAddr(lookupCtx, address)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "", &net.DNSError{Err: "no PTR records", Name: address, IsNotFound: true}
		}

		return strings.TrimSuffix(names[0], "."), nil
	})
	if err != nil {
		return "", err
	}

	return name.(string), nil
}
