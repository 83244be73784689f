package counterclnt

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	db "minerperf/debug"
	"minerperf/util/retry"
)

func Addr(ip string, port int) string {
	return net.JoinHostPort(ip, strconv.Itoa(port))
}

// WaitChainLength polls the node at ip:port until it answers or timeout
// elapses, sleeping interval between attempts.
func WaitChainLength(ctx context.Context, o Oracle, ip string, port int, timeout, interval time.Duration, bounds retry.Tbounds) (int64, error) {
	addr := Addr(ip, port)
	n, err := retry.UntilDeadline(ctx, timeout, interval, bounds, func(ctx context.Context, t time.Duration) (int64, bool) {
		r := o.ChainLength(ctx, addr, t)
		return r.Len, r.OK
	})
	if err != nil {
		return 0, fmt.Errorf("waiting for miner RPC at %v: %w", addr, err)
	}
	db.DPrintf(db.COUNTERCLNT, "%v ready chain_length %d", addr, n)
	return n, nil
}
