package cluster

import (
	"context"
	"time"

	db "minerperf/debug"
)

// A Lease is the sweep's exclusive hold on a cluster. The holder deploys
// through it and must Release it on every exit path; Release stops the
// cluster exactly once.
type Lease struct {
	c        Cluster
	released bool
	ndeploy  int
}

func Acquire(c Cluster) *Lease {
	return &Lease{c: c}
}

// Deploy starts the cluster and returns how long the deploy call took.
func (l *Lease) Deploy(ctx context.Context, count, difficulty int) (time.Duration, error) {
	if l.released {
		db.DFatalf("Deploy on released lease")
	}
	t0 := time.Now()
	err := l.c.Deploy(ctx, count, difficulty)
	l.ndeploy++
	return time.Since(t0), err
}

// Reset stops the cluster between grid points. The returned error is
// informational; callers may drop it.
func (l *Lease) Reset(ctx context.Context) error {
	err := l.c.Stop(ctx)
	if err != nil {
		db.DPrintf(db.CLUSTER_ERR, "Reset err %v", err)
	}
	return err
}

// Release stops the cluster. Later calls do nothing.
func (l *Lease) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	err := l.c.Stop(ctx)
	if err != nil {
		db.DPrintf(db.CLUSTER_ERR, "Release after %d deploys err %v", l.ndeploy, err)
	}
	return err
}
