// Package cluster drives the externally managed mining cluster through
// its deploy and teardown commands.
package cluster

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	db "minerperf/debug"
)

type Cluster interface {
	// Deploy starts count workers mining at difficulty.
	Deploy(ctx context.Context, count, difficulty int) error
	// Stop tears the cluster down.
	Stop(ctx context.Context) error
}

type CmdErr struct {
	Cmd    []string
	Err    error
	Stderr string
}

func (e *CmdErr) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%v: %v:\n%s", strings.Join(e.Cmd, " "), e.Err, e.Stderr)
	}
	return fmt.Sprintf("%v: %v", strings.Join(e.Cmd, " "), e.Err)
}

func (e *CmdErr) Unwrap() error {
	return e.Err
}

// CmdCluster runs deploy and stop commands from a root directory.
type CmdCluster struct {
	root          string
	deployCmd     []string
	stopCmd       []string
	deployTimeout time.Duration
	stopTimeout   time.Duration
	wr            io.Writer
}

func NewCmdCluster(root string, deployCmd, stopCmd []string, deployTimeout, stopTimeout time.Duration) *CmdCluster {
	return &CmdCluster{
		root:          root,
		deployCmd:     deployCmd,
		stopCmd:       stopCmd,
		deployTimeout: deployTimeout,
		stopTimeout:   stopTimeout,
		wr:            os.Stdout,
	}
}

// SetOutput redirects command output; nil discards it.
func (cc *CmdCluster) SetOutput(wr io.Writer) {
	cc.wr = wr
}

// Expand replaces {count} and {difficulty} in a command template.
func Expand(tmpl []string, count, difficulty int) []string {
	r := strings.NewReplacer("{count}", strconv.Itoa(count), "{difficulty}", strconv.Itoa(difficulty))
	args := make([]string, len(tmpl))
	for i, a := range tmpl {
		args[i] = r.Replace(a)
	}
	return args
}

func (cc *CmdCluster) Deploy(ctx context.Context, count, difficulty int) error {
	args := Expand(cc.deployCmd, count, difficulty)
	db.DPrintf(db.CLUSTER, "Deploy %v", args)
	return cc.run(ctx, cc.deployTimeout, args)
}

func (cc *CmdCluster) Stop(ctx context.Context) error {
	db.DPrintf(db.CLUSTER, "Stop %v", cc.stopCmd)
	return cc.run(ctx, cc.stopTimeout, cc.stopCmd)
}

func (cc *CmdCluster) run(ctx context.Context, timeout time.Duration, args []string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = cc.root
	if cc.wr != nil {
		cmd.Stdout = cc.wr
		cmd.Stderr = io.MultiWriter(cc.wr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}
	if err := cmd.Run(); err != nil {
		return &CmdErr{Cmd: args, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}
