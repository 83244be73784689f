// Package counterclnt reads a node's chain length through the external
// counter client.
package counterclnt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"minerperf/config"
	db "minerperf/debug"
)

// A Reading is the outcome of one counter read. OK is false when the node
// could not be read, for whatever reason.
type Reading struct {
	Len int64
	OK  bool
}

func Unavailable() Reading {
	return Reading{}
}

func Value(n int64) Reading {
	return Reading{Len: n, OK: true}
}

func (r Reading) String() string {
	if !r.OK {
		return "unavailable"
	}
	return fmt.Sprintf("%d", r.Len)
}

// Grace period for the client's output pipes after it is killed.
const waitDelay = 100 * time.Millisecond

type Oracle interface {
	ChainLength(ctx context.Context, addr string, timeout time.Duration) Reading
}

// ExecOracle runs the counter client once per read and decodes its JSON
// output.
type ExecOracle struct {
	root  string
	path  string
	args  []string
	field string
}

func NewExecOracle(root, path string, args []string, field string) *ExecOracle {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return &ExecOracle{root: root, path: path, args: args, field: field}
}

// CheckClient verifies that the client executable exists.
func (eo *ExecOracle) CheckClient() error {
	fi, err := os.Stat(eo.path)
	if err != nil {
		return config.Configf("missing counter client %v: %v", eo.path, err)
	}
	if fi.IsDir() {
		return config.Configf("counter client %v is a directory", eo.path)
	}
	return nil
}

func (eo *ExecOracle) ChainLength(ctx context.Context, addr string, timeout time.Duration) Reading {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	r := strings.NewReplacer("{addr}", addr)
	args := make([]string, len(eo.args))
	for i, a := range eo.args {
		args[i] = r.Replace(a)
	}
	cmd := exec.CommandContext(ctx, eo.path, args...)
	cmd.Dir = eo.root
	cmd.WaitDelay = waitDelay
	b, err := cmd.Output()
	if err != nil {
		db.DPrintf(db.COUNTERCLNT_ERR, "%v: %v", addr, err)
		return Unavailable()
	}
	n, err := ParseField(b, eo.field)
	if err != nil {
		db.DPrintf(db.COUNTERCLNT_ERR, "%v: %v", addr, err)
		return Unavailable()
	}
	db.DPrintf(db.COUNTERCLNT, "%v: %v=%d", addr, eo.field, n)
	return Value(n)
}

// ParseField decodes a JSON object and returns its integer field.
func ParseField(b []byte, field string) (int64, error) {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	m := make(map[string]interface{})
	if err := d.Decode(&m); err != nil {
		return 0, fmt.Errorf("decode: %v", err)
	}
	v, ok := m[field]
	if !ok {
		return 0, fmt.Errorf("no field %q", field)
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("field %q not a number: %v", field, v)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("field %q: %v", field, err)
	}
	return n, nil
}
