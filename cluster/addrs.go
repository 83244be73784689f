package cluster

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"minerperf/config"
	db "minerperf/debug"
)

// ReadAddrs reads the node address pool, one address per line, in file
// order. Blank lines and lines starting with '#' are skipped.
func ReadAddrs(pn string) ([]string, error) {
	b, err := os.ReadFile(pn)
	if err != nil {
		return nil, config.Configf("missing node address file %v: %v", pn, err)
	}
	addrs, err := ParseAddrs(b)
	if err != nil {
		return nil, config.Configf("node address file %v: %v", pn, err)
	}
	db.DPrintf(db.NODES, "Read %d addrs from %v", len(addrs), pn)
	return addrs, nil
}

func ParseAddrs(b []byte) ([]string, error) {
	addrs := make([]string, 0)
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		a := strings.TrimSpace(sc.Text())
		if a == "" || strings.HasPrefix(a, "#") {
			continue
		}
		addrs = append(addrs, a)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return addrs, nil
}
