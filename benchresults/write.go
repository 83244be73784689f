package benchresults

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/thanhpk/randstr"

	db "minerperf/debug"
)

const RUN_DIR_LAYOUT = "20060102_150405"

// Column set of the tabular record.
var CSVHeader = []string{
	"count",
	"difficulty",
	"duration_sec",
	"start_chain_length",
	"end_chain_length",
	"blocks_mined",
	"deploy_elapsed_sec",
	"ips",
	"started_at",
	"ended_at",
}

// WriteFileAtomic writes pn through wf into a temporary file in the same
// directory, then renames it into place. Either the whole file appears
// or nothing does.
func WriteFileAtomic(pn string, wf func(w io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(pn), "."+filepath.Base(pn)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %v: %v", pn, err)
	}
	tmp := f.Name()
	ok := false
	defer func() {
		if !ok {
			os.Remove(tmp)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := wf(bw); err != nil {
		f.Close()
		return fmt.Errorf("write %v: %w", pn, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %v: %v", pn, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %v: %v", pn, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %v: %v", pn, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return fmt.Errorf("chmod %v: %v", pn, err)
	}
	if err := os.Rename(tmp, pn); err != nil {
		return fmt.Errorf("rename %v: %v", pn, err)
	}
	ok = true
	return nil
}

// WriteJSON writes the results as an indented JSON array.
func WriteJSON(pn string, res *Results) error {
	err := WriteFileAtomic(pn, func(w io.Writer) error {
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(res.All())
	})
	if err == nil {
		db.DPrintf(db.RESULTS, "Wrote %d results to %v", res.Len(), pn)
	}
	return err
}

// ReadJSON reads back a file written by WriteJSON.
func ReadJSON(pn string) (*Results, error) {
	b, err := os.ReadFile(pn)
	if err != nil {
		return nil, err
	}
	rs := make([]RunResult, 0)
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal %v: %v", pn, err)
	}
	return &Results{rs: rs}, nil
}

func csvRow(r RunResult) []string {
	return []string{
		strconv.Itoa(r.Count),
		strconv.Itoa(r.Difficulty),
		strconv.Itoa(r.DurationSec),
		strconv.FormatInt(r.StartChainLength, 10),
		strconv.FormatInt(r.EndChainLength, 10),
		strconv.FormatInt(r.BlocksMined, 10),
		strconv.FormatFloat(r.DeployElapsedSec, 'f', -1, 64),
		strings.Join(r.IPs, ","),
		r.StartedAt,
		r.EndedAt,
	}
}

// WriteCSV writes one header row and one row per result, with the node
// addresses joined into one field.
func WriteCSV(pn string, res *Results) error {
	err := WriteFileAtomic(pn, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(CSVHeader); err != nil {
			return err
		}
		for _, r := range res.rs {
			if err := cw.Write(csvRow(r)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err == nil {
		db.DPrintf(db.RESULTS, "Wrote %d rows to %v", res.Len(), pn)
	}
	return err
}

// NewRunDir creates a fresh run directory under base, named by now. An
// existing directory is never reused.
func NewRunDir(base string, now time.Time) (string, error) {
	if err := os.MkdirAll(base, 0777); err != nil {
		return "", fmt.Errorf("make out dir %v: %v", base, err)
	}
	name := now.UTC().Format(RUN_DIR_LAYOUT)
	pn := filepath.Join(base, name)
	for i := 0; ; i++ {
		err := os.Mkdir(pn, 0777)
		if err == nil {
			return pn, nil
		}
		if !errors.Is(err, os.ErrExist) || i >= 8 {
			return "", fmt.Errorf("make run dir %v: %v", pn, err)
		}
		pn = filepath.Join(base, name+"_"+randstr.Hex(3))
	}
}
