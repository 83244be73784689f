// The minerperf command sweeps a mining cluster over worker counts and
// difficulties, measuring blocks mined per window at each grid point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"minerperf/benchmarks"
	"minerperf/benchresults"
	"minerperf/chart"
	"minerperf/cluster"
	"minerperf/config"
	"minerperf/counterclnt"
	db "minerperf/debug"
)

const (
	EXIT_OK     = 0
	EXIT_FATAL  = 1
	EXIT_CONFIG = 2
)

type args struct {
	root         string
	addrs        string
	params       string
	outDir       string
	counts       []int
	difficulties []int
	cfg          benchmarks.ExperimentConfig
	stopBetween  bool
}

func secs(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func parseIntList(s string) ([]int, error) {
	vs := make([]int, 0)
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad list element %q: %v", f, err)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func parseArgs(argv []string, stderr io.Writer) (*args, error) {
	fs := flag.NewFlagSet("minerperf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	a := &args{}
	duration := fs.Int("duration", 60, "Measurement window per grid point, in seconds")
	counts := fs.String("counts", "1,3,5,7", "Comma-separated worker counts")
	diffs := fs.String("difficulties", "3,4,5", "Comma-separated difficulties")
	port := fs.Int("port", 8001, "Miner RPC port on the observer node")
	warmup := fs.Float64("warmup", 0, "Seconds to wait after deploy before the first sample")
	readyTimeout := fs.Float64("ready-timeout", 45, "Seconds to wait for the observer to answer")
	pollInterval := fs.Float64("poll-interval", 1, "Seconds between readiness polls")
	progress := fs.Float64("progress-interval", 10, "Seconds between intermediate chain_length samples during the window (0 to disable)")
	fs.StringVar(&a.outDir, "out-dir", "", "Where to write JSON/CSV/PNG (default: logs/perf under -root)")
	fs.BoolVar(&a.stopBetween, "stop-between", false, "Stop miners between each experiment (slower, cleaner)")
	fs.StringVar(&a.root, "root", ".", "Project root; commands run here and relative paths resolve here")
	fs.StringVar(&a.addrs, "addrs", "", "Node address file (default: minerip.txt under -root)")
	fs.StringVar(&a.params, "config", "", "YAML file overriding harness params")
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	var err error
	if a.counts, err = parseIntList(*counts); err != nil {
		return nil, config.Configf("-counts: %v", err)
	}
	if a.difficulties, err = parseIntList(*diffs); err != nil {
		return nil, config.Configf("-difficulties: %v", err)
	}
	a.cfg = benchmarks.ExperimentConfig{
		Duration:         time.Duration(*duration) * time.Second,
		Port:             *port,
		Warmup:           secs(*warmup),
		ReadyTimeout:     secs(*readyTimeout),
		PollInterval:     secs(*pollInterval),
		ProgressInterval: secs(*progress),
	}
	if a.root, err = filepath.Abs(a.root); err != nil {
		return nil, config.Configf("root: %v", err)
	}
	return a, nil
}

func (a *args) resolve(pn, dflt string) string {
	if pn == "" {
		pn = dflt
	}
	if filepath.IsAbs(pn) {
		return pn
	}
	return filepath.Join(a.root, pn)
}

func writeOutputs(res *benchresults.Results, a *args, p *config.Params, runDir string, stdout io.Writer) error {
	jsonPath := filepath.Join(runDir, p.Files.JSON)
	csvPath := filepath.Join(runDir, p.Files.CSV)
	pngPath := filepath.Join(runDir, p.Files.PNG)
	cfgPath := filepath.Join(runDir, p.Files.CONFIG)
	if err := benchresults.WriteJSON(jsonPath, res); err != nil {
		return err
	}
	if err := benchresults.WriteCSV(csvPath, res); err != nil {
		return err
	}
	title := fmt.Sprintf("Blocks mined in %ds (log scale)\n(grouped by miner_count)", int64(a.cfg.Duration.Seconds()))
	if err := chart.Render(res, a.counts, a.difficulties, title, p, pngPath); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	snap := fmt.Sprintf("{\n\"plan\": %v,\n\"experiment\": %v,\n\"params\": %v\n}\n",
		benchmarks.NewSweepPlan(a.difficulties, a.counts), mustJSON(&a.cfg), p)
	if err := benchresults.WriteFileAtomic(cfgPath, func(w io.Writer) error {
		_, err := io.WriteString(w, snap)
		return err
	}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nOutputs\n")
	fmt.Fprintf(stdout, "Dir:  %v\n", runDir)
	for _, o := range []struct{ tag, pn string }{{"JSON", jsonPath}, {"CSV", csvPath}, {"PNG", pngPath}} {
		sz := ""
		if fi, err := os.Stat(o.pn); err == nil {
			sz = " (" + humanize.Bytes(uint64(fi.Size())) + ")"
		}
		fmt.Fprintf(stdout, "%-5s %v%v\n", o.tag+":", o.pn, sz)
	}
	return nil
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	a, err := parseArgs(argv, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "minerperf: %v\n", err)
		}
		return EXIT_CONFIG
	}
	p, err := config.NewParams(a.params)
	if err != nil {
		fmt.Fprintf(stderr, "minerperf: %v\n", err)
		return EXIT_CONFIG
	}
	addrs, err := cluster.ReadAddrs(a.resolve(a.addrs, p.Files.ADDRS))
	if err != nil {
		fmt.Fprintf(stderr, "minerperf: %v\n", err)
		return EXIT_CONFIG
	}
	o := counterclnt.NewExecOracle(a.root, p.Client.PATH, p.Client.ARGS, p.Client.FIELD)
	if err := o.CheckClient(); err != nil {
		fmt.Fprintf(stderr, "minerperf: %v\n", err)
		return EXIT_CONFIG
	}
	cc := cluster.NewCmdCluster(a.root, p.Cluster.DEPLOY_CMD, p.Cluster.STOP_CMD, p.Cluster.DEPLOY_TIMEOUT, p.Cluster.STOP_TIMEOUT)
	cc.SetOutput(stdout)
	runner := benchmarks.NewRunner(o, addrs, p, stdout)
	sweep := benchmarks.NewSweep(benchmarks.NewSweepPlan(a.difficulties, a.counts), &a.cfg, a.stopBetween, cc, runner, stdout)
	if err := sweep.Validate(); err != nil {
		fmt.Fprintf(stderr, "minerperf: %v\n", err)
		return EXIT_CONFIG
	}
	db.DPrintf(db.SWEEP, "Sweep params:\n%v", p)

	start := time.Now()
	res, serr := sweep.Run(ctx)
	if serr != nil {
		fmt.Fprintf(stderr, "minerperf: sweep aborted: %v\n", serr)
		if errors.Is(serr, config.ErrConfig) {
			return EXIT_CONFIG
		}
		if res == nil || res.Len() == 0 {
			return EXIT_FATAL
		}
		fmt.Fprintf(stderr, "minerperf: writing %d partial results\n", res.Len())
	}
	// The run dir only exists once there is something to put in it.
	runDir, err := benchresults.NewRunDir(a.resolve(a.outDir, p.Files.OUT_DIR), start)
	if err != nil {
		fmt.Fprintf(stderr, "minerperf: %v\n", err)
		return EXIT_FATAL
	}
	db.DPrintf(db.SWEEP, "Run dir %v", runDir)
	if err := writeOutputs(res, a, p, runDir, stdout); err != nil {
		fmt.Fprintf(stderr, "minerperf: %v\n", err)
		return EXIT_FATAL
	}
	if sums, err := benchresults.Summarize(res); err == nil && len(sums) > 0 {
		fmt.Fprintf(stdout, "\nSummary\n%v", benchresults.SummaryString(sums))
	}
	if serr != nil {
		return EXIT_FATAL
	}
	return EXIT_OK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	db.Sync()
	os.Exit(code)
}
