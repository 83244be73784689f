package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	db "minerperf/debug"
)

// ErrConfig marks errors detected before any cluster interaction.
var ErrConfig = errors.New("configuration error")

// Configf returns an error wrapping ErrConfig.
func Configf(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, v...))
}

// Default harness params. Command templates may use {count},
// {difficulty} and {addr} placeholders.
var Default = `
cluster:
  deploy_cmd: ["make", "deploy_miner", "COUNT={count}", "DIFFICULTY={difficulty}"]
  stop_cmd: ["make", "stop_miner"]
  deploy_timeout: 0s
  stop_timeout: 120s

client:
  path: bin/client
  args: ["blockchain", "-miner", "{addr}"]
  field: chain_length
  min_call_timeout: 500ms
  max_call_timeout: 2s
  progress_timeout: 2s

files:
  addrs: minerip.txt
  out_dir: logs/perf
  json: results.json
  csv: results.csv
  png: plot.png
  config: config.json

chart:
  width_in: 9
  height_in: 5.5
  dpi: 150
  group_width: 0.8
  label_font_pt: 8
  zero_label_y: 0.8
  floor: 0.5
`

type Params struct {
	Cluster struct {
		// Deploy command, run from the root dir.
		DEPLOY_CMD []string `yaml:"deploy_cmd" json:"deploy_cmd"`
		// Teardown command, run from the root dir.
		STOP_CMD []string `yaml:"stop_cmd" json:"stop_cmd"`
		// Upper bound on a deploy call; 0 means unbounded.
		DEPLOY_TIMEOUT time.Duration `yaml:"deploy_timeout" json:"deploy_timeout"`
		STOP_TIMEOUT   time.Duration `yaml:"stop_timeout" json:"stop_timeout"`
	} `yaml:"cluster" json:"cluster"`
	Client struct {
		// Counter client executable, relative to the root dir.
		PATH  string   `yaml:"path" json:"path"`
		ARGS  []string `yaml:"args" json:"args"`
		FIELD string   `yaml:"field" json:"field"`
		// Bounds on the per-call timeout used while polling.
		MIN_CALL_TIMEOUT time.Duration `yaml:"min_call_timeout" json:"min_call_timeout"`
		MAX_CALL_TIMEOUT time.Duration `yaml:"max_call_timeout" json:"max_call_timeout"`
		// Timeout of best-effort reads during the measurement window.
		PROGRESS_TIMEOUT time.Duration `yaml:"progress_timeout" json:"progress_timeout"`
	} `yaml:"client" json:"client"`
	Files struct {
		ADDRS   string `yaml:"addrs" json:"addrs"`
		OUT_DIR string `yaml:"out_dir" json:"out_dir"`
		JSON    string `yaml:"json" json:"json"`
		CSV     string `yaml:"csv" json:"csv"`
		PNG     string `yaml:"png" json:"png"`
		CONFIG  string `yaml:"config" json:"config"`
	} `yaml:"files" json:"files"`
	Chart struct {
		WIDTH_IN  float64 `yaml:"width_in" json:"width_in"`
		HEIGHT_IN float64 `yaml:"height_in" json:"height_in"`
		DPI       int     `yaml:"dpi" json:"dpi"`
		// Share of the spacing between difficulty categories taken by one
		// group of bars; in (0, 1].
		GROUP_WIDTH   float64 `yaml:"group_width" json:"group_width"`
		LABEL_FONT_PT float64 `yaml:"label_font_pt" json:"label_font_pt"`
		// Annotation height for bars of height 0 on the log axis.
		ZERO_LABEL_Y float64 `yaml:"zero_label_y" json:"zero_label_y"`
		// Bottom of the log axis; bars start here.
		FLOOR float64 `yaml:"floor" json:"floor"`
	} `yaml:"chart" json:"chart"`
}

// ReadConfig decodes params on top of p.
func (p *Params) ReadConfig(params string) error {
	d := yaml.NewDecoder(strings.NewReader(params))
	d.KnownFields(true)
	if err := d.Decode(p); err != nil {
		return Configf("yaml decode: %v", err)
	}
	return p.validate()
}

// NewParams returns the default params, overlaid with the YAML file at pn
// when pn is non-empty.
func NewParams(pn string) (*Params, error) {
	p := &Params{}
	if err := p.ReadConfig(Default); err != nil {
		db.DFatalf("Default params: %v", err)
	}
	if pn == "" {
		return p, nil
	}
	b, err := os.ReadFile(pn)
	if err != nil {
		return nil, Configf("read params %v: %v", pn, err)
	}
	if err := p.ReadConfig(string(b)); err != nil {
		return nil, fmt.Errorf("%v: %w", pn, err)
	}
	db.DPrintf(db.CONFIG, "Loaded params from %v", pn)
	return p, nil
}

func (p *Params) validate() error {
	if len(p.Cluster.DEPLOY_CMD) == 0 {
		return Configf("empty deploy_cmd")
	}
	if len(p.Cluster.STOP_CMD) == 0 {
		return Configf("empty stop_cmd")
	}
	if p.Client.PATH == "" || p.Client.FIELD == "" {
		return Configf("client path and field required")
	}
	if p.Client.MIN_CALL_TIMEOUT <= 0 || p.Client.MAX_CALL_TIMEOUT < p.Client.MIN_CALL_TIMEOUT {
		return Configf("bad call timeout bounds [%v, %v]", p.Client.MIN_CALL_TIMEOUT, p.Client.MAX_CALL_TIMEOUT)
	}
	if p.Chart.FLOOR <= 0 || p.Chart.ZERO_LABEL_Y <= p.Chart.FLOOR {
		return Configf("chart needs 0 < floor < zero_label_y, got %v and %v", p.Chart.FLOOR, p.Chart.ZERO_LABEL_Y)
	}
	if p.Chart.GROUP_WIDTH <= 0 || p.Chart.GROUP_WIDTH > 1 {
		return Configf("chart group_width %v not in (0, 1]", p.Chart.GROUP_WIDTH)
	}
	if p.Chart.WIDTH_IN <= 0 || p.Chart.HEIGHT_IN <= 0 || p.Chart.DPI <= 0 {
		return Configf("chart geometry must be positive")
	}
	return nil
}

func (p *Params) String() string {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		db.DFatalf("Marshal params: %v", err)
	}
	return string(b)
}
