package benchmarks

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"minerperf/config"
)

// ExperimentConfig parameterizes one grid point.
type ExperimentConfig struct {
	Count            int           `json:"count"`
	Difficulty       int           `json:"difficulty"`
	Duration         time.Duration `json:"duration"`
	Port             int           `json:"port"`
	Warmup           time.Duration `json:"warmup"`
	ReadyTimeout     time.Duration `json:"ready_timeout"`
	PollInterval     time.Duration `json:"poll_interval"`
	ProgressInterval time.Duration `json:"progress_interval"`
}

func (cfg *ExperimentConfig) String() string {
	return fmt.Sprintf("&{ Count:%v Difficulty:%v Duration:%v Port:%v Warmup:%v ReadyTimeout:%v PollInterval:%v ProgressInterval:%v }",
		cfg.Count, cfg.Difficulty, cfg.Duration, cfg.Port, cfg.Warmup, cfg.ReadyTimeout, cfg.PollInterval, cfg.ProgressInterval)
}

// Progress sampling runs only with a positive interval and window.
func (cfg *ExperimentConfig) sampleProgress() bool {
	return cfg.ProgressInterval > 0 && cfg.Duration > 0
}

// WithPoint returns a copy of cfg for (difficulty, count).
func (cfg *ExperimentConfig) WithPoint(pt Tpoint) *ExperimentConfig {
	c := *cfg
	c.Count = pt.Count
	c.Difficulty = pt.Difficulty
	return &c
}

func (cfg *ExperimentConfig) validate() error {
	if cfg.Duration < 0 {
		return config.Configf("negative duration %v", cfg.Duration)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return config.Configf("bad port %d", cfg.Port)
	}
	if cfg.Warmup < 0 || cfg.PollInterval < 0 || cfg.ProgressInterval < 0 {
		return config.Configf("negative interval in %v", cfg)
	}
	if cfg.ReadyTimeout <= 0 {
		return config.Configf("ready timeout must be positive: %v", cfg.ReadyTimeout)
	}
	return nil
}

// A grid point.
type Tpoint struct {
	Difficulty int `json:"difficulty"`
	Count      int `json:"count"`
}

// SweepPlan is difficulties × counts, difficulty outer, both in list
// order.
type SweepPlan struct {
	Difficulties []int `json:"difficulties"`
	Counts       []int `json:"counts"`
}

func NewSweepPlan(difficulties, counts []int) *SweepPlan {
	return &SweepPlan{Difficulties: slices.Clone(difficulties), Counts: slices.Clone(counts)}
}

func (sp *SweepPlan) Points() []Tpoint {
	pts := make([]Tpoint, 0, len(sp.Difficulties)*len(sp.Counts))
	for _, d := range sp.Difficulties {
		for _, c := range sp.Counts {
			pts = append(pts, Tpoint{Difficulty: d, Count: c})
		}
	}
	return pts
}

// Validate checks the plan against a pool of npool node addresses.
func (sp *SweepPlan) Validate(npool int) error {
	if len(sp.Counts) == 0 {
		return config.Configf("empty counts list")
	}
	if len(sp.Difficulties) == 0 {
		return config.Configf("empty difficulties list")
	}
	if err := checkPositiveUnique("count", sp.Counts); err != nil {
		return err
	}
	if err := checkPositiveUnique("difficulty", sp.Difficulties); err != nil {
		return err
	}
	if mx := slices.Max(sp.Counts); mx > npool {
		return config.Configf("requested COUNT=%d but only %d node addresses available", mx, npool)
	}
	return nil
}

func checkPositiveUnique(what string, vs []int) error {
	if slices.Min(vs) <= 0 {
		return config.Configf("%v must be positive: %v", what, vs)
	}
	s := slices.Clone(vs)
	slices.Sort(s)
	if len(slices.Compact(s)) != len(vs) {
		return config.Configf("duplicate %v in %v", what, vs)
	}
	return nil
}

func (sp *SweepPlan) String() string {
	b, err := json.Marshal(sp)
	if err != nil {
		return fmt.Sprintf("%v x %v", sp.Difficulties, sp.Counts)
	}
	return string(b)
}
