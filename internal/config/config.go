// Package config loads the load profiles driven through a dispatcher by the
// tieredpool command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomasbasham/tieredpool"
)

// Profile describes a batch of jobs to submit to a dispatcher.
type Profile struct {
	LogLevel   string `yaml:"log_level"`   // Log level: debug, info, warn, error
	NamePrefix string `yaml:"name_prefix"` // Worker name prefix (default "RG")
	Jobs       []Job  `yaml:"jobs"`
}

// Job is a group of identical tasks submitted to one tier.
type Job struct {
	Name      string        `yaml:"name"`
	Tier      string        `yaml:"tier"`
	Count     int           `yaml:"count"`
	Duration  time.Duration `yaml:"duration"`   // How long each task runs
	FailEvery int           `yaml:"fail_every"` // Every nth task fails, 0 for never
}

// Default returns a profile that floods every tier at once, so the effect of
// strict priority is visible in the order tiers start.
func Default() Profile {
	return Profile{
		LogLevel:   "info",
		NamePrefix: tieredpool.DefaultNamePrefix,
		Jobs: []Job{
			{Name: "bulk-export", Tier: "low", Count: 12, Duration: 20 * time.Millisecond},
			{Name: "reindex", Tier: "medium", Count: 8, Duration: 20 * time.Millisecond, FailEvery: 4},
			{Name: "interactive", Tier: "high", Count: 6, Duration: 10 * time.Millisecond},
		},
	}
}

// Load reads and validates the profile at path.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML profile. Fields left out keep their
// [Default] values, except jobs, which replace the defaults when present.
func Parse(data []byte) (Profile, error) {
	p := Default()
	p.Jobs = nil
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if len(p.Jobs) == 0 {
		p.Jobs = Default().Jobs
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that every job can be submitted.
func (p Profile) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(p.Jobs))
	for i, job := range p.Jobs {
		if job.Name == "" {
			errs = append(errs, fmt.Errorf("job %d: name is required", i))
		} else if seen[job.Name] {
			errs = append(errs, fmt.Errorf("job %q: duplicate name", job.Name))
		}
		seen[job.Name] = true

		if !tieredpool.ParseTier(job.Tier).IsValid() {
			errs = append(errs, fmt.Errorf("job %q: unknown tier %q", job.Name, job.Tier))
		}
		if job.Count <= 0 {
			errs = append(errs, fmt.Errorf("job %q: count must be positive", job.Name))
		}
		if job.Duration < 0 {
			errs = append(errs, fmt.Errorf("job %q: duration must not be negative", job.Name))
		}
		if job.FailEvery < 0 {
			errs = append(errs, fmt.Errorf("job %q: fail_every must not be negative", job.Name))
		}
	}
	return errors.Join(errs...)
}

// TaskTier returns the tier the job submits to.
func (j Job) TaskTier() tieredpool.Tier {
	return tieredpool.ParseTier(j.Tier)
}
