package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
)

const (
	defaultCoreCapacity = 128
	defaultPIDCapacity  = 128
	envResctrlPath      = "RDTMON_RESCTRL_PATH"
	envCPUPath          = "RDTMON_CPU_PATH"
	envCoreCapacity     = "RDTMON_CORE_CAPACITY"
	envPIDCapacity      = "RDTMON_PID_CAPACITY"
)

// Config aggregates deployment tunables that are not per-run CLI flags.
type Config struct {
	// ResctrlPath overrides the resctrl filesystem mount point.
	// Empty selects the provider default.
	ResctrlPath string
	// CPUPath overrides the sysfs cpu directory used for topology
	// discovery. Empty selects the provider default.
	CPUPath string
	// CoreCapacity caps the number of registered core groups.
	CoreCapacity int
	// PIDCapacity caps the number of registered process targets.
	PIDCapacity int
}

// Load builds a Config from an optional JSON file path plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		CoreCapacity: defaultCoreCapacity,
		PIDCapacity:  defaultPIDCapacity,
	}

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if fileCfg.ResctrlPath != "" {
			cfg.ResctrlPath = fileCfg.ResctrlPath
		}
		if fileCfg.CPUPath != "" {
			cfg.CPUPath = fileCfg.CPUPath
		}
		if fileCfg.CoreCapacity != 0 {
			cfg.CoreCapacity = fileCfg.CoreCapacity
		}
		if fileCfg.PIDCapacity != 0 {
			cfg.PIDCapacity = fileCfg.PIDCapacity
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envResctrlPath); v != "" {
		cfg.ResctrlPath = v
	}
	if v := os.Getenv(envCPUPath); v != "" {
		cfg.CPUPath = v
	}
	if v := os.Getenv(envCoreCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CoreCapacity = n
		} else {
			log.Printf("invalid %s value %q", envCoreCapacity, v)
		}
	}
	if v := os.Getenv(envPIDCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PIDCapacity = n
		} else {
			log.Printf("invalid %s value %q", envPIDCapacity, v)
		}
	}
}

type fileConfig struct {
	ResctrlPath  string `json:"resctrl_path"`
	CPUPath      string `json:"cpu_path"`
	CoreCapacity int    `json:"core_capacity"`
	PIDCapacity  int    `json:"pid_capacity"`
}

func loadFromFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}

	if raw.CoreCapacity < 0 {
		return cfg, errors.New("core_capacity must be > 0")
	}
	if raw.PIDCapacity < 0 {
		return cfg, errors.New("pid_capacity must be > 0")
	}

	cfg.ResctrlPath = raw.ResctrlPath
	cfg.CPUPath = raw.CPUPath
	cfg.CoreCapacity = raw.CoreCapacity
	cfg.PIDCapacity = raw.PIDCapacity
	return cfg, nil
}
