package config

import "runtime"

// Concurrency resolution chain (highest priority first):
//   1. CLI flag (--concurrency)
//   2. Environment variable (TABULATE_CONCURRENCY)
//   3. Estimation from the number of processors (this file)

// ApplyAdaptiveLimits fills the limits left at their zero default with
// values estimated from the hardware.
func ApplyAdaptiveLimits(cfg AppConfig) AppConfig {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = EstimateFetchConcurrency()
	}
	return cfg
}

// EstimateFetchConcurrency returns the number of fetch tasks to run at
// once. Fetches wait on the network, so the estimate exceeds the processor
// count, and it is capped to stay polite with the upstream services.
func EstimateFetchConcurrency() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU <= 2:
		return 8
	case numCPU <= 8:
		return numCPU * 4
	default:
		return 32
	}
}
