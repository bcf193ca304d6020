// Package config loads the small set of run parameters StreamPref reads
// once at startup, mirroring control/config.py's role in original_source:
// a handful of knobs (default algorithm, SeqTree pruning, stats-file path)
// held in one place rather than threaded through every call site. Grounded
// on the small env/flag-driven config structs scattered across the teacher
// (e.g. database/config.go's FieldConstraint holds static shape, not env
// vars, so this package instead follows the plainer os.Getenv convention
// used by cmd/genji's flag-based entry points).
package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/streampref/streampref/prefop"
)

// Env var names read by Load.
const (
	EnvAlgorithm      = "STREAMPREF_ALGORITHM"
	EnvSeqAlgorithm   = "STREAMPREF_SEQ_ALGORITHM"
	EnvSeqTreePruning = "STREAMPREF_SEQTREE_PRUNING"
	EnvStatsFile      = "STREAMPREF_STATS_FILE"
	EnvMetricsAddr    = "STREAMPREF_METRICS_ADDR"
	EnvHTTPAddr       = "STREAMPREF_HTTP_ADDR"
)

// ErrUnknownAlgorithm is returned when an env var names an algorithm this
// build does not recognize.
var ErrUnknownAlgorithm = errors.New("config: unknown algorithm name")

// Config holds the run parameters read once at startup.
type Config struct {
	// Algorithm selects the record-level best/top-k strategy (spec.md §4.7).
	Algorithm prefop.Algorithm
	// SeqAlgorithm selects the sequence-level strategy (spec.md §4.8).
	SeqAlgorithm prefop.SeqAlgorithm
	// SeqTreePruning enables the SeqTreePruning variant when SeqAlgorithm
	// already names a SeqTree-based strategy.
	SeqTreePruning bool
	// StatsFile, if non-empty, is the path a statsfile.Writer appends
	// per-tick comparison statistics to (spec.md §6).
	StatsFile string
	// MetricsAddr, if non-empty, is the listen address for the Prometheus
	// /metrics endpoint.
	MetricsAddr string
	// HTTPAddr, if non-empty, is the listen address for the read-only
	// inspection API.
	HTTPAddr string
}

// Default returns the built-in defaults: depth-search dominance, depth-search
// sequence dominance, no pruning, no stats file, no servers.
func Default() Config {
	return Config{
		Algorithm:    prefop.AlgDepthSearch,
		SeqAlgorithm: prefop.SeqAlgDepthSearch,
	}
}

var algorithmNames = map[string]prefop.Algorithm{
	"depth-search": prefop.AlgDepthSearch,
	"partition":    prefop.AlgPartition,
	"inc-ancestors": prefop.AlgIncAncestors,
	"inc-partition": prefop.AlgIncPartition,
	"inc-graph":     prefop.AlgIncGraph,
	"inc-graph-no-transitive": prefop.AlgIncGraphNoTransitive,
}

var seqAlgorithmNames = map[string]prefop.SeqAlgorithm{
	"depth-search": prefop.SeqAlgDepthSearch,
	"seqtree":      prefop.SeqAlgSeqTree,
}

// Load builds a Config from Default(), overridden by whichever of the Env*
// variables are set in the process environment.
func Load() (Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvAlgorithm); v != "" {
		alg, ok := algorithmNames[v]
		if !ok {
			return Config{}, errors.Wrapf(ErrUnknownAlgorithm, "%s=%q", EnvAlgorithm, v)
		}
		cfg.Algorithm = alg
	}

	if v := os.Getenv(EnvSeqAlgorithm); v != "" {
		alg, ok := seqAlgorithmNames[v]
		if !ok {
			return Config{}, errors.Wrapf(ErrUnknownAlgorithm, "%s=%q", EnvSeqAlgorithm, v)
		}
		cfg.SeqAlgorithm = alg
	}

	if v := os.Getenv(EnvSeqTreePruning); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "%s=%q", EnvSeqTreePruning, v)
		}
		cfg.SeqTreePruning = b
		if cfg.SeqTreePruning && cfg.SeqAlgorithm == prefop.SeqAlgSeqTree {
			cfg.SeqAlgorithm = prefop.SeqAlgSeqTreePruning
		}
	}

	cfg.StatsFile = os.Getenv(EnvStatsFile)
	cfg.MetricsAddr = os.Getenv(EnvMetricsAddr)
	cfg.HTTPAddr = os.Getenv(EnvHTTPAddr)

	return cfg, nil
}
