// Package cli parses the process's command line, per spec.md §6:
// `<program> <config_file> <node_id> [layers_per_phase]`.
package cli

import (
	"fmt"
	"os"

	plog "github.com/prometheus/common/log"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/distree/spantree/internal/buildinfo"
	"github.com/distree/spantree/internal/logging"
)

// Backend selects which Logger implementation a process runs with.
type Backend string

const (
	BackendDefault Backend = "default"
	BackendLogrus  Backend = "logrus"
	BackendProm    Backend = "prometheus"
)

// Args is the parsed, validated command line for one process.
type Args struct {
	ConfigFile     string
	NodeID         int32
	LayersPerPhase int32
	Backend        Backend
	Verbose        bool
}

// Parse builds the kingpin application and parses argv (normally
// os.Args[1:]). A malformed command line prints the parse error (not the
// usage text) to stderr and exits the process with status 2.
func Parse(argv []string) *Args {
	app := kingpin.New("spantree", "Distributed BFS spanning-tree construction over point-to-point TCP links.")
	app.Version(buildinfo.String())
	app.HelpFlag.Short('h')

	backend := app.Flag("log-backend", "Logging backend: default, logrus, or prometheus.").
		Default(string(BackendDefault)).
		Enum(string(BackendDefault), string(BackendLogrus), string(BackendProm))
	verbose := app.Flag("verbose", "Enable debug-level logging.").Short('v').Bool()

	// The prometheus/common/log backend carries its own kingpin flags
	// (--log.level, --log.format); registering them here lets --log-backend
	// prometheus be tuned the same way the teacher's own transport layer
	// configures it.
	plog.AddFlags(app)

	configFile := app.Arg("config_file", "Graph configuration file.").Required().String()
	nodeID := app.Arg("node_id", "This process's vertex id.").Required().Int32()
	layersPerPhase := app.Arg("layers_per_phase", "Hybrid variant layers-per-phase K (default 1, i.e. layered).").Default("1").Int32()

	if _, err := app.Parse(argv); err != nil {
		fmt.Fprintf(os.Stderr, "spantree: %v\n", err)
		os.Exit(2)
	}

	return &Args{
		ConfigFile:     *configFile,
		NodeID:         *nodeID,
		LayersPerPhase: *layersPerPhase,
		Backend:        Backend(*backend),
		Verbose:        *verbose,
	}
}

// NewLogger builds the Logger named by a.Backend, toggling debug output per
// a.Verbose.
func (a *Args) NewLogger() logging.Logger {
	var l logging.Logger
	switch a.Backend {
	case BackendLogrus:
		l = logging.NewLogrusLogger()
	case BackendProm:
		l = logging.NewPrometheusLogger()
	default:
		l = logging.NewDefaultLogger()
	}
	l.ToggleDebug(a.Verbose)
	return l
}
