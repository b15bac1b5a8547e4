package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/dataflowgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dataflowgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
DataFlowGo - incremental data flow execution.

Runs a flow once against a delta of data items. Builders whose inputs
changed are re-run until the target item is produced or nothing new appears.

Usage:
  dataflowgo [options] [FLOW_PATH]

Arguments:
  FLOW_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets stringList
	flowFlag := flagSet.String("flow", "", "Path to the flow file or directory.")
	fFlag := flagSet.String("f", "", "Path to the flow file or directory (shorthand).")
	dataFlag := flagSet.String("data", "", "YAML or JSON file with the delta items.")
	flagSet.Var(&sets, "set", "Delta item as name=value. Repeatable; overrides -data.")
	stateFlag := flagSet.String("state", "", "File that persists the flow instance between runs.")
	eventsURLFlag := flagSet.String("events-url", "", "socket.io server that receives run events.")
	eventsNSFlag := flagSet.String("events-namespace", "/", "socket.io namespace for run events.")
	eventsInsecureFlag := flagSet.Bool("events-insecure", false, "Skip TLS verification for the events server.")
	eventsRequiredFlag := flagSet.Bool("events-required", false, "Fail the run when events cannot be published.")
	eventsTimeoutFlag := flagSet.Duration("events-timeout", 15*time.Second, "How long to wait for the events server.")
	earlyExitFlag := flagSet.Bool("layer-early-exit", false, "Stop scanning a layer at the first builder with missing inputs.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *flowFlag != "" {
		path = *flowFlag
	} else if *fFlag != "" {
		path = *fFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Flow path determined.", "path", path)

	if path == "" {
		slog.Debug("No flow path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	for _, s := range sets {
		if name, _, ok := strings.Cut(s, "="); !ok || strings.TrimSpace(name) == "" {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid -set %q: expected name=value", s)}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		FlowPath:             path,
		DataPath:             *dataFlag,
		Sets:                 sets,
		StatePath:            *stateFlag,
		EventsURL:            *eventsURLFlag,
		EventsNamespace:      *eventsNSFlag,
		EventsInsecure:       *eventsInsecureFlag,
		EventsRequired:       *eventsRequiredFlag,
		EventsConnectTimeout: *eventsTimeoutFlag,
		LayerEarlyExit:       *earlyExitFlag,
		LogFormat:            logFormat,
		LogLevel:             logLevel,
		HealthcheckPort:      *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
