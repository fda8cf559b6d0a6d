// Parses flags and configures logging for the tracebackd daemon.
//
// The daemon accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//	    --log-json  Write logs as JSON.
//
// Flags may also be given through TRACEBACKD_* environment variables or a
// JSON configuration file in the XDG config directory. Flags override
// build-time defaults set via linker flags. After parsing, the global
// logger is reconfigured before the selected command runs.
package cli
