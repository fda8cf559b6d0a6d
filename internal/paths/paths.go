package paths

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/cruciblehq/tracebackd/internal/listener"
)

const (

	// Name used for directory and file naming.
	daemonName = "tracebackd"

	// File name of the socket inside the runtime directory.
	socketName = daemonName + ".sock"

	// Default permission mode for directories. Senders running as other users
	// must be able to reach the socket.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Directory holding the socket and PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/tracebackd
//	other:   $TMPDIR/tracebackd-<uid>
//
// The per-user temporary directory is also used when the XDG runtime
// directory is so deep that the socket path would not fit in a socket
// address (see [listener.MaxPathLen]).
func Runtime() string {
	return runtimeIn(xdg.RuntimeDir)
}

func runtimeIn(base string) string {
	if base != "" {
		dir := filepath.Join(base, daemonName)
		if fits(dir) {
			return dir
		}
	}
	return filepath.Join(os.TempDir(), daemonName+"-"+strconv.Itoa(os.Getuid()))
}

// Whether a socket in dir can be bound.
func fits(dir string) bool {
	return len(filepath.Join(dir, socketName)) <= listener.MaxPathLen
}

// Default path to the Unix domain socket senders connect to.
func Socket() string {
	return filepath.Join(Runtime(), socketName)
}

// Default path to the PID file, next to the socket.
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}

// Path to the optional JSON configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/tracebackd/config.json
//	macOS:   ~/Library/Application Support/tracebackd/config.json
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, daemonName, "config.json")
}
