// Provides default locations for the daemon's files.
//
// The socket and PID file live in the user's XDG runtime directory, or in a
// per-user temporary directory when there is none or when the resulting
// socket path would be too long to bind. The configuration file follows XDG
// conventions on Linux and platform-native conventions on macOS.
package paths
