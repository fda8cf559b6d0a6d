// Package sink delivers decoded messages to their destination.
//
// A [Writer] prints a plain text record per message to any [io.Writer],
// such as standard output or a log file opened with [OpenFile] that
// survives external log rotation. A [Log] sink records messages as
// structured log entries. [Multi] fans a message out to several sinks.
package sink
