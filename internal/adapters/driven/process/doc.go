// Package process runs and launches external programs: compose commands
// with streamed output, the replacement helper binary and the browser.
package process
