// Package system reports the backend environment to the front end and
// accepts front-end log lines so they land in the same structured log as
// backend events.
package system
