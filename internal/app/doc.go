// Package app contains the generator lifecycle. It defines the App struct,
// its configuration and the phases of one run (load, enumerate, build,
// render, write, plan), decoupled from the command line.
package app
