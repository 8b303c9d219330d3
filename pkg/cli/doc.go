// Package cli implements the fishem command line.
//
// The root command runs the emulator when no subcommand is given:
//
//	fishem --imockup ./public-rackmount1 --port 5000
//
// Other commands convert between fish files and mockup trees offline,
// print the effective configuration, and report the build version.
package cli
