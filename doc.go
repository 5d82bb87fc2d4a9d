// Package regular provides regular expressions over sequences of
// arbitrary symbols with full Boolean closure.
//
// The core code is in package 'core', and some command-line tools are in `cmd`.
//
// See README.md for more.
package regular
