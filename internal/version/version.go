// Package version holds the released version of blastomatic.
package version

// Current is the release version, without a leading "v".
const Current = "0.1.0"
