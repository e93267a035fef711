// Package version reports the microdi version attached to spans and
// meters as the instrumentation version.
package version
