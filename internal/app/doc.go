// Package app contains the sampler's event loop. It depends only on the
// interfaces in internal/ports.
package app
