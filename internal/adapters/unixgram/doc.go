// Package unixgram carries qos.Sample records over AF_UNIX datagram
// sockets: a non-blocking Publisher for the sampler and a Listener for
// local consumers.
package unixgram
