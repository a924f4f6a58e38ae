// Package retry provides exponential backoff for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable attempts,
// initial delay and maximum delay. It backs the SSH dial to a remote Proxmox
// node. Image downloads and qm commands are never retried.
package retry
