// Package ssh runs commands on a Proxmox node over SSH.
//
// [Client] satisfies the same runner interfaces as local execution, so the
// qm sequence and the password hasher can target a remote node unchanged.
// Each call opens its own connection; dialing is retried with exponential
// backoff.
//
// Host keys are verified against a known_hosts file unless the caller opts
// out explicitly.
package ssh
