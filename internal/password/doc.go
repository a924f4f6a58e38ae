// Package password obtains the VM password and turns it into the SHA-512
// crypt hash that cloud-init expects.
//
// Hashing is delegated to `openssl passwd -6`. The clear-text password is fed
// on stdin so it never appears in a process listing.
package password
