// Package keygen generates SSH key pairs.
//
// Private keys are returned PEM-encoded and public keys in OpenSSH
// authorized_keys format, the same format qm expects for --sshkeys files.
package keygen
