// Package password implements secret hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Every hash carries a fresh random salt, so hashing the same secret twice
// never produces the same string. Verification recomputes the hash with the
// parameters and salt parsed from the stored string and compares in constant
// time.
//
// The [Hasher] supports transparent parameter upgrades: if the stored hash
// was produced with weaker parameters, [Hasher.NeedsRehash] returns true so
// the caller can re-hash after the next successful verification.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Secret policy (minimum
// length, format) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets — callers supply plaintext and receive hashes.
//   - Import any other credcore package.
//   - Log plaintext secrets or hash parameters at runtime.
package password
