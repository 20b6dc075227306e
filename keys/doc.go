// Package keys implements the secp256k1 key material used on the STEEM
// blockchain and its text encodings.
//
// Private keys are exchanged as WIF strings: base58 encoding of the version
// byte 0x80, the 32 byte secret and the first four bytes of the double
// sha256 of both.
//
// Public keys are the 33 byte compressed points, encoded as a network
// prefix ("STM" on the main network) followed by the base58 encoding of the
// key and the first four bytes of its ripemd160 hash.
//
// Signatures are 65 byte compact signatures whose R and S values must be
// canonical, that is both exactly 32 bytes when DER encoded. SignCompact
// searches deterministic RFC6979 nonces until it finds one.
package keys
