package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureSize is the length of a compact signature.
const SignatureSize = 65

// compactSigMagicOffset is added to the recovery code of signatures made
// with compressed public keys.
const compactSigMagicOffset = 27 + 4

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrDigestLength     = errors.New("digest must be 32 bytes")
)

// SignCompact signs the 32 byte digest and returns a canonical compact
// signature: the recovery byte followed by R and S.
//
// Nonces are generated per RFC6979. If the resulting signature is not
// canonical, the nonce generation is repeated with additional iterations
// until one is found.
func (k *PrivateKey) SignCompact(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, ErrDigestLength
	}
	secret := k.Bytes()
	defer zero(secret)

	var e secp256k1.ModNScalar
	e.SetByteSlice(digest)

	for iteration := uint32(0); ; iteration++ {
		nonce := secp256k1.NonceRFC6979(secret, digest, nil, nil, iteration)
		sig, ok := sign(&k.key.Key, nonce, &e)
		nonce.Zero()
		if !ok || !IsCanonical(sig) {
			continue
		}
		// The recovered key must match, otherwise the recovery code
		// is wrong.
		pub, _, err := ecdsa.RecoverCompact(sig, digest)
		if err != nil || !pub.IsEqual(k.key.PubKey()) {
			continue
		}
		return sig, nil
	}
}

func sign(d, k, e *secp256k1.ModNScalar) ([]byte, bool) {
	var kG secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &kG)
	kG.ToAffine()

	var r secp256k1.ModNScalar
	overflow := r.SetBytes(kG.X.Bytes())
	if r.IsZero() {
		return nil, false
	}
	recoveryCode := byte(overflow << 1)
	if kG.Y.IsOdd() {
		recoveryCode |= 1
	}

	kInv := new(secp256k1.ModNScalar).InverseValNonConst(k)
	s := new(secp256k1.ModNScalar).Mul2(d, &r).Add(e).Mul(kInv)
	if s.IsZero() {
		return nil, false
	}
	if s.IsOverHalfOrder() {
		s.Negate()
		recoveryCode ^= 1
	}

	sig := make([]byte, SignatureSize)
	sig[0] = compactSigMagicOffset + recoveryCode
	r.PutBytesUnchecked(sig[1:33])
	s.PutBytesUnchecked(sig[33:65])
	return sig, true
}

// IsCanonical reports whether the compact signature has R and S values that
// are exactly 32 bytes long when DER encoded.
func IsCanonical(sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return sig[1]&0x80 == 0 &&
		!(sig[1] == 0 && sig[2]&0x80 == 0) &&
		sig[33]&0x80 == 0 &&
		!(sig[33] == 0 && sig[34]&0x80 == 0)
}

// RecoverCompact returns the PublicKey that produced the compact signature
// of digest.
func RecoverCompact(sig, digest []byte) (*PublicKey, error) {
	if len(sig) != SignatureSize {
		return nil, ErrInvalidSignature
	}
	if len(digest) != 32 {
		return nil, ErrDigestLength
	}
	key, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: key, Prefix: DefaultPrefix}, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
