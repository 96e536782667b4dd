package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"
)

// AsymAlg identifies a negotiated base-asym algorithm (§3
// negotiated_algorithms.base-asym).
type AsymAlg byte

const (
	AsymECDSAP256 AsymAlg = iota + 1
	AsymECDSAP384
	AsymEd25519
	AsymRSAPSS3072
)

// SigSize returns the wire size of a signature produced under alg, needed
// to carve the fixed-length signature field off the tail of CHALLENGE_AUTH
// and FINISH before verification.
func SigSize(alg AsymAlg) (int, error) {
	switch alg {
	case AsymECDSAP256:
		return 64, nil
	case AsymECDSAP384:
		return 96, nil
	case AsymEd25519:
		return ed25519.SignatureSize, nil
	case AsymRSAPSS3072:
		return 384, nil
	default:
		return 0, ErrUnsupported
	}
}

// AsymVerify implements the façade's asym_verify(alg, pubkey, msg_hash,
// sig) operation. msgHash is already the transcript digest (§4.E step 7);
// the façade does not rehash.
func AsymVerify(alg AsymAlg, pubkey, msgHash, sig []byte) (bool, error) {
	switch alg {
	case AsymECDSAP256:
		return ecdsaVerify(elliptic.P256(), 32, pubkey, msgHash, sig)
	case AsymECDSAP384:
		return ecdsaVerify(elliptic.P384(), 48, pubkey, msgHash, sig)
	case AsymEd25519:
		if len(pubkey) != ed25519.PublicKeySize {
			return false, fmt.Errorf("%w: ed25519 public key size", ErrUnsupported)
		}
		return ed25519.Verify(ed25519.PublicKey(pubkey), msgHash, sig), nil
	case AsymRSAPSS3072:
		return rsaPSSVerify(pubkey, msgHash, sig)
	default:
		return false, ErrUnsupported
	}
}

func ecdsaVerify(curve elliptic.Curve, coordSize int, pubkey, msgHash, sig []byte) (bool, error) {
	if len(pubkey) != 1+2*coordSize || pubkey[0] != 0x04 {
		return false, fmt.Errorf("%w: uncompressed public key expected", ErrUnsupported)
	}
	x := new(big.Int).SetBytes(pubkey[1 : 1+coordSize])
	y := new(big.Int).SetBytes(pubkey[1+coordSize:])
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	if !curve.IsOnCurve(x, y) {
		return false, fmt.Errorf("%w: public key not on curve", ErrUnsupported)
	}
	if len(sig) != 2*coordSize {
		return false, fmt.Errorf("%w: signature size", ErrUnsupported)
	}
	r := new(big.Int).SetBytes(sig[:coordSize])
	s := new(big.Int).SetBytes(sig[coordSize:])
	return ecdsa.Verify(pub, msgHash, r, s), nil
}

func rsaPSSVerify(pubkeyDER, msgHash, sig []byte) (bool, error) {
	pub, err := parseRSAPublicKey(pubkeyDER)
	if err != nil {
		return false, err
	}
	h, err := NewHash(HashSHA384)
	if err != nil {
		return false, err
	}
	err = rsa.VerifyPSS(pub, hashToCryptoHash(h), msgHash, sig, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	return err == nil, nil
}

// AsymKeyPair is the requester's own identity key, used only for the
// optional mutual-auth signature inside FINISH.
type AsymKeyPair struct {
	alg  AsymAlg
	ecdsaKey *ecdsa.PrivateKey
	ed25519Key ed25519.PrivateKey
}

// GenerateAsymKeyPair creates an ephemeral identity keypair for the given
// algorithm; real deployments load a provisioned key instead, but the
// façade's contract is the same either way.
func GenerateAsymKeyPair(alg AsymAlg) (*AsymKeyPair, error) {
	switch alg {
	case AsymECDSAP256:
		k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, err
		}
		return &AsymKeyPair{alg: alg, ecdsaKey: k}, nil
	case AsymECDSAP384:
		k, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		if err != nil {
			return nil, err
		}
		return &AsymKeyPair{alg: alg, ecdsaKey: k}, nil
	case AsymEd25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return &AsymKeyPair{alg: alg, ed25519Key: priv}, nil
	default:
		return nil, ErrUnsupported
	}
}

// Sign produces a signature over msgHash, the shape asym_sign would take
// if the façade in §4.C exposed it (it names only asym_verify, since the
// requester is normally the verifier; signing is needed only for the
// mutual-auth branch of FINISH).
func (k *AsymKeyPair) Sign(msgHash []byte) ([]byte, error) {
	switch k.alg {
	case AsymECDSAP256, AsymECDSAP384:
		r, s, err := ecdsa.Sign(rand.Reader, k.ecdsaKey, msgHash)
		if err != nil {
			return nil, err
		}
		coordSize := (k.ecdsaKey.Curve.Params().BitSize + 7) / 8
		sig := make([]byte, 2*coordSize)
		r.FillBytes(sig[:coordSize])
		s.FillBytes(sig[coordSize:])
		return sig, nil
	case AsymEd25519:
		return ed25519.Sign(k.ed25519Key, msgHash), nil
	default:
		return nil, ErrUnsupported
	}
}

// PublicKeyBytes returns the wire form matching AsymVerify's pubkey input.
func (k *AsymKeyPair) PublicKeyBytes() []byte {
	switch k.alg {
	case AsymECDSAP256, AsymECDSAP384:
		return elliptic.Marshal(k.ecdsaKey.Curve, k.ecdsaKey.X, k.ecdsaKey.Y)
	case AsymEd25519:
		pub := k.ed25519Key.Public().(ed25519.PublicKey)
		return []byte(pub)
	default:
		return nil
	}
}
