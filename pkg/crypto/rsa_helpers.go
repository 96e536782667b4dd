package crypto

import (
	gocrypto "crypto"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

func parseRSAPublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKCS1PublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid RSA public key: %v", ErrUnsupported, err)
	}
	return pub, nil
}

// hashToCryptoHash maps a façade Hash to the stdlib crypto.Hash identifier
// rsa.VerifyPSS needs; only the algorithm tag is used, not a fresh digest.
func hashToCryptoHash(h Hash) gocrypto.Hash {
	switch h.alg {
	case HashSHA256:
		return gocrypto.SHA256
	case HashSHA384:
		return gocrypto.SHA384
	case HashSHA512:
		return gocrypto.SHA512
	default:
		return 0
	}
}
