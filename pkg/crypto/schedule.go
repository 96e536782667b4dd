package crypto

// Key-schedule derivation for session establishment (§4.D). This is the
// generalized form of the teacher's fabric-scoped HKDF derivation: instead
// of one fixed "GroupKey v1.0" info string keyed by a compressed fabric ID,
// the salt is the negotiated transcript hash and the info label is a
// direction-specific constant, so the same shape serves both the
// handshake-key (TH1) and data-key (TH2) derivations, plus key update.

var (
	handshakeReqLabel = []byte("sh req")
	handshakeRspLabel = []byte("sh rsp")
	dataReqLabel      = []byte("sh d req")
	dataRspLabel      = []byte("sh d rsp")
	updateLabel       = []byte("sh d update")
)

// DirectionalKeys is one direction's symmetric key + IV pair, sized for the
// negotiated AEAD suite.
type DirectionalKeys struct {
	Key []byte
	IV  []byte
}

// deriveDirectional expands secret (keyed by th and label) into a key and
// IV of the sizes an AEAD suite expects.
func deriveDirectional(h Hash, secret, th, label []byte, keySize, ivSize int) (DirectionalKeys, error) {
	prk := h.HKDFExtract(secret, th)
	key, err := h.HKDFExpand(prk, append(append([]byte{}, label...), "-key"...), keySize)
	if err != nil {
		return DirectionalKeys{}, err
	}
	iv, err := h.HKDFExpand(prk, append(append([]byte{}, label...), "-iv"...), ivSize)
	if err != nil {
		return DirectionalKeys{}, err
	}
	return DirectionalKeys{Key: key, IV: iv}, nil
}

// HandshakeKeys are the request/response key pairs derived from TH1,
// used only during the Handshaking session state.
type HandshakeKeys struct {
	Request  DirectionalKeys
	Response DirectionalKeys
}

// DeriveHandshakeKeys implements the TH1 half of §4.D's key schedule:
// sharedSecret is the DHE-agreed (or PSK) secret, th1 is the hash of
// transcript K through the key-exchange response (sans HMAC/signature).
func DeriveHandshakeKeys(h Hash, sharedSecret, th1 []byte, keySize, ivSize int) (HandshakeKeys, error) {
	req, err := deriveDirectional(h, sharedSecret, th1, handshakeReqLabel, keySize, ivSize)
	if err != nil {
		return HandshakeKeys{}, err
	}
	rsp, err := deriveDirectional(h, sharedSecret, th1, handshakeRspLabel, keySize, ivSize)
	if err != nil {
		return HandshakeKeys{}, err
	}
	return HandshakeKeys{Request: req, Response: rsp}, nil
}

// DataKeys are the request/response key pairs derived from TH2, used once
// a session reaches Established.
type DataKeys struct {
	Request  DirectionalKeys
	Response DirectionalKeys
}

// DeriveDataKeys implements the TH2 half of §4.D's key schedule: th2 is the
// hash of transcript K through FINISH (or, on the PSK-without-context path,
// through the PSK_EXCHANGE response alone).
func DeriveDataKeys(h Hash, sharedSecret, th2 []byte, keySize, ivSize int) (DataKeys, error) {
	req, err := deriveDirectional(h, sharedSecret, th2, dataReqLabel, keySize, ivSize)
	if err != nil {
		return DataKeys{}, err
	}
	rsp, err := deriveDirectional(h, sharedSecret, th2, dataRspLabel, keySize, ivSize)
	if err != nil {
		return DataKeys{}, err
	}
	return DataKeys{Request: req, Response: rsp}, nil
}

// DeriveUpdatedKey implements the one-directional key-update ratchet of
// §4.D: the new key is derived purely from the old key material, with no
// fresh transcript hash input, so either side can compute it unilaterally
// once it decides to roll over.
func DeriveUpdatedKey(h Hash, oldKeys DirectionalKeys) (DirectionalKeys, error) {
	prk := h.HKDFExtract(oldKeys.Key, nil)
	key, err := h.HKDFExpand(prk, updateLabel, len(oldKeys.Key))
	if err != nil {
		return DirectionalKeys{}, err
	}
	iv, err := h.HKDFExpand(prk, append(append([]byte{}, updateLabel...), "-iv"...), len(oldKeys.IV))
	if err != nil {
		return DirectionalKeys{}, err
	}
	return DirectionalKeys{Key: key, IV: iv}, nil
}
