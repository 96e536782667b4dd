package session

import "github.com/spdmgo/requester/pkg/crypto"

// keyUpdateState tracks the in-flight KEY_UPDATE dance (§4.D, §4.E). It
// exists to make I4 mechanically true: the responder-direction key is
// computed before the request is sent but only swapped into dataRsp on a
// matching ACK, while the requester-direction key is computed and swapped
// in one step, after the ACK, since the requester owns that rotation
// unilaterally (confirmed by libspdm_req_key_update.c: the requester's own
// key is created and activated back-to-back, with no rollback path,
// because nothing external needs to agree with it).
type keyUpdateState struct {
	keyUpdated  bool
	pendingRsp  crypto.DirectionalKeys
	rspPending  bool
}

// BeginUpdateAllKeys implements the "create new responder key (pending)"
// step of UPDATE_ALL_KEYS, which must run before the request is sent. It
// does not touch the active dataRsp key.
func (i *Info) BeginUpdateAllKeys() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	h, err := crypto.NewHash(i.hashAlg)
	if err != nil {
		return err
	}
	pending, err := crypto.DeriveUpdatedKey(h, i.dataRsp)
	if err != nil {
		return err
	}
	i.keyUpdate.pendingRsp = pending
	i.keyUpdate.rspPending = true
	return nil
}

// RollbackResponderKey discards a pending responder key created by
// BeginUpdateAllKeys without having installed it, leaving the active
// dataRsp key untouched. It is a no-op if no pending key exists, mirroring
// the original's harmless best-effort "activate old key" call on every
// failure path.
func (i *Info) RollbackResponderKey() {
	i.mu.Lock()
	defer i.mu.Unlock()
	zero(i.keyUpdate.pendingRsp.Key)
	i.keyUpdate.pendingRsp = crypto.DirectionalKeys{}
	i.keyUpdate.rspPending = false
}

// ActivateResponderKey installs the pending responder key as the new
// active dataRsp key, called only after a matching KEY_UPDATE ACK.
func (i *Info) ActivateResponderKey() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.keyUpdate.rspPending {
		return
	}
	zero(i.dataRsp.Key)
	i.dataRsp = i.keyUpdate.pendingRsp
	i.keyUpdate.pendingRsp = crypto.DirectionalKeys{}
	i.keyUpdate.rspPending = false
}

// ActivateRequesterKey derives and installs a new requester (dataReq) key
// in one step. Called after a matching ACK for both UPDATE_KEY and
// UPDATE_ALL_KEYS, since the requester needs no external agreement to
// start using its own new send key.
func (i *Info) ActivateRequesterKey() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	h, err := crypto.NewHash(i.hashAlg)
	if err != nil {
		return err
	}
	newKey, err := crypto.DeriveUpdatedKey(h, i.dataReq)
	if err != nil {
		return err
	}
	zero(i.dataReq.Key)
	i.dataReq = newKey
	i.reqSeq = 0
	return nil
}

// MarkKeyUpdated records that phase U completed, gating VERIFY_NEW_KEY.
func (i *Info) MarkKeyUpdated(v bool) {
	i.mu.Lock()
	i.keyUpdate.keyUpdated = v
	i.mu.Unlock()
}

// KeyUpdated reports whether phase U has completed for the current round.
func (i *Info) KeyUpdated() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.keyUpdate.keyUpdated
}
