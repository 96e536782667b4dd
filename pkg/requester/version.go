package requester

import (
	"context"

	"github.com/spdmgo/requester/pkg/retry"
	"github.com/spdmgo/requester/pkg/session"
	"github.com/spdmgo/requester/pkg/transcript"
	"github.com/spdmgo/requester/pkg/wire"
)

// GetVersion implements the GET_VERSION exchange: it is always the first
// procedure run on a fresh connection and the only one with no state
// precondition. Per §4.B, GET_VERSION resets transcript buffers A, B, and
// C before appending.
func (c *Context) GetVersion(ctx context.Context) ([]wire.VersionEntry, error) {
	var versions []wire.VersionEntry
	err := c.loop.Do("get_version", func(attempt int) error {
		v, err := c.getVersionOnce(ctx)
		if err != nil {
			return err
		}
		versions = v
		return nil
	})
	return versions, err
}

func (c *Context) getVersionOnce(ctx context.Context) ([]wire.VersionEntry, error) {
	bufA := c.transcripts.Get(transcript.A)
	bufB := c.transcripts.Get(transcript.B)
	bufC := c.transcripts.Get(transcript.C)
	bufA.Reset()
	bufB.Reset()
	bufC.Reset()

	req := wire.GetVersionRequest{Header: newHeader(wire.CodeGetVersion, 0, 0)}
	reqBytes := req.Encode()

	rspBytes, err := c.sendAndClassify(ctx, "get_version", 0, reqBytes, wire.CodeVersion)
	if err != nil {
		return nil, err
	}

	rsp, err := wire.DecodeVersionResponse(rspBytes)
	if err != nil {
		return nil, retry.Wrap("get_version", retry.DeviceError, err)
	}

	if err := bufA.Append(reqBytes); err != nil {
		return nil, retry.Wrap("get_version", retry.DeviceError, err)
	}
	if err := bufA.Append(rspBytes); err != nil {
		return nil, retry.Wrap("get_version", retry.DeviceError, err)
	}

	c.setState(session.AfterVersion)
	c.debugf("get_version: %d supported versions", len(rsp.Versions))
	return rsp.Versions, nil
}
