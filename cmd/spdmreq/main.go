// Command spdmreq drives a requester against an in-process loopback
// transport, the same shape a real deployment would wire over USB, MCTP, or
// TCP: only the Transport implementation changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pion/logging"

	"github.com/spdmgo/requester/pkg/crypto"
	"github.com/spdmgo/requester/pkg/requester"
	"github.com/spdmgo/requester/pkg/wire"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	factory := logging.NewDefaultLoggerFactory()
	if *verbose {
		factory.DefaultLogLevel = logging.LogLevelDebug
	} else {
		factory.DefaultLogLevel = logging.LogLevelWarn
	}

	tr := newLoopbackTransport()
	defer tr.Close()

	local := requester.LocalCapabilities{
		Capabilities:     wire.CapCHAL | wire.CapMeas,
		SupportedHashes:  []crypto.HashAlg{crypto.HashSHA384, crypto.HashSHA256},
		SupportedAsyms:   []crypto.AsymAlg{crypto.AsymECDSAP256},
		SupportedDHE:     []crypto.DHEGroup{crypto.DHEGroupX25519},
		SupportedAEAD:    []crypto.AEADAlg{crypto.AEADAlgAESGCM256},
		SupportedKeySchd: []byte{0},
	}

	validator := func(chain []byte) ([]byte, error) {
		return nil, fmt.Errorf("spdmreq: no trust anchor configured for this demo chain (%d bytes)", len(chain))
	}

	cfg := requester.DefaultConfig()
	cfg.LoggerFactory = factory
	c := requester.NewContext(cfg, local, tr, validator)

	ctx := context.Background()
	if err := run(ctx, c); err != nil {
		log.Fatalf("spdmreq: %v", err)
	}
}

func run(ctx context.Context, c *requester.Context) error {
	versions, err := c.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("get_version: %w", err)
	}
	fmt.Fprintf(os.Stdout, "negotiated transport reports %d supported version(s)\n", len(versions))

	peerCaps, err := c.GetCapabilities(ctx)
	if err != nil {
		return fmt.Errorf("get_capabilities: %w", err)
	}
	fmt.Fprintf(os.Stdout, "responder capabilities: %#x\n", peerCaps)

	algs, err := c.NegotiateAlgorithms(ctx)
	if err != nil {
		return fmt.Errorf("negotiate_algorithms: %w", err)
	}
	fmt.Fprintf(os.Stdout, "negotiated: hash=%v asym=%v dhe=%v aead=%v\n",
		algs.BaseHash, algs.BaseAsym, algs.DHEGroup, algs.AEADSuite)

	slotMask, err := c.GetDigests(ctx)
	if err != nil {
		return fmt.Errorf("get_digests: %w", err)
	}
	fmt.Fprintf(os.Stdout, "responder slot mask: %#02x\n", slotMask)
	return nil
}
