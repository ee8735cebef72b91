package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whohas/internal/filter"
	"whohas/internal/pipeline"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

const (
	snifferSnaplen     = 65536
	snifferReadTimeout = 500 * time.Millisecond
)

// Sniffer captures who-has requests from a live interface and delivers them
// in fixed-size batches over a bounded channel. It is the producer half of
// the capture loop: cancelling its context stops batch delivery and the
// consumer's last rendered report stands.
type Sniffer struct {
	iface     string
	batchSize int
	filters   filter.Pair
	out       chan []pipeline.Request
}

func NewSniffer(iface string, batchSize int, filters filter.Pair) *Sniffer {
	if batchSize <= 0 {
		batchSize = 1
	}

	return &Sniffer{
		iface:     iface,
		batchSize: batchSize,
		filters:   filters,
		out:       make(chan []pipeline.Request, 1),
	}
}

// Batches returns the channel full batches arrive on. It is closed when Run
// returns.
func (s *Sniffer) Batches() <-chan []pipeline.Request {
	return s.out
}

// Run captures until ctx is cancelled or the handle fails. A partial batch
// in progress at cancellation is discarded; only full batches are delivered.
func (s *Sniffer) Run(ctx context.Context) error {
	defer close(s.out)

	handle, err := pcap.OpenLive(s.iface, snifferSnaplen, true, snifferReadTimeout)
	if err != nil {
		return fmt.Errorf("capture: open %s: %w", s.iface, err)
	}
	defer handle.Close()

	if err := handle.SetBPFFilter("arp"); err != nil {
		return fmt.Errorf("capture: set filter: %w", err)
	}

	batch := make([]pipeline.Request, 0, s.batchSize)

	for {
		if ctx.Err() != nil {
			return nil
		}

		data, _, err := handle.ReadPacketData()
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			continue
		}
		if err != nil {
			return fmt.Errorf("capture: read packet: %w", err)
		}

		packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
		request, ok := ValidateRequest(packet, s.filters)
		if !ok {
			continue
		}

		batch = append(batch, request)
		if len(batch) < s.batchSize {
			continue
		}

		select {
		case s.out <- batch:
			batch = make([]pipeline.Request, 0, s.batchSize)
		case <-ctx.Done():
			return nil
		}
	}
}
