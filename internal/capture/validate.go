package capture

import (
	"net"

	"whohas/internal/filter"
	"whohas/internal/pipeline"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Packet validation is a pipeline of small stages. Each stage reports
// failure as an ordinary false result, so a frame that is not a who-has
// request simply falls out of the stream.

// WhoHasLayer extracts the ARP layer of a packet if it is a who-has
// request. Replies and non-ARP frames fail the stage.
func WhoHasLayer(packet gopacket.Packet) (*layers.ARP, bool) {
	layer := packet.Layer(layers.LayerTypeARP)
	if layer == nil {
		return nil, false
	}

	arp, ok := layer.(*layers.ARP)
	if !ok || arp.Operation != layers.ARPRequest {
		return nil, false
	}

	return arp, true
}

// RequestFromARP unpacks the sender and target protocol addresses.
func RequestFromARP(arp *layers.ARP) (pipeline.Request, bool) {
	sender := net.IP(arp.SourceProtAddress)
	target := net.IP(arp.DstProtAddress)
	if sender.To4() == nil || target.To4() == nil {
		return pipeline.Request{}, false
	}

	return pipeline.Request{
		Sender: sender.String(),
		Target: target.String(),
	}, true
}

// ValidateRequest runs the full stage pipeline over a raw packet: ARP
// who-has extraction, address unpacking, then the allow/deny lists.
func ValidateRequest(packet gopacket.Packet, filters filter.Pair) (pipeline.Request, bool) {
	arp, ok := WhoHasLayer(packet)
	if !ok {
		return pipeline.Request{}, false
	}

	request, ok := RequestFromARP(arp)
	if !ok {
		return pipeline.Request{}, false
	}

	if !filters.Accept(request.Sender, request.Target) {
		return pipeline.Request{}, false
	}

	return request, true
}
