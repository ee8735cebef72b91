package capture

import (
	"net"
	"testing"

	"whohas/internal/filter"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func arpPacket(t *testing.T, operation uint16, sender, target string) gopacket.Packet {
	t.Helper()

	srcMAC := net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}

	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         operation,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(net.ParseIP(sender).To4()),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(net.ParseIP(target).To4()),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		t.Fatalf("serialize packet: %v", err)
	}

	return gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
}

func TestValidateRequestAcceptsWhoHas(t *testing.T) {
	packet := arpPacket(t, layers.ARPRequest, "192.168.1.5", "192.168.1.20")

	request, ok := ValidateRequest(packet, filter.Pair{})
	if !ok {
		t.Fatal("who-has request rejected")
	}
	if request.Sender != "192.168.1.5" {
		t.Fatalf("sender = %s, want 192.168.1.5", request.Sender)
	}
	if request.Target != "192.168.1.20" {
		t.Fatalf("target = %s, want 192.168.1.20", request.Target)
	}
}

func TestValidateRequestRejectsReplies(t *testing.T) {
	packet := arpPacket(t, layers.ARPReply, "192.168.1.20", "192.168.1.5")

	if _, ok := ValidateRequest(packet, filter.Pair{}); ok {
		t.Fatal("ARP reply passed validation")
	}
}

func TestValidateRequestRejectsNonARP(t *testing.T) {
	eth := layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, gopacket.Payload([]byte{0x45})); err != nil {
		t.Fatalf("serialize packet: %v", err)
	}
	packet := gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)

	if _, ok := ValidateRequest(packet, filter.Pair{}); ok {
		t.Fatal("non-ARP frame passed validation")
	}
}

func TestValidateRequestAppliesLists(t *testing.T) {
	packet := arpPacket(t, layers.ARPRequest, "192.168.1.66", "192.168.1.20")

	filters := filter.Pair{Sender: filter.New(nil, []string{"192.168.1.66"})}
	if _, ok := ValidateRequest(packet, filters); ok {
		t.Fatal("denied sender passed validation")
	}
}
