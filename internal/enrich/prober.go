package enrich

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// ErrNoCaptureInterface is returned when active probing is requested without
// a capture interface to send from.
var ErrNoCaptureInterface = errors.New("enrich: active probing requires a capture interface")

const (
	probeSnaplen     = 65536
	probeReadTimeout = 250 * time.Millisecond
)

type ProbeConfig struct {
	Retries int           // additional attempts after the first
	Timeout time.Duration // per-attempt wait for a reply
}

// LivenessProber sends targeted who-has requests and reports the MAC of
// targets that answer. A probe that exhausts its retries is not an error;
// it just leaves the target without a MAC, which the ledger reads as
// unresponsive.
type LivenessProber struct {
	handle *pcap.Handle
	iface  *net.Interface
	srcIP  net.IP
	cfg    ProbeConfig

	// One probe owns the handle at a time so replies cannot be stolen by
	// a concurrent probe's read loop.
	mu sync.Mutex
}

func NewLivenessProber(ifaceName string, cfg ProbeConfig) (*LivenessProber, error) {
	if ifaceName == "" {
		return nil, ErrNoCaptureInterface
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("enrich: interface %s: %w", ifaceName, err)
	}

	srcIP, err := interfaceIPv4(iface)
	if err != nil {
		return nil, err
	}

	handle, err := pcap.OpenLive(ifaceName, probeSnaplen, false, probeReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("enrich: open capture handle on %s: %w", ifaceName, err)
	}

	if err := handle.SetBPFFilter("arp"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("enrich: set probe filter: %w", err)
	}

	return &LivenessProber{
		handle: handle,
		iface:  iface,
		srcIP:  srcIP,
		cfg:    cfg,
	}, nil
}

func (p *LivenessProber) Close() {
	p.handle.Close()
}

// Probe asks who has target. It returns the answering MAC address, or ""
// when every attempt timed out.
func (p *LivenessProber) Probe(ctx context.Context, target string) (string, error) {
	targetIP := net.ParseIP(target)
	if targetIP == nil || targetIP.To4() == nil {
		return "", fmt.Errorf("enrich: probe target is not an IPv4 address: %s", target)
	}

	request, err := p.buildRequest(targetIP.To4())
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := p.handle.WritePacketData(request); err != nil {
			return "", fmt.Errorf("enrich: send probe to %s: %w", target, err)
		}

		mac, err := p.awaitReply(ctx, targetIP.To4())
		if err != nil {
			return "", err
		}
		if mac != "" {
			return mac, nil
		}
	}

	return "", nil
}

func (p *LivenessProber) buildRequest(targetIP net.IP) ([]byte, error) {
	eth := layers.Ethernet{
		SrcMAC:       p.iface.HardwareAddr,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}

	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(p.iface.HardwareAddr),
		SourceProtAddress: []byte(p.srcIP.To4()),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(targetIP),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, fmt.Errorf("enrich: serialize probe: %w", err)
	}

	return buf.Bytes(), nil
}

func (p *LivenessProber) awaitReply(ctx context.Context, targetIP net.IP) (string, error) {
	deadline := time.Now().Add(p.cfg.Timeout)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		data, _, err := p.handle.ReadPacketData()
		if errors.Is(err, pcap.NextErrorTimeoutExpired) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("enrich: read probe reply: %w", err)
		}

		packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
		layer := packet.Layer(layers.LayerTypeARP)
		if layer == nil {
			continue
		}

		arp, ok := layer.(*layers.ARP)
		if !ok || arp.Operation != layers.ARPReply {
			continue
		}
		if !net.IP(arp.SourceProtAddress).Equal(targetIP) {
			continue
		}

		return net.HardwareAddr(arp.SourceHwAddress).String(), nil
	}

	return "", nil
}

func interfaceIPv4(iface *net.Interface) (net.IP, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("enrich: addresses of %s: %w", iface.Name, err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip, nil
		}
	}

	return nil, fmt.Errorf("enrich: interface %s has no IPv4 address", iface.Name)
}
