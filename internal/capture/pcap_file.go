package capture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"whohas/internal/filter"
	"whohas/internal/pipeline"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// ReadFile loads a capture file and returns the who-has requests that pass
// the validation stages and the given lists. A missing file fails before any
// packet is processed.
func ReadFile(path string, filters filter.Pair) ([]pipeline.Request, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("capture: file not found: %s", path)
		}
		return nil, fmt.Errorf("capture: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("capture: %s is a directory", path)
	}

	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	defer handle.Close()

	source := gopacket.NewPacketSource(handle, handle.LinkType())

	var requests []pipeline.Request
	for {
		packet, err := source.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("capture: read %s: %w", path, err)
		}

		if request, ok := ValidateRequest(packet, filters); ok {
			requests = append(requests, request)
		}
	}

	return requests, nil
}
