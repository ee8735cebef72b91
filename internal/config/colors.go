package config

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// ColorProfile styles the report table. Sender groups alternate between the
// odd and even styles (first group is odd); Marker, when set, replaces the
// plain "X" shown for unresponsive targets.
type ColorProfile struct {
	Name   string
	Odd    lipgloss.Style
	Even   lipgloss.Style
	Header lipgloss.Style
	Marker string
}

// colorProfiles is built once here and never mutated afterwards; callers get
// profiles by value through ColorProfileByName.
var colorProfiles = buildColorProfiles()

func buildColorProfiles() map[string]ColorProfile {
	profile := func(name, even, odd, header, marker string) ColorProfile {
		return ColorProfile{
			Name:   name,
			Even:   lipgloss.NewStyle().Foreground(lipgloss.Color(even)),
			Odd:    lipgloss.NewStyle().Foreground(lipgloss.Color(odd)),
			Header: lipgloss.NewStyle().Foreground(lipgloss.Color(header)).Bold(true),
			Marker: marker,
		}
	}

	profiles := []ColorProfile{
		profile("default", "254", "244", "254", ""),
		profile("1337", "28", "118", "28", ""),
		profile("agent_orange", "166", "179", "166", ""),
		profile("evil", "124", "9", "9", ""),
		profile("cobalt", "245", "26", "245", ""),
		// Novelty profiles
		profile("cupcake", "104", "164", "104", "\U0001F984"),
		profile("poo", "136", "94", "136", "\U0001F4A9"),
		profile("foxhound", "166", "179", "166", "\U0001F98A"),
		profile("rhino", "254", "244", "254", "\U0001F98F"),
	}

	table := make(map[string]ColorProfile, len(profiles))
	for _, p := range profiles {
		table[p.Name] = p
	}
	return table
}

func ColorProfileByName(name string) (ColorProfile, bool) {
	p, ok := colorProfiles[name]
	return p, ok
}

// ColorProfileNames lists the available profiles in stable order.
func ColorProfileNames() []string {
	names := make([]string, 0, len(colorProfiles))
	for name := range colorProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
