package filter

import "strings"

// Lists is an allow/deny predicate over address strings. Deny always wins;
// a non-empty allow list admits only its members. An empty Lists (or a nil
// pointer) accepts everything.
type Lists struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

func New(allow, deny []string) *Lists {
	return &Lists{
		allow: buildSet(allow),
		deny:  buildSet(deny),
	}
}

// Check reports whether value passes the list pair.
func (lists *Lists) Check(value string) bool {
	if lists == nil {
		return true
	}

	value = strings.TrimSpace(value)

	if _, denied := lists.deny[value]; denied {
		return false
	}

	if len(lists.allow) > 0 {
		_, allowed := lists.allow[value]
		return allowed
	}

	return true
}

func buildSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		set[entry] = struct{}{}
	}
	return set
}

// Pair applies independent lists to the two roles of a who-has request.
type Pair struct {
	Sender *Lists
	Target *Lists
}

// Accept reports whether both roles pass their configured lists.
func (pair Pair) Accept(sender, target string) bool {
	return pair.Sender.Check(sender) && pair.Target.Check(target)
}
