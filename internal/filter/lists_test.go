package filter

import "testing"

func TestListsCheck(t *testing.T) {
	t.Run("nil lists accept everything", func(t *testing.T) {
		var lists *Lists
		if !lists.Check("192.168.1.1") {
			t.Fatal("nil Lists rejected an address")
		}
	})

	t.Run("empty lists accept everything", func(t *testing.T) {
		if !New(nil, nil).Check("192.168.1.1") {
			t.Fatal("empty Lists rejected an address")
		}
	})

	t.Run("deny rejects members", func(t *testing.T) {
		lists := New(nil, []string{"192.168.1.9"})
		if lists.Check("192.168.1.9") {
			t.Fatal("denied address passed")
		}
		if !lists.Check("192.168.1.10") {
			t.Fatal("unlisted address rejected")
		}
	})

	t.Run("allow admits only members", func(t *testing.T) {
		lists := New([]string{"10.0.0.1"}, nil)
		if !lists.Check("10.0.0.1") {
			t.Fatal("allowed address rejected")
		}
		if lists.Check("10.0.0.2") {
			t.Fatal("unlisted address passed a non-empty allow list")
		}
	})

	t.Run("deny wins over allow", func(t *testing.T) {
		lists := New([]string{"10.0.0.1"}, []string{"10.0.0.1"})
		if lists.Check("10.0.0.1") {
			t.Fatal("address both allowed and denied passed")
		}
	})

	t.Run("entries are trimmed", func(t *testing.T) {
		lists := New([]string{" 10.0.0.1 "}, nil)
		if !lists.Check("10.0.0.1") {
			t.Fatal("trimmed entry did not match")
		}
	})
}

func TestPairAccept(t *testing.T) {
	pair := Pair{
		Sender: New(nil, []string{"10.0.0.66"}),
		Target: New([]string{"10.0.0.1"}, nil),
	}

	if !pair.Accept("10.0.0.5", "10.0.0.1") {
		t.Fatal("conforming pair rejected")
	}
	if pair.Accept("10.0.0.66", "10.0.0.1") {
		t.Fatal("denied sender passed")
	}
	if pair.Accept("10.0.0.5", "10.0.0.2") {
		t.Fatal("target outside allow list passed")
	}

	if !(Pair{}).Accept("10.0.0.5", "10.0.0.2") {
		t.Fatal("unconfigured pair rejected an event")
	}
}
