package notify

import (
	"testing"

	"rmoflow/pkg/events"
)

type capture struct {
	got []events.ToastMsg
}

func (c *capture) Toast(m events.ToastMsg) { c.got = append(c.got, m) }

func TestHubFansOut(t *testing.T) {
	a := &capture{}
	b := &capture{}
	h := NewHub(a)
	h.Register(b)

	h.Success("saved")
	h.Error("delete failed")

	for _, c := range []*capture{a, b} {
		if len(c.got) != 2 {
			t.Fatalf("sink got %d toasts, want 2", len(c.got))
		}
		if c.got[0].Level != events.ToastSuccess || c.got[0].Text != "saved" {
			t.Fatalf("first toast: %+v", c.got[0])
		}
		if c.got[1].Level != events.ToastError {
			t.Fatalf("second toast: %+v", c.got[1])
		}
	}
}
