package daemon

import (
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp/kb"

	"tabctl/internal/config"
	"tabctl/internal/protocol"
)

func TestKeyChord(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Enter", kb.Enter},
		{"enter", kb.Enter},
		{"Tab", kb.Tab},
		{"Escape", kb.Escape},
		{"esc", kb.Escape},
		{"ArrowDown", kb.ArrowDown},
		{"a", "a"},
		{"hello", "hello"},
	}
	for _, tc := range cases {
		if got := keyChord(tc.in); got != tc.want {
			t.Errorf("keyChord(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSnapshotJS(t *testing.T) {
	t.Run("default root is body", func(t *testing.T) {
		js := snapshotJS(&protocol.Request{Action: protocol.ActionSnapshot})
		if !strings.Contains(js, "document.body") {
			t.Error("expected document.body root")
		}
	})

	t.Run("selector scopes the root", func(t *testing.T) {
		js := snapshotJS(&protocol.Request{Action: protocol.ActionSnapshot, Selector: "#main"})
		if !strings.Contains(js, `document.querySelector("#main")`) {
			t.Errorf("selector not embedded:\n%s", js)
		}
	})

	t.Run("options are embedded", func(t *testing.T) {
		js := snapshotJS(&protocol.Request{
			Action:      protocol.ActionSnapshot,
			Interactive: true,
			Compact:     true,
			Depth:       3,
		})
		if !strings.Contains(js, "const interactiveOnly = true") {
			t.Error("interactive flag not embedded")
		}
		if !strings.Contains(js, "const compact = true") {
			t.Error("compact flag not embedded")
		}
		if !strings.Contains(js, "const maxDepth = 3") {
			t.Error("depth not embedded")
		}
	})
}

func TestHoverJS(t *testing.T) {
	js := hoverJS(`a[href="/x"]`)
	if !strings.Contains(js, `document.querySelector("a[href=\"/x\"]")`) {
		t.Errorf("selector not quoted into script:\n%s", js)
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("op timeout leaves room for the exchange deadline", func(t *testing.T) {
		cfg := config.Default()
		e := NewEngine(cfg)
		if e.opTimeout != 28*time.Second {
			t.Errorf("expected 28s, got %v", e.opTimeout)
		}
	})

	t.Run("op timeout has a floor", func(t *testing.T) {
		cfg := config.Default()
		cfg.RequestTimeoutMS = 1000
		e := NewEngine(cfg)
		if e.opTimeout != 5*time.Second {
			t.Errorf("expected 5s floor, got %v", e.opTimeout)
		}
	})

	t.Run("close without launch is safe", func(t *testing.T) {
		NewEngine(config.Default()).Close()
	})
}
