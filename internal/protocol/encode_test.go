package protocol

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEncode(t *testing.T) {
	t.Run("verb table mapping", func(t *testing.T) {
		cases := []struct {
			tokens []string
			want   Request
		}{
			{[]string{"open", "https://example.com"}, Request{Action: ActionNavigate, URL: "https://example.com"}},
			{[]string{"goto", "example.com"}, Request{Action: ActionNavigate, URL: "https://example.com"}},
			{[]string{"navigate", "example.com/a?b=1"}, Request{Action: ActionNavigate, URL: "https://example.com/a?b=1"}},
			{[]string{"click", "#submit"}, Request{Action: ActionClick, Selector: "#submit"}},
			{[]string{"fill", "#name", "Ada", "Lovelace"}, Request{Action: ActionFill, Selector: "#name", Value: "Ada Lovelace"}},
			{[]string{"type", "#q", "hello", "world"}, Request{Action: ActionType, Selector: "#q", Text: "hello world"}},
			{[]string{"hover", ".menu"}, Request{Action: ActionHover, Selector: ".menu"}},
			{[]string{"screenshot"}, Request{Action: ActionScreenshot}},
			{[]string{"screenshot", "/tmp/page.png"}, Request{Action: ActionScreenshot, Path: "/tmp/page.png"}},
			{[]string{"get", "text", "h1"}, Request{Action: ActionGetText, Selector: "h1"}},
			{[]string{"get", "url"}, Request{Action: ActionGetURL}},
			{[]string{"get", "title"}, Request{Action: ActionGetTitle}},
			{[]string{"press", "Enter"}, Request{Action: ActionPress, Key: "Enter"}},
			{[]string{"back"}, Request{Action: ActionBack}},
			{[]string{"forward"}, Request{Action: ActionForward}},
			{[]string{"reload"}, Request{Action: ActionReload}},
			{[]string{"eval", "document.title", "+", "'!'"}, Request{Action: ActionEval, Script: "document.title + '!'"}},
			{[]string{"close"}, Request{Action: ActionClose}},
			{[]string{"quit"}, Request{Action: ActionClose}},
		}
		for _, tc := range cases {
			got := Encode(tc.tokens)
			if got == nil {
				t.Fatalf("Encode(%v) = nil", tc.tokens)
			}
			if got.ID == "" {
				t.Errorf("Encode(%v) produced empty id", tc.tokens)
			}
			got.ID = ""
			if !reflect.DeepEqual(*got, tc.want) {
				t.Errorf("Encode(%v) = %+v, want %+v", tc.tokens, *got, tc.want)
			}
		}
	})

	t.Run("ids differ across calls", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			req := Encode([]string{"back"})
			if seen[req.ID] {
				t.Fatalf("duplicate id %q", req.ID)
			}
			seen[req.ID] = true
		}
	})

	t.Run("unknown verb returns nil", func(t *testing.T) {
		for _, tokens := range [][]string{
			{"teleport", "#x"},
			{"openn", "example.com"},
			{"get", "cookies"},
			{},
			nil,
		} {
			if got := Encode(tokens); got != nil {
				t.Errorf("Encode(%v) = %+v, want nil", tokens, got)
			}
		}
	})

	t.Run("wait disambiguates numeric from selector", func(t *testing.T) {
		req := Encode([]string{"wait", "500"})
		if req.Timeout != 500 || req.Selector != "" {
			t.Errorf("wait 500: got timeout=%d selector=%q", req.Timeout, req.Selector)
		}
		req = Encode([]string{"wait", "#sel"})
		if req.Selector != "#sel" || req.Timeout != 0 {
			t.Errorf("wait #sel: got timeout=%d selector=%q", req.Timeout, req.Selector)
		}
		// Mixed strings are selectors, not timeouts.
		req = Encode([]string{"wait", "500ms"})
		if req.Selector != "500ms" || req.Timeout != 0 {
			t.Errorf("wait 500ms: got timeout=%d selector=%q", req.Timeout, req.Selector)
		}
	})

	t.Run("snapshot flags", func(t *testing.T) {
		req := Encode([]string{"snapshot", "-i", "--compact", "-d", "3", "--selector", "#main"})
		if !req.Interactive || !req.Compact {
			t.Errorf("expected interactive+compact, got %+v", req)
		}
		if req.Depth != 3 {
			t.Errorf("expected depth 3, got %d", req.Depth)
		}
		if req.Selector != "#main" {
			t.Errorf("expected selector #main, got %q", req.Selector)
		}
	})

	t.Run("round-trip through wire form", func(t *testing.T) {
		orig := Encode([]string{"fill", "#email", "a", "b"})
		data, err := json.Marshal(orig)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Request
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !reflect.DeepEqual(*orig, back) {
			t.Errorf("round-trip mismatch: %+v vs %+v", *orig, back)
		}
	})
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{`open example.com`, []string{"open", "example.com"}},
		{`fill "a b" "c d"`, []string{"fill", "a b", "c d"}},
		{`type #q hello world`, []string{"type", "#q", "hello", "world"}},
		{`click "#some id"`, []string{"click", "#some id"}},
		{`  spaced   out  `, []string{"spaced", "out"}},
		{``, nil},
		{`""`, []string{""}},
	}
	for _, tc := range cases {
		got := SplitCommand(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitCommand(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestEncodeBatch(t *testing.T) {
	t.Run("quoted values survive as single tokens", func(t *testing.T) {
		reqs := EncodeBatch([]string{`open example.com`, `fill "a b" "c d"`})
		if len(reqs) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(reqs))
		}
		if reqs[0].Action != ActionNavigate || reqs[0].URL != "https://example.com" {
			t.Errorf("first request wrong: %+v", reqs[0])
		}
		if reqs[1].Selector != "a b" || reqs[1].Value != "c d" {
			t.Errorf("second request wrong: %+v", reqs[1])
		}
	})

	t.Run("unencodable commands are dropped", func(t *testing.T) {
		reqs := EncodeBatch([]string{"open example.com", "frobnicate", "back"})
		if len(reqs) != 2 {
			t.Fatalf("expected 2 requests, got %d", len(reqs))
		}
		if reqs[0].Action != ActionNavigate || reqs[1].Action != ActionBack {
			t.Errorf("unexpected actions: %v, %v", reqs[0].Action, reqs[1].Action)
		}
	})
}

func TestFailure(t *testing.T) {
	req := Encode([]string{"back"})
	resp := Failure(req, errNope)
	if resp.Success {
		t.Error("expected failure response")
	}
	if resp.ID != req.ID {
		t.Errorf("expected id %q, got %q", req.ID, resp.ID)
	}
	if resp.Error != "nope" {
		t.Errorf("expected error text, got %q", resp.Error)
	}
}

var errNope = errString("nope")

type errString string

func (e errString) Error() string { return string(e) }
