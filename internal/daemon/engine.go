package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"tabctl/internal/config"
	"tabctl/internal/protocol"
)

// Engine executes requests against a headless browser. The browser is
// launched lazily on the first command so the daemon starts fast and a
// daemon that never receives a command never spawns a browser.
type Engine struct {
	cfg       *config.Config
	opTimeout time.Duration

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// NewEngine creates a browser engine with the given configuration.
func NewEngine(cfg *config.Config) *Engine {
	opTimeout := cfg.RequestTimeout() - 2*time.Second
	if opTimeout < 5*time.Second {
		opTimeout = 5 * time.Second
	}
	return &Engine{cfg: cfg, opTimeout: opTimeout}
}

// tab returns the active browser tab context, launching the browser if
// needed. Caller must hold e.mu.
func (e *Engine) tab() (context.Context, error) {
	if e.tabCtx != nil && e.tabCtx.Err() == nil {
		return e.tabCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", e.cfg.Headless()),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 800),
	)
	if e.cfg.Browser.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.Browser.ExecPath))
	}

	e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	e.tabCtx, e.tabCancel = chromedp.NewContext(e.allocCtx)

	// Force the browser to actually start so failures surface here
	// instead of on the first action.
	if err := chromedp.Run(e.tabCtx); err != nil {
		e.closeLocked()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	slog.Info("browser launched", "headless", e.cfg.Headless())
	return e.tabCtx, nil
}

// closeLocked tears down the browser. Caller must hold e.mu.
func (e *Engine) closeLocked() {
	if e.tabCancel != nil {
		e.tabCancel()
		e.tabCancel = nil
		e.tabCtx = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
		e.allocCtx = nil
	}
}

// Close shuts down the browser if it is running.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
}

// Handle implements Handler. Commands run one at a time; the engine holds
// its lock for the duration of an action, matching the one-in-flight
// request model of the protocol.
func (e *Engine) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	e.mu.Lock()
	defer e.mu.Unlock()

	// close tears down the tab without needing a live browser first.
	if req.Action == protocol.ActionClose {
		e.closeLocked()
		return &protocol.Response{ID: req.ID, Success: true, Data: "closed"}
	}

	tab, err := e.tab()
	if err != nil {
		return protocol.Failure(req, err)
	}

	opCtx, cancel := context.WithTimeout(tab, e.opTimeout)
	defer cancel()

	data, err := e.run(opCtx, req)
	if err != nil {
		return protocol.Failure(req, err)
	}
	return &protocol.Response{ID: req.ID, Success: true, Data: data}
}

// run dispatches one action on the tab and returns its result data.
func (e *Engine) run(ctx context.Context, req *protocol.Request) (any, error) {
	switch req.Action {
	case protocol.ActionNavigate:
		if err := chromedp.Run(ctx,
			chromedp.Navigate(req.URL),
			chromedp.WaitReady("body"),
		); err != nil {
			return nil, fmt.Errorf("navigate to %s: %w", req.URL, err)
		}
		return map[string]any{"url": req.URL}, nil

	case protocol.ActionClick:
		return nil, chromedp.Run(ctx, chromedp.Click(req.Selector, chromedp.ByQuery))

	case protocol.ActionFill:
		return nil, chromedp.Run(ctx,
			chromedp.Clear(req.Selector, chromedp.ByQuery),
			chromedp.SendKeys(req.Selector, req.Value, chromedp.ByQuery),
		)

	case protocol.ActionType:
		return nil, chromedp.Run(ctx,
			chromedp.SendKeys(req.Selector, req.Text, chromedp.ByQuery),
		)

	case protocol.ActionHover:
		err := chromedp.Run(ctx, chromedp.Evaluate(hoverJS(req.Selector), nil))
		return nil, err

	case protocol.ActionSnapshot:
		var outline string
		if err := chromedp.Run(ctx, chromedp.Evaluate(snapshotJS(req), &outline)); err != nil {
			return nil, err
		}
		return outline, nil

	case protocol.ActionScreenshot:
		var buf []byte
		if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
			return nil, fmt.Errorf("capture screenshot: %w", err)
		}
		path := req.Path
		if path == "" {
			path = "screenshot.png"
		}
		if err := os.WriteFile(path, buf, 0644); err != nil {
			return nil, fmt.Errorf("write screenshot: %w", err)
		}
		return map[string]any{"path": path, "bytes": len(buf)}, nil

	case protocol.ActionGetText:
		var text string
		if err := chromedp.Run(ctx, chromedp.Text(req.Selector, &text, chromedp.ByQuery)); err != nil {
			return nil, err
		}
		return text, nil

	case protocol.ActionGetURL:
		var url string
		if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
			return nil, err
		}
		return url, nil

	case protocol.ActionGetTitle:
		var title string
		if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
			return nil, err
		}
		return title, nil

	case protocol.ActionPress:
		return nil, chromedp.Run(ctx, chromedp.KeyEvent(keyChord(req.Key)))

	case protocol.ActionWait:
		if req.Selector != "" {
			return nil, chromedp.Run(ctx, chromedp.WaitVisible(req.Selector, chromedp.ByQuery))
		}
		return nil, chromedp.Run(ctx, chromedp.Sleep(time.Duration(req.Timeout)*time.Millisecond))

	case protocol.ActionBack:
		return nil, chromedp.Run(ctx, chromedp.NavigateBack())

	case protocol.ActionForward:
		return nil, chromedp.Run(ctx, chromedp.NavigateForward())

	case protocol.ActionReload:
		return nil, chromedp.Run(ctx, chromedp.Reload())

	case protocol.ActionEval:
		var result any
		if err := chromedp.Run(ctx, chromedp.Evaluate(req.Script, &result)); err != nil {
			return nil, fmt.Errorf("eval: %w", err)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unknown action %q", req.Action)
	}
}

// keyChord maps user-facing key names onto chromedp key runes.
func keyChord(key string) string {
	switch key {
	case "Enter", "enter":
		return kb.Enter
	case "Tab", "tab":
		return kb.Tab
	case "Escape", "escape", "Esc", "esc":
		return kb.Escape
	case "Backspace", "backspace":
		return kb.Backspace
	case "Delete", "delete":
		return kb.Delete
	case "ArrowUp", "up":
		return kb.ArrowUp
	case "ArrowDown", "down":
		return kb.ArrowDown
	case "ArrowLeft", "left":
		return kb.ArrowLeft
	case "ArrowRight", "right":
		return kb.ArrowRight
	case "PageUp":
		return kb.PageUp
	case "PageDown":
		return kb.PageDown
	case "Home":
		return kb.Home
	case "End":
		return kb.End
	default:
		return key
	}
}

func hoverJS(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%q);
  if (!el) throw new Error("no element matches " + %q);
  el.dispatchEvent(new MouseEvent("mouseover", {bubbles: true}));
  el.dispatchEvent(new MouseEvent("mouseenter", {bubbles: true}));
  return true;
})()`, selector, selector)
}

// snapshotJS builds the DOM outline script honoring the snapshot options:
// interactive elements only, compact whitespace, bounded depth, scoped to
// a selector.
func snapshotJS(req *protocol.Request) string {
	root := "document.body"
	if req.Selector != "" {
		root = fmt.Sprintf("document.querySelector(%q)", req.Selector)
	}
	maxDepth := req.Depth
	if maxDepth <= 0 {
		maxDepth = 12
	}
	return fmt.Sprintf(`(() => {
  const interactiveOnly = %t;
  const compact = %t;
  const maxDepth = %d;
  const interactiveTags = new Set(["A","BUTTON","INPUT","SELECT","TEXTAREA","LABEL","OPTION"]);
  const root = %s;
  if (!root) throw new Error("snapshot root not found");
  const lines = [];
  const describe = (el) => {
    let desc = el.tagName.toLowerCase();
    if (el.id) desc += "#" + el.id;
    if (el.classList.length) desc += "." + [...el.classList].slice(0, 3).join(".");
    const text = (el.childElementCount === 0 ? el.textContent : "").trim();
    if (text) desc += " " + JSON.stringify(text.slice(0, 80));
    if (el.value) desc += " value=" + JSON.stringify(String(el.value).slice(0, 40));
    if (el.href) desc += " -> " + el.getAttribute("href");
    return desc;
  };
  const walk = (el, depth) => {
    if (depth > maxDepth) return;
    const interactive = interactiveTags.has(el.tagName) || el.onclick != null;
    const hasText = el.childElementCount === 0 && el.textContent.trim();
    if (!interactiveOnly || interactive) {
      if (!compact || interactive || hasText) {
        lines.push("  ".repeat(depth) + describe(el));
      }
    }
    for (const child of el.children) walk(child, depth + 1);
  };
  walk(root, 0);
  return lines.join("\n");
})()`, req.Interactive, req.Compact, maxDepth, root)
}
