package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultRecycleAfter is the default number of pages before the browser is
// replaced with a fresh instance.
const DefaultRecycleAfter = 75

// browser owns one headless Chrome process and replaces it after
// recycleAfter pages. Chrome's memory baseline grows with every page and
// never returns, so long crawls need a fresh process now and then.
type browser struct {
	mu           sync.Mutex
	current      *rod.Browser
	launcher     *launcher.Launcher
	pages        int
	recycleAfter int
}

func newBrowser(recycleAfter int) (*browser, error) {
	b := &browser{recycleAfter: recycleAfter}
	if err := b.launch(); err != nil {
		return nil, err
	}
	return b, nil
}

// acquire returns the browser to open the next page in, recycling first if
// the page budget is spent. It returns nil after release.
func (b *browser) acquire() *rod.Browser {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return nil
	}
	if b.recycleAfter > 0 && b.pages >= b.recycleAfter {
		b.recycle()
	}
	b.pages++
	return b.current
}

func (b *browser) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	rb := rod.New().ControlURL(u)
	if err := rb.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	b.current = rb
	b.launcher = l
	return nil
}

// recycle swaps in a fresh browser. If the launch fails the old one stays.
// Must be called with mu held.
func (b *browser) recycle() {
	old, oldLauncher := b.current, b.launcher
	if err := b.launch(); err != nil {
		b.current, b.launcher = old, oldLauncher
		return
	}
	_ = old.Close()
	oldLauncher.Kill()
	b.pages = 0
}

// release shuts the browser down. Further calls are no-ops.
func (b *browser) release() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.current != nil {
		err = b.current.Close()
		b.current = nil
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

func (b *browser) pid() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.launcher == nil {
		return 0
	}
	return b.launcher.PID()
}
