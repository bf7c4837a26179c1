//go:build js && wasm

package dom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/live"
	"github.com/conneroisu/folio/internal/theme"
)

// bindLive connects to the live endpoint named on the body. Until the
// connection is up, and after it ends, the form runs attempts in the page.
func (p *Page) bindLive() {
	path := p.body.Get("dataset").Get("live")
	if !present(path) || path.String() == "" {
		return
	}
	target, err := live.ResolveURL(p.win.Get("location").Get("href").String(), path.String())
	if err != nil {
		p.logger.Warn(context.Background(), err, "Live connection disabled")
		return
	}
	// Callbacks must return before the dial can resolve.
	go p.runLive(target)
}

func (p *Page) runLive(target string) {
	ctx := context.Background()
	client, err := live.Dial(ctx, target, nil, p.logger)
	if err != nil {
		p.logger.Warn(ctx, err, "Live connection unavailable, contact form runs locally", "url", target)
		return
	}

	p.mu.Lock()
	p.live = client
	p.mu.Unlock()
	p.logger.Info(ctx, "Live connection open", "url", target)

	err = client.Run(ctx, p.handleLive)

	p.mu.Lock()
	p.live = nil
	p.mu.Unlock()
	if err != nil {
		p.logger.Warn(ctx, err, "Live connection lost, contact form runs locally")
		return
	}
	p.logger.Info(ctx, "Live connection closed")
}

func (p *Page) liveClient() *live.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *Page) handleLive(m live.Message) {
	if p.form != nil && live.Apply(p.form, m) {
		return
	}

	ctx := context.Background()
	switch m.Op {
	case live.OpTheme:
		mode := theme.FromStored(m.Theme)
		p.showTheme(mode)
		p.storeTheme(mode)
	case live.OpCatalog:
		go func() {
			if err := p.reloadProjects(ctx); err != nil {
				p.logger.Warn(ctx, err, "Project catalog refresh failed")
			}
		}()
	case live.OpOutcome:
		p.logger.Debug(ctx, "Contact attempt finished", "attempt_id", m.AttemptID, "status", m.Status)
	case live.OpReset:
		p.logger.Debug(ctx, "Contact form reset", "from", m.Status)
	case live.OpError:
		p.logger.Warn(ctx, nil, "Live request refused", "error", m.Error)
	}
}

// reloadProjects fetches the page again and swaps in its projects section.
// The filter is back at all afterwards.
func (p *Page) reloadProjects(ctx context.Context) error {
	loc := p.win.Get("location")
	src := loc.Get("origin").String() + loc.Get("pathname").String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
	}
	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	parsed := p.win.Get("DOMParser").New().Call("parseFromString", string(html), "text/html")
	fresh := parsed.Call("getElementById", "projects")
	current := p.doc.Call("getElementById", "projects")
	if !present(fresh) || !present(current) {
		return errors.New("projects section missing")
	}
	current.Set("innerHTML", fresh.Get("innerHTML"))

	p.bindFilters()
	p.bindEntrance()
	p.logger.Debug(ctx, "Project catalog refreshed", "cards", len(p.all(".project-card")))
	return nil
}

// submitLive hands fields to the live session. It reports false when the
// page must run the attempt itself.
func (p *Page) submitLive(ctx context.Context, fields contact.Fields) bool {
	client := p.liveClient()
	if client == nil {
		return false
	}
	if err := client.Submit(ctx, fields); err != nil {
		p.logger.Warn(ctx, err, "Live submit failed, running locally")
		return false
	}
	return true
}
