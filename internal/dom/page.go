//go:build js && wasm

package dom

import (
	"context"
	"strconv"
	"sync"
	"syscall/js"
	"time"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/effects"
	"github.com/conneroisu/folio/internal/gallery"
	"github.com/conneroisu/folio/internal/live"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/theme"
)

// themeKey is the localStorage entry holding light or dark.
const themeKey = "theme"

// cardTransition is the CSS transition the entrance animation runs with.
const cardTransition = "all 0.5s ease"

// Page holds the listeners bound to the document.
type Page struct {
	win    js.Value
	doc    js.Value
	body   js.Value
	logger logging.Logger

	mu    sync.Mutex
	menu  effects.MenuState
	funcs []js.Func

	form *Surface
	ctrl *contact.Controller
	live *live.Client
}

// Bind wires every behavior of the page. A page without a contact form
// still gets the other behaviors.
func Bind(logger logging.Logger) *Page {
	win := js.Global()
	p := &Page{
		win:    win,
		doc:    win.Get("document"),
		logger: logger,
	}
	p.body = p.doc.Get("body")

	p.applyStoredTheme()
	p.bindTheme()
	p.bindFilters()
	p.bindEntrance()
	p.bindMenu()
	p.bindSmoothScroll()
	p.bindScroll()
	p.bindMouseFollow()
	p.bindReveal()

	if err := p.bindContact(); err != nil {
		logger.Warn(context.Background(), err, "Contact form not bound")
	}
	p.bindLive()
	return p
}

// Release closes the live connection, stops the pending reset and frees
// the Go callbacks. Listeners stay attached, so the page must not fire
// events afterwards.
func (p *Page) Release() {
	if c := p.liveClient(); c != nil {
		_ = c.Close()
	}
	if p.ctrl != nil {
		p.ctrl.Close()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.funcs {
		f.Release()
	}
	p.funcs = nil
}

func (p *Page) on(target js.Value, event string, fn func(ev js.Value)) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		fn(ev)
		return nil
	})
	p.mu.Lock()
	p.funcs = append(p.funcs, f)
	p.mu.Unlock()
	target.Call("addEventListener", event, f)
}

func (p *Page) all(selector string) []js.Value {
	list := p.doc.Call("querySelectorAll", selector)
	out := make([]js.Value, list.Length())
	for i := range out {
		out[i] = list.Index(i)
	}
	return out
}

func (p *Page) first(selector string) js.Value {
	return p.doc.Call("querySelector", selector)
}

func setClass(el js.Value, class string, on bool) {
	if on {
		el.Get("classList").Call("add", class)
		return
	}
	el.Get("classList").Call("remove", class)
}

func applyStyle(el js.Value, s gallery.Style) {
	style := el.Get("style")
	if s.Display != "" {
		style.Set("display", s.Display)
	}
	if s.Opacity != "" {
		style.Set("opacity", s.Opacity)
	}
	if s.Transform != "" {
		style.Set("transform", s.Transform)
	}
}

// applyStoredTheme follows localStorage when it holds a preference and
// leaves the server-rendered class alone otherwise.
func (p *Page) applyStoredTheme() {
	storage := p.win.Get("localStorage")
	if !present(storage) {
		return
	}
	stored := storage.Call("getItem", themeKey)
	if !present(stored) {
		return
	}
	p.showTheme(theme.FromStored(stored.String()))
}

func (p *Page) showTheme(mode theme.Mode) {
	setClass(p.body, theme.DarkClass, mode == theme.Dark)
	if btn := p.doc.Call("getElementById", "themeToggle"); present(btn) {
		icon := "🌙"
		if mode == theme.Dark {
			icon = "☀️"
		}
		btn.Set("textContent", icon)
		btn.Get("dataset").Set("theme", mode.String())
	}
}

func (p *Page) bindTheme() {
	btn := p.doc.Call("getElementById", "themeToggle")
	if !present(btn) {
		return
	}
	p.on(btn, "click", func(ev js.Value) {
		ev.Call("preventDefault")
		mode := theme.Light
		if p.body.Get("classList").Call("contains", theme.DarkClass).Bool() {
			mode = theme.Dark
		}
		next := mode.Toggled()
		p.showTheme(next)
		p.storeTheme(next)
	})
}

func (p *Page) storeTheme(mode theme.Mode) {
	if storage := p.win.Get("localStorage"); present(storage) {
		storage.Call("setItem", themeKey, mode.String())
	}
}

func (p *Page) bindFilters() {
	buttons := p.all(".filter-btn")
	for _, btn := range buttons {
		p.on(btn, "click", func(ev js.Value) {
			ev.Call("preventDefault")
			for _, b := range buttons {
				setClass(b, effects.ActiveClass, false)
			}
			setClass(btn, effects.ActiveClass, true)
			p.filterCards(btn.Get("dataset").Get("filter").String())
		})
	}
}

func (p *Page) filterCards(filter string) {
	cards := p.all(".project-card")
	projects := make([]gallery.Project, len(cards))
	for i, card := range cards {
		projects[i].Category = card.Get("dataset").Get("category").String()
	}

	for i, t := range gallery.Filter(projects, filter) {
		card := cards[i]
		applyStyle(card, t.Immediate)
		time.AfterFunc(t.Delay, func() { applyStyle(card, t.Final) })
	}
}

func (p *Page) bindEntrance() {
	for i, card := range p.all(".project-card") {
		e := gallery.EntranceFor(i)
		applyStyle(card, e.Initial)
		style := card.Get("style")
		style.Set("transition", cardTransition)
		style.Set("transitionDelay", strconv.FormatFloat(e.TransitionDelay.Seconds(), 'f', -1, 64)+"s")

		time.AfterFunc(e.RevealAfter, func() {
			applyStyle(card, gallery.Style{Opacity: "1", Transform: "translateY(0)"})
		})
	}
}

func (p *Page) bindMenu() {
	hamburger := p.first(".hamburger")
	links := p.first(".nav-links")
	if !present(hamburger) || !present(links) {
		return
	}

	show := func() {
		setClass(hamburger, effects.ActiveClass, p.menu.Open)
		setClass(links, effects.ActiveClass, p.menu.Open)
	}
	p.on(hamburger, "click", func(js.Value) {
		p.menu.Toggle()
		show()
	})
	for _, a := range p.all(".nav-links a") {
		p.on(a, "click", func(js.Value) {
			p.menu.Close()
			show()
		})
	}
}

func (p *Page) bindSmoothScroll() {
	for _, a := range p.all(`a[href^="#"]`) {
		p.on(a, "click", func(ev js.Value) {
			href := a.Call("getAttribute", "href").String()
			if len(href) < 2 {
				return
			}
			target := p.doc.Call("querySelector", href)
			if !present(target) {
				return
			}
			ev.Call("preventDefault")
			target.Call("scrollIntoView", map[string]any{"behavior": "smooth", "block": "start"})
		})
	}
}

func (p *Page) bindScroll() {
	navbar := p.first(".navbar")
	hero := p.first(".hero")
	p.on(p.win, "scroll", func(js.Value) {
		y := p.win.Get("scrollY").Float()
		if present(navbar) {
			navbar.Get("style").Set("boxShadow", effects.NavbarShadow(y))
		}
		if present(hero) {
			hero.Get("style").Set("backgroundPosition", effects.ParallaxPosition(y))
		}
	})
}

func (p *Page) bindMouseFollow() {
	art := p.first(".hero-image")
	if !present(art) {
		return
	}
	p.on(p.doc, "mousemove", func(ev js.Value) {
		art.Get("style").Set("transform", effects.MouseFollow(
			p.win.Get("innerWidth").Float(),
			p.win.Get("innerHeight").Float(),
			ev.Get("clientX").Float(),
			ev.Get("clientY").Float(),
		))
	})
}

// bindReveal fades sections in and replays the skill bars the first time
// they scroll into view.
func (p *Page) bindReveal() {
	ctor := p.win.Get("IntersectionObserver")
	if !present(ctor) {
		return
	}

	sections := p.observer(ctor, map[string]any{
		"threshold":  effects.SectionThreshold,
		"rootMargin": effects.SectionRootMargin,
	}, func(_ js.Value, target js.Value) {
		setClass(target, effects.FadeInClass, true)
	})
	for _, s := range p.all("section") {
		sections.Call("observe", s)
	}

	bars := p.observer(ctor, map[string]any{
		"threshold": effects.SkillThreshold,
	}, func(obs js.Value, bar js.Value) {
		width := bar.Get("dataset").Get("width")
		target := bar.Get("style").Get("width").String()
		if present(width) {
			target = width.String()
		}
		reveal := effects.SkillReveal(target)
		bar.Get("style").Set("width", reveal.Collapsed)
		time.AfterFunc(reveal.Delay, func() { bar.Get("style").Set("width", reveal.Target) })
		obs.Call("unobserve", bar)
	})
	for _, b := range p.all(".skill-progress") {
		bars.Call("observe", b)
	}
}

func (p *Page) observer(ctor js.Value, opts map[string]any, visible func(obs, target js.Value)) js.Value {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		entries, obs := args[0], args[1]
		for i := 0; i < entries.Length(); i++ {
			entry := entries.Index(i)
			if entry.Get("isIntersecting").Bool() {
				visible(obs, entry.Get("target"))
			}
		}
		return nil
	})
	p.mu.Lock()
	p.funcs = append(p.funcs, f)
	p.mu.Unlock()
	return ctor.New(f, opts)
}

// bindContact handles the form's submit event. Attempts go through the
// live session when it is connected. Otherwise they run in the page and
// post to the endpoint named on the body, or the default one.
func (p *Page) bindContact() error {
	form := p.doc.Call("getElementById", "contactForm")
	if !present(form) {
		return nil
	}
	surface, err := FindForm(p.doc)
	if err != nil {
		return err
	}

	endpoint := ""
	if v := p.body.Get("dataset").Get("endpoint"); present(v) {
		endpoint = v.String()
	}

	p.form = surface
	p.ctrl = contact.NewController(surface, contact.NewHTTPSender(endpoint, nil),
		contact.WithLogger(p.logger),
		contact.WithLabels(contact.Labels{Idle: surface.IdleLabel()}),
	)

	p.on(form, "submit", func(ev js.Value) {
		ev.Call("preventDefault")
		fields := surface.Fields()
		// Callbacks must return before fetch can resolve.
		go func() {
			ctx := context.Background()
			if p.submitLive(ctx, fields) {
				return
			}
			out := p.ctrl.Submit(ctx, fields)
			p.logger.Debug(ctx, "Contact attempt finished",
				"attempt_id", out.AttemptID, "status", out.Status.String())
		}()
	})
	return nil
}
