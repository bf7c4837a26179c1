package server

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/effects"
	"github.com/conneroisu/folio/internal/gallery"
	"github.com/conneroisu/folio/internal/theme"
)

// PageData is everything the portfolio page renders from.
type PageData struct {
	Title     string
	Theme     theme.Mode
	Filter    string
	Projects  []gallery.Project
	IdleLabel string
	LivePath  string
	Endpoint  string
}

// Skill is one bar of the skills section.
type Skill struct {
	Name  string
	Width string
}

var skills = []Skill{
	{Name: "Go", Width: "90%"},
	{Name: "TypeScript", Width: "80%"},
	{Name: "SQL", Width: "75%"},
	{Name: "UI Design", Width: "65%"},
}

// Page renders the whole portfolio document.
func Page(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := ""
		if c := d.Theme.BodyClass(); c != "" {
			body = fmt.Sprintf(` class="%s"`, templ.EscapeString(c))
		}
		attrs := ""
		if d.LivePath != "" {
			attrs = fmt.Sprintf(` data-live="%s"`, templ.EscapeString(d.LivePath))
		}
		if d.Endpoint != "" {
			attrs += fmt.Sprintf(` data-endpoint="%s"`, templ.EscapeString(d.Endpoint))
		}

		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body%s%s>
`, templ.EscapeString(d.Title), body, attrs); err != nil {
			return err
		}

		for _, c := range []templ.Component{
			Navbar(d.Theme),
			Hero(),
			Skills(skills),
			Gallery(d.Projects, d.Filter),
			ContactForm(d.IdleLabel),
		} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `<script src="/static/wasm_exec.js"></script>
<script>if (window.Go) { const go = new Go(); WebAssembly.instantiateStreaming(fetch("/static/folio.wasm"), go.importObject).then(r => go.run(r.instance)); }</script>
</body>
</html>
`)
		return err
	})
}

// Navbar renders the header with the menu and the theme switch. The switch
// posts to /theme/toggle so it works without scripting.
func Navbar(mode theme.Mode) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		icon := "🌙"
		if mode == theme.Dark {
			icon = "☀️"
		}
		_, err := fmt.Fprintf(w, `<nav class="navbar">
<a class="logo" href="#home">Folio</a>
<button class="hamburger" type="button" aria-label="Menu"><span></span><span></span><span></span></button>
<ul class="nav-links">
<li><a href="#home">Home</a></li>
<li><a href="#skills">Skills</a></li>
<li><a href="#projects">Projects</a></li>
<li><a href="#contact">Contact</a></li>
</ul>
<form method="post" action="/theme/toggle"><button class="theme-toggle" id="themeToggle" type="submit" data-theme="%s">%s</button></form>
</nav>
`, templ.EscapeString(mode.String()), icon)
		return err
	})
}

// Hero renders the landing section.
func Hero() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section id="home" class="hero">
<div class="hero-content"><h1>Hi, I build things for the web.</h1><a class="btn" href="#contact">Get in touch</a></div>
<div class="hero-image"><div class="floating-card"></div></div>
</section>
`)
		return err
	})
}

// Skills renders the skill bars. The width sits in data-width for the
// reveal effect and in the style for clients without scripting.
func Skills(list []Skill) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section id="skills" class="section skills">
<h2>Skills</h2>
`)
		for _, s := range list {
			fmt.Fprintf(&b, `<div class="skill"><span>%s</span><div class="skill-bar"><div class="skill-progress" data-width="%s" style="width: %s"></div></div></div>
`, templ.EscapeString(s.Name), templ.EscapeString(s.Width), templ.EscapeString(s.Width))
		}
		b.WriteString("</section>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Gallery renders the filter bar and the project cards at rest for filter.
func Gallery(projects []gallery.Project, filter string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if filter == "" {
			filter = gallery.FilterAll
		}

		var b strings.Builder
		b.WriteString(`<section id="projects" class="section projects">
<h2>Projects</h2>
<div class="project-filters">
`)
		writeFilterButton(&b, gallery.FilterAll, "All", filter)
		for _, c := range gallery.Categories(projects) {
			writeFilterButton(&b, c, gallery.Label(c), filter)
		}
		b.WriteString("</div>\n<div class=\"projects-grid\">\n")

		transitions := gallery.Filter(projects, filter)
		for i, p := range projects {
			writeCard(&b, p, transitions[i].Resting())
		}
		b.WriteString("</div>\n</section>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeFilterButton(b *strings.Builder, value, label, active string) {
	class := "filter-btn"
	if value == active {
		class += " " + effects.ActiveClass
	}
	fmt.Fprintf(b, `<a class="%s" href="/?filter=%s#projects" data-filter="%s">%s</a>
`, class, templ.EscapeString(value), templ.EscapeString(value), templ.EscapeString(label))
}

func writeCard(b *strings.Builder, p gallery.Project, style gallery.Style) {
	fmt.Fprintf(b, `<div class="project-card" data-category="%s" style="%s">
<h3>%s</h3>
`, templ.EscapeString(p.Category), templ.EscapeString(style.String()), templ.EscapeString(p.Title))
	if p.Description != "" {
		fmt.Fprintf(b, "<p>%s</p>\n", templ.EscapeString(p.Description))
	}
	if len(p.Tags) > 0 {
		b.WriteString(`<ul class="project-tags">`)
		for _, tag := range p.Tags {
			fmt.Fprintf(b, "<li>%s</li>", templ.EscapeString(tag))
		}
		b.WriteString("</ul>\n")
	}
	if p.URL != "" {
		fmt.Fprintf(b, `<a class="project-link" href="%s">View</a>
`, templ.EscapeString(p.URL))
	}
	b.WriteString("</div>\n")
}

// ContactForm renders the empty form. Each input is followed by its error
// element inside the same group.
func ContactForm(idleLabel string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if idleLabel == "" {
			idleLabel = contact.DefaultLabels().Idle
		}
		_, err := fmt.Fprintf(w, `<section id="contact" class="section contact">
<h2>Contact</h2>
<form id="contactForm" class="contact-form" method="post" action="/contact" novalidate>
<div class="form-group">
<input type="text" id="name" name="name" placeholder="Your Name" value="">
<span class="form-error"></span>
</div>
<div class="form-group">
<input type="email" id="email" name="email" placeholder="Your Email" value="">
<span class="form-error"></span>
</div>
<div class="form-group">
<textarea id="message" name="message" rows="5" placeholder="Your Message"></textarea>
<span class="form-error"></span>
</div>
<button type="submit" class="btn btn-submit">%s</button>
</form>
</section>
`,
			templ.EscapeString(idleLabel),
		)
		return err
	})
}
