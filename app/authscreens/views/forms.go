package views

import (
	"context"
	"time"

	"github.com/a-h/templ"
)

// Banner is a transient status line. A positive TTL removes it client side.
type Banner struct {
	Success bool
	Message string
	TTL     time.Duration
}

// Field is one input with its visible error.
type Field struct {
	Name         string
	Label        string
	Type         string
	Value        string
	Error        string
	Autocomplete string
}

// Hidden is a hidden input carried through a post.
type Hidden struct {
	Name  string
	Value string
}

// Live wires inputs to the validation endpoint. A positive Debounce
// validates while typing; otherwise fields validate on blur and live once
// touched.
type Live struct {
	URL      string
	Debounce time.Duration
}

// FormPage describes a form screen.
type FormPage struct {
	Title  string
	Action string
	Submit string
	Fields []Field
	Hidden []Hidden
	Live   Live
	Banner *Banner
	Errors []string
	Links  []Link
}

// FormView renders a full form page.
func FormView(site Site, p FormPage) templ.Component {
	return Page(site, p.Title, FormBody(p))
}

// FormBody renders the form card alone.
func FormBody(p FormPage) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<form class="card" method="post" novalidate`)
		h.attr("action", p.Action)
		h.raw(`><h2>`)
		h.text(p.Title)
		h.raw(`</h2>`)

		for _, hd := range p.Hidden {
			h.raw(`<input type="hidden"`)
			h.attr("name", hd.Name)
			h.attr("value", hd.Value)
			h.raw(`>`)
		}
		for _, f := range p.Fields {
			field(h, f, p.Live)
		}

		h.raw(`<button type="submit">`)
		h.text(p.Submit)
		h.raw(`</button>`)

		for _, msg := range p.Errors {
			banners(h, &Banner{Message: msg})
		}
		banners(h, p.Banner)
		links(h, p.Links)
		h.raw(`</form>`)
	})
}

func field(h *html, f Field, live Live) {
	id := "field-" + f.Name
	typ := f.Type
	if typ == "" {
		typ = "text"
	}
	label := f.Label
	if label == "" {
		label = Label(f.Name)
	}

	h.raw(`<div class="field"><label`)
	h.attr("for", id)
	h.raw(`>`)
	h.text(label)
	h.raw(`</label><input`)
	h.attr("id", id)
	h.attr("type", typ)
	h.attr("name", f.Name)
	if typ != "password" {
		h.attr("value", f.Value)
	}
	if f.Autocomplete != "" {
		h.attr("autocomplete", f.Autocomplete)
	}
	if f.Error != "" {
		h.attr("aria-invalid", "true")
		h.attr("class", "touched")
	}
	if live.URL != "" {
		h.raw(` data-live`)
		h.attr("hx-post", live.URL)
		h.attr("hx-trigger", trigger(live))
		h.attr("hx-include", "closest form")
		h.attr("hx-swap", "none")
	}
	h.raw(`>`)
	fieldError(h, f, false)
	h.raw(`</div>`)
}

func trigger(live Live) string {
	if live.Debounce > 0 {
		return "input changed delay:" + itoa(int(live.Debounce.Milliseconds())) + "ms"
	}
	return "blur, input[this.classList.contains('touched')]"
}

func fieldError(h *html, f Field, oob bool) {
	h.raw(`<p class="field-error"`)
	h.attr("id", "error-"+f.Name)
	if oob {
		h.attr("hx-swap-oob", "true")
	}
	h.raw(`>`)
	h.text(f.Error)
	h.raw(`</p>`)
}

// FieldErrors renders out-of-band error lines for the live validation
// endpoint. An empty Error clears the line.
func FieldErrors(fields []Field) templ.Component {
	return component(func(ctx context.Context, h *html) {
		for _, f := range fields {
			fieldError(h, f, true)
		}
	})
}

func banners(h *html, b *Banner) {
	if b == nil || b.Message == "" {
		return
	}
	class := "banner banner-error"
	role := "alert"
	if b.Success {
		class = "banner banner-success"
		role = "status"
	}
	h.raw(`<p`)
	h.attr("class", class)
	h.attr("role", role)
	if b.TTL > 0 {
		h.attr("data-ttl", itoa(int(b.TTL.Milliseconds())))
	}
	h.raw(`>`)
	h.text(b.Message)
	h.raw(`</p>`)
}
