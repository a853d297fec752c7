package views

import (
	"context"

	"github.com/a-h/templ"
)

// Site carries values every page needs.
type Site struct {
	Name    string
	HTMXSrc string
}

// Link is a navigation link under a form.
type Link struct {
	Href string
	Text string
}

// Page wraps body in the document shell. Body is boosted by htmx, so form
// posts and links swap the body without a full reload.
func Page(site Site, title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="htmx-config" content='`, htmxConfig, `'>`)
		h.raw(`<title>`)
		h.text(title)
		if site.Name != "" {
			h.raw(" | ")
			h.text(site.Name)
		}
		h.raw(`</title><style>`, stylesheet, `</style>`)
		if site.HTMXSrc != "" {
			h.raw(`<script`)
			h.attr("src", site.HTMXSrc)
			h.raw(`></script>`)
		}
		h.raw(`<script>`, clientScript, `</script></head>`)
		h.raw(`<body hx-boost="true"><main class="screen">`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

// htmxConfig swaps 4xx and 5xx bodies too, since forms re-render with 422.
// 286 only stops polling.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"286","swap":false},{"code":"...","swap":true}]}`

func links(h *html, items []Link) {
	if len(items) == 0 {
		return
	}
	h.raw(`<nav class="links">`)
	for _, l := range items {
		h.raw(`<a`)
		h.attr("href", l.Href)
		h.raw(`>`)
		h.text(l.Text)
		h.raw(`</a>`)
	}
	h.raw(`</nav>`)
}

// Home is the landing page.
func Home(site Site, banner *Banner) templ.Component {
	return Page(site, "Welcome", component(func(ctx context.Context, h *html) {
		h.raw(`<section class="card"><h2>`)
		h.text(site.Name)
		h.raw(`</h2>`)
		banners(h, banner)
		links(h, []Link{
			{Href: "/login", Text: "Login"},
			{Href: "/register", Text: "Create an account"},
		})
		h.raw(`</section>`)
	}))
}

// ErrorPage renders a failed request.
func ErrorPage(site Site, status int, message string) templ.Component {
	return Page(site, "Error", component(func(ctx context.Context, h *html) {
		h.raw(`<section class="card error-page"><h2>`)
		h.text(itoa(status))
		h.raw(`</h2><p>`)
		h.text(message)
		h.raw(`</p>`)
		links(h, []Link{{Href: "/", Text: "Back to start"}})
		h.raw(`</section>`)
	}))
}

// clientScript glues server responses to the browser: delayed navigation
// from the "navigate" HX-Trigger event, banner expiry, touched inputs and
// code slot focus movement.
const clientScript = `
document.addEventListener("navigate", function (e) {
  setTimeout(function () { window.location.assign(e.detail.url); }, e.detail.delay);
});
function armBanners(root) {
  root.querySelectorAll("[data-ttl]").forEach(function (el) {
    if (el.dataset.armed) return;
    el.dataset.armed = "1";
    setTimeout(function () { el.remove(); }, Number(el.dataset.ttl));
  });
}
document.addEventListener("DOMContentLoaded", function () { armBanners(document); });
document.addEventListener("htmx:afterSettle", function (e) { armBanners(document); });
document.addEventListener("focusout", function (e) {
  if (e.target.matches && e.target.matches("input[data-live]")) e.target.classList.add("touched");
});
document.addEventListener("input", function (e) {
  var t = e.target;
  if (!t.matches || !t.matches(".code-slot")) return;
  t.value = t.value.replace(/\D/g, "").slice(0, 1);
  if (t.value && t.nextElementSibling) t.nextElementSibling.focus();
});
document.addEventListener("keydown", function (e) {
  var t = e.target;
  if (e.key !== "Backspace" || !t.matches || !t.matches(".code-slot")) return;
  if (!t.value && t.previousElementSibling) t.previousElementSibling.focus();
});
document.addEventListener("paste", function (e) {
  var t = e.target;
  if (!t.matches || !t.matches(".code-slot")) return;
  var text = (e.clipboardData || window.clipboardData).getData("text");
  if (!/^\d{1,6}$/.test(text)) return;
  e.preventDefault();
  var slots = t.parentElement.querySelectorAll(".code-slot");
  slots.forEach(function (s, i) { s.value = text[i] || ""; });
  slots[Math.min(text.length, slots.length) - 1].focus();
});
`

const stylesheet = `
body{margin:0;font-family:system-ui,sans-serif;background:#f3f4f6;color:#111827}
.screen{min-height:100vh;display:flex;align-items:center;justify-content:center;padding:1rem}
.card{background:#fff;padding:2rem;border-radius:1rem;box-shadow:0 1px 3px rgba(0,0,0,.1);width:100%;max-width:28rem}
.card h2{margin-top:0;text-align:center}
.field{margin-bottom:1rem}
.field label{display:block;font-weight:600;margin-bottom:.25rem}
.field input{width:100%;box-sizing:border-box;border:1px solid #d1d5db;border-radius:.25rem;padding:.5rem .75rem}
.field-error{color:#ef4444;font-size:.875rem;margin:.25rem 0 0}
.banner{padding:.5rem;border-radius:.25rem;text-align:center;margin:.5rem 0}
.banner-success{color:#15803d;background:#dcfce7}
.banner-error{color:#b91c1c;background:#fee2e2}
button{width:100%;background:#3b82f6;color:#fff;border:0;border-radius:.25rem;padding:.5rem;cursor:pointer}
button[disabled]{opacity:.5;cursor:not-allowed}
.links{display:flex;flex-direction:column;align-items:center;gap:.5rem;margin-top:1rem;font-size:.875rem}
.code-slots{display:flex;gap:.5rem;justify-content:center;margin:1rem 0}
.code-slot{width:2.5rem;height:3rem;text-align:center;font-size:1.25rem}
.countdown{text-align:center;color:#6b7280}
.tabs{display:flex;justify-content:center;gap:.5rem;margin-top:1.5rem}
.tabs a{padding:.5rem 1rem;background:#e5e7eb;border-radius:.5rem .5rem 0 0;text-decoration:none;color:inherit}
.tabs a.active{background:#3b82f6;color:#fff}
.dashboard{width:100%;max-width:56rem}
.dashboard header{display:flex;justify-content:space-between;align-items:center;background:#fff;padding:1rem 1.5rem}
.dashboard header button{width:auto;background:#ef4444}
`
