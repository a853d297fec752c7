package views

import (
	"context"

	"github.com/a-h/templ"
)

// Dashboard tabs.
const (
	TabUsers   = "users"
	TabProfile = "profile"
)

// Account is the signed-in user shown on the dashboard.
type Account struct {
	Username string
	Email    string
	Role     string
}

// Dashboard describes the admin dashboard.
type Dashboard struct {
	Account Account
	Tab     string
	Banner  *Banner
}

// DashboardView renders the dashboard with the selected tab.
func DashboardView(site Site, d Dashboard) templ.Component {
	return Page(site, "Dashboard", component(func(ctx context.Context, h *html) {
		h.raw(`<section class="dashboard"><header><h1>Welcome, `)
		h.text(d.Account.Username)
		h.raw(`</h1><form method="post" action="/logout"><button type="submit">Logout</button></form></header>`)
		banners(h, d.Banner)

		h.raw(`<nav class="tabs">`)
		for _, tab := range []string{TabUsers, TabProfile} {
			h.raw(`<a`)
			h.attr("href", "/dashboard?tab="+tab)
			if tab == d.Tab {
				h.attr("class", "active")
			}
			h.raw(`>`)
			h.text(Label(tab))
			h.raw(`</a>`)
		}
		h.raw(`</nav><div class="card">`)

		switch d.Tab {
		case TabProfile:
			h.raw(`<h2>Profile</h2><dl>`)
			for _, row := range [][2]string{
				{"Username", d.Account.Username},
				{"Email", d.Account.Email},
				{"Role", d.Account.Role},
			} {
				h.raw(`<dt>`)
				h.text(row[0])
				h.raw(`</dt><dd>`)
				h.text(row[1])
				h.raw(`</dd>`)
			}
			h.raw(`</dl>`)
		default:
			h.raw(`<h2>Users List</h2><p>Registered users of the system are listed here.</p>`)
		}
		h.raw(`</div></section>`)
	}))
}
