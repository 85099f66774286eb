package api

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// frontend returns the handler for non-API paths, or nil when the server
// runs API-only. Priority:
// 1) static files from StaticDir (fullstack image)
// 2) reverse proxy to DevFrontendURL (Vite dev server)
func (rt *Router) frontend() http.Handler {
	if rt.opts.StaticDir != "" {
		fs := http.FileServer(http.Dir(rt.opts.StaticDir))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.NotFound(w, r)
				return
			}
			fs.ServeHTTP(w, r)
		})
	}
	if rt.opts.DevFrontendURL == "" {
		return nil
	}
	u, err := url.Parse(rt.opts.DevFrontendURL)
	if err != nil || u.Host == "" {
		rt.opts.Logger.Warn("invalid dev frontend url", "url", rt.opts.DevFrontendURL, "err", err)
		return nil
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	// Proxied responses are no-store as well.
	rp.ModifyResponse = func(res *http.Response) error {
		res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		res.Header.Set("Pragma", "no-cache")
		res.Header.Set("Expires", "0")
		return nil
	}
	return rp
}
