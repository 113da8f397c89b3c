package server

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// staticHandler serves files under root for GET and HEAD. Dotfiles and the
// configured hidden paths answer 404 as though they did not exist.
type staticHandler struct {
	root   string
	files  http.Handler
	hidden map[string]bool
}

func newStaticHandler(root string, hidden []string) *staticHandler {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	h := &staticHandler{
		root:   root,
		files:  http.FileServer(http.Dir(root)),
		hidden: make(map[string]bool, len(hidden)),
	}
	for _, p := range hidden {
		if abs, err := filepath.Abs(p); err == nil {
			h.hidden[abs] = true
		}
	}
	return h
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Unsupported method ('"+r.Method+"')", http.StatusNotImplemented)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			http.NotFound(w, r)
			return
		}
	}
	if h.hidden[filepath.Join(h.root, filepath.FromSlash(clean))] {
		http.NotFound(w, r)
		return
	}

	h.files.ServeHTTP(w, r)
}
