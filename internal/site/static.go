package site

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/store"
)

// AssetStore opens static assets by slash-separated key.
type AssetStore interface {
	Open(ctx context.Context, key string) (*store.Object, error)
}

var _ AssetStore = (*store.MinioStore)(nil)

// AssetHandler serves assets from an AssetStore. It expects the /static/
// prefix to be stripped already.
func AssetHandler(assets AssetStore, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if key == "" {
			http.NotFound(w, r)
			return
		}

		obj, err := assets.Open(r.Context(), key)
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Error("open asset", zap.String("key", key), zap.Error(err))
			http.Error(w, "asset unavailable", http.StatusBadGateway)
			return
		}
		defer obj.Content.Close()

		if obj.ContentType != "" {
			w.Header().Set("Content-Type", obj.ContentType)
		}
		http.ServeContent(w, r, key, obj.ModTime, obj.Content)
	})
}

// DirHandler serves assets from a local directory.
func DirHandler(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}
