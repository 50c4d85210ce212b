package site

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/auth"
	"github.com/masiqhakaze/website/internal/models"
	"github.com/masiqhakaze/website/internal/posts"
	"github.com/masiqhakaze/website/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// homeNewsCount is how many posts the home page shows.
const homeNewsCount = 4

// Member is a committee member shown on the home page.
type Member struct {
	Image string
	Name  string
	Role  string
}

var DefaultMembers = []Member{
	{Image: "1.jpg", Name: "T. Mavuso", Role: "Treasurer"},
	{Image: "2.jpg", Name: "N. Kubheka", Role: "Secretary"},
	{Image: "3.jpg", Name: "S. Nkambule", Role: "Chairperson"},
}

type pageData struct {
	Title            string
	OrganizationName string
	Members          []Member
	News             []models.Post
	Post             *models.Post
}

// LoadTemplates parses the page templates from dir, or the embedded copies
// when dir is empty.
func LoadTemplates(dir string) (*template.Template, error) {
	tmpl := template.New("").Funcs(template.FuncMap{"pathEscape": url.PathEscape})
	if dir == "" {
		return tmpl.ParseFS(templateFS, "templates/*.html")
	}
	return tmpl.ParseFS(os.DirFS(dir), "*.html")
}

// titleParam returns the {title} path segment decoded. chi matches on the
// raw path when the URL carries an escaped slash, leaving the segment
// encoded.
func titleParam(r *http.Request) string {
	title := chi.URLParam(r, "title")
	if r.URL.RawPath == "" {
		return title
	}
	if decoded, err := url.PathUnescape(title); err == nil {
		return decoded
	}
	return title
}

// Handler serves the public pages and the admin post actions.
type Handler struct {
	posts   *posts.Store
	tmpl    *template.Template
	org     string
	members []Member
	log     *zap.Logger
}

func NewHandler(posts *posts.Store, tmpl *template.Template, org string, members []Member, log *zap.Logger) *Handler {
	return &Handler{posts: posts, tmpl: tmpl, org: org, members: members, log: log}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	news, err := h.posts.Latest(r.Context(), homeNewsCount)
	if err != nil {
		h.log.Error("load latest posts", zap.Error(err))
	}
	h.render(w, http.StatusOK, "index.html", pageData{Title: "Home", Members: h.members, News: news})
}

func (h *Handler) Articles(w http.ResponseWriter, r *http.Request) {
	news, err := h.posts.List(r.Context())
	if err != nil {
		h.log.Error("list posts", zap.Error(err))
	}
	h.render(w, http.StatusOK, "news.html", pageData{Title: "News", News: news})
}

func (h *Handler) Article(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	post, err := h.posts.FindByTitle(r.Context(), title)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Error("find post", zap.String("title", title), zap.Error(err))
		}
		h.render(w, http.StatusNotFound, "article.html", pageData{Title: "News Article"})
		return
	}
	h.render(w, http.StatusOK, "article.html", pageData{Title: post.Title, Post: &post})
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about.html", pageData{Title: "About"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", pageData{Title: "Login"})
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	news, err := h.posts.List(r.Context())
	if err != nil {
		h.log.Error("list posts", zap.Error(err))
	}
	h.render(w, http.StatusOK, "admin.html", pageData{Title: "Admin", News: news})
}

// AddPost publishes a post from the admin form. A title that is already
// taken is ignored and the admin page is shown again.
func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	title, body := r.PostFormValue("title"), r.PostFormValue("body")
	if title == "" || body == "" {
		http.Error(w, "title and body are required", http.StatusBadRequest)
		return
	}

	post, err := h.posts.Create(r.Context(), title, body)
	switch {
	case errors.Is(err, posts.ErrDuplicateTitle):
		h.log.Info("post title already exists", zap.String("title", title))
	case errors.Is(err, posts.ErrEmptyTitle):
		http.Error(w, "title and body are required", http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("create post", zap.String("title", title), zap.Error(err))
		http.Error(w, "failed to save post", http.StatusInternalServerError)
		return
	default:
		h.log.Info("post published", zap.String("title", post.Title))
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	title := titleParam(r)
	n, err := h.posts.DeleteByTitle(r.Context(), title)
	if err != nil {
		h.log.Error("delete post", zap.String("title", title), zap.Error(err))
		auth.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Error deleting article: " + title,
		})
		return
	}
	h.log.Info("posts deleted", zap.String("title", title), zap.Int("count", n))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.OrganizationName = h.org
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
