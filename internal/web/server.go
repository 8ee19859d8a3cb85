package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dnswlt/mdcat/internal/api"
	"github.com/dnswlt/mdcat/internal/apierr"
	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/metrics"
	"github.com/dnswlt/mdcat/internal/props"
	"github.com/dnswlt/mdcat/internal/subjectarea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

//go:embed templates/*.html
var templateFiles embed.FS

// UserIDHeader carries the ID of the calling user.
const UserIDHeader = "X-User-ID"

type ServerOptions struct {
	Addr string // E.g., "localhost:8080"
	// User ID for requests that do not send the UserIDHeader.
	// If empty, such requests are rejected.
	DefaultUserID string
}

type Server struct {
	opts     ServerOptions
	template *template.Template
	client   *subjectarea.Client
	log      zerolog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records HTTP metrics in m and exposes everything gathered by
// g under /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func NewServer(opts ServerOptions, client *subjectarea.Client, options ...Option) (*Server, error) {
	s := &Server{
		opts:   opts,
		client: client,
		log:    zerolog.Nop(),
	}
	for _, o := range options {
		o(s)
	}
	tmpl, err := template.New("root").Funcs(map[string]any{
		"markdown":  markdown,
		"urlencode": urlencode,
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %v", err)
	}
	s.template = tmpl
	return s, nil
}

// withRequestLogging wraps a handler and logs each request.
// Logs include method, path, status, remote address, and duration.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		lrw := &loggingResponseWriter{ResponseWriter: w}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTPRequest(route, lrw.status(), duration)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", lrw.status()).
			Int("bytes", lrw.written).
			Dur("duration", duration).
			Str("remote", r.RemoteAddr).
			Msg("Request")
	})
}

func (s *Server) userID(r *http.Request) string {
	if u := r.Header.Get(UserIDHeader); u != "" {
		return u
	}
	return s.opts.DefaultUserID
}

func paging(r *http.Request) (subjectarea.Paging, error) {
	var p subjectarea.Paging
	q := r.URL.Query()
	for _, x := range []struct {
		name string
		dst  *int
	}{{"startFrom", &p.StartFrom}, {"pageSize", &p.PageSize}} {
		v := q.Get(x.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apierr.New(apierr.KindInvalidParameter, "http", "invalid %s %q", x.name, v)
		}
		*x.dst = n
	}
	return p, nil
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := apierr.KindOf(err)
	status := apierr.HTTPStatus(kind)
	if status >= 500 {
		s.log.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	s.writeJSON(w, status, map[string]errorBody{
		"error": {Kind: kind.String(), Message: err.Error()},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	bs, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "JSON encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bs)
}

// respond writes v as JSON, or the error if err is not nil.
func respond[T any](s *Server, w http.ResponseWriter, v T, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

// elementStruct returns the raw element in google.protobuf.Struct form.
func elementStruct(e *api.Element) (*structpb.Struct, error) {
	ps, err := props.ToStruct(e.Properties)
	if err != nil {
		return nil, err
	}
	cls := make([]any, 0, len(e.Classifications))
	for _, c := range e.Classifications {
		cps, err := props.ToStruct(c.Properties)
		if err != nil {
			return nil, fmt.Errorf("classification %s: %w", c.Name, err)
		}
		cls = append(cls, map[string]any{
			"name":       c.Name,
			"properties": cps.AsMap(),
		})
	}
	return structpb.NewStruct(map[string]any{
		"guid":            e.GUID,
		"type":            e.Type,
		"version":         e.Version,
		"status":          e.Status,
		"classifications": cls,
		"properties":      ps.AsMap(),
	})
}

func (s *Server) serveElement(w http.ResponseWriter, r *http.Request) {
	e, err := s.client.GetElement(r.Context(), s.userID(r), r.PathValue("guid"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := elementStruct(e)
	if err != nil {
		s.writeError(w, apierr.Wrap(apierr.KindUnexpectedResponse, "getElement", err))
		return
	}
	bs, err := protojson.Marshal(st)
	if err != nil {
		s.writeError(w, apierr.Wrap(apierr.KindUnexpectedResponse, "getElement", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(bs)
}

func (s *Server) readGlossary(r *http.Request) (*catalog.Glossary, error) {
	var g catalog.Glossary
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&g); err != nil {
		return nil, apierr.New(apierr.KindInvalidParameter, "http", "invalid glossary: %v", err)
	}
	return &g, nil
}

func (s *Server) serveHTMLPage(w http.ResponseWriter, r *http.Request, templateFile string, params map[string]any) {
	var output bytes.Buffer

	nav := NewNavBar(
		NavItem("/ui/glossaries", "Glossaries"),
	).SetActive(r.URL.Path)

	templateParams := map[string]any{
		"Now":    time.Now().Format("2006-01-02 15:04:05"),
		"NavBar": nav,
	}
	// Copy template params
	for k, v := range params {
		templateParams[k] = v
	}

	err := s.template.ExecuteTemplate(&output, templateFile, templateParams)
	if err != nil {
		s.log.Error().Err(err).Str("template", templateFile).Msg("Failed to render template")
		http.Error(w, "Template rendering error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.Write(output.Bytes())
}

func (s *Server) serveHTMLError(w http.ResponseWriter, err error) {
	status := apierr.HTTPStatus(apierr.KindOf(err))
	http.Error(w, err.Error(), status)
}

func (s *Server) serveGlossariesPage(w http.ResponseWriter, r *http.Request) {
	gs, err := s.client.FindGlossaries(r.Context(), s.userID(r), r.URL.Query().Get("q"), subjectarea.Paging{})
	if err != nil {
		s.serveHTMLError(w, err)
		return
	}
	s.serveHTMLPage(w, r, "glossaries.html", map[string]any{
		"Title":      "Glossaries",
		"Glossaries": gs,
		"Query":      r.URL.Query().Get("q"),
	})
}

func (s *Server) serveGlossaryPage(w http.ResponseWriter, r *http.Request) {
	ctx, user, guid := r.Context(), s.userID(r), r.PathValue("guid")
	g, err := s.client.GetGlossary(ctx, user, guid)
	if err != nil {
		s.serveHTMLError(w, err)
		return
	}
	terms, err := s.client.GetGlossaryTerms(ctx, user, guid, subjectarea.Paging{})
	if err != nil {
		s.serveHTMLError(w, err)
		return
	}
	s.serveHTMLPage(w, r, "glossary.html", map[string]any{
		"Title":    g.Name,
		"Glossary": g,
		"Terms":    terms,
	})
}

func (s *Server) serveTermPage(w http.ResponseWriter, r *http.Request) {
	ctx, user, guid := r.Context(), s.userID(r), r.PathValue("guid")
	term, err := s.client.GetTerm(ctx, user, guid)
	if err != nil {
		s.serveHTMLError(w, err)
		return
	}
	lines, err := s.client.GetTermRelationships(ctx, user, guid, "", subjectarea.Paging{})
	if err != nil {
		s.serveHTMLError(w, err)
		return
	}
	s.serveHTMLPage(w, r, "term.html", map[string]any{
		"Title": term.Name,
		"Term":  term,
		"Lines": lines,
	})
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// JSON API
	mux.HandleFunc("GET /api/glossaries", func(w http.ResponseWriter, r *http.Request) {
		p, err := paging(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		gs, err := s.client.FindGlossaries(r.Context(), s.userID(r), r.URL.Query().Get("filter"), p)
		respond(s, w, gs, err)
	})
	mux.HandleFunc("POST /api/glossaries", func(w http.ResponseWriter, r *http.Request) {
		g, err := s.readGlossary(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		created, err := s.client.CreateGlossary(r.Context(), s.userID(r), g)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, created)
	})
	mux.HandleFunc("GET /api/glossaries/{guid}", func(w http.ResponseWriter, r *http.Request) {
		g, err := s.client.GetGlossary(r.Context(), s.userID(r), r.PathValue("guid"))
		respond(s, w, g, err)
	})
	mux.HandleFunc("PUT /api/glossaries/{guid}", func(w http.ResponseWriter, r *http.Request) {
		g, err := s.readGlossary(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		updated, err := s.client.UpdateGlossary(r.Context(), s.userID(r), r.PathValue("guid"), g)
		respond(s, w, updated, err)
	})
	mux.HandleFunc("DELETE /api/glossaries/{guid}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.client.DeleteGlossary(r.Context(), s.userID(r), r.PathValue("guid")); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/glossaries/{guid}/terms", func(w http.ResponseWriter, r *http.Request) {
		p, err := paging(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		terms, err := s.client.GetGlossaryTerms(r.Context(), s.userID(r), r.PathValue("guid"), p)
		respond(s, w, terms, err)
	})
	mux.HandleFunc("GET /api/glossaries/{guid}/categories", func(w http.ResponseWriter, r *http.Request) {
		p, err := paging(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		cats, err := s.client.GetGlossaryCategories(r.Context(), s.userID(r), r.PathValue("guid"), p)
		respond(s, w, cats, err)
	})
	mux.HandleFunc("GET /api/terms/{guid}", func(w http.ResponseWriter, r *http.Request) {
		term, err := s.client.GetTerm(r.Context(), s.userID(r), r.PathValue("guid"))
		respond(s, w, term, err)
	})
	mux.HandleFunc("GET /api/terms/{guid}/relationships", func(w http.ResponseWriter, r *http.Request) {
		p, err := paging(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		lines, err := s.client.GetTermRelationships(r.Context(), s.userID(r), r.PathValue("guid"), r.URL.Query().Get("type"), p)
		respond(s, w, lines, err)
	})
	mux.HandleFunc("GET /api/categories/{guid}", func(w http.ResponseWriter, r *http.Request) {
		c, err := s.client.GetCategory(r.Context(), s.userID(r), r.PathValue("guid"))
		respond(s, w, c, err)
	})
	mux.HandleFunc("GET /api/projects/{guid}", func(w http.ResponseWriter, r *http.Request) {
		p, err := s.client.GetProject(r.Context(), s.userID(r), r.PathValue("guid"))
		respond(s, w, p, err)
	})
	mux.HandleFunc("GET /api/lines/{guid}", func(w http.ResponseWriter, r *http.Request) {
		l, err := s.client.GetLine(r.Context(), s.userID(r), r.PathValue("guid"))
		respond(s, w, l, err)
	})
	mux.HandleFunc("GET /api/schematypes/{guid}", func(w http.ResponseWriter, r *http.Request) {
		st, err := s.client.GetSchemaType(r.Context(), s.userID(r), r.PathValue("guid"))
		respond(s, w, st, err)
	})
	mux.HandleFunc("GET /api/elements/{guid}", s.serveElement)

	// HTML pages
	mux.HandleFunc("GET /ui/glossaries", s.serveGlossariesPage)
	mux.HandleFunc("GET /ui/glossaries/{guid}", s.serveGlossaryPage)
	mux.HandleFunc("GET /ui/terms/{guid}", s.serveTermPage)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Health check. Useful for cloud deployments.
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	// Default route (all other paths): redirect to the UI home page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "", http.StatusBadRequest)
			return
		}
		refererURL, err := url.Parse(r.Header.Get("Referer"))
		if err == nil && refererURL.Host == r.Host {
			// Request is coming from our own domain: this indicates an internal broken link.
			http.Error(w, "Broken link", http.StatusNotFound)
			return
		}
		http.Redirect(w, r, "/ui/glossaries", http.StatusTemporaryRedirect)
	})

	return mux
}

// Serve starts the HTTP server on s.opts.Addr using the wrapped handler.
func (s *Server) Serve() error {
	handler := s.Handler()
	s.log.Info().Msgf("Server listening on http://%s", s.opts.Addr)
	return http.ListenAndServe(s.opts.Addr, handler)
}

func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.routes())
}
