package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	cobmaperrors "github.com/cobmap/cobmap/pkg/errors"
	"github.com/cobmap/cobmap/pkg/export"
	"github.com/cobmap/cobmap/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command: expose the dependency graph over
// HTTP. Sources are re-scanned per request, so edits show up without a
// restart; the result cache keeps unchanged trees cheap.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Serve the dependency graph over HTTP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8321", "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, args []string, opts *serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &graphServer{
		cli:    c,
		runner: runner,
		paths:  args,
	}

	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Serving on http://%s", opts.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// graphServer holds the pipeline wiring shared by all HTTP handlers.
type graphServer struct {
	cli    *CLI
	runner *pipeline.Runner
	paths  []string
}

func (s *graphServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/report", s.handleReport)
		r.Get("/programs", s.handlePrograms)
		r.Get("/programs/{id}", s.handleProgram)
		r.Get("/render", s.handleRender)
	})
	return r
}

// analyze runs scan and build for the configured paths. Each request gets a
// fresh snapshot; the digest-keyed cache absorbs repeated analysis work.
func (s *graphServer) analyze(ctx context.Context) (*pipeline.Result, error) {
	opts := s.cli.pipelineOptions(s.paths)
	return s.runner.Execute(ctx, opts)
}

func (s *graphServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *graphServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyze(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, export.Graph(result.Graph, result.Warnings))
}

func (s *graphServer) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyze(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result.Report)
}

func (s *graphServer) handlePrograms(w http.ResponseWriter, r *http.Request) {
	result, err := s.analyze(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, export.Programs(result.Analyses))
}

// programDetail is the response body for a single program lookup.
type programDetail struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	SourceFile string   `json:"source_file,omitempty"`
	LineCount  int      `json:"line_count,omitempty"`
	Phantom    bool     `json:"phantom"`
	Callees    []string `json:"callees"`
	Callers    []string `json:"callers"`
	FilesUsed  []string `json:"files_used"`
}

func (s *graphServer) handleProgram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := cobmaperrors.ValidateProgramID(id); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.analyze(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	g := result.Graph
	node, ok := g.Node(id)
	if !ok {
		writeError(w, cobmaperrors.New(cobmaperrors.ErrCodeProgramNotFound, "program not found: %s", id))
		return
	}

	writeJSON(w, programDetail{
		ID:         node.ID,
		Kind:       node.Kind.String(),
		SourceFile: node.SourceFile,
		LineCount:  node.LineCount,
		Phantom:    node.Phantom(),
		Callees:    g.Callees(id),
		Callers:    g.Callers(id),
		FilesUsed:  g.FilesUsed(id),
	})
}

func (s *graphServer) handleRender(w http.ResponseWriter, r *http.Request) {
	style, err := export.ParseStyle(r.URL.Query().Get("style"))
	if err != nil {
		writeError(w, err)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}

	opts := s.cli.pipelineOptions(s.paths)
	opts.Style = string(style)
	opts.Format = string(format)
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.Write(result.Artifact)
}

func contentTypeFor(format export.Format) string {
	switch format {
	case export.FormatSVG:
		return "image/svg+xml"
	case export.FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, doc any) {
	data, err := export.Marshal(doc)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch cobmaperrors.GetCode(err) {
	case cobmaperrors.ErrCodeInvalidInput, cobmaperrors.ErrCodeInvalidPath,
		cobmaperrors.ErrCodeInvalidFormat, cobmaperrors.ErrCodeInvalidStyle:
		status = http.StatusBadRequest
	case cobmaperrors.ErrCodeNotFound, cobmaperrors.ErrCodeFileNotFound,
		cobmaperrors.ErrCodeProgramNotFound:
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := export.Marshal(map[string]string{"error": cobmaperrors.UserMessage(err)})
	w.Write(body)
}
