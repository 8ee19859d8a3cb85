package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dnswlt/mdcat/internal/catalog"
	"github.com/dnswlt/mdcat/internal/config"
	"github.com/dnswlt/mdcat/internal/convert"
	"github.com/dnswlt/mdcat/internal/docs"
	"github.com/dnswlt/mdcat/internal/gitclient"
	"github.com/dnswlt/mdcat/internal/logging"
	"github.com/dnswlt/mdcat/internal/metrics"
	"github.com/dnswlt/mdcat/internal/repo"
	"github.com/dnswlt/mdcat/internal/store"
	"github.com/dnswlt/mdcat/internal/subjectarea"
	"github.com/dnswlt/mdcat/internal/web"
	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	// Version is the application version.
	// It is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
)

func gitClientAuthFromEnv() *gitclient.Auth {
	user := os.Getenv("MDCAT_GIT_USER")
	if user == "" {
		return nil
	}
	pass := os.Getenv("MDCAT_GIT_PASSWORD")
	return &gitclient.Auth{
		Username: user,
		Password: pass,
	}
}

// Options contains program options that can be set via command-line flags or environment variables.
type Options struct {
	Addr          string
	RootDir       string
	GitURL        string
	GitRef        string
	ConfigFile    string
	DefaultUserID string
	LogPretty     bool
}

func (o *Options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.RootDir, "root-dir", ".", "Root directory of the local data store")
	fs.StringVar(&o.ConfigFile, "config", "mdcat.yml", "Path to the configuration YAML file (relative to git root or local -root-dir). Defaults apply if it does not exist.")
	fs.StringVar(&o.GitURL, "git-url", "", "URL of the git repository to use as the data store")
	fs.StringVar(&o.GitRef, "git-ref", "", "Git ref (branch or tag) to read records from. Defaults to the default branch.")
	fs.BoolVar(&o.LogPretty, "log-pretty", false, "Log human readable output instead of JSON")
}

func main() {
	if len(os.Args) < 2 {
		// Default to "serve"
		runServe(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "convert":
		runConvert(os.Args[2:])
	case "gen-docs":
		runGenDocs(os.Args[2:])
	case "version":
		fmt.Println(Version)
	default:
		// Also default to serve if the argument looks like a flag
		if strings.HasPrefix(os.Args[1], "-") {
			runServe(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command %q. Available commands: serve, convert, gen-docs, version\n", os.Args[1])
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) {
	err := ff.Parse(fs, args, ff.WithEnvVarPrefix("MDCAT"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles everything the subcommands share.
type env struct {
	log     zerolog.Logger
	bundle  *config.Bundle
	repo    *repo.Repository
	client  *subjectarea.Client
	metrics *metrics.Metrics
}

func setup(opts Options, reg prometheus.Registerer) (*env, error) {
	// Bootstrap logger until the config file tells us the level.
	log := logging.New(logging.Config{Level: "info", Pretty: opts.LogPretty})

	st, writable, err := createStore(opts, log)
	if err != nil {
		return nil, err
	}
	bundle, err := loadConfig(st, opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	log = logging.Init(logging.Config{Level: bundle.Log.Level, Pretty: opts.LogPretty || bundle.Log.Pretty})

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}
	cached, err := store.NewCachingStore(st, bundle.Catalog.CacheSize, m.RecordCacheLookup)
	if err != nil {
		return nil, err
	}

	repoOpts := []repo.Option{repo.WithLogger(logging.Component(log, "repo"))}
	if bundle.Catalog.WritePath != "" {
		if writable {
			repoOpts = append(repoOpts, repo.WithWriteBack(cached, bundle.Catalog.WritePath))
		} else {
			log.Warn().Str("writePath", bundle.Catalog.WritePath).Msg("Store is read-only, changes are kept in memory only")
		}
	}
	r, err := repo.Load(context.Background(), cached, repo.Config{Validation: bundle.Catalog.Validation}, bundle.Catalog.RecordsDir, repoOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	elements, relationships := r.Counts()
	m.SetRecordCounts(elements, relationships)
	log.Info().Int("elements", elements).Int("relationships", relationships).Msg("Loaded catalog")

	var convOpts []convert.Option
	if bundle.Convert.ServiceName != "" {
		convOpts = append(convOpts, convert.WithServiceName(bundle.Convert.ServiceName))
	}
	if len(bundle.Convert.FieldAliases) > 0 {
		convOpts = append(convOpts, convert.WithFieldAliases(bundle.Convert.FieldAliases))
	}
	client := subjectarea.NewClient(r,
		subjectarea.WithLogger(logging.Component(log, "subjectarea")),
		subjectarea.WithMetrics(m),
		subjectarea.WithConverterOptions(convOpts...),
	)
	return &env{log: log, bundle: bundle, repo: r, client: client, metrics: m}, nil
}

// loadConfig reads the config file from st, falling back to the defaults
// if it does not exist.
func loadConfig(st store.Store, path string) (*config.Bundle, error) {
	if path == "" {
		return config.Default(), nil
	}
	if _, err := st.ReadFile(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(st, path)
}

// createStore returns the store to read records from and whether it accepts writes.
func createStore(opts Options, log zerolog.Logger) (store.Store, bool, error) {
	if opts.GitURL != "" {
		auth := gitClientAuthFromEnv()
		log.Info().Str("url", opts.GitURL).Msg("Retrieving catalog from git")
		client, err := gitclient.New(opts.GitURL, auth)
		if err != nil {
			return nil, false, fmt.Errorf("failed to retrieve git repo: %w", err)
		}
		src, err := store.NewGitSource(client, opts.GitRef, "")
		if err != nil {
			return nil, false, fmt.Errorf("no git-ref specified and no default branch found: %w", err)
		}
		log.Info().Str("ref", src.DefaultRef()).Msg("Using git ref")
		st, err := src.Store("")
		if err != nil {
			return nil, false, err
		}
		return st, false, nil
	}
	if opts.RootDir != "" {
		log.Info().Str("dir", opts.RootDir).Msg("Using local store")
		return store.NewDiskStore(opts.RootDir), true, nil
	}
	return nil, false, errors.New("neither -root-dir nor -git-url specified")
}

func runServe(args []string) {
	var opts Options
	fs := flag.NewFlagSet("mdcat serve", flag.ExitOnError)
	opts.register(fs)
	fs.StringVar(&opts.Addr, "addr", "localhost:8080", "Address to listen on")
	fs.StringVar(&opts.DefaultUserID, "default-user", "", "User ID for requests without a "+web.UserIDHeader+" header. If empty, such requests are rejected.")
	parseFlags(fs, args)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e, err := setup(opts, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	e.log.Info().Str("version", Version).Msg("Starting mdcat")

	server, err := web.NewServer(
		web.ServerOptions{
			Addr:          opts.Addr,
			DefaultUserID: opts.DefaultUserID,
		},
		e.client,
		web.WithLogger(logging.Component(e.log, "web")),
		web.WithMetrics(e.metrics, reg),
	)
	if err != nil {
		e.log.Fatal().Err(err).Msg("Could not create server")
	}
	e.log.Fatal().Err(server.Serve()).Msg("Server stopped") // Never returns
}

func runConvert(args []string) {
	var opts Options
	fs := flag.NewFlagSet("mdcat convert", flag.ExitOnError)
	opts.register(fs)
	var guid, bean, user string
	fs.StringVar(&guid, "guid", "", "GUID of the element or relationship to convert")
	fs.StringVar(&bean, "bean", string(catalog.ClassGlossaryTerm), "Bean class to convert to (Glossary, GlossaryTerm, GlossaryCategory, Project, Line, SchemaType, ElementStub)")
	fs.StringVar(&user, "user", "cli", "User ID to convert as")
	parseFlags(fs, args)
	if guid == "" {
		fmt.Fprintln(os.Stderr, "-guid is required")
		os.Exit(1)
	}

	e, err := setup(opts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	b, err := e.client.GetBean(context.Background(), user, guid, catalog.BeanClass(bean))
	if err != nil {
		e.log.Fatal().Err(err).Str("guid", guid).Str("bean", bean).Msg("Conversion failed")
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		e.log.Fatal().Err(err).Msg("Could not encode bean")
	}
	enc.Close()
}

func runGenDocs(args []string) {
	var opts Options
	fs := flag.NewFlagSet("mdcat gen-docs", flag.ExitOnError)
	opts.register(fs)
	var outputDir string
	fs.StringVar(&outputDir, "out-dir", "docs", "Output directory for the documentation")
	parseFlags(fs, args)

	e, err := setup(opts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	gen := docs.NewGenerator(e.client, "gen-docs")
	if err := gen.Generate(context.Background(), outputDir); err != nil {
		e.log.Fatal().Err(err).Msg("Failed to generate documentation")
	}
	e.log.Info().Str("dir", outputDir).Msg("Documentation generated")
}
