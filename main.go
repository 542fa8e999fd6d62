package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/n0madic/go-oaiadapter/internal/config"
	"github.com/n0madic/go-oaiadapter/internal/logging"
	"github.com/n0madic/go-oaiadapter/internal/models"
	"github.com/n0madic/go-oaiadapter/internal/payload"
	"github.com/n0madic/go-oaiadapter/internal/pipeline"
	"github.com/n0madic/go-oaiadapter/internal/server"
	"github.com/n0madic/go-oaiadapter/internal/types"
)

const usageCommands = "Commands: serve, models, transform"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: go-oaiadapter <command> [flags]")
		fmt.Fprintln(os.Stderr, usageCommands)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(cmdServe())
	case "models":
		os.Exit(cmdModels())
	case "transform":
		os.Exit(cmdTransform())
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		fmt.Fprintln(os.Stderr, usageCommands)
		os.Exit(1)
	}
}

func cmdServe() int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML or JSON config file")
	host := fs.String("host", config.DefaultHost, "Bind host")
	port := fs.Int("port", config.DefaultPort, "Listen port")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	debug := fs.Bool("debug", false, "Dump inbound requests and upstream responses to stderr")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	// Flags win over the environment and the config file, but only when set.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "verbose":
			cfg.Server.Verbose = *verbose
		case "debug":
			cfg.Server.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	closeLog := logging.Setup(cfg.Server)
	defer closeLog()

	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("server.init.failed", "error", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	slog.Info("go-oaiadapter starting",
		"addr", srv.Addr(),
		"upstream", cfg.Upstream.BaseURL,
		"oauth", cfg.Upstream.UsesOAuth(),
		"flex", cfg.Adapter.ServiceTierFlex,
		"search_context_size", cfg.Adapter.SearchContextSize,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return 1
	}
	return 0
}

func cmdModels() int {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML or JSON config file")
	jsonOut := fs.Bool("json", false, "Print the model list as JSON")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	closeLog := logging.Setup(cfg.Server)
	defer closeLog()

	uc, err := server.NewUpstreamClient(cfg, nil)
	if err != nil {
		slog.Error("upstream.init.failed", "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cards, err := models.NewRegistry(uc, "openai").Refresh(ctx)
	if err != nil {
		slog.Warn("models fetch failed, showing static catalog", "error", err)
	}

	if *jsonOut {
		return printJSON(os.Stdout, types.ModelList{Object: "list", Data: cards})
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROVIDER\tTYPE\tCONTEXT\tABILITIES")
	for _, c := range cards {
		ctxWindow := "-"
		if c.ContextWindowTokens > 0 {
			ctxWindow = fmt.Sprintf("%d", c.ContextWindowTokens)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Provider, c.Type, ctxWindow, abilityFlags(c.Abilities))
	}
	tw.Flush()
	return 0
}

func abilityFlags(a types.ModelAbilities) string {
	flags := ""
	for _, f := range []struct {
		on   bool
		name string
	}{
		{a.FunctionCall, "tools"},
		{a.Vision, "vision"},
		{a.Reasoning, "reasoning"},
		{a.Search, "search"},
	} {
		if !f.on {
			continue
		}
		if flags != "" {
			flags += ","
		}
		flags += f.name
	}
	if flags == "" {
		return "-"
	}
	return flags
}

func cmdTransform() int {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML or JSON config file")
	responsesRoute := fs.Bool("responses", false, "Shape the request for the /v1/responses route")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: go-oaiadapter transform [flags] [request.json]")
		fmt.Fprintln(fs.Output(), "Reads a chat request from the file or stdin and prints the upstream payload.")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	var in io.Reader = os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "open request: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	var req types.ChatRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		fmt.Fprintf(os.Stderr, "decode request: %v\n", err)
		return 1
	}

	route := pipeline.RouteChat
	if *responsesRoute {
		route = pipeline.RouteResponses
	}
	p := &pipeline.Pipeline{Options: payload.NewOptions(cfg.Adapter)}
	return printJSON(os.Stdout, p.Preview(&req, route))
}

func printJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return 1
	}
	fmt.Fprintln(w, string(data))
	return 0
}
