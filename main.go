package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bridgetools/mcp-sdk-bridge/internal/codec"
	"github.com/bridgetools/mcp-sdk-bridge/internal/config"
	"github.com/bridgetools/mcp-sdk-bridge/internal/dispatch"
	"github.com/bridgetools/mcp-sdk-bridge/internal/docs"
	"github.com/bridgetools/mcp-sdk-bridge/internal/kubernetes"
	"github.com/bridgetools/mcp-sdk-bridge/internal/logging"
	"github.com/bridgetools/mcp-sdk-bridge/internal/registry"
	bridgeserver "github.com/bridgetools/mcp-sdk-bridge/internal/server"
	"github.com/bridgetools/mcp-sdk-bridge/internal/toolfilter"
	"github.com/bridgetools/mcp-sdk-bridge/internal/walker"
)

var (
	configPath    = flag.String("config", "", "Path to TOML config file (also MCP_BRIDGE_CONFIG)")
	kubeconfig    = flag.String("kubeconfig", "", "Path to kubeconfig file")
	namespace     = flag.String("namespace", "", "Default namespace")
	transport     = flag.String("transport", "", "Transport type: stdio or sse (overrides config)")
	port          = flag.Int("port", 0, "Port for SSE server (overrides config, only used with -transport=sse)")
	disabledTools = flag.String("disabled-tools", "", "Comma-separated list of tool names or prefix patterns to disable (also DISABLED_TOOLS)")
	docsDir       = flag.String("docs-dir", "", "Directory with documentation overrides (overrides config)")
	version       = "dev"
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlags(cfg)

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	overrides, err := docs.Load(cfg.Server.DocsDir)
	if err != nil {
		logger.Fatal("failed to load documentation overrides", zap.Error(err))
	}
	if overrides.Len() > 0 {
		logger.Info("loaded documentation overrides", zap.Int("count", overrides.Len()))
	}

	var roots []walker.Root

	if cfg.Kubernetes.Enabled {
		client, err := kubernetes.NewClient(&kubernetes.Config{
			Kubeconfig: cfg.Kubernetes.Kubeconfig,
			Namespace:  cfg.Kubernetes.Namespace,
		})
		if err != nil {
			logger.Fatal("failed to create Kubernetes client", zap.Error(err))
		}

		// Test connectivity to the cluster to ensure we can operate otherwise
		// prevent the MCP server from starting
		fmt.Fprintln(os.Stderr, "Testing connectivity to Kubernetes cluster...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.TestConnectivity(ctx); err != nil {
			cancel()
			logger.Fatal("failed to connect to Kubernetes cluster, check that the kubeconfig is valid, the cluster is reachable and RBAC permits read access", zap.Error(err))
		}
		cancel()

		roots = append(roots, walker.Root{Name: "kubernetes", Client: client})
	}

	if cfg.Utils.Enabled {
		roots = append(roots, walker.Root{Name: "utils", Client: codec.NewClient()})
	}

	if len(roots) == 0 {
		logger.Fatal("no SDK clients enabled, nothing to serve")
	}

	descriptors := walker.New(overrides, walker.Options{
		Deny:   cfg.Walker.Deny,
		Logger: logger,
	}).Walk(roots...)

	reg := registry.Build(descriptors, logger)
	disp := dispatch.New(reg, logger)
	filter := toolfilter.NewFilter(cfg.Server.DisabledTools)

	s := server.NewMCPServer(
		cfg.Server.Name,
		version,
		server.WithInstructions(
			"This MCP server exposes the read-only operations of its configured SDK clients as tools. Tool names are prefixed by client (e.g. kubernetes_list_resources, utils_encode_base64). It cannot perform any destructive operations.",
		),
	)

	count := bridgeserver.Register(s, reg, disp, filter, logger)
	logger.Info("tool surface ready",
		zap.Int("discovered", reg.Len()),
		zap.Int("registered", count))

	switch cfg.Server.Transport {
	case "stdio":
		if err := server.ServeStdio(s); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	case "sse":
		sseServer := server.NewSSEServer(s)

		addr := ":" + strconv.Itoa(cfg.Server.Port)
		logger.Info("starting SSE MCP server",
			zap.String("addr", addr),
			zap.String("sse_endpoint", "http://localhost"+addr+"/sse"),
			zap.String("message_endpoint", "http://localhost"+addr+"/message"))

		if err := http.ListenAndServe(addr, sseServer); err != nil {
			logger.Error("SSE server error", zap.Error(err))
		}
	default:
		logger.Fatal("unknown transport type, supported values are stdio and sse",
			zap.String("transport", cfg.Server.Transport))
	}
}

// applyFlags lets command-line flags override the file configuration.
func applyFlags(cfg *config.Config) {
	if *kubeconfig != "" {
		cfg.Kubernetes.Kubeconfig = *kubeconfig
	}
	if *namespace != "" {
		cfg.Kubernetes.Namespace = *namespace
	}
	if *transport != "" {
		cfg.Server.Transport = *transport
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *disabledTools != "" {
		cfg.Server.DisabledTools = *disabledTools
	}
	if *docsDir != "" {
		cfg.Server.DocsDir = *docsDir
	}
}
