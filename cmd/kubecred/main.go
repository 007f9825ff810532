// Command kubecred shows per-namespace kubeconfigs for cluster users in a
// terminal UI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/dloss/kubecred/internal/app"
	"github.com/dloss/kubecred/internal/clipboard"
	"github.com/dloss/kubecred/internal/config"
	"github.com/dloss/kubecred/internal/issuer"
	"github.com/dloss/kubecred/internal/rbac"
	"github.com/dloss/kubecred/internal/ui/kubeconfigview"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

var (
	// BuildTag is set during build
	BuildTag = "dev"
	// BuildDate is set during build
	BuildDate = "unknown"
)

type flags struct {
	configPath string
	kubeconfig string
	context    string
	issuerURL  string
	local      bool
	user       string
	label      string
	logFile    string
	refresh    time.Duration
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kubecred",
		Short: "Show and copy per-namespace kubeconfigs for cluster users",
		Long: `kubecred lists the users that hold RBAC grants in a cluster and shows a
kubeconfig for a chosen user and namespace, ready to copy to the clipboard.

Kubeconfigs come from a permission-manager style issuance endpoint
(--issuer-url) or are rendered from the current cluster (--local).

Environment Variables:
  KUBECONFIG              Path to kubeconfig file (default: ~/.kube/config)
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a kubecred config file")
	cmd.Flags().StringVar(&f.kubeconfig, "kubeconfig", "", "path to the kubeconfig used to read RBAC bindings")
	cmd.Flags().StringVar(&f.context, "context", "", "kubeconfig context to use")
	cmd.Flags().StringVar(&f.issuerURL, "issuer-url", "", "base URL of the kubeconfig issuance endpoint")
	cmd.Flags().BoolVar(&f.local, "local", false, "render kubeconfigs from the current cluster instead of calling the issuer")
	cmd.Flags().StringVar(&f.user, "user", "", "open directly on this user")
	cmd.Flags().StringVar(&f.label, "label", "", "custom label for the show-kubeconfig button")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write diagnostic logs to this file")
	cmd.Flags().DurationVar(&f.refresh, "refresh", 0, "RBAC reload interval (overrides config, 0 keeps config value)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kubecred version %s (built %s)\n", BuildTag, BuildDate)
		},
	})

	return cmd
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("issuer-url") {
		cfg.IssuerURL = f.issuerURL
	}
	if cmd.Flags().Changed("local") {
		cfg.Local = f.local
	}
	if f.label != "" {
		cfg.Label = f.label
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	if f.refresh > 0 {
		cfg.RefreshInterval = f.refresh.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = file.Close() }, nil
}

func restConfig(f *flags) (*rest.Config, string, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if f.kubeconfig != "" {
		rules.ExplicitPath = f.kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: f.context}
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	raw, err := loader.RawConfig()
	if err != nil {
		return nil, "", fmt.Errorf("load kubeconfig: %w", err)
	}
	contextName := raw.CurrentContext
	if f.context != "" {
		contextName = f.context
	}

	rc, err := loader.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("build client config: %w", err)
	}
	return rc, contextName, nil
}

func newIssuer(cfg *config.Config, rc *rest.Config, contextName string) (issuer.Issuer, error) {
	if cfg.Local {
		return issuer.NewLocal(issuer.Cluster{
			Name:                     contextName,
			Server:                   rc.Host,
			CertificateAuthorityData: rc.TLSClientConfig.CAData,
			InsecureSkipTLSVerify:    rc.TLSClientConfig.Insecure,
		}), nil
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return issuer.NewHTTPClient(cfg.IssuerURL, timeout), nil
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	rc, contextName, err := restConfig(f)
	if err != nil {
		return err
	}
	client, err := kubernetes.NewForConfig(rc)
	if err != nil {
		return fmt.Errorf("create kubernetes client: %w", err)
	}

	iss, err := newIssuer(cfg, rc, contextName)
	if err != nil {
		return err
	}
	refresh, err := cfg.RefreshDuration()
	if err != nil {
		return err
	}

	if clipboard.Unsupported() {
		logger.Warn("no clipboard backend available, copy will fail")
	}
	logger.Info("starting kubecred", "context", contextName, "local", cfg.Local, "issuer", cfg.IssuerURL)

	model := app.New(app.Options{
		Source:  rbac.NewKubeSource(client),
		Context: contextName,
		User:    f.user,
		Refresh: refresh,
		Logger:  logger,
		Deps: kubeconfigview.Deps{
			Issuer:    iss,
			Clipboard: clipboard.System{},
			Label:     cfg.Label,
		},
	})

	program := bubbletea.NewProgram(model, bubbletea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
