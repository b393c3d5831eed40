// Package config resolves the remitter API endpoint and credentials from
// flags, dotenv files and Kubernetes secrets.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second

	// Keys read from the Kubernetes secret.
	secretTokenKey   = "api_token"
	secretBaseURLKey = "base_url"
)

// Config holds the remitter API connection settings.
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// Options are the raw, unvalidated settings gathered from the command line.
type Options struct {
	BaseURL string
	Token   string
	// Secret is an optional "namespace/secret-name" to read the token from.
	Secret     string
	Kubeconfig string
	Timeout    time.Duration
}

// secretRef holds the parsed namespace and name of a Kubernetes secret.
type secretRef struct {
	Namespace string
	Name      string
}

// parseSecretRef parses a "namespace/secret-name" string into its parts.
func parseSecretRef(ref string) (secretRef, error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return secretRef{}, fmt.Errorf("invalid --secret value %q: expected namespace/secret-name", ref)
	}
	return secretRef{Namespace: parts[0], Name: parts[1]}, nil
}

// buildKubeClient creates a Kubernetes clientset from the given kubeconfig path.
// If kubeconfig is empty, it falls back to the default loading rules and then
// in-cluster config.
func buildKubeClient(kubeconfig string) (kubernetes.Interface, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		configOverrides := &clientcmd.ConfigOverrides{}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules, configOverrides).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w", err)
	}

	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return client, nil
}

// Load resolves opts into a validated Config. When opts.Secret is set the
// token (and, if not given explicitly, the base URL) come from that secret.
func Load(ctx context.Context, opts Options) (*Config, error) {
	if opts.Secret == "" {
		return resolve(opts)
	}

	ref, err := parseSecretRef(opts.Secret)
	if err != nil {
		return nil, err
	}

	client, err := buildKubeClient(opts.Kubeconfig)
	if err != nil {
		return nil, err
	}

	return loadFromClient(ctx, client, ref, opts)
}

// loadFromClient fetches the secret using the provided Kubernetes client.
// Separated from Load to allow testing with a fake clientset.
func loadFromClient(ctx context.Context, client kubernetes.Interface, ref secretRef, opts Options) (*Config, error) {
	secret, err := client.CoreV1().Secrets(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching secret %s/%s: %w", ref.Namespace, ref.Name, err)
	}

	token, ok := secret.Data[secretTokenKey]
	if !ok {
		return nil, fmt.Errorf("secret %s/%s does not contain key %q", ref.Namespace, ref.Name, secretTokenKey)
	}

	tokenStr := strings.TrimSpace(string(token))
	if tokenStr == "" {
		return nil, fmt.Errorf("secret %s/%s has an empty %q value", ref.Namespace, ref.Name, secretTokenKey)
	}
	opts.Token = tokenStr

	if opts.BaseURL == "" {
		opts.BaseURL = strings.TrimSpace(string(secret.Data[secretBaseURLKey]))
	}

	return resolve(opts)
}

// resolve applies defaults and validates the final settings.
func resolve(opts Options) (*Config, error) {
	cfg := &Config{
		BaseURL:  strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		APIToken: strings.TrimSpace(opts.Token),
		Timeout:  opts.Timeout,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the base URL is an absolute http(s) URL and that a
// token is present.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: expected an absolute http or https URL", c.BaseURL)
	}
	if c.APIToken == "" {
		return errors.New("no API token: set --token, REMITTER_API_TOKEN or --secret")
	}
	return nil
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is not an error unless required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}
