package issuer

import (
	"context"
	"fmt"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// Cluster is the endpoint a locally rendered kubeconfig points at.
type Cluster struct {
	Name                     string
	Server                   string
	CertificateAuthorityData []byte
	InsecureSkipTLSVerify    bool
}

// Local renders kubeconfigs without a backend. The user entry carries no
// credentials; the holder supplies them through their own login flow.
type Local struct {
	cluster Cluster
}

func NewLocal(cluster Cluster) *Local {
	if cluster.Name == "" {
		cluster.Name = "kubernetes"
	}
	return &Local{cluster: cluster}
}

func (l *Local) CreateKubeconfig(ctx context.Context, user, namespace string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if user == "" {
		return "", fmt.Errorf("create kubeconfig: empty user")
	}

	contextName := user + "@" + l.cluster.Name
	cfg := clientcmdapi.NewConfig()
	cfg.Clusters[l.cluster.Name] = &clientcmdapi.Cluster{
		Server:                   l.cluster.Server,
		CertificateAuthorityData: l.cluster.CertificateAuthorityData,
		InsecureSkipTLSVerify:    l.cluster.InsecureSkipTLSVerify,
	}
	cfg.AuthInfos[user] = clientcmdapi.NewAuthInfo()
	cfg.Contexts[contextName] = &clientcmdapi.Context{
		Cluster:   l.cluster.Name,
		AuthInfo:  user,
		Namespace: namespace,
	}
	cfg.CurrentContext = contextName

	out, err := clientcmd.Write(*cfg)
	if err != nil {
		return "", fmt.Errorf("render kubeconfig: %w", err)
	}
	return string(out), nil
}

// BundleNamespace returns the namespace of the current context in a kubeconfig.
func BundleNamespace(kubeconfig string) (string, error) {
	cfg, err := clientcmd.Load([]byte(kubeconfig))
	if err != nil {
		return "", fmt.Errorf("parse kubeconfig: %w", err)
	}
	current, ok := cfg.Contexts[cfg.CurrentContext]
	if !ok {
		return "", fmt.Errorf("parse kubeconfig: current context %q not found", cfg.CurrentContext)
	}
	return current.Namespace, nil
}
