package rbac

import (
	"context"
	"fmt"

	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Snapshot is the RBAC state at one point in time.
type Snapshot struct {
	RoleBindings        []rbacv1.RoleBinding
	ClusterRoleBindings []rbacv1.ClusterRoleBinding
}

// Users lists the User subjects present in the snapshot.
func (s Snapshot) Users() []string {
	return Users(s.RoleBindings, s.ClusterRoleBindings)
}

// Namespaces derives the candidate namespaces for user.
func (s Snapshot) Namespaces(user string) []string {
	return ValidNamespaces(s.RoleBindings, s.ClusterRoleBindings, user)
}

// Source supplies the current RBAC snapshot.
type Source interface {
	Load(ctx context.Context) (Snapshot, error)
}

// KubeSource reads bindings from a cluster.
type KubeSource struct {
	client kubernetes.Interface
}

func NewKubeSource(client kubernetes.Interface) *KubeSource {
	return &KubeSource{client: client}
}

func (k *KubeSource) Load(ctx context.Context) (Snapshot, error) {
	rbs, err := k.client.RbacV1().RoleBindings(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list rolebindings: %w", err)
	}
	crbs, err := k.client.RbacV1().ClusterRoleBindings().List(ctx, metav1.ListOptions{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list clusterrolebindings: %w", err)
	}
	return Snapshot{RoleBindings: rbs.Items, ClusterRoleBindings: crbs.Items}, nil
}

// StaticSource returns a fixed snapshot.
type StaticSource Snapshot

func (s StaticSource) Load(context.Context) (Snapshot, error) {
	return Snapshot(s), nil
}
