// Package rbac extracts per-user grants from RoleBindings and
// ClusterRoleBindings and derives the namespaces a kubeconfig can target.
package rbac

import (
	"sort"

	rbacv1 "k8s.io/api/rbac/v1"
)

const (
	// DefaultNamespace is offered when a user holds no namespaced grant.
	DefaultNamespace = "default"
	// AllNamespaces marks a cluster-wide grant. It is never a namespace choice.
	AllNamespaces = "ALL_NAMESPACES"
)

// Grant associates a role with the namespaces it is bound in for one user.
type Grant struct {
	Role       string
	Namespaces []string
}

// Extraction is the set of grants held by a single user.
type Extraction struct {
	Grants []Grant
}

// ExtractUserRoles collects the grants bound to the User subject named user.
// RoleBindings are grouped by role, accumulating their namespaces.
// ClusterRoleBindings produce a grant scoped to AllNamespaces.
func ExtractUserRoles(roleBindings []rbacv1.RoleBinding, clusterRoleBindings []rbacv1.ClusterRoleBinding, user string) Extraction {
	var grants []Grant
	byRole := map[string]int{}

	for _, rb := range roleBindings {
		if !hasUserSubject(rb.Subjects, user) {
			continue
		}
		idx, ok := byRole[rb.RoleRef.Name]
		if !ok {
			idx = len(grants)
			byRole[rb.RoleRef.Name] = idx
			grants = append(grants, Grant{Role: rb.RoleRef.Name})
		}
		grants[idx].Namespaces = append(grants[idx].Namespaces, rb.Namespace)
	}

	for _, crb := range clusterRoleBindings {
		if !hasUserSubject(crb.Subjects, user) {
			continue
		}
		grants = append(grants, Grant{Role: crb.RoleRef.Name, Namespaces: []string{AllNamespaces}})
	}

	return Extraction{Grants: grants}
}

// ValidNamespaces returns the unique namespaces in which user holds any role,
// in order of first occurrence. Cluster-wide grants do not contribute a
// namespace. The result is never empty: it falls back to DefaultNamespace.
func ValidNamespaces(roleBindings []rbacv1.RoleBinding, clusterRoleBindings []rbacv1.ClusterRoleBinding, user string) []string {
	extraction := ExtractUserRoles(roleBindings, clusterRoleBindings, user)

	seen := map[string]bool{}
	var namespaces []string
	for _, grant := range extraction.Grants {
		for _, ns := range grant.Namespaces {
			if ns == AllNamespaces || ns == "" || seen[ns] {
				continue
			}
			seen[ns] = true
			namespaces = append(namespaces, ns)
		}
	}

	if len(namespaces) == 0 {
		return []string{DefaultNamespace}
	}
	return namespaces
}

// Users returns the sorted, unique names of User subjects across all bindings.
func Users(roleBindings []rbacv1.RoleBinding, clusterRoleBindings []rbacv1.ClusterRoleBinding) []string {
	seen := map[string]bool{}
	collect := func(subjects []rbacv1.Subject) {
		for _, s := range subjects {
			if s.Kind == rbacv1.UserKind && s.Name != "" {
				seen[s.Name] = true
			}
		}
	}
	for _, rb := range roleBindings {
		collect(rb.Subjects)
	}
	for _, crb := range clusterRoleBindings {
		collect(crb.Subjects)
	}

	users := make([]string, 0, len(seen))
	for name := range seen {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

func hasUserSubject(subjects []rbacv1.Subject, user string) bool {
	for _, s := range subjects {
		if s.Kind == rbacv1.UserKind && s.Name == user {
			return true
		}
	}
	return false
}
