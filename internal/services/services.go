package services

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"crm-backend/internal/access"
)

// View paths revalidated after writes. They mirror the dashboard pages that display the data.
const (
	PathClients   = "/dashboard/clients"
	PathProjects  = "/dashboard/projects"
	PathInvoices  = "/dashboard/invoices"
	PathSettings  = "/dashboard/settings"
	PathAnalytics = "/dashboard/analytics"
)

// pagesShowing lists every page that displays a record kind, directly, through a
// joined name or in a count. Writes to a kind revalidate all of them.
var pagesShowing = map[access.Kind][]string{
	access.KindClient:  {PathClients, PathProjects, PathInvoices, PathAnalytics},
	access.KindProject: {PathProjects, PathInvoices, PathAnalytics},
	access.KindInvoice: {PathInvoices, PathAnalytics},
}

// viewsOf returns the pages showing kind followed by extra, without duplicates
func viewsOf(kind access.Kind, extra ...string) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, p := range append(append([]string{}, pagesShowing[kind]...), extra...) {
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// ProjectPath is the page showing one project's task board
func ProjectPath(id uuid.UUID) string {
	return PathProjects + "/" + id.String()
}

type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

type Authorizer interface {
	Authorize(ctx context.Context, userID uuid.UUID, kind access.Kind, id uuid.UUID) error
}
