package cache

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/metrics"
)

// Notifier is told about every revalidated path, e.g. to push it to live dashboards
type Notifier interface {
	Broadcast(path string)
}

// Revalidator drops cached views of a page path and notifies subscribers
type Revalidator struct {
	views     *ViewCache
	notifiers []Notifier
	log       logrus.FieldLogger
}

func NewRevalidator(views *ViewCache, log logrus.FieldLogger, notifiers ...Notifier) *Revalidator {
	return &Revalidator{views: views, notifiers: notifiers, log: log}
}

func (r *Revalidator) Revalidate(ctx context.Context, paths ...string) {
	for _, path := range paths {
		r.views.Invalidate(ctx, path)
		for _, n := range r.notifiers {
			n.Broadcast(path)
		}
		metrics.Revalidations.WithLabelValues(pathLabel(path)).Inc()
		r.log.WithField("path", path).Debug("[Cache] Revalidated")
	}
}

// pathLabel collapses per-record paths so the metric label set stays bounded
func pathLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 2 {
		return "/" + strings.Join(parts[:2], "/") + "/{id}"
	}
	return path
}
