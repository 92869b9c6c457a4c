package search

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/jetstack/tag-search/pkg/api"
	apierrors "github.com/jetstack/tag-search/pkg/errors"
	"github.com/jetstack/tag-search/pkg/metrics"
)

// Search fetches the tags of an image and narrows them down to the rows
// matching a set of filters.
type Search struct {
	log     *logrus.Entry
	lister  api.TagLister
	metrics *metrics.Metrics
}

func New(log *logrus.Entry, lister api.TagLister, metrics *metrics.Metrics) *Search {
	return &Search{
		log:     log.WithField("module", "search"),
		lister:  lister,
		metrics: metrics,
	}
}

// Run returns the rows of username/image which pass filters. An image which
// cannot be found is not an error, a warning is logged and no rows are
// returned.
func (s *Search) Run(ctx context.Context, username, image string, filters *api.Filters) ([]api.Row, error) {
	log := s.log.WithField("image", username+"/"+image)

	tags, err := s.lister.Tags(ctx, username, image)
	if apierrors.IsLookupFailure(err) {
		log.WithError(err).Warnf("Possibly an invalid username or image name was given! Username: %s, Image name: %s",
			username, image)
		s.metrics.LookupFailed()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	rows := Expand(tags)
	s.metrics.ObserveRows("expanded", len(rows))
	log.Debugf("expanded %d tags into %d rows", len(tags), len(rows))

	rows = Apply(rows, filters)
	s.metrics.ObserveRows("kept", len(rows))

	names := sets.New[string]()
	for _, r := range rows {
		names.Insert(r.Name)
	}
	s.metrics.ObserveTags(names.Len())

	log.Infof("Number of tags: %d", names.Len())
	log.Infof("Number of images: %d", len(rows))

	return rows, nil
}
