package api

import (
	"context"
	"time"
)

// Tag describes a single entry of a repository tag listing.
type Tag struct {
	Name                string     `json:"name"`
	ID                  int64      `json:"id"`
	Repository          int64      `json:"repository"`
	Creator             int64      `json:"creator"`
	LastUpdater         int64      `json:"last_updater"`
	LastUpdaterUsername string     `json:"last_updater_username"`
	LastUpdated         *time.Time `json:"last_updated"`
	FullSize            int64      `json:"full_size"`
	V2                  bool       `json:"v2"`
	TagStatus           string     `json:"tag_status"` // String of "active" or "inactive"
	TagLastPulled       *time.Time `json:"tag_last_pulled"`
	TagLastPushed       *time.Time `json:"tag_last_pushed"`
	MediaType           *string    `json:"media_type,omitempty"`
	ContentType         *string    `json:"content_type,omitempty"`
	// Digest is only set with `application/vnd.oci.image.index.v1+json` media_type
	Digest *string `json:"digest,omitempty"`

	Images []Image `json:"images"`
}

// Image is one platform build underlying a tag.
type Image struct {
	Architecture string     `json:"architecture"`
	Features     *string    `json:"features"`
	Variant      *string    `json:"variant"`
	Digest       *string    `json:"digest"`
	OS           string     `json:"os"`
	OSFeatures   *string    `json:"os_features"`
	OSVersion    *string    `json:"os_version"`
	Size         int64      `json:"size"`
	Status       string     `json:"status"`
	LastPulled   *time.Time `json:"last_pulled"`
	LastPushed   *time.Time `json:"last_pushed"`
}

// TagLister lists every tag of an image owned by username.
type TagLister interface {
	Tags(ctx context.Context, username, image string) ([]Tag, error)
}
