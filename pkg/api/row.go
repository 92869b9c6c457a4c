package api

import (
	"strconv"
	"time"
)

// Row is the flattening of a Tag and one of its Images. Image fields carry the
// "image_" prefix so they never collide with tag level fields. A nil pointer
// marks a value that was absent from the registry response.
type Row struct {
	Name                string     `json:"name"`
	ID                  int64      `json:"id"`
	Repository          int64      `json:"repository"`
	Creator             int64      `json:"creator"`
	LastUpdater         int64      `json:"last_updater"`
	LastUpdaterUsername string     `json:"last_updater_username"`
	LastUpdated         *time.Time `json:"last_updated"`
	FullSize            int64      `json:"full_size"`
	V2                  bool       `json:"v2"`
	TagStatus           string     `json:"tag_status"`
	TagLastPulled       *time.Time `json:"tag_last_pulled"`
	TagLastPushed       *time.Time `json:"tag_last_pushed"`
	MediaType           *string    `json:"media_type"`
	ContentType         *string    `json:"content_type"`
	Digest              *string    `json:"digest"`

	ImageArchitecture string     `json:"image_architecture"`
	ImageFeatures     *string    `json:"image_features"`
	ImageVariant      *string    `json:"image_variant"`
	ImageDigest       *string    `json:"image_digest"`
	ImageOS           string     `json:"image_os"`
	ImageOSFeatures   *string    `json:"image_os_features"`
	ImageOSVersion    *string    `json:"image_os_version"`
	ImageSize         int64      `json:"image_size"`
	ImageStatus       string     `json:"image_status"`
	ImageLastPulled   *time.Time `json:"image_last_pulled"`
	ImageLastPushed   *time.Time `json:"image_last_pushed"`
}

var rowColumns = []string{
	"name", "id", "repository", "creator", "last_updater", "last_updater_username",
	"last_updated", "full_size", "v2", "tag_status", "tag_last_pulled", "tag_last_pushed",
	"media_type", "content_type", "digest",
	"image_architecture", "image_features", "image_variant", "image_digest", "image_os",
	"image_os_features", "image_os_version", "image_size", "image_status",
	"image_last_pulled", "image_last_pushed",
}

// NewRow merges tag and image into a single Row.
func NewRow(tag Tag, image Image) Row {
	return Row{
		Name:                tag.Name,
		ID:                  tag.ID,
		Repository:          tag.Repository,
		Creator:             tag.Creator,
		LastUpdater:         tag.LastUpdater,
		LastUpdaterUsername: tag.LastUpdaterUsername,
		LastUpdated:         tag.LastUpdated,
		FullSize:            tag.FullSize,
		V2:                  tag.V2,
		TagStatus:           tag.TagStatus,
		TagLastPulled:       tag.TagLastPulled,
		TagLastPushed:       tag.TagLastPushed,
		MediaType:           tag.MediaType,
		ContentType:         tag.ContentType,
		Digest:              tag.Digest,

		ImageArchitecture: image.Architecture,
		ImageFeatures:     image.Features,
		ImageVariant:      image.Variant,
		ImageDigest:       image.Digest,
		ImageOS:           image.OS,
		ImageOSFeatures:   image.OSFeatures,
		ImageOSVersion:    image.OSVersion,
		ImageSize:         image.Size,
		ImageStatus:       image.Status,
		ImageLastPulled:   image.LastPulled,
		ImageLastPushed:   image.LastPushed,
	}
}

// Columns returns the field names of the row, in the same order as Values.
func (r Row) Columns() []string {
	return append([]string(nil), rowColumns...)
}

// Values returns the string form of every field. Missing values are returned
// as the empty string.
func (r Row) Values() []string {
	return []string{
		r.Name,
		strconv.FormatInt(r.ID, 10),
		strconv.FormatInt(r.Repository, 10),
		strconv.FormatInt(r.Creator, 10),
		strconv.FormatInt(r.LastUpdater, 10),
		r.LastUpdaterUsername,
		formatTime(r.LastUpdated),
		strconv.FormatInt(r.FullSize, 10),
		strconv.FormatBool(r.V2),
		r.TagStatus,
		formatTime(r.TagLastPulled),
		formatTime(r.TagLastPushed),
		Deref(r.MediaType),
		Deref(r.ContentType),
		Deref(r.Digest),
		r.ImageArchitecture,
		Deref(r.ImageFeatures),
		Deref(r.ImageVariant),
		Deref(r.ImageDigest),
		r.ImageOS,
		Deref(r.ImageOSFeatures),
		Deref(r.ImageOSVersion),
		strconv.FormatInt(r.ImageSize, 10),
		r.ImageStatus,
		formatTime(r.ImageLastPulled),
		formatTime(r.ImageLastPushed),
	}
}

// OS is the operating system composite used for matching: os, os_features
// and os_version concatenated.
func (r Row) OS() string {
	return r.ImageOS + Deref(r.ImageOSFeatures) + Deref(r.ImageOSVersion)
}

// Architecture is the architecture composite used for matching:
// architecture, features and variant concatenated.
func (r Row) Architecture() string {
	return r.ImageArchitecture + Deref(r.ImageFeatures) + Deref(r.ImageVariant)
}

// PushedAt returns the image push time, falling back to the tag push time.
func (r Row) PushedAt() *time.Time {
	if r.ImageLastPushed != nil {
		return r.ImageLastPushed
	}
	return r.TagLastPushed
}

// Deref returns the value of s, or the empty string when s is missing.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
