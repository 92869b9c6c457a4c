package dockerhub

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// OfficialUsername is the namespace official images are published under.
const OfficialUsername = "library"

// RepoImageFromPath splits an image path into its username and image name.
// A single segment is an official image, longer paths (for example ones
// still carrying the registry host) use their last two segments.
func RepoImageFromPath(path string) (string, string) {
	split := strings.Split(strings.Trim(path, "/"), "/")

	lenSplit := len(split)
	if lenSplit == 1 {
		return OfficialUsername, split[0]
	}

	return split[lenSplit-2], split[lenSplit-1]
}

// tagsURL returns the first page of the tag listing for username/image.
func (c *Client) tagsURL(username, image string) string {
	query := url.Values{
		"page":      []string{"1"},
		"page_size": []string{strconv.Itoa(pageSize)},
	}

	return c.URL + fmt.Sprintf(tagsPath, url.PathEscape(username), url.PathEscape(image)) +
		"?" + query.Encode()
}
