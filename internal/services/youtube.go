package services

import "regexp"

const YouTubeIDLength = 11

var youTubeURL = regexp.MustCompile(`^.*(youtu.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractVideoID pulls the YouTube id out of the known share, watch and embed
// URL shapes. Anything that is not exactly 11 characters is rejected.
func ExtractVideoID(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	match := youTubeURL.FindStringSubmatch(url)
	if match == nil || len(match[2]) != YouTubeIDLength {
		return "", false
	}
	return match[2], true
}

func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}
