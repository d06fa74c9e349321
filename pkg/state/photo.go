package state

import "time"

// Photo is one entry of the photo collection.
type Photo struct {
	ID      string    `json:"id"`
	URI     string    `json:"uri"`
	Name    string    `json:"name,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}

// DefaultPhotos are the placeholders a fresh session starts with.
func DefaultPhotos() []Photo {
	uris := []string{
		"https://picsum.photos/id/1011/400/400",
		"https://picsum.photos/id/1015/400/400",
		"https://picsum.photos/id/1016/400/400",
		"https://picsum.photos/id/1025/400/400",
	}
	photos := make([]Photo, len(uris))
	for i, uri := range uris {
		photos[i] = Photo{ID: "default-" + string(rune('a'+i)), URI: uri}
	}
	return photos
}

// Cycle moves current by dir steps through a collection of total photos,
// wrapping in both directions. An empty collection always yields 0.
func Cycle(current, dir, total int) int {
	if total <= 0 {
		return 0
	}
	return ((current+dir)%total + total) % total
}
