// Package sound decides whether a new notification should make a sound and
// plays it on a best-effort basis.
package sound

import "sort"

// library maps sound ids selectable in settings to asset file names.
var library = map[string]string{
	"default": "notification.wav",
	"chime":   "chime.wav",
	"bell":    "bell.wav",
	"ping":    "ping.wav",
	"pop":     "pop.wav",
	"success": "success.wav",
}

// Asset returns the file name for a sound id.
func Asset(id string) (string, bool) {
	name, ok := library[id]
	return name, ok
}

// Sounds returns the selectable sound ids in sorted order.
func Sounds() []string {
	ids := make([]string, 0, len(library))
	for id := range library {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
