// Package settings exposes the user's notification settings to the
// notification core. The core only ever reads them.
package settings

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings mirrors the notification preferences the settings screen edits.
type Settings struct {
	EnableNotifications bool   `mapstructure:"enable_notifications" json:"enableNotifications"`
	SoundEnabled        bool   `mapstructure:"sound_enabled" json:"soundEnabled"`
	DefaultSound        string `mapstructure:"default_sound" json:"defaultSound"`
	PushNotifications   bool   `mapstructure:"push_notifications" json:"pushNotifications"`
	EmailNotifications  bool   `mapstructure:"email_notifications" json:"emailNotifications"`
	CustomRingtones     bool   `mapstructure:"custom_ringtones" json:"customRingtones"`
}

// Defaults returns the settings a fresh install starts with.
func Defaults() Settings {
	return Settings{
		EnableNotifications: true,
		SoundEnabled:        true,
		DefaultSound:        "default",
	}
}

// Source supplies the current settings. Implementations must be safe for
// concurrent use.
type Source interface {
	Current() Settings
}

// Static is a Source that never changes.
type Static Settings

// Current returns s.
func (s Static) Current() Settings { return Settings(s) }

// SetDefaults registers the settings defaults under the "notifications" key.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("notifications.enable_notifications", d.EnableNotifications)
	v.SetDefault("notifications.sound_enabled", d.SoundEnabled)
	v.SetDefault("notifications.default_sound", d.DefaultSound)
	v.SetDefault("notifications.push_notifications", d.PushNotifications)
	v.SetDefault("notifications.email_notifications", d.EmailNotifications)
	v.SetDefault("notifications.custom_ringtones", d.CustomRingtones)
}

// FromViper decodes the "notifications" section of v.
func FromViper(v *viper.Viper) (Settings, error) {
	s := Defaults()
	if err := v.UnmarshalKey("notifications", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse notification settings: %w", err)
	}
	return s, nil
}

// Watcher is a Source backed by a config file. It reloads the settings when
// the file changes and keeps serving the last good values if a reload fails.
type Watcher struct {
	v       *viper.Viper
	logger  *log.Logger
	current atomic.Pointer[Settings]
}

// NewWatcher reads the settings from v and, when watch is true, starts
// watching v's config file for changes. v must already have read its config.
func NewWatcher(v *viper.Viper, logger *log.Logger, watch bool) (*Watcher, error) {
	s, err := FromViper(v)
	if err != nil {
		return nil, err
	}

	w := &Watcher{v: v, logger: logger}
	w.current.Store(&s)

	if watch && configExists(v) {
		v.OnConfigChange(w.reload)
		v.WatchConfig()
	}
	return w, nil
}

// configExists reports whether v has a config file on disk to watch.
func configExists(v *viper.Viper) bool {
	path := v.ConfigFileUsed()
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Current returns the most recently loaded settings.
func (w *Watcher) Current() Settings {
	return *w.current.Load()
}

func (w *Watcher) reload(e fsnotify.Event) {
	s, err := FromViper(w.v)
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("keeping previous notification settings after %s: %v", e.Name, err)
		}
		return
	}
	w.current.Store(&s)
	if w.logger != nil {
		w.logger.Printf("reloaded notification settings from %s", e.Name)
	}
}
