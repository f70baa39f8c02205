// Package config defines and provides sandbox profile lookup.
package config

import "fuzoj/internal/judge/sandbox/profile"

// ProfileRepository loads task profiles by name.
type ProfileRepository interface {
	GetTaskProfile(name string) (profile.TaskProfile, error)
}
