package config

import (
	"fuzoj/internal/judge/sandbox/profile"
	"fuzoj/internal/judge/sandbox/security"
	appErr "fuzoj/pkg/errors"
)

// LocalRepository holds task profiles in memory, keyed by name. It is
// the realistic stand-in for whatever configuration store (rootfs and
// image provisioning live outside this package) a full deployment
// would load these from.
type LocalRepository struct {
	profiles map[string]profile.TaskProfile
}

// NewLocalRepository builds a repository from a profile list.
func NewLocalRepository(profiles []profile.TaskProfile) *LocalRepository {
	m := make(map[string]profile.TaskProfile, len(profiles))
	for _, p := range profiles {
		if p.LanguageID == "" {
			continue
		}
		m[p.LanguageID] = p
	}
	return &LocalRepository{profiles: m}
}

// GetTaskProfile returns the profile registered under name.
func (r *LocalRepository) GetTaskProfile(name string) (profile.TaskProfile, error) {
	if name == "" {
		return profile.TaskProfile{}, appErr.ValidationError("profile", "required")
	}
	p, ok := r.profiles[name]
	if !ok {
		return profile.TaskProfile{}, appErr.New(appErr.SandboxProfileNotFound).WithMessage("task profile not found: " + name)
	}
	return p, nil
}

// Resolve implements engine.ProfileResolver: it maps a profile name to
// the isolation settings (rootfs, seccomp) the engine needs to build a
// wire.JudgeRequest.
func (r *LocalRepository) Resolve(name string) (security.IsolationProfile, error) {
	p, err := r.GetTaskProfile(name)
	if err != nil {
		return security.IsolationProfile{}, err
	}
	return security.IsolationProfile{
		RootFS:         p.RootFS,
		SeccompProfile: p.SeccompProfile,
	}, nil
}
