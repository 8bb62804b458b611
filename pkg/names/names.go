// Package names builds the docker image/tag and git URL strings used across
// the deploy pipeline. Pure string construction; nothing here talks to a
// registry or a git server.
package names

import "fmt"

// Defaults used when the system config does not override them.
const (
	DefaultDockerRegistry = "docker.armada.dev:443"
	DefaultGitBase        = "git@git.armada.dev:services"
)

// DockerImageName returns the registry-qualified image name for an upstream
// job. upstreamJob is the CI-sanitized (s,/,-,g) form of the service's git
// path: services/foo becomes services-foo.
func DockerImageName(registry, upstreamJob string) string {
	if registry == "" {
		registry = DefaultDockerRegistry
	}
	return fmt.Sprintf("%s/services-%s", registry, upstreamJob)
}

// DockerTag returns the full deployable tag for an upstream job at a given
// git commit, usually the tip of origin/master.
func DockerTag(registry, upstreamJob, gitCommit string) string {
	return fmt.Sprintf("%s:armada-%s", DockerImageName(registry, upstreamJob), gitCommit)
}

// GitURL returns the clone URL for a service, assuming the repo matches the
// service name and lives under the services namespace.
func GitURL(gitBase, service string) string {
	if gitBase == "" {
		gitBase = DefaultGitBase
	}
	return fmt.Sprintf("%s/%s.git", gitBase, service)
}
