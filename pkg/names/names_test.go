package names_test

import (
	"testing"

	. "armada/pkg/names"
)

func TestDockerImageName(t *testing.T) {
	got := DockerImageName("registry.example.com:443", "foo")
	if got != "registry.example.com:443/services-foo" {
		t.Errorf("unexpected image name %q", got)
	}
}

func TestDockerImageName_DefaultRegistry(t *testing.T) {
	got := DockerImageName("", "foo")
	if got != DefaultDockerRegistry+"/services-foo" {
		t.Errorf("unexpected image name %q", got)
	}
}

func TestDockerTag(t *testing.T) {
	got := DockerTag("registry.example.com:443", "foo", "abc123")
	if got != "registry.example.com:443/services-foo:armada-abc123" {
		t.Errorf("unexpected tag %q", got)
	}
}

func TestGitURL(t *testing.T) {
	if got := GitURL("git@git.example.com:services", "webapp"); got != "git@git.example.com:services/webapp.git" {
		t.Errorf("unexpected git URL %q", got)
	}
	if got := GitURL("", "webapp"); got != DefaultGitBase+"/webapp.git" {
		t.Errorf("unexpected default git URL %q", got)
	}
}
