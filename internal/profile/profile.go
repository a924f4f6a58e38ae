// Package profile maps a cloud image filename to the template settings for
// its distribution.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/pvetemplate/internal/cloudinit"
)

// ErrUnsupportedImage is returned when the filename matches no known distribution.
var ErrUnsupportedImage = errors.New("unsupported image: filename must contain one of noble, debian, fedora")

// Family identifies the distribution branch.
type Family string

// Supported families, in matching order.
const (
	FamilyUbuntu Family = "ubuntu"
	FamilyDebian Family = "debian"
	FamilyFedora Family = "fedora"
)

// Profile is the distribution-specific part of `qm set`.
type Profile struct {
	Family Family
	// Name is the template's VM name.
	Name string
	// Snippet is the vendor-data snippet referenced by --cicustom.
	Snippet cloudinit.Snippet
	Tags    []string
	Docker  bool
	// Notice is set when docker was requested for a family that cannot have it.
	Notice string
}

// TagList returns the tags in the comma-separated form qm expects.
func (p Profile) TagList() string {
	return strings.Join(p.Tags, ",")
}

// Vendor returns the --cicustom value pointing at the profile's snippet
// on the given snippet storage.
func (p Profile) Vendor(storage string) string {
	return fmt.Sprintf("vendor=%s:snippets/%s", storage, p.Snippet.Filename)
}

// Select chooses a profile from the image filename. Matching is
// case-insensitive and checks noble, then debian, then fedora.
func Select(filename string, docker bool) (Profile, error) {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "noble"):
		if docker {
			return Profile{
				Family:  FamilyUbuntu,
				Name:    "ubuntu-2404-cloudinit-docker-template",
				Snippet: cloudinit.UbuntuDocker,
				Tags:    []string{"ubuntu", "cloudinit", "docker"},
				Docker:  true,
			}, nil
		}
		// Update the name when the next Ubuntu LTS ships.
		return Profile{
			Family:  FamilyUbuntu,
			Name:    "ubuntu-2404-cloudinit-template",
			Snippet: cloudinit.Debian,
			Tags:    []string{"ubuntu", "cloudinit"},
		}, nil

	case strings.Contains(name, "debian"):
		p := Profile{
			Family:  FamilyDebian,
			Name:    "debian-bookworm-cloudinit-template",
			Snippet: cloudinit.Debian,
			Tags:    []string{"debian", "cloudinit"},
		}
		if docker {
			p.Notice = "Debian with Docker not supported. Proceeding with normal Debian installation"
		}
		return p, nil

	case strings.Contains(name, "fedora"):
		p := Profile{
			Family:  FamilyFedora,
			Name:    "fedora-41-cloudinit-template",
			Snippet: cloudinit.Fedora,
			Tags:    []string{"fedora", "cloudinit"},
		}
		if docker {
			p.Notice = "Fedora with Docker not supported. Proceeding with normal Fedora installation"
		}
		return p, nil
	}

	return Profile{}, fmt.Errorf("%w (got %q)", ErrUnsupportedImage, filename)
}
