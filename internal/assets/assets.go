package assets

import (
	"errors"
	"sort"
	"strings"
)

type Kind string

const (
	KindImage Kind = "image"
	KindSound Kind = "sound"
)

var ErrUnknownKind = errors.New("unknown asset kind")

// Descriptor names one resource to load.
type Descriptor struct {
	Kind    Kind
	Name    string
	Locator string
}

// Resource is a loaded resource. Data is nil for remote locators the host
// fetches itself.
type Resource struct {
	Kind    Kind
	Name    string
	Locator string
	Data    []byte
}

// IsRemote reports whether the locator is an absolute URL
func (r Resource) IsRemote() bool {
	return isRemote(r.Locator)
}

// Bundle maps kind to name to loaded resource.
type Bundle map[Kind]map[string]Resource

func (b Bundle) Get(kind Kind, name string) (Resource, bool) {
	byName, ok := b[kind]
	if !ok {
		return Resource{}, false
	}
	r, ok := byName[name]
	return r, ok
}

func (b Bundle) put(r Resource) {
	if b[r.Kind] == nil {
		b[r.Kind] = make(map[string]Resource)
	}
	b[r.Kind][r.Name] = r
}

// Progress is a loading progress notification.
type Progress struct {
	Percent int `json:"percent"`
}

type ProgressFunc func(Progress)

// Descriptors lists images then sounds, each sorted by name
func Descriptors(images, sounds map[string]string) []Descriptor {
	out := make([]Descriptor, 0, len(images)+len(sounds))
	out = appendSorted(out, KindImage, images)
	out = appendSorted(out, KindSound, sounds)
	return out
}

func appendSorted(out []Descriptor, kind Kind, m map[string]string) []Descriptor {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, Descriptor{Kind: kind, Name: name, Locator: m[name]})
	}
	return out
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}
