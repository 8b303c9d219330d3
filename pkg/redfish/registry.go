package redfish

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/fishem/pkg/fish"
)

//go:embed resources.yaml
var defaultResources []byte

// Kind distinguishes collections from singletons.
type Kind string

// Resource kinds.
const (
	KindSingleton  Kind = "singleton"
	KindCollection Kind = "collection"
)

// Content is the wire representation of a resource.
type Content string

// Content types.
const (
	ContentJSON Content = "json"
	ContentXML  Content = "xml"
)

// FallbackTypeName names the read-only type used for stored paths that no
// template matches.
const FallbackTypeName = "Resource"

// ResourceType describes what the service allows on a family of URIs.
type ResourceType struct {
	Name       string   `yaml:"name"`
	Kind       Kind     `yaml:"kind"`
	Content    Content  `yaml:"content"`
	Insertable bool     `yaml:"insertable"`
	Updatable  bool     `yaml:"updatable"`
	Deletable  bool     `yaml:"deletable"`
	Actionable bool     `yaml:"actionable"`
	Actions    []string `yaml:"actions"`
	URIs       []string `yaml:"uris"`
	MemberOf   string   `yaml:"memberOf"`
	IDVar      string   `yaml:"idVar"`

	templates []*uriTemplate
}

// Allow returns the value of the Allow header for this type.
func (t *ResourceType) Allow() string {
	allow := "GET"
	if t.Insertable {
		allow += ", POST"
	}
	if t.Updatable {
		allow += ", PUT, PATCH"
	}
	if t.Deletable {
		allow += ", DELETE"
	}
	return allow
}

// HasAction reports whether name is a declared action of this type.
// OEM actions are declared with their "Oem/" prefix.
func (t *ResourceType) HasAction(name string) bool {
	for _, a := range t.Actions {
		if a == name {
			return true
		}
	}
	return false
}

// Templates returns the expanded URI templates of this type.
func (t *ResourceType) Templates() []string {
	out := make([]string, len(t.templates))
	for i, tmpl := range t.templates {
		out[i] = tmpl.raw
	}
	return out
}

// Registry matches request paths to resource types.
type Registry struct {
	types    []*ResourceType
	byName   map[string]*ResourceType
	bySize   map[int][]*uriTemplate
	fallback *ResourceType
}

type registryFile struct {
	Types []*ResourceType `yaml:"types"`
}

// DefaultRegistry returns the registry built from the embedded resource table.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(defaultResources)
}

// LoadRegistry parses a resource table.
func LoadRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing resource table: %w", err)
	}
	if len(file.Types) == 0 {
		return nil, errors.New("resource table defines no types")
	}

	r := &Registry{
		types:  file.Types,
		byName: make(map[string]*ResourceType, len(file.Types)),
		bySize: make(map[int][]*uriTemplate),
		fallback: &ResourceType{
			Name:    FallbackTypeName,
			Kind:    KindSingleton,
			Content: ContentJSON,
		},
	}

	for _, t := range file.Types {
		if err := validateType(t); err != nil {
			return nil, err
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("resource type %q defined twice", t.Name)
		}
		r.byName[t.Name] = t
	}

	for _, t := range file.Types {
		uris := append([]string(nil), t.URIs...)
		if t.MemberOf != "" {
			owner, ok := r.byName[t.MemberOf]
			if !ok {
				return nil, fmt.Errorf("resource type %q: unknown memberOf %q", t.Name, t.MemberOf)
			}
			if owner.Kind != KindCollection {
				return nil, fmt.Errorf("resource type %q: memberOf %q is not a collection", t.Name, t.MemberOf)
			}
			for _, u := range owner.URIs {
				uris = append(uris, u+"/{"+t.IDVar+"}")
			}
		}
		if len(uris) == 0 {
			return nil, fmt.Errorf("resource type %q has no uris", t.Name)
		}

		for _, u := range uris {
			tmpl, err := parseTemplate(u, t)
			if err != nil {
				return nil, fmt.Errorf("resource type %q: %w", t.Name, err)
			}
			t.templates = append(t.templates, tmpl)
			r.bySize[len(tmpl.segments)] = append(r.bySize[len(tmpl.segments)], tmpl)
		}
	}

	return r, nil
}

func validateType(t *ResourceType) error {
	if t.Name == "" {
		return errors.New("resource type without a name")
	}
	if t.Name == FallbackTypeName {
		return fmt.Errorf("resource type name %q is reserved", t.Name)
	}
	switch t.Kind {
	case KindSingleton, KindCollection:
	default:
		return fmt.Errorf("resource type %q: invalid kind %q", t.Name, t.Kind)
	}
	switch t.Content {
	case "":
		t.Content = ContentJSON
	case ContentJSON, ContentXML:
	default:
		return fmt.Errorf("resource type %q: invalid content %q", t.Name, t.Content)
	}
	if t.Insertable && t.Kind != KindCollection {
		return fmt.Errorf("resource type %q: only collections can be insertable", t.Name)
	}
	if len(t.Actions) > 0 && !t.Actionable {
		return fmt.Errorf("resource type %q: actions declared but not actionable", t.Name)
	}
	if t.MemberOf != "" && t.IDVar == "" {
		return fmt.Errorf("resource type %q: memberOf requires idVar", t.Name)
	}
	return nil
}

// Types returns the declared resource types in table order.
func (r *Registry) Types() []*ResourceType {
	return r.types
}

// Lookup returns the type with the given name.
func (r *Registry) Lookup(name string) (*ResourceType, bool) {
	if name == FallbackTypeName {
		return r.fallback, true
	}
	t, ok := r.byName[name]
	return t, ok
}

// Fallback returns the read-only type for unmatched stored paths.
func (r *Registry) Fallback() *ResourceType {
	return r.fallback
}

// Match finds the declared type whose template matches key and returns the
// template variables. When several templates match, the one with the most
// literal segments wins.
func (r *Registry) Match(key string) (*ResourceType, map[string]string, bool) {
	segments := strings.Split(fish.Normalize(key), fish.Separator)

	var best *uriTemplate
	for _, tmpl := range r.bySize[len(segments)] {
		if !tmpl.matches(segments) {
			continue
		}
		if best == nil || tmpl.literals > best.literals {
			best = tmpl
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return best.owner, best.vars(segments), true
}

// uriTemplate is one parsed URI such as /redfish/v1/Systems/{ComputerSystemId}.
type uriTemplate struct {
	raw      string
	segments []string
	isVar    []bool
	literals int
	owner    *ResourceType
}

func parseTemplate(raw string, owner *ResourceType) (*uriTemplate, error) {
	if !strings.HasPrefix(raw, fish.Separator) {
		return nil, fmt.Errorf("uri %q must start with %q", raw, fish.Separator)
	}
	raw = fish.Normalize(raw)
	tmpl := &uriTemplate{
		raw:      raw,
		segments: strings.Split(raw, fish.Separator),
		owner:    owner,
	}
	tmpl.isVar = make([]bool, len(tmpl.segments))

	for i, seg := range tmpl.segments {
		if i == 0 {
			continue
		}
		switch {
		case seg == "":
			return nil, fmt.Errorf("uri %q has an empty segment", raw)
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			if len(seg) == 2 {
				return nil, fmt.Errorf("uri %q has an unnamed variable", raw)
			}
			tmpl.segments[i] = seg[1 : len(seg)-1]
			tmpl.isVar[i] = true
		case strings.ContainsAny(seg, "{}"):
			return nil, fmt.Errorf("uri %q: malformed segment %q", raw, seg)
		default:
			tmpl.literals++
		}
	}
	return tmpl, nil
}

func (t *uriTemplate) matches(segments []string) bool {
	if len(segments) != len(t.segments) {
		return false
	}
	for i, seg := range segments {
		if t.isVar[i] {
			if seg == "" {
				return false
			}
			continue
		}
		if seg != t.segments[i] {
			return false
		}
	}
	return true
}

func (t *uriTemplate) vars(segments []string) map[string]string {
	vars := make(map[string]string)
	for i, isVar := range t.isVar {
		if isVar {
			vars[t.segments[i]] = segments[i]
		}
	}
	return vars
}
