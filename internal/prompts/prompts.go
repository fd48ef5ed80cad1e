// Package prompts loads the LLM prompt templates
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

//go:embed default.yaml
var defaultYAML []byte

// Set holds the prompt templates. Templates use text/template syntax.
type Set struct {
	System         string `yaml:"system"`
	PeerDiscovery  string `yaml:"peer_discovery"`
	Recommendation string `yaml:"recommendation"`
}

type file struct {
	Prompts Set `yaml:"prompts"`
}

// PeerDiscoveryData fills the peer discovery template
type PeerDiscoveryData struct {
	Symbol   string
	Industry string
	Exchange string
	Count    int
}

// RecommendationData fills the recommendation template
type RecommendationData struct {
	Symbol string
	Report string
	Peers  string // comma separated, empty when no peers
}

// Default returns the embedded prompt set
func Default() *Set {
	s, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts invalid: %v", err))
	}
	return s
}

// Load returns the embedded prompts overlaid with any non-empty entries from
// the YAML file at path. An empty path returns the defaults.
func Load(path string) (*Set, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	override, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}

	if override.System != "" {
		s.System = override.System
	}
	if override.PeerDiscovery != "" {
		s.PeerDiscovery = override.PeerDiscovery
	}
	if override.Recommendation != "" {
		s.Recommendation = override.Recommendation
	}
	return s, nil
}

func parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for name, text := range map[string]string{
		"peer_discovery": f.Prompts.PeerDiscovery,
		"recommendation": f.Prompts.Recommendation,
	} {
		if text == "" {
			continue
		}
		if _, err := template.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	}
	return &f.Prompts, nil
}

// PeerDiscoveryPrompt renders the peer discovery prompt
func (s *Set) PeerDiscoveryPrompt(data PeerDiscoveryData) (string, error) {
	return render("peer_discovery", s.PeerDiscovery, data)
}

// RecommendationPrompt renders the recommendation prompt
func (s *Set) RecommendationPrompt(data RecommendationData) (string, error) {
	return render("recommendation", s.Recommendation, data)
}

func render(name, text string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
