package packaging

import (
	"encoding/xml"
	"fmt"
	"sort"
)

// manifestNamespace is the namespace of generated manifests.
const manifestNamespace = "http://soap.sforce.com/2006/04/metadata"

// xmlHeader precedes every generated manifest.
const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

type manifestTypes struct {
	Members []string `xml:"members"`
	Name    string   `xml:"name"`
}

type manifest struct {
	XMLName xml.Name        `xml:"Package"`
	Xmlns   string          `xml:"xmlns,attr"`
	Types   []manifestTypes `xml:"types"`
	Version string          `xml:"version"`
}

// Members collects manifest members grouped by metadata type.
type Members map[string]map[string]bool

// Add records one member.
func (m Members) Add(metaType, name string) {
	if metaType == "" || name == "" {
		return
	}
	if m[metaType] == nil {
		m[metaType] = make(map[string]bool)
	}
	m[metaType][name] = true
}

// Empty reports whether no members were recorded.
func (m Members) Empty() bool {
	return len(m) == 0
}

// RenderManifest produces the manifest XML for a member set. Types and
// members come out sorted so output is deterministic.
func RenderManifest(members Members, apiVersion string) ([]byte, error) {
	doc := manifest{Xmlns: manifestNamespace, Version: apiVersion}

	types := make([]string, 0, len(members))
	for t := range members {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		names := make([]string, 0, len(members[t]))
		for n := range members[t] {
			names = append(names, n)
		}
		sort.Strings(names)
		doc.Types = append(doc.Types, manifestTypes{Name: t, Members: names})
	}

	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest: %w", err)
	}
	return append([]byte(xmlHeader), append(body, '\n')...), nil
}
