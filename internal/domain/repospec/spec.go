// Package repospec parses configured repository entries into tagged specs.
package repospec

import (
	"fmt"
	"strings"
)

type Kind int

const (
	// KindHeadTracking follows a branch and is updated by sync.
	KindHeadTracking Kind = iota
	// KindPinned is checked out detached at a fixed ref and never synced.
	KindPinned
)

func (k Kind) String() string {
	switch k {
	case KindHeadTracking:
		return "head-tracking"
	case KindPinned:
		return "pinned"
	default:
		return "unknown"
	}
}

// Spec is one resolved repository of a workspace.
type Spec struct {
	SourceURL   string
	DerivedName string
	Kind        Kind
	// Branch is set for KindHeadTracking. For KindPinned it holds the
	// configured branch, if any, for display only.
	Branch    string
	PinnedRef string
}

func (s Spec) Pinned() bool {
	return s.Kind == KindPinned
}

// Target is the branch or ref the checkout should sit on.
func (s Spec) Target() string {
	if s.Pinned() {
		return s.PinnedRef
	}
	return s.Branch
}

func (s Spec) String() string {
	if s.Pinned() {
		return fmt.Sprintf("%s (%s @ %s)", s.DerivedName, s.SourceURL, s.PinnedRef)
	}
	return fmt.Sprintf("%s (%s on %s)", s.DerivedName, s.SourceURL, s.Branch)
}

// Classify turns a parsed line into a Spec for workspace. Lines without a
// ref track a branch, defaulting to the workspace name.
func Classify(line Line, workspace string) Spec {
	spec := Spec{
		SourceURL:   line.URL,
		DerivedName: line.Name,
		Branch:      line.Branch,
	}
	if line.Ref != "" {
		spec.Kind = KindPinned
		spec.PinnedRef = line.Ref
		return spec
	}
	spec.Kind = KindHeadTracking
	if strings.TrimSpace(spec.Branch) == "" {
		spec.Branch = workspace
	}
	return spec
}
