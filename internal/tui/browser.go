// internal/tui/browser.go
//
// Artifact browser. Same Elm-style loop as the rest of bubbletea:
// Model holds the selection, Update reacts to keys, View renders.
//
// Screens: artifacts -> members of the selected artifact.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/rulebind/internal/binding"
)

type browserState int

const (
	stateArtifacts browserState = iota
	stateMembers
)

// artifactItem implements list.Item for one available artifact
type artifactItem struct {
	className string
	qualified string
	kind      binding.Kind
}

func (i artifactItem) Title() string       { return i.className }
func (i artifactItem) Description() string { return fmt.Sprintf("%s · %s", i.kind, i.qualified) }
func (i artifactItem) FilterValue() string { return i.className }

type memberItem struct {
	name string
	desc string
}

func (i memberItem) Title() string       { return i.name }
func (i memberItem) Description() string { return i.desc }
func (i memberItem) FilterValue() string { return i.name }

// Browser lists resolvable artifacts and the members each one exposes.
type Browser struct {
	resolver *binding.Resolver
	state    browserState

	artifacts list.Model
	members   list.Model
	current   artifactItem

	statusMsg string
	width     int
	height    int
}

// NewBrowser creates a browser over everything r can enumerate.
func NewBrowser(r *binding.Resolver) *Browser {
	artifacts := list.New(artifactItems(r), list.NewDefaultDelegate(), 0, 0)
	artifacts.Title = "Generated artifacts"
	artifacts.SetShowStatusBar(false)
	members := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	members.SetShowStatusBar(false)
	return &Browser{
		resolver:  r,
		state:     stateArtifacts,
		artifacts: artifacts,
		members:   members,
	}
}

func artifactItems(r *binding.Resolver) []list.Item {
	prefix := binding.QualifiedName(r.Namespace(), "")
	var items []list.Item
	for _, qualified := range r.Available() {
		if !strings.HasPrefix(qualified, prefix) {
			continue
		}
		className := strings.TrimPrefix(qualified, prefix)
		kind, ok := binding.KindFromClassName(className)
		if !ok {
			continue
		}
		items = append(items, artifactItem{className: className, qualified: qualified, kind: kind})
	}
	return items
}

// Init is called once when the program starts.
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.artifacts.SetSize(max(0, msg.Width-6), max(0, msg.Height-8))
		b.members.SetSize(max(0, msg.Width-6), max(0, msg.Height-8))
		return b, nil

	case tea.KeyMsg:
		if b.filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return b, tea.Quit
		case "q":
			if b.state == stateArtifacts {
				return b, tea.Quit
			}
		case "esc":
			if b.state == stateMembers {
				b.state = stateArtifacts
				b.statusMsg = ""
				return b, nil
			}
		case "enter":
			if b.state == stateArtifacts {
				b.openSelected()
				return b, nil
			}
		}
	}

	var cmd tea.Cmd
	switch b.state {
	case stateArtifacts:
		b.artifacts, cmd = b.artifacts.Update(msg)
	case stateMembers:
		b.members, cmd = b.members.Update(msg)
	}
	return b, cmd
}

func (b *Browser) filtering() bool {
	switch b.state {
	case stateArtifacts:
		return b.artifacts.FilterState() == list.Filtering
	case stateMembers:
		return b.members.FilterState() == list.Filtering
	}
	return false
}

func (b *Browser) openSelected() {
	item, ok := b.artifacts.SelectedItem().(artifactItem)
	if !ok {
		return
	}
	a, ok := b.resolver.ResolveClass(item.className)
	if !ok {
		b.statusMsg = fmt.Sprintf("%s could not be resolved (run with --log-level debug for the cause)", item.className)
		return
	}
	b.current = item
	b.members.Title = item.className
	b.members.SetItems(memberItems(a))
	b.members.ResetSelected()
	b.state = stateMembers
	b.statusMsg = ""
}

func memberItems(a binding.Artifact) []list.Item {
	names := a.MemberNames()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		items = append(items, memberItem{name: name, desc: describeMember(a, name)})
	}
	return items
}

// describeMember shows dependency sets for metadata members and the call
// signature for compiled ones. Member names double as rule ids here since
// MemberName leaves them unchanged.
func describeMember(a binding.Artifact, name string) string {
	if !a.Kind().IsMetadata() {
		if fn, ok := a.Member(name); ok {
			return fn.Type().String()
		}
		return "unavailable"
	}
	set, ok := binding.GetDependencies(a, name)
	if !ok {
		return "no usable dependency set"
	}
	if set.Len() == 0 {
		return "(none)"
	}
	return strings.Join(set.Sorted(), ", ")
}

// View renders the current screen.
func (b *Browser) View() string {
	var body string
	switch b.state {
	case stateMembers:
		body = b.members.View()
	default:
		if len(b.artifacts.Items()) == 0 {
			body = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Render("No artifacts found. Check artifacts.dirs in .rulebind/config.yaml.")
		} else {
			body = b.artifacts.View()
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(body)

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(b.hint())

	parts := []string{box}
	if b.statusMsg != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render(b.statusMsg))
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Browser) hint() string {
	if b.state == stateMembers {
		return "esc back · / filter · ctrl+c quit"
	}
	return "enter open · / filter · q quit"
}
