package view

import (
	"fmt"
	"strings"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

type Tab string

const (
	TabAll     Tab = "all"
	TabGroup   Tab = "group"
	TabPrivate Tab = "private"
	TabTeacher Tab = "teacher"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabAll, TabGroup, TabPrivate, TabTeacher}

// ParseTab accepts tab names case-insensitively, including plural spellings.
// An empty string selects TabAll.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, nil
	case "group", "groups":
		return TabGroup, nil
	case "private", "privates", "dm":
		return TabPrivate, nil
	case "teacher", "teachers":
		return TabTeacher, nil
	default:
		return "", fmt.Errorf("unknown tab %q (want all, group, private or teacher)", s)
	}
}

// Kind is the conversation kind the tab selects, nil for TabAll.
func (t Tab) Kind() *domain.ConversationKind {
	var k domain.ConversationKind
	switch t {
	case TabGroup:
		k = domain.ConversationKindGroup
	case TabPrivate:
		k = domain.ConversationKindPrivate
	case TabTeacher:
		k = domain.ConversationKindTeacher
	default:
		return nil
	}
	return &k
}

func (t Tab) Title() string {
	switch t {
	case TabGroup:
		return "Groups"
	case TabPrivate:
		return "Private"
	case TabTeacher:
		return "Teachers"
	default:
		return "All"
	}
}

type Query struct {
	Tab          Tab
	Search       string
	ShowArchived bool
}

// Apply narrows conversations to those the query selects, preserving order.
// The archived toggle is exclusive: on shows only archived conversations,
// off shows only live ones. Neither the slice nor its elements are modified.
func Apply(conversations []*domain.Conversation, q Query) []*domain.Conversation {
	kind := q.Tab.Kind()
	out := make([]*domain.Conversation, 0, len(conversations))
	for _, c := range conversations {
		if c.IsArchived != q.ShowArchived {
			continue
		}
		if kind != nil && c.Kind != *kind {
			continue
		}
		if !c.Matches(q.Search) {
			continue
		}
		out = append(out, c)
	}
	return out
}
