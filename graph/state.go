// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"errors"
	"fmt"

	"github.com/defi-wonderland/atlas/ids"
)

// ErrAlreadyExists is returned by Apply when a SpaceCreated event tries to
// re-announce an existing space under a different topic (spec.md §4.2).
var ErrAlreadyExists = errors.New("graph: space already exists with a different topic")

// ExplicitEdge is one (target, kind) pair in a space's explicit edge list.
type ExplicitEdge struct {
	Target ids.SpaceID
	Kind   EdgeType // EdgeVerified or EdgeRelated
}

// State owns every event-derived map in the system: spaces, the
// space<->topic announcement index, explicit edges, and topic edges. It is
// mutated only by the single event-loop goroutine (spec.md §5) and is a
// total, idempotent function of the event stream applied to it (spec.md
// §8 property 1).
type State struct {
	spaces       map[ids.SpaceID]struct{}
	spaceTopics  map[ids.SpaceID]ids.TopicID
	topicSpaces  map[ids.TopicID]map[ids.SpaceID]struct{}
	explicit     map[ids.SpaceID][]ExplicitEdge
	topicEdges   map[ids.SpaceID]map[ids.TopicID]struct{}
	topicSources map[ids.TopicID]map[ids.SpaceID]struct{}
}

// New returns an empty State.
func New() *State {
	return &State{
		spaces:       make(map[ids.SpaceID]struct{}),
		spaceTopics:  make(map[ids.SpaceID]ids.TopicID),
		topicSpaces:  make(map[ids.TopicID]map[ids.SpaceID]struct{}),
		explicit:     make(map[ids.SpaceID][]ExplicitEdge),
		topicEdges:   make(map[ids.SpaceID]map[ids.TopicID]struct{}),
		topicSources: make(map[ids.TopicID]map[ids.SpaceID]struct{}),
	}
}

// Apply mutates the state from one topology event. Apply is total:
// replaying the same event twice is a no-op the second time, except for
// the AlreadyExists case documented on SpaceCreated.
func (s *State) Apply(ev Event) error {
	switch ev.Kind {
	case EventSpaceCreated:
		return s.applySpaceCreated(ev)
	case EventTrustExtended:
		s.applyTrustExtended(ev)
		return nil
	default:
		return fmt.Errorf("graph: unknown event kind %d", ev.Kind)
	}
}

func (s *State) applySpaceCreated(ev Event) error {
	if existingTopic, ok := s.spaceTopics[ev.SpaceID]; ok {
		if existingTopic != ev.TopicID {
			return fmt.Errorf("%w: %s already announces %s, got %s", ErrAlreadyExists, ev.SpaceID, existingTopic, ev.TopicID)
		}
		// Same-value replay: no-op.
		return nil
	}

	s.spaces[ev.SpaceID] = struct{}{}
	s.spaceTopics[ev.SpaceID] = ev.TopicID
	members, ok := s.topicSpaces[ev.TopicID]
	if !ok {
		members = make(map[ids.SpaceID]struct{})
		s.topicSpaces[ev.TopicID] = members
	}
	members[ev.SpaceID] = struct{}{}
	return nil
}

func (s *State) applyTrustExtended(ev Event) {
	switch ev.Extension.Kind {
	case ExtensionVerified:
		s.addExplicitEdge(ev.Source, ExplicitEdge{Target: ev.Extension.Target, Kind: EdgeVerified})
	case ExtensionRelated:
		s.addExplicitEdge(ev.Source, ExplicitEdge{Target: ev.Extension.Target, Kind: EdgeRelated})
	case ExtensionSubtopic:
		s.addTopicEdge(ev.Source, ev.Extension.Topic)
	}
}

func (s *State) addExplicitEdge(source ids.SpaceID, edge ExplicitEdge) {
	for _, existing := range s.explicit[source] {
		if existing.Target == edge.Target && existing.Kind == edge.Kind {
			return
		}
	}
	s.explicit[source] = append(s.explicit[source], edge)
}

func (s *State) addTopicEdge(source ids.SpaceID, topic ids.TopicID) {
	set, ok := s.topicEdges[source]
	if !ok {
		set = make(map[ids.TopicID]struct{})
		s.topicEdges[source] = set
	}
	set[topic] = struct{}{}

	srcSet, ok := s.topicSources[topic]
	if !ok {
		srcSet = make(map[ids.SpaceID]struct{})
		s.topicSources[topic] = srcSet
	}
	srcSet[source] = struct{}{}
}

// HasSpace reports whether space has been created.
func (s *State) HasSpace(space ids.SpaceID) bool {
	_, ok := s.spaces[space]
	return ok
}

// TopicOf returns the topic a space announced at creation.
func (s *State) TopicOf(space ids.SpaceID) (ids.TopicID, bool) {
	t, ok := s.spaceTopics[space]
	return t, ok
}

// GetExplicitChildren returns source's explicit edges, sorted by target
// SpaceID to stabilize BFS output across runs (spec.md §4.2).
func (s *State) GetExplicitChildren(source ids.SpaceID) []ExplicitEdge {
	edges := s.explicit[source]
	if len(edges) == 0 {
		return nil
	}
	out := make([]ExplicitEdge, len(edges))
	copy(out, edges)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Target.Less(out[j-1].Target); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// GetTopicChildren returns the topics source has a Subtopic edge to,
// sorted by TopicID.
func (s *State) GetTopicChildren(source ids.SpaceID) []ids.TopicID {
	set := s.topicEdges[source]
	if len(set) == 0 {
		return nil
	}
	out := make([]ids.TopicID, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sortTopicIDs(out)
	return out
}

// GetTopicMembers returns every space announcing topic, sorted by
// SpaceID.
func (s *State) GetTopicMembers(topic ids.TopicID) []ids.SpaceID {
	set := s.topicSpaces[topic]
	if len(set) == 0 {
		return nil
	}
	out := make([]ids.SpaceID, 0, len(set))
	for sp := range set {
		out = append(out, sp)
	}
	return ids.SortSpaceIDs(out)
}

// TopicEdgeSources returns every space with a Subtopic edge to topic,
// sorted by SpaceID, read from the topic-edge reverse index.
func (s *State) TopicEdgeSources(topic ids.TopicID) []ids.SpaceID {
	set := s.topicSources[topic]
	if len(set) == 0 {
		return nil
	}
	out := make([]ids.SpaceID, 0, len(set))
	for sp := range set {
		out = append(out, sp)
	}
	return ids.SortSpaceIDs(out)
}

func sortTopicIDs(in []ids.TopicID) {
	for i := 1; i < len(in); i++ {
		for j := i; j > 0 && in[j].Less(in[j-1]); j-- {
			in[j], in[j-1] = in[j-1], in[j]
		}
	}
}
