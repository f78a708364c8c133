// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import "github.com/defi-wonderland/atlas/ids"

// SpaceType records how a space was created. The core does not branch on
// this value; it is carried through for downstream consumers.
type SpaceType uint8

const (
	SpaceTypeUnspecified SpaceType = iota
	SpaceTypePersonal
	SpaceTypeDAO
)

// ExtensionKind identifies which flavor of trust a TrustExtended event
// carries.
type ExtensionKind uint8

const (
	ExtensionUnspecified ExtensionKind = iota
	ExtensionVerified
	ExtensionRelated
	ExtensionSubtopic
)

// TrustExtension is the tagged payload of a TrustExtended event. Exactly
// one of Target / Topic is meaningful, selected by Kind.
type TrustExtension struct {
	Kind   ExtensionKind
	Target ids.SpaceID
	Topic  ids.TopicID
}

// VerifiedExtension builds a Verified trust extension to target.
func VerifiedExtension(target ids.SpaceID) TrustExtension {
	return TrustExtension{Kind: ExtensionVerified, Target: target}
}

// RelatedExtension builds a Related trust extension to target.
func RelatedExtension(target ids.SpaceID) TrustExtension {
	return TrustExtension{Kind: ExtensionRelated, Target: target}
}

// SubtopicExtension builds a Subtopic trust extension referencing topic.
func SubtopicExtension(topic ids.TopicID) TrustExtension {
	return TrustExtension{Kind: ExtensionSubtopic, Topic: topic}
}

// Event is the tagged union of topology events Atlas consumes from the
// Source. It is modeled as a tagged variant (not a class hierarchy) so
// that affects_canonical and GraphState.apply can switch on Kind in O(1),
// per spec.md Design Note "Tagged event variant".
type Event struct {
	Kind EventKind

	// SpaceCreated fields
	SpaceID   ids.SpaceID
	TopicID   ids.TopicID
	SpaceType SpaceType

	// TrustExtended fields
	Source    ids.SpaceID
	Extension TrustExtension
}

// EventKind selects which event variant an Event carries.
type EventKind uint8

const (
	EventUnspecified EventKind = iota
	EventSpaceCreated
	EventTrustExtended
)

// String implements fmt.Stringer for log lines and metric labels.
func (k EventKind) String() string {
	switch k {
	case EventSpaceCreated:
		return "space_created"
	case EventTrustExtended:
		return "trust_extended"
	default:
		return "unspecified"
	}
}

// NewSpaceCreated builds a SpaceCreated event.
func NewSpaceCreated(space ids.SpaceID, topic ids.TopicID, st SpaceType) Event {
	return Event{
		Kind:      EventSpaceCreated,
		SpaceID:   space,
		TopicID:   topic,
		SpaceType: st,
	}
}

// NewTrustExtended builds a TrustExtended event from source with the
// given extension.
func NewTrustExtended(source ids.SpaceID, ext TrustExtension) Event {
	return Event{
		Kind:      EventTrustExtended,
		Source:    source,
		Extension: ext,
	}
}
