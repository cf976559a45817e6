// Package domain contains the value types shared by the detection pipeline,
// the economics scorer and the service layer.
package domain

import "time"

// SourceChannel identifies which acquisition channel produced a snapshot.
type SourceChannel string

// Acquisition channels, in rough order of preference.
const (
	ChannelNodeTree         SourceChannel = "node_tree"
	ChannelNotification     SourceChannel = "notification"
	ChannelKeywordSearch    SourceChannel = "keyword_search"
	ChannelImageRecognition SourceChannel = "image_recognition"
	ChannelEventFallback    SourceChannel = "event_fallback"
)

// EventType is the platform event that triggered a capture. Content-change
// events fire far more often than window changes (scrolling, redraws), so
// the candidate gate holds them to a stricter confidence threshold.
type EventType string

const (
	EventWindowChange  EventType = "window_change"
	EventContentChange EventType = "content_change"
	EventNotification  EventType = "notification"
	EventClick         EventType = "click"
)

// SemanticNode is one element from a hierarchical UI snapshot, already
// materialized: the live tree is released as soon as the node list is built.
type SemanticNode struct {
	// ElementID is the app's stable per-element identifier. May be empty.
	ElementID      string `json:"element_id"`
	Text           string `json:"text"`
	Description    string `json:"description"`
	Depth          int    `json:"depth"`
	TraversalOrder int    `json:"traversal_order"`
}

// ScreenSnapshot is a bag of text collected from one acquisition channel at
// one instant. Transient: produced and consumed within a single detection
// cycle, never persisted.
type ScreenSnapshot struct {
	RawText string        `json:"raw_text"`
	Channel SourceChannel `json:"source_channel"`
	// OriginAppHint is the platform-reported origin (package name or window
	// title). Best effort and frequently wrong during overlay transitions;
	// content signatures win over it.
	OriginAppHint string         `json:"origin_app_hint"`
	Event         EventType      `json:"event_type"`
	Nodes         []SemanticNode `json:"nodes,omitempty"`
	CapturedAt    time.Time      `json:"captured_at"`
}

// HasNodes reports whether the snapshot carries a structured node list.
func (s *ScreenSnapshot) HasNodes() bool {
	return len(s.Nodes) > 0
}

// Empty reports whether the snapshot carries no usable signal at all.
func (s *ScreenSnapshot) Empty() bool {
	return s == nil || (s.RawText == "" && len(s.Nodes) == 0)
}
