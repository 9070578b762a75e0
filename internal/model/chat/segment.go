package chat

import (
	"strings"
	"time"
)

// Segment types recognized by the codec. Unknown types are discarded on
// decode and carried through verbatim on encode.
const (
	SegmentText      = "text"
	SegmentReasoning = "reasoning"
)

// Segment is one typed unit of message content.
type Segment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Structured is the transient, segment-based message form used for model
// calls and rendering. It is derived from durable records and owned by the
// request that built it.
type Structured struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Segments  []Segment `json:"parts"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// TextContent joins the text segments with newlines, ignoring other types.
func (m Structured) TextContent() string {
	parts := make([]string, 0, len(m.Segments))
	for _, seg := range m.Segments {
		if seg.Type == SegmentText && seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ReasoningContent joins the reasoning segments with newlines.
func (m Structured) ReasoningContent() string {
	parts := make([]string, 0, len(m.Segments))
	for _, seg := range m.Segments {
		if seg.Type == SegmentReasoning && seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Empty reports whether the message carries no segments at all.
func (m Structured) Empty() bool {
	return len(m.Segments) == 0
}
