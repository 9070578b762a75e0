// Package codec converts between the durable message record and the
// segment-based structured form used for model calls and rendering.
package codec

import (
	"encoding/json"

	"github.com/parleychat/parley/internal/model/chat"
)

// Decode parses a durable record into a structured message.
//
// The content blob is expected to be a JSON segment array; elements with an
// unrecognized type or an undefined text field are dropped. If the array
// parses but yields no usable segments, Decode returns nil and the caller
// must filter the record out of context. Only content that is not a JSON
// array at all is treated as a legacy plain-text record and wrapped as a
// single text segment.
func Decode(record chat.Message) *chat.Structured {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(record.Content), &elements); err != nil {
		return &chat.Structured{
			ID:        record.ID,
			Role:      record.Role,
			Segments:  []chat.Segment{{Type: chat.SegmentText, Text: record.Content}},
			CreatedAt: record.CreatedAt,
		}
	}

	segments := make([]chat.Segment, 0, len(elements))
	for _, element := range elements {
		// Text is a pointer so a present-but-empty text field survives while
		// a missing one drops the element.
		var seg struct {
			Type string  `json:"type"`
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(element, &seg); err != nil {
			continue
		}
		if !recognized(seg.Type) || seg.Text == nil {
			continue
		}
		segments = append(segments, chat.Segment{Type: seg.Type, Text: *seg.Text})
	}

	if len(segments) == 0 {
		return nil
	}

	return &chat.Structured{
		ID:        record.ID,
		Role:      record.Role,
		Segments:  segments,
		CreatedAt: record.CreatedAt,
	}
}

// Encode serializes a structured message into the durable content blob. A
// message that already carries segments is serialized verbatim; one without
// segments has its flat text wrapped as a single text segment. Encode is the
// left inverse of Decode for any message this system produced.
func Encode(msg chat.Structured) string {
	segments := msg.Segments
	if len(segments) == 0 {
		segments = []chat.Segment{{Type: chat.SegmentText, Text: msg.TextContent()}}
	}

	data, err := json.Marshal(segments)
	if err != nil {
		// Segments are plain strings; marshal cannot fail in practice.
		return msg.TextContent()
	}
	return string(data)
}

func recognized(segmentType string) bool {
	switch segmentType {
	case chat.SegmentText, chat.SegmentReasoning:
		return true
	default:
		return false
	}
}
