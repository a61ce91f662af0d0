package slack

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack"
)

// Params carries blocks and attachments as opaque JSON. The helpers below
// build the common cases with slack-go's Block Kit types and hand them back
// in that form.

// SectionBlock creates a section block, rendered as mrkdwn when markdown is set.
func SectionBlock(text string, markdown bool) (json.RawMessage, error) {
	textType := slack.PlainTextType
	if markdown {
		textType = slack.MarkdownType
	}
	obj := slack.NewTextBlockObject(textType, text, false, false)
	if err := obj.Validate(); err != nil {
		return nil, fmt.Errorf("%w: section block: %v", ErrValidation, err)
	}
	return MarshalBlocks(slack.NewSectionBlock(obj, nil, nil))
}

// HeaderBlock creates a header block. Headers only accept plain text.
func HeaderBlock(text string) (json.RawMessage, error) {
	obj := slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
	if err := obj.Validate(); err != nil {
		return nil, fmt.Errorf("%w: header block: %v", ErrValidation, err)
	}
	return MarshalBlocks(slack.NewHeaderBlock(obj))
}

// DividerBlock creates a divider block.
func DividerBlock() json.RawMessage {
	raw, _ := MarshalBlocks(slack.NewDividerBlock())
	return raw
}

// MarshalBlocks encodes a single Block Kit block.
func MarshalBlocks(block slack.Block) (json.RawMessage, error) {
	b, err := json.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s block: %w", block.BlockType(), err)
	}
	return b, nil
}

// MarshalAttachments encodes legacy attachments for Params.Attachments.
func MarshalAttachments(attachments ...slack.Attachment) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(attachments))
	for i, a := range attachments {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attachment %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
