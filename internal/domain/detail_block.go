package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DetailBlockType discriminates the DetailBlock variants on the wire.
type DetailBlockType string

const (
	DetailBlockTimeline DetailBlockType = "timeline"
	DetailBlockNote     DetailBlockType = "note"
	DetailBlockLink     DetailBlockType = "link"
)

// DetailBlock is an organizer-authored content unit shown on the event page.
// The set of variants is closed: TimelineBlock, NoteBlock and LinkBlock.
type DetailBlock interface {
	Type() DetailBlockType
	isDetailBlock()
}

// TimelineBlock is one entry of the event's running order.
type TimelineBlock struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// NoteBlock is a freeform paragraph.
type NoteBlock struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// LinkBlock points guests at an external page (registry, map, hotel).
type LinkBlock struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

func (TimelineBlock) Type() DetailBlockType { return DetailBlockTimeline }
func (NoteBlock) Type() DetailBlockType     { return DetailBlockNote }
func (LinkBlock) Type() DetailBlockType     { return DetailBlockLink }

func (TimelineBlock) isDetailBlock() {}
func (NoteBlock) isDetailBlock()     {}
func (LinkBlock) isDetailBlock()     {}

const maxDetailBlocks = 50

// DetailBlocks is stored as a JSONB array of {"type": ..., ...fields} objects.
type DetailBlocks []DetailBlock

// Validate checks every block and returns the first failure as a *FieldError.
func (b DetailBlocks) Validate() error {
	if len(b) > maxDetailBlocks {
		return NewFieldError("detail_blocks", "at most %d blocks are allowed", maxDetailBlocks)
	}
	for i, blk := range b {
		field := fmt.Sprintf("detail_blocks[%d]", i)
		switch v := blk.(type) {
		case TimelineBlock:
			if strings.TrimSpace(v.Time) == "" {
				return NewFieldError(field+".time", "is required")
			}
			if strings.TrimSpace(v.Title) == "" {
				return NewFieldError(field+".title", "is required")
			}
		case NoteBlock:
			if strings.TrimSpace(v.Body) == "" {
				return NewFieldError(field+".body", "is required")
			}
		case LinkBlock:
			if strings.TrimSpace(v.Label) == "" {
				return NewFieldError(field+".label", "is required")
			}
			if !IsHTTPURL(v.URL) {
				return NewFieldError(field+".url", "must be an http or https URL")
			}
		case nil:
			return NewFieldError(field, "is empty")
		default:
			return NewFieldError(field, "unsupported block %T", blk)
		}
	}
	return nil
}

type taggedTimeline struct {
	Type DetailBlockType `json:"type"`
	TimelineBlock
}

type taggedNote struct {
	Type DetailBlockType `json:"type"`
	NoteBlock
}

type taggedLink struct {
	Type DetailBlockType `json:"type"`
	LinkBlock
}

func (b DetailBlocks) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(b))
	for _, blk := range b {
		switch v := blk.(type) {
		case TimelineBlock:
			out = append(out, taggedTimeline{Type: DetailBlockTimeline, TimelineBlock: v})
		case NoteBlock:
			out = append(out, taggedNote{Type: DetailBlockNote, NoteBlock: v})
		case LinkBlock:
			out = append(out, taggedLink{Type: DetailBlockLink, LinkBlock: v})
		default:
			return nil, fmt.Errorf("unsupported detail block %T", blk)
		}
	}
	return json.Marshal(out)
}

func (b *DetailBlocks) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	blocks := make(DetailBlocks, 0, len(raw))
	for i, r := range raw {
		var head struct {
			Type DetailBlockType `json:"type"`
		}
		if err := json.Unmarshal(r, &head); err != nil {
			return err
		}
		switch head.Type {
		case DetailBlockTimeline:
			var v TimelineBlock
			if err := json.Unmarshal(r, &v); err != nil {
				return err
			}
			blocks = append(blocks, v)
		case DetailBlockNote:
			var v NoteBlock
			if err := json.Unmarshal(r, &v); err != nil {
				return err
			}
			blocks = append(blocks, v)
		case DetailBlockLink:
			var v LinkBlock
			if err := json.Unmarshal(r, &v); err != nil {
				return err
			}
			blocks = append(blocks, v)
		default:
			return fmt.Errorf("detail_blocks[%d]: unknown type %q", i, head.Type)
		}
	}
	*b = blocks
	return nil
}

func (b DetailBlocks) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return b.MarshalJSON()
}

func (b *DetailBlocks) Scan(value any) error {
	if value == nil {
		*b = DetailBlocks{}
		return nil
	}
	return scanJSON(value, b)
}

// IsHTTPURL reports whether s is an absolute http or https URL.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
