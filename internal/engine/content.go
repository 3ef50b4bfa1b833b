package engine

import (
	"net/url"
	"strings"
)

type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentAudio ContentKind = "audio"
	ContentVideo ContentKind = "video"
)

// Content is either inline text or a reference to uploaded media.
type Content struct {
	Kind     ContentKind `json:"type"`
	Text     string      `json:"text,omitempty"`
	MediaURL string      `json:"mediaUrl,omitempty"`
}

func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

func MediaContent(kind ContentKind, mediaURL string) Content {
	return Content{Kind: kind, MediaURL: mediaURL}
}

func (c Content) Validate() error {
	switch c.Kind {
	case ContentText:
		if strings.TrimSpace(c.Text) == "" || c.MediaURL != "" {
			return ErrInvalidContent
		}
		return nil
	case ContentAudio, ContentVideo:
		if c.Text != "" || c.MediaURL == "" {
			return ErrInvalidContent
		}
		if _, err := url.ParseRequestURI(c.MediaURL); err != nil {
			return ErrInvalidContent
		}
		return nil
	default:
		return ErrInvalidContent
	}
}
