// Package dispatch turns resolved QR content into the client hand-off
// action: an immediate navigation or an interactive presentation.
package dispatch

import (
	"qrserve/internal/codec"
	"qrserve/internal/domain"
)

// Kind mirrors codec.Action for the resolved record.
type Kind string

const (
	KindNavigate Kind = "navigate"
	KindPresent  Kind = "present"
)

// Action is the final instruction handed to the client. Navigate actions
// carry the URI; present actions carry the content for an interactive view
// requiring an explicit continue signal. Downstream navigation failures
// (unsupported schemes and the like) are the platform's problem, not ours.
type Action struct {
	Kind         Kind               `json:"kind"`
	URI          string             `json:"uri,omitempty"`
	ContentType  domain.ContentType `json:"content_type,omitempty"`
	Content      domain.Content     `json:"content,omitempty"`
	CalendarLink string             `json:"calendar_link,omitempty"`
}

// Dispatch maps content to its hand-off action. phone/sms/email/geolocation
// auto-navigate; everything else is presented.
func Dispatch(c domain.Content) (Action, error) {
	if codec.DefaultAction(c.ContentType()) == codec.ActionNavigate {
		uri, err := codec.Encode(c)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: KindNavigate, URI: uri}, nil
	}
	action := Action{Kind: KindPresent, ContentType: c.ContentType(), Content: c}
	if ev, ok := c.(domain.EventContent); ok {
		action.CalendarLink = codec.CalendarLink(ev)
	}
	return action, nil
}
