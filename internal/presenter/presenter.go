// Package presenter delivers game replies to chat rooms.
package presenter

import (
	"context"
	"encoding/base64"
	"strings"
)

// Sender is the reply transport.
type Sender interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

// Presenter sends text then board image without knowing about commands.
type Presenter struct {
	out Sender
}

func NewPresenter(out Sender) *Presenter { return &Presenter{out: out} }

// Board sends message (if any) followed by png (if any) to room.
func (p *Presenter) Board(ctx context.Context, room, message string, png []byte) error {
	if p == nil || p.out == nil {
		return nil
	}
	if strings.TrimSpace(message) != "" {
		if err := p.out.SendText(ctx, room, message); err != nil {
			return err
		}
	}
	if len(png) > 0 {
		if err := p.out.SendImage(ctx, room, base64.StdEncoding.EncodeToString(png)); err != nil {
			return err
		}
	}
	return nil
}

// Text sends a plain reply.
func (p *Presenter) Text(ctx context.Context, room, message string) error {
	return p.Board(ctx, room, message, nil)
}

// Broadcast sends the same board to every distinct non-empty room.
// It keeps going after a failure and returns the first error.
func (p *Presenter) Broadcast(ctx context.Context, rooms []string, message string, png []byte) error {
	seen := make(map[string]struct{}, len(rooms))
	var first error
	for _, r := range rooms {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if err := p.Board(ctx, r, message, png); err != nil && first == nil {
			first = err
		}
	}
	return first
}
