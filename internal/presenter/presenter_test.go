package presenter

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sent struct {
	Kind, Room, Data string
}

type fakeSender struct {
	out     []sent
	failFor string
}

func (f *fakeSender) SendText(_ context.Context, room, message string) error {
	if room == f.failFor {
		return errors.New("boom")
	}
	f.out = append(f.out, sent{"text", room, message})
	return nil
}

func (f *fakeSender) SendImage(_ context.Context, room, imageBase64 string) error {
	f.out = append(f.out, sent{"image", room, imageBase64})
	return nil
}

func TestBoardSendsTextThenImage(t *testing.T) {
	fs := &fakeSender{}
	p := NewPresenter(fs)
	if err := p.Board(context.Background(), "roomA", "hello", []byte("png")); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if err := p.Board(context.Background(), "roomA", "  ", nil); err != nil {
		t.Fatalf("empty Board: %v", err)
	}
	want := []sent{
		{"text", "roomA", "hello"},
		{"image", "roomA", base64.StdEncoding.EncodeToString([]byte("png"))},
	}
	if diff := cmp.Diff(want, fs.out); diff != "" {
		t.Fatalf("sent (-want +got):\n%s", diff)
	}
}

func TestBroadcastDedupesAndContinues(t *testing.T) {
	fs := &fakeSender{failFor: "roomB"}
	p := NewPresenter(fs)
	err := p.Broadcast(context.Background(), []string{"roomA", "", "roomB", "roomA", "roomC"}, "hi", nil)
	if err == nil {
		t.Fatalf("expected error from roomB")
	}
	want := []sent{{"text", "roomA", "hi"}, {"text", "roomC", "hi"}}
	if diff := cmp.Diff(want, fs.out); diff != "" {
		t.Fatalf("sent (-want +got):\n%s", diff)
	}
	var nilP *Presenter
	if err := nilP.Text(context.Background(), "r", "x"); err != nil {
		t.Fatalf("nil presenter: %v", err)
	}
}
