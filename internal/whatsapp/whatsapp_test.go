package whatsapp

import (
	"testing"
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func inboundFrom(msg *waE2E.Message) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender: types.NewJID("5511999990000", JIDSuffix),
			},
			Timestamp: time.Unix(1700000000, 0),
		},
		Message: msg,
	}
}

func TestExtractEventConversationText(t *testing.T) {
	ev, ok := ExtractEvent(inboundFrom(&waE2E.Message{Conversation: proto.String("hello")}))
	if !ok {
		t.Fatal("text message not extracted")
	}
	if ev.Text != "hello" || ev.SelectionID != "" {
		t.Errorf("event = %+v, want text hello", ev)
	}
	if ev.From != "5511999990000" {
		t.Errorf("From = %q, want sender digits", ev.From)
	}
	if ev.Time != 1700000000 {
		t.Errorf("Time = %d, want message timestamp", ev.Time)
	}
}

func TestExtractEventExtendedText(t *testing.T) {
	msg := &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("quoted reply")}}
	ev, ok := ExtractEvent(inboundFrom(msg))
	if !ok || ev.Text != "quoted reply" {
		t.Errorf("extended text event = (%+v, %v)", ev, ok)
	}
}

func TestExtractEventListSelection(t *testing.T) {
	msg := &waE2E.Message{
		ListResponseMessage: &waE2E.ListResponseMessage{
			SingleSelectReply: &waE2E.ListResponseMessage_SingleSelectReply{
				SelectedRowID: proto.String("cat_rn:7"),
			},
		},
	}
	ev, ok := ExtractEvent(inboundFrom(msg))
	if !ok {
		t.Fatal("list selection not extracted")
	}
	if ev.SelectionID != "cat_rn:7" || ev.Text != "" {
		t.Errorf("event = %+v, want selection cat_rn:7", ev)
	}
}

func TestExtractEventButtonTap(t *testing.T) {
	msg := &waE2E.Message{
		ButtonsResponseMessage: &waE2E.ButtonsResponseMessage{
			SelectedButtonID: proto.String("flow_cancel"),
		},
	}
	ev, ok := ExtractEvent(inboundFrom(msg))
	if !ok || ev.SelectionID != "flow_cancel" {
		t.Errorf("button event = (%+v, %v), want flow_cancel selection", ev, ok)
	}
}

func TestExtractEventTemplateButtonReply(t *testing.T) {
	msg := &waE2E.Message{
		TemplateButtonReplyMessage: &waE2E.TemplateButtonReplyMessage{
			SelectedID: proto.String("menu_cat_rename"),
		},
	}
	ev, ok := ExtractEvent(inboundFrom(msg))
	if !ok || ev.SelectionID != "menu_cat_rename" {
		t.Errorf("template reply event = (%+v, %v)", ev, ok)
	}
}

func TestExtractEventSkipsUnsupportedKinds(t *testing.T) {
	// An image message carries neither text nor a selection.
	msg := &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("")}}
	if ev, ok := ExtractEvent(inboundFrom(msg)); ok {
		t.Errorf("unsupported message extracted: %+v", ev)
	}
	if _, ok := ExtractEvent(nil); ok {
		t.Error("nil event extracted")
	}
	if _, ok := ExtractEvent(&events.Message{}); ok {
		t.Error("event without message extracted")
	}
}

func TestExtractEventEmptySelectionRejected(t *testing.T) {
	msg := &waE2E.Message{
		ListResponseMessage: &waE2E.ListResponseMessage{
			SingleSelectReply: &waE2E.ListResponseMessage_SingleSelectReply{},
		},
	}
	if ev, ok := ExtractEvent(inboundFrom(msg)); ok {
		t.Errorf("empty selection extracted: %+v", ev)
	}
}
