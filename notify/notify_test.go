package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// slackStub serves just enough of the Slack Web API for the announcer.
type slackStub struct {
	mux       *http.ServeMux
	nameTaken bool
	posted    []string
	topics    []string
	invited   []string
	created   []string
}

func newSlackStub(t *testing.T) (*slackStub, *SlackAnnouncer) {
	t.Helper()
	stub := &slackStub{mux: http.NewServeMux()}

	stub.mux.HandleFunc("/conversations.create", func(w http.ResponseWriter, r *http.Request) {
		if stub.nameTaken {
			_, _ = w.Write([]byte(`{"ok":false,"error":"name_taken"}`))
			return
		}
		stub.created = append(stub.created, r.FormValue("name"))
		_, _ = w.Write([]byte(`{"ok":true,"channel":{"id":"C100","name":"` + r.FormValue("name") + `"}}`))
	})
	stub.mux.HandleFunc("/conversations.list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"channels":[{"id":"C200","name":"release-eb-2026-32-0-01"}],"response_metadata":{"next_cursor":""}}`))
	})
	stub.mux.HandleFunc("/usergroups.users.list", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"users":["U1","U2"]}`))
	})
	stub.mux.HandleFunc("/conversations.invite", func(w http.ResponseWriter, r *http.Request) {
		stub.invited = append(stub.invited, r.FormValue("users"))
		_, _ = w.Write([]byte(`{"ok":true,"channel":{"id":"C100"}}`))
	})
	stub.mux.HandleFunc("/conversations.setTopic", func(w http.ResponseWriter, r *http.Request) {
		stub.topics = append(stub.topics, r.FormValue("topic"))
		_, _ = w.Write([]byte(`{"ok":true,"channel":{"id":"C100"}}`))
	})
	stub.mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		stub.posted = append(stub.posted, r.FormValue("channel")+": "+r.FormValue("text"))
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C100","ts":"1"}`))
	})

	server := httptest.NewServer(stub.mux)
	t.Cleanup(server.Close)

	announcer := NewSlack("token", "S123", WithAPIURL(server.URL+"/"))
	return stub, announcer
}

func TestSlackAnnounceRelease(t *testing.T) {
	stub, announcer := newSlackStub(t)

	err := announcer.AnnounceRelease(context.Background(), Announcement{
		Channel: "release-eb-2026-32-0-01",
		Topic:   "Release Ticket: MAN-55",
		Message: "* EB-1 : Add Auth",
	})
	if err != nil {
		t.Fatalf("AnnounceRelease() error = %v", err)
	}

	if len(stub.created) != 1 || stub.created[0] != "release-eb-2026-32-0-01" {
		t.Errorf("created = %v", stub.created)
	}
	if len(stub.invited) != 1 {
		t.Errorf("invited = %v", stub.invited)
	}
	if len(stub.topics) != 1 || stub.topics[0] != "Release Ticket: MAN-55" {
		t.Errorf("topics = %v", stub.topics)
	}
	if len(stub.posted) != 1 {
		t.Errorf("posted = %v", stub.posted)
	}
}

func TestSlackAnnounceReleaseChannelExists(t *testing.T) {
	stub, announcer := newSlackStub(t)
	stub.nameTaken = true

	err := announcer.AnnounceRelease(context.Background(), Announcement{
		Channel: "release-eb-2026-32-0-01",
		Message: "changelog",
	})
	if err != nil {
		t.Fatalf("AnnounceRelease() on existing channel error = %v", err)
	}
	if len(stub.posted) != 1 || stub.posted[0] != "C200: changelog" {
		t.Errorf("posted = %v, want reuse of existing channel C200", stub.posted)
	}
}

func TestNopAnnouncer(t *testing.T) {
	var a Announcer = Nop{}
	if err := a.AnnounceRelease(context.Background(), Announcement{Channel: "x"}); err != nil {
		t.Errorf("Nop error = %v", err)
	}
}

func TestLogAnnouncer(t *testing.T) {
	a := NewLogAnnouncer(nil)
	if err := a.AnnounceRelease(context.Background(), Announcement{Channel: "x", Message: "m"}); err != nil {
		t.Errorf("LogAnnouncer error = %v", err)
	}
}
