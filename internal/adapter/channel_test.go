package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const channelPage = `<html><body>
<div class="tgme_widget_message">
  <div class="tgme_widget_message_text">
    🚀 Head of Community @ Acme Labs<br/>Remote, token package.<br/>
    <a href="https://jobs.acme.io/head-of-community">Apply here</a>
  </div>
  <a class="tgme_widget_message_date" href="https://t.me/chan/1"><time datetime="2026-02-15T12:00:00+00:00"></time></a>
</div>
<div class="tgme_widget_message">
  <div class="tgme_widget_message_text">
    gm, no job here, just chatter with a <a href="https://t.me/somechannel">channel link</a>
  </div>
</div>
<div class="tgme_widget_message">
  <div class="tgme_widget_message_text">
    Content Lead at Beep<br/>
    <a href="https://beep.xyz/careers/content-lead">details</a>
  </div>
</div>
</body></html>`

func TestChannelFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(channelPage))
	}))
	defer srv.Close()

	a := NewChannelAdapter("web3jobs", redirectingClient(srv), discardLogger())

	jobs, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs (chatter message skipped), got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Head of Community" {
		t.Errorf("unexpected title: %q", j.Title)
	}
	if j.Company != "Acme Labs" {
		t.Errorf("unexpected company: %q", j.Company)
	}
	if j.URL != "https://jobs.acme.io/head-of-community" {
		t.Errorf("expected the first outbound link, got %q", j.URL)
	}
	if j.Source != "channel:web3jobs" {
		t.Errorf("unexpected source: %q", j.Source)
	}
	if j.PostedAt == nil || j.PostedAt.Day() != 15 {
		t.Errorf("message timestamp not parsed: %v", j.PostedAt)
	}

	if jobs[1].Title != "Content Lead" || jobs[1].Company != "Beep" {
		t.Errorf("'at' separator not handled: %+v", jobs[1])
	}
}

func TestChannelFetch_EmptyPreviewIsSoftFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="tgme_page">nothing here</div></body></html>`))
	}))
	defer srv.Close()

	a := NewChannelAdapter("emptychan", redirectingClient(srv), discardLogger())

	jobs, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("empty preview should not be an error, got: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
}

func TestParseMessageHeadline(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTitle   string
		wantCompany string
	}{
		{"at-sign separator", "Growth Lead @ Acme", "Growth Lead", "Acme"},
		{"word separator", "Growth Lead at Acme", "Growth Lead", "Acme"},
		{"pipe separator", "Growth Lead | Acme", "Growth Lead", "Acme"},
		{"emoji prefix", "🔥 Growth Lead @ Acme", "Growth Lead", "Acme"},
		{"no separator", "Growth Lead", "Growth Lead", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, company := parseMessageHeadline(tt.input)
			if title != tt.wantTitle || company != tt.wantCompany {
				t.Errorf("parseMessageHeadline(%q) = (%q, %q), want (%q, %q)",
					tt.input, title, company, tt.wantTitle, tt.wantCompany)
			}
		})
	}
}
