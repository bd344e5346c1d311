package domain_test

import (
	"testing"

	"bubbleview/internal/domain"
)

func TestParseDisplayURL(t *testing.T) {
	testCases := []struct {
		name       string
		raw        string
		wantHost   string
		wantOrigin string
	}{
		{name: "strips www", raw: "https://www.example.com/a?b=c", wantHost: "example.com", wantOrigin: "https://www.example.com"},
		{name: "keeps subdomain", raw: "http://docs.example.org", wantHost: "docs.example.org", wantOrigin: "http://docs.example.org"},
		{name: "keeps port in origin only", raw: "https://example.com:8443/x", wantHost: "example.com", wantOrigin: "https://example.com:8443"},
		{name: "not a url", raw: "not a url", wantHost: "not a url", wantOrigin: ""},
		{name: "bare host", raw: "example.com/path", wantHost: "example.com/path", wantOrigin: ""},
		{name: "empty", raw: "", wantHost: "", wantOrigin: ""},
		{name: "bad escape", raw: "http://%zz", wantHost: "http://%zz", wantOrigin: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			host, origin := domain.ParseDisplayURL(tc.raw)

			// Assert
			if host != tc.wantHost {
				t.Errorf("hostname: got %q, want %q", host, tc.wantHost)
			}
			if origin != tc.wantOrigin {
				t.Errorf("origin: got %q, want %q", origin, tc.wantOrigin)
			}
		})
	}
}

func TestAttachment_DisplayName_LinkFallsBackToHostname(t *testing.T) {
	a := domain.Attachment{ID: "l1", Kind: domain.KindLink, SourceURL: "https://www.github.com/org/repo"}

	if got := a.DisplayName(); got != "github.com" {
		t.Errorf("DisplayName() = %q, want github.com", got)
	}
}

func TestAttachment_DisplayName_PrefersName(t *testing.T) {
	a := domain.Attachment{ID: "f1", Kind: domain.KindFile, Name: "notes.txt", DownloadURL: "https://cdn/x"}

	if got := a.DisplayName(); got != "notes.txt" {
		t.Errorf("DisplayName() = %q, want notes.txt", got)
	}
}

func TestAttachment_MediaURL(t *testing.T) {
	testCases := []struct {
		name string
		att  domain.Attachment
		want string
	}{
		{"file prefers download", domain.Attachment{Kind: domain.KindFile, SourceURL: "s", DownloadURL: "d"}, "d"},
		{"file falls back to source", domain.Attachment{Kind: domain.KindFile, SourceURL: "s"}, "s"},
		{"link uses source", domain.Attachment{Kind: domain.KindLink, SourceURL: "s", DownloadURL: "d"}, "s"},
		{"file with nothing", domain.Attachment{Kind: domain.KindFile}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.att.MediaURL(); got != tc.want {
				t.Errorf("MediaURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseAttachmentKind(t *testing.T) {
	k, err := domain.ParseAttachmentKind("system_message")
	if err != nil || k != domain.KindSystemMessage {
		t.Errorf("got (%q, %v), want SYSTEM_MESSAGE", k, err)
	}

	if _, err := domain.ParseAttachmentKind("VIDEO"); err != domain.ErrUnknownKind {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}

func TestAttachment_Interactive(t *testing.T) {
	for _, k := range []domain.AttachmentKind{domain.KindFile, domain.KindLink} {
		if !(domain.Attachment{Kind: k}).Interactive() {
			t.Errorf("%s should be interactive", k)
		}
	}
	for _, k := range []domain.AttachmentKind{domain.KindUser, domain.KindTimestamp, domain.KindReference, domain.KindSystemMessage} {
		if (domain.Attachment{Kind: k}).Interactive() {
			t.Errorf("%s should not be interactive", k)
		}
	}
}
