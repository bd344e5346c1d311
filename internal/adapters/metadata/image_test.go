package metadata_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"bubbleview/internal/adapters/metadata"
)

func encoded(t *testing.T, encode func(*bytes.Buffer, image.Image) error, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestProbeImage(t *testing.T) {
	testCases := []struct {
		name       string
		data       []byte
		wantFormat string
		wantW      int
		wantH      int
	}{
		{
			name:       "png",
			data:       encoded(t, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }, 32, 16),
			wantFormat: "png", wantW: 32, wantH: 16,
		},
		{
			name:       "bmp",
			data:       encoded(t, func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }, 7, 9),
			wantFormat: "bmp", wantW: 7, wantH: 9,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := metadata.ProbeImage(bytes.NewReader(tc.data))

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if size.Format != tc.wantFormat || size.Width != tc.wantW || size.Height != tc.wantH {
				t.Errorf("got %+v", size)
			}
		})
	}
}

func TestProbeImage_NotAnImage(t *testing.T) {
	if _, err := metadata.ProbeImage(strings.NewReader("hello")); err == nil {
		t.Error("expected error for non-image input")
	}
}

func TestProber_Probe_SendsRangeRequest(t *testing.T) {
	// Arrange
	data := encoded(t, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }, 120, 80)
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.Write(data)
	}))
	defer srv.Close()

	// Act
	w, h, err := metadata.NewProber(time.Second).Probe(context.Background(), srv.URL+"/a.png")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 120 || h != 80 {
		t.Errorf("got %dx%d, want 120x80", w, h)
	}
	if !strings.HasPrefix(gotRange, "bytes=0-") {
		t.Errorf("Range: got %q", gotRange)
	}
}
