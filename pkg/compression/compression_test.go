package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestNegotiate(t *testing.T) {
	cases := []struct {
		accept string
		want   Encoding
	}{
		{"", EncodingIdentity},
		{"gzip", EncodingGzip},
		{"gzip, deflate", EncodingGzip},
		{"br, gzip", EncodingBrotli},
		{"gzip;q=1.0, br", EncodingBrotli},
		{"br;q=0, gzip", EncodingGzip},
		{"identity", EncodingIdentity},
		{"zstd", EncodingIdentity},
	}
	for _, c := range cases {
		if got := Negotiate(c.accept); got != c.want {
			t.Fatalf("Negotiate(%q) = %v, want %v", c.accept, got, c.want)
		}
	}
}

func TestCompressGzipRoundTrip(t *testing.T) {
	payload := []byte(`{"status":"ok","members":[1,2,3]}`)
	out, err := Compress(payload, EncodingGzip)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestCompressBrotliRoundTrip(t *testing.T) {
	payload := []byte(`{"status":"ok"}`)
	out, err := Compress(payload, EncodingBrotli)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := io.ReadAll(brotli.NewReader(bytes.NewReader(out)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestCompressIdentityPassthrough(t *testing.T) {
	payload := []byte("raw")
	out, err := Compress(payload, EncodingIdentity)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("identity changed data")
	}
}
