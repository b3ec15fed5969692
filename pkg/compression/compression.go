// Package compression handles response content-encoding negotiation for
// the management interface. Only algorithms useful on the BMC's small
// JSON payloads are carried: gzip and brotli.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"strings"

	"github.com/andybalholm/brotli"
)

// Encoding identifies a negotiated content encoding.
type Encoding int

const (
	EncodingIdentity Encoding = iota
	EncodingGzip
	EncodingBrotli
)

// String returns the Content-Encoding token for e.
func (e Encoding) String() string {
	switch e {
	case EncodingGzip:
		return "gzip"
	case EncodingBrotli:
		return "br"
	default:
		return "identity"
	}
}

// Negotiate picks the preferred supported encoding from an
// Accept-Encoding header value. Brotli wins over gzip when the client
// accepts both; an empty or unrecognized header yields identity.
// Quality values are honored only as "q=0" rejections.
func Negotiate(acceptEncoding string) Encoding {
	gzipOK := false
	brOK := false
	for _, part := range strings.Split(acceptEncoding, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		token := strings.ToLower(strings.TrimSpace(fields[0]))
		rejected := false
		for _, p := range fields[1:] {
			if strings.ReplaceAll(strings.TrimSpace(p), " ", "") == "q=0" {
				rejected = true
			}
		}
		if rejected {
			continue
		}
		switch token {
		case "br":
			brOK = true
		case "gzip", "x-gzip":
			gzipOK = true
		}
	}
	if brOK {
		return EncodingBrotli
	}
	if gzipOK {
		return EncodingGzip
	}
	return EncodingIdentity
}

// Compress encodes data with the given encoding. Identity returns data
// unchanged.
func Compress(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil
	case EncodingBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("brotli write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return data, nil
	}
}
