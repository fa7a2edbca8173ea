package sitegen

import (
	"encoding/base64"
	"testing"
)

func TestDecodeAttachmentDataURL(t *testing.T) {
	raw := "hello,world\n"
	dataURL := "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte(raw))

	decoded, err := DecodeAttachment(dataURL)
	if err != nil {
		t.Fatalf("DecodeAttachment returned error: %v", err)
	}
	if decoded != raw {
		t.Fatalf("expected %q, got %q", raw, decoded)
	}
}

func TestDecodeAttachmentPassthrough(t *testing.T) {
	decoded, err := DecodeAttachment("plain content")
	if err != nil {
		t.Fatalf("DecodeAttachment returned error: %v", err)
	}
	if decoded != "plain content" {
		t.Fatalf("expected passthrough, got %q", decoded)
	}
}

func TestDecodeAttachmentInvalidBase64(t *testing.T) {
	if _, err := DecodeAttachment("data:text/plain;base64,!!!not-base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64 payload")
	}
}
