package bpe

import (
	"errors"
	"testing"
)

func TestDecodeUnknownToken(t *testing.T) {
	m := referenceModel(t)
	for _, id := range []int{259, 1000, -1} {
		if _, err := m.Decode([]int{id}); !errors.Is(err, ErrUnknownToken) {
			t.Errorf("Decode(%d): got %v, want ErrUnknownToken", id, err)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	m := referenceModel(t)
	got, err := m.Decode(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	m := referenceModel(t)

	testCases := []struct {
		name string
		ids  []int
		want string
	}{
		{"lone continuation", []int{0xff}, "�"},
		{"two bad bytes", []int{0xff, 0xfe}, "��"},
		{"bad byte between text", []int{97, 0xff, 98}, "a�b"},
		{"truncated multibyte", []int{0xe6}, "�"},
	}
	for _, tc := range testCases {
		got, err := m.Decode(tc.ids)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDecodeSplitMultibyte(t *testing.T) {
	// A multibyte rune split across two byte tokens reassembles cleanly.
	m := referenceModel(t)
	got, err := m.Decode([]int{0xc3, 0xa9})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "é" {
		t.Errorf("got %q, want %q", got, "é")
	}
}

func TestReplaceInvalidUTF8(t *testing.T) {
	testCases := []struct {
		in   []byte
		want string
	}{
		{[]byte("plain"), "plain"},
		{[]byte{0x80}, "�"},
		{[]byte{0xe6, 0x97}, "��"},
		{[]byte("ok\xffok"), "ok�ok"},
		{nil, ""},
	}
	for _, tc := range testCases {
		if got := replaceInvalidUTF8(tc.in); got != tc.want {
			t.Errorf("replaceInvalidUTF8(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
