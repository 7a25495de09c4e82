package token

import (
	"strings"
	"testing"

	"github.com/bmizerany/assert"
)

func TestEncodeDecode(t *testing.T) {
	s, err := NewSigner("")
	assert.Equal(t, nil, err)

	p := Payload{Kind: "train", Nonce: "0192a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", UserID: "123456789012345678"}
	id, err := s.Encode(p)
	assert.Equal(t, nil, err)
	assert.T(t, len(id) <= 100, len(id))
	assert.Equal(t, "train", Kind(id))

	back, err := s.Decode(id)
	assert.Equal(t, nil, err)
	assert.Equal(t, p, back)
}

func TestDecodeRejectsTampering(t *testing.T) {
	s, _ := NewSigner("secret")
	id, _ := s.Encode(Payload{Kind: "train", Nonce: "n1", UserID: "111"})

	forged := strings.Replace(id, ":111:", ":222:", 1)
	_, err := s.Decode(forged)
	assert.Equal(t, ErrBadSignature, err)

	_, err = s.Decode("train:n1:111")
	assert.Equal(t, ErrBadSignature, err)

	_, err = s.Decode("train:n1:111:%%%")
	assert.Equal(t, ErrBadSignature, err)

	other, _ := NewSigner("other-secret")
	_, err = other.Decode(id)
	assert.Equal(t, ErrBadSignature, err)
}

func TestEncodeRejectsSeparator(t *testing.T) {
	s, _ := NewSigner("secret")
	_, err := s.Encode(Payload{Kind: "train", Nonce: "a:b", UserID: "1"})
	assert.NotEqual(t, nil, err)
	_, err = s.Encode(Payload{Kind: "train", Nonce: "n", UserID: ""})
	assert.NotEqual(t, nil, err)
}
