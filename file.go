package fuse

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Source is the raw input of one document: the layout and content
// responses as they were stored by the upstream services.
type Source struct {
	Name    string
	Layout  []byte
	Content []byte
}

func NewSource(name string, layout, content []byte) *Source {
	return &Source{
		Name:    name,
		Layout:  layout,
		Content: content,
	}
}

// Checksum identifies the fused output of this source under the given
// settings. Fusion is deterministic, so equal checksums mean equal output.
func (s *Source) Checksum(settings string) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(s.Name), []byte(settings), s.Layout, s.Content} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
