// Package entryfile reads and writes cache entries as YAML documents.
package entryfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/confcache/internal/domain"
)

// Codec implements domain.EntryCodec.
type Codec struct{}

var _ domain.EntryCodec = Codec{}

// Decode parses one YAML document. Unknown fields are rejected.
func (Codec) Decode(data []byte) (*domain.CacheEntry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var entry domain.CacheEntry
	if err := dec.Decode(&entry); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", domain.ErrCorruptEntry)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptEntry, err)
	}
	return &entry, nil
}

// Encode renders entry as YAML with two-space indentation.
func (Codec) Encode(entry *domain.CacheEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(entry); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return buf.Bytes(), nil
}
