package issuestorage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Encode serializes issue as a YAML mapping with fields in persisted order.
// Nil label and comment slices are written as empty sequences.
func Encode(issue *Issue) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	field := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, stringNode(key), value)
	}
	field("id", stringNode(issue.ID))
	field("title", stringNode(issue.Title))
	field("content", stringNode(issue.Content))
	field("labels", sequenceNode(issue.Labels))
	field("state", stringNode(string(issue.State)))
	field("comments", sequenceNode(issue.Comments))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding issue %s: %w", issue.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding issue %s: %w", issue.ID, err)
	}
	return buf.Bytes(), nil
}

// stringNode returns a scalar that decodes back to exactly s.
//
// Multi-line values are normally written as literal blocks, which cannot
// start with a line break or with whitespace followed by one; those are
// double-quoted instead. Invalid UTF-8 is left untagged so the encoder
// falls back to !!binary.
func stringNode(s string) *yaml.Node {
	if !utf8.ValidString(s) {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	}
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") && strings.ContainsRune(" \t\r\n", rune(s[0])) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func sequenceNode(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if len(values) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, v := range values {
		n.Content = append(n.Content, stringNode(v))
	}
	return n
}

// Decode parses a record produced by Encode. Unknown fields, an unknown
// state, a malformed ID or empty input are all reported as ErrCorrupt.
func Decode(data []byte) (*Issue, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var issue Issue
	if err := dec.Decode(&issue); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty record", ErrCorrupt)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := issue.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(issue.Labels) == 0 {
		issue.Labels = nil
	}
	if len(issue.Comments) == 0 {
		issue.Comments = nil
	}
	return &issue, nil
}
