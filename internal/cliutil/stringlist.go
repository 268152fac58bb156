package cliutil

import "strings"

// StringList is a flag.Value that accumulates repeated -flag occurrences, e.g.
// `-s alpha -s beta` for the "-s" identifier flag.
type StringList []string

func (l *StringList) String() string { return strings.Join(*l, ",") }

func (l *StringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
