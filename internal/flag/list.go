package flag

import (
	"fmt"
	"strings"

	"github.com/posener/complete"

	"github.com/Steem-Tools/steemgo/protocol"
)

// StringList is a flag.Value for a comma separated list of strings.
type StringList []string

func (l StringList) String() string {
	return strings.Join(l, ",")
}

// Set appends a comma separated list of strings. Empty elements are
// ignored. The first call to Set replaces any default values.
func (l *StringList) Set(s string) error {
	if !listSet[l] {
		*l = nil
		listSet[l] = true
	}
	for _, str := range strings.Split(s, ",") {
		str = strings.TrimSpace(str)
		if len(str) == 0 {
			continue
		}
		*l = append(*l, str)
	}
	return nil
}

var listSet = make(map[*StringList]bool)

// ValidateOpNames returns an error if any name is not a known operation.
func ValidateOpNames(names []string) error {
	for _, name := range names {
		if _, err := protocol.ParseOpType(name); err != nil {
			return fmt.Errorf("-relayops: %w", err)
		}
	}
	return nil
}

var predictOpNames = complete.PredictFunc(func(a complete.Args) []string {
	prefix := a.Last
	if i := strings.LastIndexByte(prefix, ','); i >= 0 {
		prefix = prefix[:i+1]
	} else {
		prefix = ""
	}
	names := protocol.OpNames()
	for i := range names {
		names[i] = prefix + names[i]
	}
	return names
})
