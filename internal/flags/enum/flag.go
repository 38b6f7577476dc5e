// Package enum provides a pflag.Value restricted to a fixed set of options.
package enum

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// Flag is a string flag that only accepts one of its options. The first
// option is the default.
type Flag struct {
	options []string
	value   string
}

var _ pflag.Value = (*Flag)(nil)

// New creates a Flag. It panics without options.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("enum flag needs at least one option")
	}
	return &Flag{options: options, value: options[0]}
}

func (f *Flag) String() string {
	return f.value
}

// Set accepts value only if it is one of the options.
func (f *Flag) Set(value string) error {
	if !slices.Contains(f.options, value) {
		return fmt.Errorf("must be one of %s", strings.Join(f.options, ", "))
	}
	f.value = value
	return nil
}

func (f *Flag) Type() string {
	return "enum"
}

// Var registers an enum flag on flagset. The first option is the default.
func Var(flagset *pflag.FlagSet, name string, options []string, usage string) {
	flagset.Var(New(options...), name, fmt.Sprintf("%s (must be one of %v)", usage, options))
}

// Get returns the value of the enum flag called name.
func Get(flagset *pflag.FlagSet, name string) (string, error) {
	flag := flagset.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag %q not found", name)
	}
	f, ok := flag.Value.(*Flag)
	if !ok {
		return "", fmt.Errorf("flag %q is not an enum flag", name)
	}
	return f.String(), nil
}
