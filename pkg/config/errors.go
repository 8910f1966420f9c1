package config

import (
	"fmt"

	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// TypeError is raised when a raw input value, or a dependency's resolved
// value, does not match the type a handler declared for it.
type TypeError struct {
	Key  string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("config: %q: expected %s, got %T (%v)", e.Key, e.Want, e.Got, e.Got)
}

// AsRerror converts a TypeError into the shared *rerrors.Error type carrying
// rerrors.BadInputType, for callers surfacing it through the CLI.
func (e *TypeError) AsRerror() *rerrors.Error {
	return rerrors.Wrap(rerrors.BadInputType, e, "%s", e.Error())
}
