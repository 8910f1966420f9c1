package builder

import "github.com/matzehuels/reportengine/pkg/rerrors"

// resourceError wraps err as a rerrors.ResourceError, attaching the
// required-by chain that led to name.
func resourceError(name string, err error, chain []string) error {
	return rerrors.Wrap(rerrors.ResourceError, err, "could not process the resource %q", name).WithChain(chain...)
}

// notUnderstood reports that name is both present in the input and was
// given extra arguments - only valid when name is a provider.
func notUnderstood(name string, extraArgs []string, chain []string) error {
	return rerrors.New(rerrors.ResourceNotUnderstood,
		"the resource %q is already present in the input, but extra arguments were given: %v", name, extraArgs).
		WithChain(chain...)
}
