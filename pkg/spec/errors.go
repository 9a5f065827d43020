package spec

import "fmt"

// InvalidConfigError reports a blank or missing mandatory field. It is fatal:
// the run aborts before the offending template generates any file.
type InvalidConfigError struct {
	Template    string
	Replacement string
	Reason      string
}

func (e *InvalidConfigError) Error() string {
	switch {
	case e.Template != "" && e.Replacement != "":
		return fmt.Sprintf("invalid configuration in template %q, replacement %q: %s", e.Template, e.Replacement, e.Reason)
	case e.Template != "":
		return fmt.Sprintf("invalid configuration in template %q: %s", e.Template, e.Reason)
	default:
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
}

// DuplicateNameError reports a second registration under an already-used
// name. Kind is "template" or "replacement".
type DuplicateNameError struct {
	Kind     string
	Name     string
	Template string
}

func (e *DuplicateNameError) Error() string {
	if e.Kind == "replacement" {
		return fmt.Sprintf("duplicate replacement name %q in template %q", e.Name, e.Template)
	}
	return fmt.Sprintf("duplicate template name %q", e.Name)
}

// ResourceNotFoundError reports a declared template file that does not exist
// or cannot be read. It surfaces at execution time, once the resources root
// is known.
type ResourceNotFoundError struct {
	Template string
	Path     string
	Err      error
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("template %q: source file %s not readable: %v", e.Template, e.Path, e.Err)
}

func (e *ResourceNotFoundError) Unwrap() error { return e.Err }
