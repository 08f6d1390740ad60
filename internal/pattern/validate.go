package pattern

import (
	"errors"
	"fmt"
	"pmlang/internal/ast"
	"strings"
)

var ErrRegistration = errors.New("pattern registration error")

// RegistrationError reports a malformed pattern, guard or handler. It is
// raised once, when a table is built, never while dispatching.
type RegistrationError struct {
	Rule   int    // index in the table, -1 when not known
	Path   string // position of the offending element, e.g. "[2][0]"
	Reason string
}

func (e *RegistrationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid pattern")
	if e.Rule >= 0 {
		sb.WriteString(fmt.Sprintf(" in rule %d", e.Rule))
	}
	if e.Path != "" {
		sb.WriteString(" at " + e.Path)
	}
	sb.WriteString(": " + e.Reason)
	return sb.String()
}

func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistration
}

func registrationError(format string, args ...any) *RegistrationError {
	return &RegistrationError{Rule: -1, Reason: fmt.Sprintf(format, args...)}
}

// validateShape checks element kinds and placeholder positions and returns
// the labels the shape binds.
func validateShape(shape ast.Tuple) ([]string, error) {
	if shape == nil {
		return nil, registrationError("pattern must be a tuple")
	}
	seen := map[string]bool{}
	var labels []string
	if err := walkShape(shape, "", seen, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

func walkShape(t ast.Tuple, path string, seen map[string]bool, labels *[]string) error {
	for i, elem := range t {
		at := fmt.Sprintf("%s[%d]", path, i)

		var label string
		switch e := elem.(type) {
		case nil:
			return &RegistrationError{Rule: -1, Path: at, Reason: "nil element"}
		case ast.Str, ast.Int:
			continue
		case ast.Tuple:
			if err := walkShape(e, at, seen, labels); err != nil {
				return err
			}
			continue
		case Var:
			label = e.Label
		case Wildcard:
			if i != 0 {
				return &RegistrationError{Rule: -1, Path: at, Reason: "tag wildcard is only allowed at position 0"}
			}
			label = e.Label
		case Rest:
			if i == 0 {
				return &RegistrationError{Rule: -1, Path: at, Reason: "rest capture is not allowed at position 0"}
			}
			if i != len(t)-1 {
				return &RegistrationError{Rule: -1, Path: at, Reason: "rest capture must be the last element"}
			}
			label = e.Label
		default:
			return &RegistrationError{Rule: -1, Path: at, Reason: fmt.Sprintf("unsupported element %s of kind %s", elem.String(), elem.Kind())}
		}

		if label == "" {
			return &RegistrationError{Rule: -1, Path: at, Reason: "placeholder without a label"}
		}
		if seen[label] {
			return &RegistrationError{Rule: -1, Path: at, Reason: fmt.Sprintf("variable %q bound more than once", label)}
		}
		seen[label] = true
		*labels = append(*labels, label)
	}
	return nil
}

// CheckParams verifies that every name a handler declares is bound by the
// pattern it is paired with.
func CheckParams(p *Pattern, who string, params []string) error {
	return checkParams(who, params, p.labels)
}

func checkParams(who string, params, labels []string) error {
	bound := make(map[string]bool, len(labels))
	for _, l := range labels {
		bound[l] = true
	}
	for _, name := range params {
		if !bound[name] {
			return registrationError("%s parameter %q is not bound by the pattern", who, name)
		}
	}
	return nil
}
