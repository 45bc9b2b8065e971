package commonscli

import (
	"strings"

	"github.com/wasmglue/wasmglue/guest/objects"
)

// Parse failure tags.
const (
	TagParseException              = "ParseException"
	TagMissingArgumentException    = "MissingArgumentException"
	TagMissingOptionException      = "MissingOptionException"
	TagUnrecognizedOptionException = "UnrecognizedOptionException"
	TagAmbiguousOptionException    = "AmbiguousOptionException"
	TagAlreadySelectedException    = "AlreadySelectedException"
)

// MissingArgumentError is the payload of a missing option value.
type MissingArgumentError struct{ Option *Option }

// MissingOptionError lists required options that were not given.
type MissingOptionError struct{ Missing []string }

type UnrecognizedOptionError struct{ Option string }

type AmbiguousOptionError struct {
	Option   string
	Matching []string
}

type AlreadySelectedError struct {
	Group  *OptionGroup
	Option *Option
}

func missingArgument(o *Option) error {
	return objects.Raise(TagMissingArgumentException, "Missing argument for option: %s", o.Key()).
		WithPayload(MissingArgumentClass, &MissingArgumentError{Option: o})
}

func missingOptions(required []any) error {
	names := requiredNames(required)
	var sb strings.Builder
	sb.WriteString("Missing required option")
	if len(names) > 1 {
		sb.WriteString("s")
	}
	sb.WriteString(": ")
	sb.WriteString(strings.Join(names, ", "))
	return objects.Raise(TagMissingOptionException, "%s", sb.String()).
		WithPayload(MissingOptionClass, &MissingOptionError{Missing: names})
}

func unrecognized(message, option string) error {
	return objects.Raise(TagUnrecognizedOptionException, "%s", message).
		WithPayload(UnrecognizedOptionClass, &UnrecognizedOptionError{Option: option})
}

func ambiguous(option string, matching []string) error {
	quoted := make([]string, len(matching))
	for i, m := range matching {
		quoted[i] = "'" + m + "'"
	}
	return objects.Raise(TagAmbiguousOptionException, "Ambiguous option: '%s'  (could be: %s)", option, strings.Join(quoted, ", ")).
		WithPayload(AmbiguousOptionClass, &AmbiguousOptionError{Option: option, Matching: matching})
}

func alreadySelected(g *OptionGroup, o *Option) error {
	return objects.Raise(TagAlreadySelectedException,
		"The option '%s' was specified but an option from this group has already been selected: '%s'", o.Key(), *g.selected).
		WithPayload(AlreadySelectedClass, &AlreadySelectedError{Group: g, Option: o})
}
