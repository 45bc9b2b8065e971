// Package cli is the host API of the guest commons_cli module: option
// declarations, command line parsers and help rendering. Every type is a
// proxy over a guest object reached through a foreign.Env.
package cli

import (
	"github.com/wasmglue/wasmglue/foreign"
)

// Module is the guest module exporting the command line classes.
const Module = "commons_cli"

var (
	optString  = foreign.String.OrNull()
	optRef     = foreign.Ref.OrNull()
	stringList = foreign.ListOf(foreign.String)
	optStrings = foreign.ListOf(foreign.String).OrNull()
	refs       = foreign.ListOf(foreign.Ref)
)

// Option operations.
var (
	optionBuilder = foreign.NewOp("builder", foreign.Ref, optString)

	optionOpt               = foreign.NewOp("get_opt", optString)
	optionLongOpt           = foreign.NewOp("get_long_opt", optString)
	optionKey               = foreign.NewOp("get_key", foreign.String)
	optionDescription       = foreign.NewOp("get_description", optString)
	optionArgName           = foreign.NewOp("get_arg_name", optString)
	optionArgs              = foreign.NewOp("get_args", foreign.Int32)
	optionHasArg            = foreign.NewOp("has_arg", foreign.Bool)
	optionHasArgs           = foreign.NewOp("has_args", foreign.Bool)
	optionHasLongOpt        = foreign.NewOp("has_long_opt", foreign.Bool)
	optionHasOptionalArg    = foreign.NewOp("has_optional_arg", foreign.Bool)
	optionHasValueSeparator = foreign.NewOp("has_value_separator", foreign.Bool)
	optionIsRequired        = foreign.NewOp("is_required", foreign.Bool)
	optionValues            = foreign.NewOp("get_values", optStrings)
	optionValue             = foreign.NewOp("get_value", optString)
	optionValueSeparator    = foreign.NewOp("get_value_separator", optString)
	optionToString          = foreign.NewOp("to_string", foreign.String)

	optionSetDescription    = foreign.NewOp("set_description", foreign.Void, optString)
	optionSetArgName        = foreign.NewOp("set_arg_name", foreign.Void, optString)
	optionSetArgs           = foreign.NewOp("set_args", foreign.Void, foreign.Int32)
	optionSetOptionalArg    = foreign.NewOp("set_optional_arg", foreign.Void, foreign.Bool)
	optionSetRequired       = foreign.NewOp("set_required", foreign.Void, foreign.Bool)
	optionSetValueSeparator = foreign.NewOp("set_value_separator", foreign.Void, optString)

	OptionClass = &foreign.Class{
		Module: Module,
		Name:   "Option",
		Ctor:   foreign.NewOp("new", foreign.Ref, optString, optString, foreign.Bool, optString),
		Ops: []*foreign.Op{
			optionOpt, optionLongOpt, optionKey, optionDescription, optionArgName, optionArgs,
			optionHasArg, optionHasArgs, optionHasLongOpt, optionHasOptionalArg,
			optionHasValueSeparator, optionIsRequired, optionValues, optionValue,
			optionValueSeparator, optionToString,
			optionSetDescription, optionSetArgName, optionSetArgs, optionSetOptionalArg,
			optionSetRequired, optionSetValueSeparator,
		},
		Static: []*foreign.Op{optionBuilder},
	}

	builderLongOpt        = foreign.NewOp("long_opt", foreign.Ref, optString)
	builderDesc           = foreign.NewOp("desc", foreign.Ref, optString)
	builderArgName        = foreign.NewOp("arg_name", foreign.Ref, optString)
	builderHasArg         = foreign.NewOp("has_arg", foreign.Ref, foreign.Bool)
	builderHasArgs        = foreign.NewOp("has_args", foreign.Ref)
	builderNumberOfArgs   = foreign.NewOp("number_of_args", foreign.Ref, foreign.Int32)
	builderOptionalArg    = foreign.NewOp("optional_arg", foreign.Ref, foreign.Bool)
	builderRequired       = foreign.NewOp("required", foreign.Ref, foreign.Bool)
	builderValueSeparator = foreign.NewOp("value_separator", foreign.Ref, optString)
	builderBuild          = foreign.NewOp("build", foreign.Ref)

	OptionBuilderClass = &foreign.Class{
		Module: Module,
		Name:   "OptionBuilder",
		Ops: []*foreign.Op{
			builderLongOpt, builderDesc, builderArgName, builderHasArg, builderHasArgs,
			builderNumberOfArgs, builderOptionalArg, builderRequired, builderValueSeparator,
			builderBuild,
		},
	}
)

// Options and OptionGroup operations.
var (
	optionsAddOption      = foreign.NewOp("add_option", foreign.Ref, foreign.Ref)
	optionsAddOptionGroup = foreign.NewOp("add_option_group", foreign.Ref, foreign.Ref)
	optionsGetOption      = foreign.NewOp("get_option", optRef, foreign.String)
	optionsGetOptions     = foreign.NewOp("get_options", refs)
	optionsHasOption      = foreign.NewOp("has_option", foreign.Bool, foreign.String)
	optionsHasLongOption  = foreign.NewOp("has_long_option", foreign.Bool, foreign.String)
	optionsHasShortOption = foreign.NewOp("has_short_option", foreign.Bool, foreign.String)
	optionsMatching       = foreign.NewOp("get_matching_options", stringList, foreign.String)
	optionsRequired       = foreign.NewOp("get_required_options", stringList)
	optionsGroups         = foreign.NewOp("get_option_groups", refs)
	optionsGroup          = foreign.NewOp("get_option_group", optRef, foreign.Ref)
	optionsToString       = foreign.NewOp("to_string", foreign.String)

	OptionsClass = &foreign.Class{
		Module: Module,
		Name:   "Options",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops: []*foreign.Op{
			optionsAddOption, optionsAddOptionGroup, optionsGetOption, optionsGetOptions,
			optionsHasOption, optionsHasLongOption, optionsHasShortOption, optionsMatching,
			optionsRequired, optionsGroups, optionsGroup, optionsToString,
		},
	}

	groupAddOption   = foreign.NewOp("add_option", foreign.Ref, foreign.Ref)
	groupOptions     = foreign.NewOp("get_options", refs)
	groupNames       = foreign.NewOp("get_names", stringList)
	groupSelected    = foreign.NewOp("get_selected", optString)
	groupSetSelected = foreign.NewOp("set_selected", foreign.Void, optRef)
	groupIsRequired  = foreign.NewOp("is_required", foreign.Bool)
	groupSetRequired = foreign.NewOp("set_required", foreign.Void, foreign.Bool)
	groupToString    = foreign.NewOp("to_string", foreign.String)

	OptionGroupClass = &foreign.Class{
		Module: Module,
		Name:   "OptionGroup",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops: []*foreign.Op{
			groupAddOption, groupOptions, groupNames, groupSelected, groupSetSelected,
			groupIsRequired, groupSetRequired, groupToString,
		},
	}
)

// CommandLine operations.
var (
	cmdArgs             = foreign.NewOp("get_args", stringList)
	cmdOptions          = foreign.NewOp("get_options", refs)
	cmdIterator         = foreign.NewOp("iterator", foreign.Ref)
	cmdHasOption        = foreign.NewOp("has_option", foreign.Bool, foreign.String)
	cmdOptionValue      = foreign.NewOp("get_option_value", optString, foreign.String)
	cmdOptionValues     = foreign.NewOp("get_option_values", optStrings, foreign.String)
	cmdOptionProperties = foreign.NewOp("get_option_properties", foreign.MapOf(foreign.String), foreign.String)

	CommandLineClass = &foreign.Class{
		Module: Module,
		Name:   "CommandLine",
		Ops: []*foreign.Op{
			cmdArgs, cmdOptions, cmdIterator, cmdHasOption, cmdOptionValue, cmdOptionValues,
			cmdOptionProperties,
		},
	}

	iteratorHasNext = foreign.NewOp("has_next", foreign.Bool)
	iteratorNext    = foreign.NewOp("next", foreign.Ref)

	OptionIteratorClass = &foreign.Class{
		Module: Module,
		Name:   "OptionIterator",
		Ops:    []*foreign.Op{iteratorHasNext, iteratorNext},
	}
)

// Parser operations. Every parser class answers the same parse operation.
var (
	parserParse = foreign.NewOp("parse", foreign.Ref,
		foreign.Ref, stringList, foreign.MapOf(foreign.String).OrNull(), foreign.Bool.OrNull())

	DefaultParserClass = &foreign.Class{
		Module: Module,
		Name:   "DefaultParser",
		Ctor:   foreign.NewOp("new", foreign.Ref, foreign.Bool.OrNull()),
		Ops:    []*foreign.Op{parserParse},
	}
	GnuParserClass = &foreign.Class{
		Module: Module,
		Name:   "GnuParser",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops:    []*foreign.Op{parserParse},
	}
	PosixParserClass = &foreign.Class{
		Module: Module,
		Name:   "PosixParser",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops:    []*foreign.Op{parserParse},
	}
	BasicParserClass = &foreign.Class{
		Module: Module,
		Name:   "BasicParser",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops:    []*foreign.Op{parserParse},
	}
)

// HelpFormatter operations.
var (
	helpRenderUsage       = foreign.NewOp("render_usage", foreign.String, foreign.Int32, foreign.String, foreign.Ref)
	helpRenderOptions     = foreign.NewOp("render_options", foreign.String, foreign.Int32, foreign.Ref, foreign.Int32, foreign.Int32)
	helpRenderWrappedText = foreign.NewOp("render_wrapped_text", foreign.String, foreign.Int32, foreign.Int32, foreign.String)
	helpRenderHelp        = foreign.NewOp("render_help", foreign.String,
		foreign.Int32, foreign.String, optString, foreign.Ref, optString, foreign.Bool)

	helpIntFields    = fieldOps("width", "left_padding", "desc_padding")
	helpStringFields = fieldOps("syntax_prefix", "new_line", "opt_prefix", "long_opt_prefix", "arg_name", "long_opt_separator")

	HelpFormatterClass = &foreign.Class{
		Module: Module,
		Name:   "HelpFormatter",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops: append(append([]*foreign.Op{
			helpRenderUsage, helpRenderOptions, helpRenderWrappedText, helpRenderHelp,
		}, helpIntFields.ops(foreign.Int32)...), helpStringFields.ops(foreign.String)...),
	}
)

// field is a get_/set_ operation pair of one formatter setting.
type field struct{ get, set *foreign.Op }

type fields map[string]*field

func fieldOps(names ...string) fields {
	fs := make(fields, len(names))
	for _, n := range names {
		fs[n] = &field{}
	}
	return fs
}

// ops declares the pairs with value shape s.
func (fs fields) ops(s foreign.Shape) []*foreign.Op {
	out := make([]*foreign.Op, 0, 2*len(fs))
	for name, f := range fs {
		f.get = foreign.NewOp("get_"+name, s)
		f.set = foreign.NewOp("set_"+name, foreign.Void, s)
		out = append(out, f.get, f.set)
	}
	return out
}

// Parse failure payload operations.
var (
	excOption          = foreign.NewOp("get_option", foreign.Ref)
	excOptionName      = foreign.NewOp("get_option", foreign.String)
	excMissingOptions  = foreign.NewOp("get_missing_options", stringList)
	excMatchingOptions = foreign.NewOp("get_matching_options", stringList)
	excOptionGroup     = foreign.NewOp("get_option_group", foreign.Ref)

	MissingArgumentClass = &foreign.Class{
		Module: Module, Name: TagMissingArgument, Ops: []*foreign.Op{excOption},
	}
	MissingOptionClass = &foreign.Class{
		Module: Module, Name: TagMissingOption, Ops: []*foreign.Op{excMissingOptions},
	}
	UnrecognizedOptionClass = &foreign.Class{
		Module: Module, Name: TagUnrecognizedOption, Ops: []*foreign.Op{excOptionName},
	}
	AmbiguousOptionClass = &foreign.Class{
		Module: Module, Name: TagAmbiguousOption, Ops: []*foreign.Op{excOptionName, excMatchingOptions},
	}
	AlreadySelectedClass = &foreign.Class{
		Module: Module, Name: TagAlreadySelected, Ops: []*foreign.Op{excOption, excOptionGroup},
	}
)

// Classes lists every class of the module, for foreign.NewEnv.
var Classes = []*foreign.Class{
	OptionClass, OptionBuilderClass, OptionsClass, OptionGroupClass, CommandLineClass,
	OptionIteratorClass, DefaultParserClass, GnuParserClass, PosixParserClass, BasicParserClass,
	HelpFormatterClass, MissingArgumentClass, MissingOptionClass, UnrecognizedOptionClass,
	AmbiguousOptionClass, AlreadySelectedClass,
}
