package abidecoder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Signature is a parsed function declaration.
type Signature struct {
	Name   string
	Inputs abi.Arguments
}

var (
	functionKeyword  = regexp.MustCompile(`^function\s+`)
	// data locations and address payable are dropped, as in human readable ABIs
	modifierPattern  = regexp.MustCompile(`\s+(calldata|memory|storage|payable|indexed)\b`)
	openSpacing      = regexp.MustCompile(`\s*([(,\[])\s*`)
	closeSpacing     = regexp.MustCompile(`\s+([)\]])`)
	tupleKeyword     = regexp.MustCompile(`([(,])tuple\(`)
	typeAlias        = regexp.MustCompile(`([(,])(uint|int|byte)\b`)
	nameSlot         = regexp.MustCompile(`(?:\s+([A-Za-z_$][A-Za-z0-9_$]*))?([,)])`)
	selectorCharset  = regexp.MustCompile(`^[A-Za-z0-9_$(),\[\]]+$`)
	zeroLengthArray  = regexp.MustCompile(`\[0+\]`)
	sizedTypePattern = regexp.MustCompile(`^(u?int|bytes)([0-9]+)$`)
	fieldName        = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

var aliases = map[string]string{
	"uint": "uint256",
	"int":  "int256",
	"byte": "bytes1",
}

// ParseSignature parses a text signature such as "transfer(address,uint256)".
// It also accepts a leading "function" keyword, parameter names
// ("transfer(address to, uint256 amount)"), data locations, and tuples
// written either as "(uint256,address)" or "tuple(uint256,address)".
func ParseSignature(text string) (*Signature, error) {
	selector, names := normalizeSignature(text)
	if !selectorCharset.MatchString(selector) {
		return nil, fmt.Errorf("cannot parse %q: unexpected characters", text)
	}

	parsed, err := abi.ParseSelector(selector)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q: %w", text, err)
	}

	rest, err := nameArguments(parsed.Inputs, names, true)
	if err != nil || len(rest) != 0 {
		return nil, fmt.Errorf("cannot parse %q: parameter names out of step with types", text)
	}

	inputs := make(abi.Arguments, 0, len(parsed.Inputs))
	for i, input := range parsed.Inputs {
		if err := validateArgument(input); err != nil {
			return nil, fmt.Errorf("cannot parse %q: parameter %d: %w", text, i+1, err)
		}
		typ, err := abi.NewType(input.Type, "", input.Components)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q: parameter %d: %w", text, i+1, err)
		}
		inputs = append(inputs, abi.Argument{Name: input.Name, Type: typ})
	}

	return &Signature{Name: parsed.Name, Inputs: inputs}, nil
}

// normalizeSignature rewrites text into the bare form abi.ParseSelector
// reads and returns the declared parameter names, one per type, in the order
// they appear. Undeclared names are empty.
func normalizeSignature(text string) (string, []string) {
	s := functionKeyword.ReplaceAllString(strings.TrimSpace(text), "")
	s = modifierPattern.ReplaceAllString(s, "")
	s = openSpacing.ReplaceAllString(s, "$1")
	s = closeSpacing.ReplaceAllString(s, "$1")
	for {
		next := tupleKeyword.ReplaceAllString(s, "$1(")
		if next == s {
			break
		}
		s = next
	}
	s = typeAlias.ReplaceAllStringFunc(s, func(m string) string {
		return m[:1] + aliases[m[1:]]
	})

	var names []string
	for _, m := range nameSlot.FindAllStringSubmatchIndex(s, -1) {
		declared := m[2] >= 0
		// "()" closes an empty list and ends no parameter
		if !declared && s[m[4]] == ')' && m[0] > 0 && s[m[0]-1] == '(' {
			continue
		}
		name := ""
		if declared {
			name = s[m[2]:m[3]]
		}
		names = append(names, name)
	}

	return nameSlot.ReplaceAllString(s, "$2"), names
}

// nameArguments hands out names in text order, which is a post-order walk of
// the argument tree. Tuple components keep the placeholder abi.ParseSelector
// gave them unless a usable field name was declared.
func nameArguments(args []abi.ArgumentMarshaling, names []string, topLevel bool) ([]string, error) {
	for i := range args {
		var err error
		if names, err = nameArguments(args[i].Components, names, false); err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, errors.New("missing parameter slot")
		}

		name := names[0]
		names = names[1:]
		if topLevel || fieldName.MatchString(name) {
			args[i].Name = name
		}
	}
	return names, nil
}

func validateArgument(arg abi.ArgumentMarshaling) error {
	base, suffix, _ := strings.Cut(arg.Type, "[")
	if suffix != "" && zeroLengthArray.MatchString("["+suffix) {
		return fmt.Errorf("zero length array %q", arg.Type)
	}

	if base != "tuple" {
		return validateElementary(base)
	}
	if len(arg.Components) == 0 {
		return errors.New("tuple without components")
	}
	for _, c := range arg.Components {
		if err := validateArgument(c); err != nil {
			return err
		}
	}
	return nil
}

// validateElementary rejects sizes Solidity does not have; go-ethereum would
// happily build a uint257.
func validateElementary(t string) error {
	m := sizedTypePattern.FindStringSubmatch(t)
	if m == nil {
		return nil
	}

	size, err := strconv.Atoi(m[2])
	if err != nil {
		return fmt.Errorf("invalid type %q", t)
	}
	if m[1] == "bytes" {
		if size < 1 || size > 32 {
			return fmt.Errorf("invalid type %q", t)
		}
		return nil
	}
	if size < 8 || size > 256 || size%8 != 0 {
		return fmt.Errorf("invalid type %q", t)
	}
	return nil
}
