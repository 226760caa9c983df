package abicodec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSignature parses "name(type1,type2,...)" into a Function with
// no declared outputs. The function name must match
// [A-Za-z_][A-Za-z0-9_]*. The parameter list is split on top-level
// commas (parenthesis depth tracked) so tuple(...) arguments are kept
// intact.
func ParseSignature(expr string) (Function, error) {
	expr = strings.TrimSpace(expr)
	open := strings.IndexByte(expr, '(')
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return Function{}, fmt.Errorf("abicodec: %q is not a valid signature", expr)
	}
	name := expr[:open]
	if !reName.MatchString(name) {
		return Function{}, fmt.Errorf("abicodec: invalid function name %q", name)
	}
	body := expr[open+1 : len(expr)-1]
	parts, err := splitTopLevel(body)
	if err != nil {
		return Function{}, fmt.Errorf("abicodec: %q: %w", expr, err)
	}
	inputs := make([]Argument, 0, len(parts))
	for _, p := range parts {
		arg, err := parseArgument(p)
		if err != nil {
			return Function{}, fmt.Errorf("abicodec: %q: %w", expr, err)
		}
		inputs = append(inputs, arg)
	}
	return Function{Name: name, Inputs: inputs}, nil
}

// splitTopLevel splits a comma-separated parameter list on commas that
// sit at parenthesis depth zero, preserving commas nested inside
// tuple(...) groups. An empty (whitespace-only) body yields no parts.
func splitTopLevel(body string) ([]string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	var parts []string
	depth := 0
	start := 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses")
	}
	parts = append(parts, body[start:])
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// parseArgument parses a single "type" or "type name" token, splitting
// on the last top-level space, into an Argument.
func parseArgument(token string) (Argument, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Argument{}, fmt.Errorf("empty argument")
	}
	typeExpr, name := splitTypeAndName(token)
	typ, err := ParseType(typeExpr)
	if err != nil {
		return Argument{}, err
	}
	return Argument{Name: name, Type: typ}, nil
}

// splitTypeAndName separates a trailing identifier name from a type
// expression, e.g. "tuple(uint256,address)[] recipients" ->
// ("tuple(uint256,address)[]", "recipients"). The split point is the
// last top-level space (outside any parentheses).
func splitTypeAndName(token string) (string, string) {
	depth := 0
	lastSpace := -1
	for i, r := range token {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ' ':
			if depth == 0 {
				lastSpace = i
			}
		}
	}
	if lastSpace < 0 {
		return token, ""
	}
	return strings.TrimSpace(token[:lastSpace]), strings.TrimSpace(token[lastSpace+1:])
}

// ParseType parses a single type expression, including trailing array
// dimensions and tuple(...) component lists. Array dimensions are
// peeled off the end of the string, right to left, so "uint256[2][]"
// yields Dims [dynamic, 2]: the outermost (first-decoded) dimension
// first.
func ParseType(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Type{}, fmt.Errorf("empty type")
	}

	var dims []int
	for strings.HasSuffix(expr, "]") {
		open := strings.LastIndexByte(expr, '[')
		if open < 0 {
			return Type{}, fmt.Errorf("unbalanced array brackets in %q", expr)
		}
		inner := expr[open+1 : len(expr)-1]
		expr = expr[:open]
		if inner == "" {
			dims = append(dims, dynamicDim)
			continue
		}
		n, err := strconv.Atoi(inner)
		if err != nil || n <= 0 {
			return Type{}, fmt.Errorf("invalid array dimension [%s]", inner)
		}
		dims = append(dims, n)
	}

	if strings.HasPrefix(expr, "tuple(") && strings.HasSuffix(expr, ")") {
		inner := expr[len("tuple(") : len(expr)-1]
		parts, err := splitTopLevel(inner)
		if err != nil {
			return Type{}, fmt.Errorf("tuple components: %w", err)
		}
		components := make([]Argument, 0, len(parts))
		for _, p := range parts {
			arg, err := parseArgument(p)
			if err != nil {
				return Type{}, fmt.Errorf("tuple component: %w", err)
			}
			components = append(components, arg)
		}
		return Type{Base: "tuple", Dims: dims, Components: components}, nil
	}

	if err := validateScalarBase(expr); err != nil {
		return Type{}, err
	}
	return Type{Base: expr, Dims: dims}, nil
}

func validateScalarBase(base string) error {
	switch {
	case base == "address", base == "bool", base == "bytes", base == "string":
		return nil
	case base == "uint", base == "int":
		return nil
	case strings.HasPrefix(base, "uint"):
		if reUint.MatchString(base) {
			return nil
		}
	case strings.HasPrefix(base, "int"):
		if reInt.MatchString(base) {
			return nil
		}
	case strings.HasPrefix(base, "bytes"):
		if reBytes.MatchString(base) {
			return nil
		}
	}
	return fmt.Errorf("abicodec: unknown or invalid type %q", base)
}
