package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CategorySeparator splits a categories string into tokens.
const CategorySeparator = ";"

// ErrInvalidFlag indicates a category token that is not of the form name-N.
var ErrInvalidFlag = errors.New("invalid category token")

// CategoryFlag is one name-value token from a categories string.
type CategoryFlag struct {
	Name  string
	Value int64
}

// SplitCategories splits a raw categories string into its tokens.
func SplitCategories(raw string) []string {
	return strings.Split(raw, CategorySeparator)
}

// FlagName derives the column name from a token by dropping its two
// character "-N" suffix.
func FlagName(token string) (string, error) {
	if len(token) < 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidFlag, token)
	}
	return token[:len(token)-2], nil
}

// ParseFlagValue removes every "<name>-" from token and parses what
// remains as an integer. Values outside {0,1} are accepted.
func ParseFlagValue(name, token string) (int64, error) {
	remainder := strings.ReplaceAll(token, name+"-", "")
	value, err := strconv.ParseInt(strings.TrimSpace(remainder), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q for %s", ErrInvalidFlag, token, name)
	}
	return value, nil
}

// ParseFlag splits a single token into its name and value.
func ParseFlag(token string) (CategoryFlag, error) {
	name, err := FlagName(token)
	if err != nil {
		return CategoryFlag{}, err
	}
	value, err := ParseFlagValue(name, token)
	if err != nil {
		return CategoryFlag{}, err
	}
	return CategoryFlag{Name: name, Value: value}, nil
}
