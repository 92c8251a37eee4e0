package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ebbieaden/ensdapp/ui"
)

const (
	NEXT   int = -1
	BACK   int = -2
	CUSTOM int = -3
	// ABORT means the input ended without a valid answer.
	ABORT int = -4
)

var errInputClosed = errors.New("input closed")

// PromptInput shows an optional label and reads a line.
func PromptInput(u ui.UI, label string) string {
	if label != "" {
		u.Info(label)
	}
	return strings.TrimSpace(u.Ask(nil))
}

// PromptIndex shows a label and loops until the user enters a valid index in
// [min, max] or one of the navigation keywords "next", "back", "custom".
func PromptIndex(u ui.UI, label string, min, max int) int {
	if label != "" {
		u.Info(label)
	}
	keywords := map[string]int{"next": NEXT, "back": BACK, "custom": CUSTOM}
	validate := func(input string) error {
		if _, ok := keywords[input]; ok {
			return nil
		}
		index, err := strconv.Atoi(input)
		if err != nil {
			return fmt.Errorf("please enter a number between %d and %d, or 'next' / 'back' / 'custom'", min, max)
		}
		if index < min || max < index {
			return fmt.Errorf("please enter a number between %d and %d", min, max)
		}
		return nil
	}

	input := strings.TrimSpace(u.Ask(func(s string) error {
		return validate(strings.TrimSpace(s))
	}))
	if validate(input) != nil {
		return ABORT
	}
	if k, ok := keywords[input]; ok {
		return k
	}
	index, _ := strconv.Atoi(input)
	return index
}
