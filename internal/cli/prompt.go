package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user for values that must not appear in shell history.
type Prompter interface {
	Password(title string) (string, error)
	Confirm(title string) (bool, error)
}

// HuhPrompter prompts on the terminal with huh.
type HuhPrompter struct{}

func (HuhPrompter) Password(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Validate(func(s string) error {
			if s == "" {
				return fmt.Errorf("password cannot be empty")
			}
			return nil
		}).
		Run()
	if err != nil {
		return "", err
	}
	return value, nil
}

func (HuhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

// StaticPrompter answers every prompt with fixed values.
type StaticPrompter struct {
	Passwords []string
	Confirmed bool
}

func (p *StaticPrompter) Password(title string) (string, error) {
	if len(p.Passwords) == 0 {
		return "", fmt.Errorf("no password available for %q", title)
	}
	pw := p.Passwords[0]
	p.Passwords = p.Passwords[1:]
	return pw, nil
}

func (p *StaticPrompter) Confirm(string) (bool, error) {
	return p.Confirmed, nil
}
