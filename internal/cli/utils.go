package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errInputClosed is returned when input ends before a valid answer
var errInputClosed = errors.New("input closed before a valid answer was given")

// prompter asks questions on out and reads answers from in
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prompts until validator accepts the trimmed answer
func (p *prompter) ask(prompt string, validator func(string) (string, error)) (string, error) {
	for {
		fmt.Fprint(p.out, prompt)
		input, readErr := p.in.ReadString('\n')
		input = strings.TrimSpace(input)

		result, err := validator(input)
		if err == nil {
			return result, nil
		}
		if readErr != nil {
			return "", errInputClosed
		}

		fmt.Fprintf(p.out, "%s\n\n", FormatError(err.Error()))
	}
}

// optional prompts for a value, returning defaultValue on an empty answer
func (p *prompter) optional(label, defaultValue string) (string, error) {
	prompt := fmt.Sprintf("%s [%s]: ", label, defaultValue)
	return p.ask(prompt, func(input string) (string, error) {
		if input == "" {
			return defaultValue, nil
		}
		return input, nil
	})
}

// required prompts for a non-empty value
func (p *prompter) required(label string) (string, error) {
	return p.ask(label+": ", func(input string) (string, error) {
		if input == "" {
			return "", fmt.Errorf("this field is required")
		}
		return input, nil
	})
}

// choice prompts for one of the allowed values
func (p *prompter) choice(label string, allowed []string, defaultValue string) (string, error) {
	prompt := fmt.Sprintf("%s (%s) [%s]: ", label, strings.Join(allowed, "/"), defaultValue)
	return p.ask(prompt, func(input string) (string, error) {
		if input == "" {
			return defaultValue, nil
		}
		for _, v := range allowed {
			if strings.EqualFold(input, v) {
				return v, nil
			}
		}
		return "", fmt.Errorf("invalid choice: %s (expected one of %s)", input, strings.Join(allowed, ", "))
	})
}

// confirm prompts for yes/no, returning defaultYes on an empty answer
func (p *prompter) confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	answer, err := p.ask(fmt.Sprintf("%s (%s): ", label, hint), func(input string) (string, error) {
		switch strings.ToLower(input) {
		case "":
			if defaultYes {
				return "y", nil
			}
			return "n", nil
		case "y", "yes":
			return "y", nil
		case "n", "no":
			return "n", nil
		}
		return "", fmt.Errorf("invalid input: %s (enter y/yes/n/no or press Enter for the default)", input)
	})
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}
