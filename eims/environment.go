package eims

import (
	"fmt"
	"strings"
)

type Environment int

const (
	Test Environment = iota
	Prod
)

func (e Environment) BaseURL() string {
	switch e {
	case Prod:
		return "https://core.mor.gov.et"
	case Test:
		return "https://core-test.mor.gov.et"
	}
	panic("Invalid environment")
}

func (e Environment) Name() string {
	switch e {
	case Prod:
		return "prod"
	case Test:
		return "test"
	}
	panic("Invalid environment")
}

func (e *Environment) UnmarshalText(text []byte) error {
	val := strings.ToLower(strings.TrimSpace(string(text)))

	switch val {
	case "prod":
		*e = Prod
	case "test":
		*e = Test
	default:
		return fmt.Errorf("invalid EIMS_ENV: %q (allowed: prod, test)", val)
	}
	return nil
}

// LoginURL is the token endpoint for the environment.
func (e Environment) LoginURL() string {
	return e.BaseURL() + "/auth/login"
}

// SubmitURL is the invoice registration endpoint for the environment.
func (e Environment) SubmitURL() string {
	return e.BaseURL() + "/v1/register"
}
