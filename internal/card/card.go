// Package card checks the format of payment card data. It does not talk to an issuer:
// approval comes from an Authorizer, which by default is a simulation.
package card

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrCardNotValid = errors.New("card not valid")

type Reason string

const (
	ReasonFormat    Reason = "format"
	ReasonLength    Reason = "length"
	ReasonCVCFormat Reason = "cvc-format"
)

const (
	numberLength = 16
	cvcLength    = 3
)

var separators = strings.NewReplacer("-", "", ".", "", " ", "", "/", "", `\`, "")

// Card is transient card data. It is never persisted.
type Card struct {
	Number     string `json:"number"`
	Expiration string `json:"expiration"`
	CVC        string `json:"cvc"`
}

type ValidationError struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrCardNotValid }

// Approval records a successful authorization.
type Approval struct {
	Reference  string    `json:"reference"`
	StartedAt  time.Time `json:"started_at"`
	ApprovedAt time.Time `json:"approved_at"`
}

func (a Approval) String() string {
	return fmt.Sprintf("Creando compra a las: %s\nCompra aprobada: %s\n",
		a.StartedAt.Format(time.TimeOnly), a.ApprovedAt.Format(time.TimeOnly))
}

type Authorizer interface {
	Authorize(ctx context.Context, c Card) (Approval, error)
}

type Validator struct {
	auth Authorizer
}

func NewValidator(auth Authorizer) *Validator {
	if auth == nil {
		auth = NewSimulatedAuthorizer(0)
	}
	return &Validator{auth: auth}
}

// Validate checks the card format and, when it passes, asks the authorizer for approval.
func (v *Validator) Validate(ctx context.Context, c Card) (Approval, error) {
	if err := CheckFormat(c); err != nil {
		return Approval{}, err
	}
	return v.auth.Authorize(ctx, c)
}

// CheckFormat applies the format rules in order and returns the first failure.
func CheckFormat(c Card) error {
	number := Strip(c.Number)
	if !isDigits(number) {
		return &ValidationError{Field: "number", Reason: ReasonFormat, Message: "Hay caracteres en la tarjeta"}
	}
	if len(number) != numberLength {
		return &ValidationError{Field: "number", Reason: ReasonLength, Message: "Número de tarjeta no válido"}
	}

	exp := Strip(c.Expiration)
	if !isDigits(exp) {
		return &ValidationError{Field: "expiration", Reason: ReasonFormat, Message: "Hay caracteres en la expiración"}
	}
	// MMYY or MM/YY
	if n := len(c.Expiration); n < 4 || n > 5 {
		return &ValidationError{Field: "expiration", Reason: ReasonLength, Message: "La expiración es incorrecta"}
	}

	// no separator stripping on the CVC
	if len(c.CVC) != cvcLength || !isDigits(c.CVC) {
		return &ValidationError{Field: "cvc", Reason: ReasonCVCFormat, Message: "Hay caracteres en el CVC"}
	}
	return nil
}

// Strip removes the accepted separator characters.
func Strip(s string) string { return separators.Replace(s) }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
