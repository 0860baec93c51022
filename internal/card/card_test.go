package card

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name   string
		card   Card
		field  string
		reason Reason
	}{
		{name: "dashes", card: Card{Number: "4111-1111-1111-1111", Expiration: "12/29", CVC: "123"}},
		{name: "spaces", card: Card{Number: "4111 1111 1111 1111", Expiration: "1229", CVC: "123"}},
		{name: "mixed separators", card: Card{Number: `4111.1111/1111\1111`, Expiration: "12-29", CVC: "000"}},
		{name: "letters in number", card: Card{Number: "4111-1111-1111-111a", Expiration: "1229", CVC: "123"}, field: "number", reason: ReasonFormat},
		{name: "empty number", card: Card{Number: "", Expiration: "1229", CVC: "123"}, field: "number", reason: ReasonFormat},
		{name: "fourteen digits", card: Card{Number: "41111111111111", Expiration: "1229", CVC: "123"}, field: "number", reason: ReasonLength},
		{name: "nineteen digits", card: Card{Number: "4111111111111111111", Expiration: "1229", CVC: "123"}, field: "number", reason: ReasonLength},
		{name: "letters in expiration", card: Card{Number: "4111111111111111", Expiration: "12/aa", CVC: "123"}, field: "expiration", reason: ReasonFormat},
		{name: "short expiration", card: Card{Number: "4111111111111111", Expiration: "129", CVC: "123"}, field: "expiration", reason: ReasonLength},
		{name: "letter in cvc", card: Card{Number: "4111111111111111", Expiration: "1229", CVC: "12a"}, field: "cvc", reason: ReasonCVCFormat},
		{name: "four digit cvc", card: Card{Number: "4111111111111111", Expiration: "1229", CVC: "1234"}, field: "cvc", reason: ReasonCVCFormat},
		{name: "cvc not stripped", card: Card{Number: "4111111111111111", Expiration: "1229", CVC: "1-2"}, field: "cvc", reason: ReasonCVCFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFormat(tt.card)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCardNotValid))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
}

func TestNumberRulesCheckedBeforeCVC(t *testing.T) {
	err := CheckFormat(Card{Number: "41111111111111", Expiration: "xx", CVC: "zz"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, ReasonLength, ve.Reason)
}

func TestValidateApproves(t *testing.T) {
	v := NewValidator(NewSimulatedAuthorizer(time.Millisecond))

	a, err := v.Validate(context.Background(), Card{Number: "4111-1111-1111-1111", Expiration: "12/29", CVC: "123"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.Reference)
	assert.False(t, a.ApprovedAt.Before(a.StartedAt))
	assert.Contains(t, a.String(), "Creando compra a las: ")
	assert.Contains(t, a.String(), "Compra aprobada: ")
}

func TestValidateRejectsBeforeAuthorizing(t *testing.T) {
	auth := &countingAuthorizer{}
	v := NewValidator(auth)

	_, err := v.Validate(context.Background(), Card{Number: "123", Expiration: "1229", CVC: "123"})
	assert.ErrorIs(t, err, ErrCardNotValid)
	assert.Zero(t, auth.calls)
}

func TestSimulatedAuthorizerHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedAuthorizer(time.Second).Authorize(ctx, Card{})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingAuthorizer struct{ calls int }

func (c *countingAuthorizer) Authorize(context.Context, Card) (Approval, error) {
	c.calls++
	return Approval{}, nil
}
