package gicops

import (
	"errors"
	"testing"

	"github.com/mhaseeb123/gicops/survival"
	"github.com/mhaseeb123/gicops/util"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError_NotEnoughDataBecomesErrNotEnoughCPSMs(t *testing.T) {
	rng := util.NewRNG(99)
	for _, cpsms := range rng.GenerateRandomCPSMs(20, 50) {
		leaf := &survival.NotEnoughDataError{CPSMs: cpsms}
		translated := TranslateError(leaf, 5)

		var got *ErrNotEnoughCPSMs
		if assert.ErrorAs(t, translated, &got) {
			assert.Equal(t, cpsms, got.CPSMs)
			assert.Equal(t, 5, got.MinCPSM)
		}
		assert.ErrorIs(t, translated, ErrNotEnoughData)
	}
}

func TestTranslateError_UnrecognizedErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("some unrelated failure")
	assert.Same(t, sentinel, TranslateError(sentinel, 5))
}

func TestTranslateError_NilIsNil(t *testing.T) {
	assert.NoError(t, TranslateError(nil, 5))
}
