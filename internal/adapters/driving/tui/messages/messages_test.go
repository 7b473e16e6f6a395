package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

func TestViewType_String(t *testing.T) {
	testCases := []struct {
		view     ViewType
		expected string
	}{
		{ViewLoading, "loading"},
		{ViewReader, "reader"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.view.String())
		})
	}
}

func TestViewChanged(t *testing.T) {
	msg := ViewChanged{View: ViewHelp}

	assert.Equal(t, ViewHelp, msg.View)
}

func TestSessionOpened(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := errors.New("recovery failed")
		msg := SessionOpened{Err: err}

		assert.Nil(t, msg.Session)
		assert.Equal(t, err, msg.Err)
	})

	t.Run("without error", func(t *testing.T) {
		msg := SessionOpened{}

		assert.NoError(t, msg.Err)
	})
}

func TestPositionSettled(t *testing.T) {
	chunk := 12
	fraction := 0.25
	msg := PositionSettled{
		Update: driving.PositionUpdate{
			PositionID: "vibe://3/120",
			ChunkIndex: &chunk,
			Fraction:   &fraction,
			Chapter:    3,
		},
	}

	assert.Equal(t, "vibe://3/120", msg.Update.PositionID)
	assert.Equal(t, 12, *msg.Update.ChunkIndex)
	assert.InDelta(t, 0.25, *msg.Update.Fraction, 1e-9)
	assert.Equal(t, 3, msg.Update.Chapter)
}

func TestPositionSettled_WithoutIndex(t *testing.T) {
	msg := PositionSettled{
		Update: driving.PositionUpdate{PositionID: "vibe://0/0", Chapter: 0},
	}

	assert.Nil(t, msg.Update.ChunkIndex)
	assert.Nil(t, msg.Update.Fraction)
}

func TestErrorOccurred(t *testing.T) {
	err := errors.New("something went wrong")
	msg := ErrorOccurred{Err: err}

	assert.Equal(t, err, msg.Err)
}
