package entity

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Preview_ShortContentUnchanged(t *testing.T) {
	message := &Message{Content: "Are the eggs still available?"}

	assert.Equal(t, message.Content, message.Preview())
}

func TestMessage_Preview_TruncatesLongContent(t *testing.T) {
	message := &Message{Content: strings.Repeat("a", 150)}

	preview := message.Preview()

	assert.Len(t, preview, 100)
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestMessage_Preview_KeepsMultiByteRunesIntact(t *testing.T) {
	message := &Message{Content: strings.Repeat("é", 150)}

	preview := message.Preview()

	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 100, utf8.RuneCountInString(preview))
	assert.True(t, strings.HasSuffix(preview, "..."))
}
