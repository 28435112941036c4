package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeqEmptyIsNil(t *testing.T) {
	assert.Equal(t, Nil(), Seq())
}

func TestSeqNonEmpty(t *testing.T) {
	f := Seq(Think("a"), Think("b"))
	assert.Equal(t, TagSeq, f.Tag)
	assert.Len(t, f.Forms, 2)
}

func TestConstructorsSetTag(t *testing.T) {
	assert.Equal(t, TagThink, Think("x").Tag)
	assert.Equal(t, TagDone, Done("summary").Tag)
	assert.Equal(t, TagReboot, Reboot("because").Tag)
	assert.Equal(t, TagInstall, Install("src").Tag)
	assert.Equal(t, TagListTools, ListTools().Tag)
}

func TestInvokeContinuation(t *testing.T) {
	f := Invoke([]ToolCall{{Name: "Echo", RawArgs: []string{"hi"}}}, func(results []ToolResult) Form {
		return Done(results[0].Output)
	})
	next := f.ThenResult([]ToolResult{{Name: "Echo", Output: "hi", Success: true}})
	assert.Equal(t, TagDone, next.Tag)
	assert.Equal(t, "hi", next.Summary)
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "Think", TagThink.String())
	assert.Equal(t, "Unknown", Tag(999).String())
}
