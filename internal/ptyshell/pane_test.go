package ptyshell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicwm/mosaic/internal/session"
)

func newTestPane(cols, rows int) *Pane {
	return &Pane{
		minCols: minCols,
		minRows: minRows,
		cols:    cols,
		rows:    rows,
		grid:    newGrid(cols, rows),
	}
}

func gridString(p *Pane, row int) string {
	return string(p.grid[row])
}

func TestApplyPrintableRunsAdvanceCursor(t *testing.T) {
	p := newTestPane(10, 3)
	p.apply([]byte("hi"))

	assert.Equal(t, "hi        "[:10], gridString(p, 0))
	assert.Equal(t, 2, p.cursorX)
	assert.Equal(t, 0, p.cursorY)
}

func TestApplyWrapsAtLineWidth(t *testing.T) {
	p := newTestPane(4, 3)
	p.apply([]byte("abcde"))

	assert.Equal(t, "abcd", gridString(p, 0))
	assert.Equal(t, "e   ", gridString(p, 1))
	assert.Equal(t, 1, p.cursorX)
	assert.Equal(t, 1, p.cursorY)
}

func TestApplyNewlineAndCarriageReturn(t *testing.T) {
	p := newTestPane(6, 3)
	p.apply([]byte("ab\r\ncd"))

	assert.Equal(t, "ab    ", gridString(p, 0))
	assert.Equal(t, "cd    ", gridString(p, 1))
	assert.Equal(t, 2, p.cursorX)
	assert.Equal(t, 1, p.cursorY)
}

func TestApplyScrollsWhenPastLastRow(t *testing.T) {
	p := newTestPane(3, 2)
	p.apply([]byte("aa\r\nbb\r\ncc"))

	assert.Equal(t, "bb ", gridString(p, 0))
	assert.Equal(t, "cc ", gridString(p, 1))
}

func TestApplySwallowsEscapeSequenceUntilTerminator(t *testing.T) {
	p := newTestPane(10, 2)
	p.apply([]byte("\x1b[31mred"))

	require.Equal(t, "red       "[:10], gridString(p, 0))
	assert.False(t, p.inEscape)
}

func TestApplyBackspaceMovesCursorLeftWithoutErasing(t *testing.T) {
	p := newTestPane(10, 2)
	p.apply([]byte("ab\x7f"))

	assert.Equal(t, 1, p.cursorX)
	assert.Equal(t, "ab        "[:10], gridString(p, 0))
}

func TestApplyTabAdvancesToNextStop(t *testing.T) {
	p := newTestPane(20, 2)
	p.apply([]byte("a\t"))

	assert.Equal(t, tabStop, p.cursorX)
}

func TestResizeGridPreservesOverlap(t *testing.T) {
	p := newTestPane(6, 2)
	p.apply([]byte("abcdef"))

	p.resize(4, 3)

	assert.Equal(t, 4, p.cols)
	assert.Equal(t, 3, p.rows)
	assert.Equal(t, "abcd", gridString(p, 0))
}

func TestSetMinSizeRejectsValuesBelowPackageFloor(t *testing.T) {
	p := NewPane(context.Background(), nil, session.PaneRecord{})
	p.SetMinSize(0, 0)

	assert.Equal(t, minCols, p.minCols)
	assert.Equal(t, minRows, p.minRows)
}

func TestSetMinSizeAcceptsLargerFloor(t *testing.T) {
	p := NewPane(context.Background(), nil, session.PaneRecord{})
	p.SetMinSize(20, 2)

	assert.Equal(t, 20, p.minCols)
	assert.Equal(t, 2, p.minRows)
}
