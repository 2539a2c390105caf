package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lc3toolchain/lc3/parser"
)

func assembleSource(t *testing.T, src string) *Result {
	t.Helper()
	p := parser.NewParser(src)
	prog, err := p.Parse()
	require.NoError(t, err)
	require.False(t, p.Errors().HasErrors(), "unexpected parse errors: %v", p.Errors().Errors)
	return Assemble(prog)
}

func TestAssembleAddAndHalt(t *testing.T) {
	res := assembleSource(t, ".ORIG x3000\nADD R0, R1, R2\nHALT\n.END\n")
	require.False(t, res.Errors.HasErrors())
	require.Len(t, res.Segments, 1)
	assert.Equal(t, uint16(0x3000), res.Segments[0].Origin)
	assert.Equal(t, []uint16{0x1042, 0xF025}, res.Segments[0].Code)
}

func TestAssembleLoopBranch(t *testing.T) {
	res := assembleSource(t, ".ORIG x3000\nLOOP ADD R0, R0, #1\nBRnzp LOOP\n.END\n")
	require.False(t, res.Errors.HasErrors())
	require.Len(t, res.Segments, 1)
	code := res.Segments[0].Code
	require.Len(t, code, 2)
	// BR word: opcode 0, nzp=111, offset9 = -2 (0x1FE) -> 0x0FFE
	assert.Equal(t, uint16(0x0FFE), code[1])
}

func TestMultiSegmentWithCrossSegmentFill(t *testing.T) {
	src := ".ORIG x0000\n.FILL HANDLER\n.END\n" +
		".ORIG x0400\nHANDLER ADD R0, R0, R0\n.END\n" +
		".ORIG x0500\nHALT\n.END\n"
	res := assembleSource(t, src)
	require.False(t, res.Errors.HasErrors())
	require.Len(t, res.Segments, 3)
	assert.Equal(t, uint16(0x0000), res.Segments[0].Origin)
	assert.Equal(t, uint16(0x0400), res.Segments[1].Origin)
	assert.Equal(t, uint16(0x0500), res.Segments[2].Origin)
	assert.Equal(t, uint16(0x0400), res.Segments[0].Code[0]) // resolved absolute address
}

func TestAddImmediateBoundaries(t *testing.T) {
	ok := assembleSource(t, ".ORIG x3000\nADD R0, R0, #-16\nADD R0, R0, #15\n.END\n")
	assert.False(t, ok.Errors.HasErrors())

	bad := assembleSource(t, ".ORIG x3000\nADD R0, R0, #-17\n.END\n")
	assert.True(t, bad.Errors.HasErrors())

	bad2 := assembleSource(t, ".ORIG x3000\nADD R0, R0, #16\n.END\n")
	assert.True(t, bad2.Errors.HasErrors())
}

func TestLdrStrOffsetBoundaries(t *testing.T) {
	ok := assembleSource(t, ".ORIG x3000\nLDR R0, R1, #-32\nSTR R0, R1, #31\n.END\n")
	assert.False(t, ok.Errors.HasErrors())

	bad := assembleSource(t, ".ORIG x3000\nLDR R0, R1, #-33\n.END\n")
	assert.True(t, bad.Errors.HasErrors())

	bad2 := assembleSource(t, ".ORIG x3000\nLDR R0, R1, #32\n.END\n")
	assert.True(t, bad2.Errors.HasErrors())
}

func TestUndefinedLabelIsSemanticError(t *testing.T) {
	res := assembleSource(t, ".ORIG x3000\nBRZ MISSING\n.END\n")
	require.True(t, res.Errors.HasErrors())
	found := false
	for _, e := range res.Errors.Errors {
		if e.Kind == ErrorUndefinedSymbol {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStringzAndBlkwSizes(t *testing.T) {
	res := assembleSource(t, ".ORIG x3000\nS .STRINGZ \"\"\nB .BLKW 0\nHALT\n.END\n")
	require.False(t, res.Errors.HasErrors())
	// "" -> 1 word (terminator); BLKW 0 -> 0 words; HALT -> 1 word.
	assert.Len(t, res.Segments[0].Code, 2)
}

func TestRetEncodesAsJmpR7(t *testing.T) {
	res := assembleSource(t, ".ORIG x3000\nRET\n.END\n")
	require.False(t, res.Errors.HasErrors())
	assert.Equal(t, []uint16{0xC1C0}, res.Segments[0].Code)
}
