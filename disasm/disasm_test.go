package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassembleAddRegisterAndImmediate(t *testing.T) {
	assert.Equal(t, "ADD R0, R1, R2", Disassemble(0x1042, 0x3001, nil))
	assert.Equal(t, "ADD R0, R0, #-1", Disassemble(0x103F, 0x3001, nil))
}

func TestDisassembleHalt(t *testing.T) {
	assert.Equal(t, "HALT", Disassemble(0xF025, 0x3001, nil))
}

func TestDisassembleBrVariants(t *testing.T) {
	assert.Equal(t, "BR #x3000", Disassemble(0x0FFE, 0x3002, nil))
	assert.Equal(t, "BRz #x3005", Disassemble(0x0405, 0x3000, nil))
}

func TestDisassembleTrapUnnamedVector(t *testing.T) {
	assert.Equal(t, "TRAP x99", Disassemble(0xF099, 0x3001, nil))
}

func TestDisassembleReservedAndZeroFallBackToFill(t *testing.T) {
	assert.Equal(t, ".FILL xD123", Disassemble(0xD123, 0x3000, nil))
	assert.Equal(t, ".FILL x0000", Disassemble(0x0000, 0x3000, nil))
}

func TestDisassembleLabelResolution(t *testing.T) {
	labels := map[uint16]string{0x3000: "LOOP"}
	assert.Equal(t, "BR LOOP", Disassemble(0x0FFE, 0x3002, labels))
}

func TestDisassembleLdrStr(t *testing.T) {
	assert.Equal(t, "LDR R0, R1, #-32", Disassemble(0x6060, 0x3001, nil))
	assert.Equal(t, "STR R0, R1, #31", Disassemble(0x705F, 0x3001, nil))
}

func TestDisassembleRet(t *testing.T) {
	assert.Equal(t, "RET", Disassemble(0xC1C0, 0x3001, nil))
}
