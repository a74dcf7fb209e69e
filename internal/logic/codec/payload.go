package codec

import (
	"fmt"

	"sol-tx-filter/internal/logic/programs/spltoken"
	"sol-tx-filter/internal/logic/programs/system"
)

// Kind 解码结果的变体标签
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSystem
	KindSplToken
	KindSplToken2022
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "System"
	case KindSplToken:
		return "SplToken"
	case KindSplToken2022:
		return "SplToken2022"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Payload 指令解码结果，封闭集合：SystemPayload / SplTokenPayload / SplToken2022Payload / ErrorPayload / UnknownPayload。
//   - UnknownPayload: 数据合法，但程序不在支持列表中（常见情况）
//   - ErrorPayload: 程序已识别，但数据无法解析
type Payload interface {
	Kind() Kind
	Name() string
	sealed()
}

type SystemPayload struct {
	Instruction system.Instruction
}

type SplTokenPayload struct {
	Instruction spltoken.Instruction
}

type SplToken2022Payload struct {
	Instruction spltoken.Instruction
}

type ErrorPayload struct {
	Message string
}

type UnknownPayload struct{}

func (SystemPayload) Kind() Kind       { return KindSystem }
func (SplTokenPayload) Kind() Kind     { return KindSplToken }
func (SplToken2022Payload) Kind() Kind { return KindSplToken2022 }
func (ErrorPayload) Kind() Kind        { return KindError }
func (UnknownPayload) Kind() Kind      { return KindUnknown }

func (p SystemPayload) Name() string {
	return fmt.Sprintf("System.%s", system.TagName(p.Instruction.Tag()))
}

func (p SplTokenPayload) Name() string {
	return fmt.Sprintf("SplToken.%s", spltoken.OpcodeName(p.Instruction.Opcode()))
}

func (p SplToken2022Payload) Name() string {
	return fmt.Sprintf("SplToken2022.%s", spltoken.OpcodeName(p.Instruction.Opcode()))
}

func (ErrorPayload) Name() string   { return "Error" }
func (UnknownPayload) Name() string { return "Unknown" }

func (SystemPayload) sealed()       {}
func (SplTokenPayload) sealed()     {}
func (SplToken2022Payload) sealed() {}
func (ErrorPayload) sealed()        {}
func (UnknownPayload) sealed()      {}

// TokenInstruction 返回 SPL Token / Token-2022 指令，其他变体返回 false
func TokenInstruction(p Payload) (spltoken.Instruction, bool) {
	switch v := p.(type) {
	case SplTokenPayload:
		return v.Instruction, true
	case SplToken2022Payload:
		return v.Instruction, true
	default:
		return nil, false
	}
}
