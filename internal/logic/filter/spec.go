package filter

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TypeAccountInclude   = "account_include"
	TypeAccountExclude   = "account_exclude"
	TypeSignatureInclude = "signature_include"
	TypeSignatureExclude = "signature_exclude"
	TypeStatus           = "status"
	TypeDeleteAll        = "delete_all"
	TypeCircleSwap       = "circle_swap"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

var ErrInvalidSpec = errors.New("invalid filter spec")

// Spec 单个过滤器的声明式配置
type Spec struct {
	Type       string
	Accounts   []string
	Signatures []string
	Status     string
}

// BuildPipeline 按配置顺序构造 Pipeline
func BuildPipeline(specs []Spec) (*Pipeline, error) {
	stages := make([]Stage, 0, len(specs))
	for i, spec := range specs {
		stage, err := buildStage(spec)
		if err != nil {
			return nil, fmt.Errorf("filter #%d: %w", i, err)
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}

func buildStage(spec Spec) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Type)) {
	case TypeAccountInclude:
		return Bind[noContext](NewAccountInclude(spec.Accounts)), nil
	case TypeAccountExclude:
		return Bind[noContext](NewAccountExclude(spec.Accounts)), nil
	case TypeSignatureInclude:
		return Bind[noContext](NewSignatureInclude(spec.Signatures)), nil
	case TypeSignatureExclude:
		return Bind[noContext](NewSignatureExclude(spec.Signatures)), nil
	case TypeStatus:
		switch strings.ToLower(spec.Status) {
		case StatusSuccess:
			return Bind[noContext](NewStatus(true)), nil
		case StatusFail, "failed":
			return Bind[noContext](NewStatus(false)), nil
		default:
			return nil, fmt.Errorf("%w: status must be %q or %q, got %q", ErrInvalidSpec, StatusSuccess, StatusFail, spec.Status)
		}
	case TypeDeleteAll:
		return Bind[noContext](DeleteAll{}), nil
	case TypeCircleSwap:
		return Bind[seenSources](CircleSwap{}), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSpec, spec.Type)
	}
}
