package domain

import (
	"strings"

	apperrors "linentrack/internal/errors"
)

// Stage is a production stage. Values are stored as the code; Label gives
// the name shown to clients.
type Stage string

const (
	StageReceiptRecorded Stage = "RECEIPT_RECORDED"
	StageWeaving         Stage = "WEAVING"
	StageDyeing          Stage = "DYEING"
	StageSewing          Stage = "SEWING"
	StageShipped         Stage = "SHIPPED"
)

var stageOrder = []Stage{
	StageReceiptRecorded,
	StageWeaving,
	StageDyeing,
	StageSewing,
	StageShipped,
}

var stageLabels = map[Stage]string{
	StageReceiptRecorded: "발주접수",
	StageWeaving:         "제직공정",
	StageDyeing:          "염색공정",
	StageSewing:          "봉제공정",
	StageShipped:         "출고완료",
}

// Stages returns the pipeline in order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// ParseStage accepts a stage code (case-insensitive) or its Korean label.
func ParseStage(s string) (Stage, error) {
	v := strings.TrimSpace(s)
	for _, st := range stageOrder {
		if strings.EqualFold(v, string(st)) || v == stageLabels[st] {
			return st, nil
		}
	}
	return "", apperrors.NewValidationError("unknown stage", apperrors.ValidationDetail{
		Field:   "status",
		Message: "status must be one of " + stageList(),
	})
}

func stageList() string {
	names := make([]string, len(stageOrder))
	for i, st := range stageOrder {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index is the zero-based position in the pipeline, or -1 for values that
// are not a known stage.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Progress maps the stage onto (0,1]. Unknown values report 0.
func (s Stage) Progress() float64 {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(stageOrder))
}

// DateColumn names the stage-date column written when an order enters s.
// The initial stage has none; order_date covers it.
func (s Stage) DateColumn() string {
	switch s {
	case StageWeaving:
		return ColumnWeavingDate
	case StageDyeing:
		return ColumnDyeingDate
	case StageSewing:
		return ColumnSewingDate
	case StageShipped:
		return ColumnShippingDate
	}
	return ""
}
