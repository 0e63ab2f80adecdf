package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		input string
		want  Stage
	}{
		{"RECEIPT_RECORDED", StageReceiptRecorded},
		{"weaving", StageWeaving},
		{" 염색공정 ", StageDyeing},
		{"봉제공정", StageSewing},
		{"출고완료", StageShipped},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStage(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStage("")
	assert.Error(t, err)
	_, err = ParseStage("CANCELED")
	assert.Error(t, err)
}

func TestStage_Progress(t *testing.T) {
	assert.InDelta(t, 0.2, StageReceiptRecorded.Progress(), 1e-9)
	assert.InDelta(t, 0.6, StageDyeing.Progress(), 1e-9)
	assert.InDelta(t, 1.0, StageShipped.Progress(), 1e-9)
	assert.Equal(t, float64(0), Stage("보류").Progress())
}

func TestStage_LabelAndDateColumn(t *testing.T) {
	assert.Equal(t, "발주접수", StageReceiptRecorded.Label())
	assert.Equal(t, "보류", Stage("보류").Label())

	assert.Equal(t, "", StageReceiptRecorded.DateColumn())
	assert.Equal(t, ColumnWeavingDate, StageWeaving.DateColumn())
	assert.Equal(t, ColumnShippingDate, StageShipped.DateColumn())
}

func TestStages_ReturnsCopy(t *testing.T) {
	s := Stages()
	require.Len(t, s, 5)
	s[0] = StageShipped
	assert.Equal(t, StageReceiptRecorded, Stages()[0])
	assert.Equal(t, -1, Stage("x").Index())
	assert.True(t, StageSewing.Valid())
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-01", "2024-3-1", "2024/03/01", "2024.3.1", "2024. 3. 1.", "20240301", "2024-03-01 09:15:00", "2024-03-01T09:15:00+09:00", "2024년 3월 1일"} {
		got, ok := NormalizeDate(in)
		assert.True(t, ok, in)
		assert.Equal(t, "2024-03-01", got, in)
	}

	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("미정")
	assert.Error(t, err)
}
