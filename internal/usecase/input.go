package usecase

import "math"

// 数値入力（JSONの数値/数値文字列、フォームの文字列）
// Present=false は未送信、Valid=false は数値として読めなかった
type NumberInput struct {
	Present bool
	Valid   bool
	Value   float64
}

func Number(v float64) NumberInput {
	return NumberInput{Present: true, Valid: true, Value: v}
}

func (n NumberInput) finite() bool {
	return n.Valid && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}

func (n NumberInput) whole() bool {
	return n.finite() && n.Value == math.Trunc(n.Value) && math.Abs(n.Value) < 1<<53
}
