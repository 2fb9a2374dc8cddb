package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"secondhand/internal/usecase"
)

// JSONの数値か数値文字列を受ける（"2" も 2 も可）
type flexNumber struct {
	in usecase.NumberInput
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if string(raw) == "null" {
		n.in = usecase.NumberInput{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		n.in = usecase.Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n.in = parseNumber(s)
		return nil
	}

	//bool・配列・オブジェクトは数値として読めない
	n.in = usecase.NumberInput{Present: true}
	return nil
}

func (n flexNumber) input() usecase.NumberInput { return n.in }

func parseNumber(s string) usecase.NumberInput {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return usecase.NumberInput{Present: true}
	}
	return usecase.Number(f)
}

// フォームの値。空文字は未送信扱い
func formNumber(s string) usecase.NumberInput {
	if strings.TrimSpace(s) == "" {
		return usecase.NumberInput{}
	}
	return parseNumber(s)
}

// true/false と "true"/"false" を受ける
type flexBool struct {
	set   bool
	value bool
}

func (v *flexBool) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if string(raw) == "null" {
		*v = flexBool{}
		return nil
	}

	var x bool
	if err := json.Unmarshal(raw, &x); err == nil {
		*v = flexBool{set: true, value: x}
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*v = flexBool{set: true, value: parseBool(s)}
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*v = flexBool{set: true, value: f != 0}
		return nil
	}

	*v = flexBool{set: true}
	return nil
}

func (v flexBool) ptr() *bool {
	if !v.set {
		return nil
	}
	b := v.value
	return &b
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
