package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/extism/go-pdk"
)

type calcInput struct {
	Expression string `json:"expression"`
}

// handle evaluates an arithmetic expression and writes the result as plain
// text, so the host can feed it straight back to the model.
//
//export handle
func handle() int32 {
	var req calcInput
	if err := json.Unmarshal(pdk.Input(), &req); err != nil {
		pdk.SetError(fmt.Errorf("invalid input: %w", err))
		return 1
	}
	if strings.TrimSpace(req.Expression) == "" {
		pdk.SetErrorString("expression is required")
		return 1
	}

	result, err := eval(req.Expression)
	if err != nil {
		pdk.SetError(err)
		return 1
	}

	pdk.OutputString(formatNumber(result))
	return 0
}

// formatNumber renders integers without a decimal point and everything
// else with minimal digits.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// eval parses and evaluates an arithmetic expression with precedence
// climbing. Supported: + - * / % ^, unary minus, parentheses.
func eval(expr string) (float64, error) {
	e := &evaluator{src: expr}
	v, err := e.parseBinary(0)
	if err != nil {
		return 0, err
	}
	e.skipSpaces()
	if e.pos < len(e.src) {
		return 0, fmt.Errorf("unexpected %q at offset %d", e.src[e.pos], e.pos)
	}
	return v, nil
}

type evaluator struct {
	src string
	pos int
}

// precedence returns the binding power of the operator at the cursor, or
// -1 when no binary operator follows.
func (e *evaluator) precedence() int {
	e.skipSpaces()
	if e.pos >= len(e.src) {
		return -1
	}
	switch e.src[e.pos] {
	case '+', '-':
		return 1
	case '*', '/', '%':
		return 2
	case '^':
		return 3
	default:
		return -1
	}
}

func (e *evaluator) parseBinary(minPrec int) (float64, error) {
	left, err := e.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		prec := e.precedence()
		if prec < minPrec || prec == -1 {
			return left, nil
		}

		op := e.src[e.pos]
		e.pos++

		// Exponentiation is right-associative.
		nextMin := prec + 1
		if op == '^' {
			nextMin = prec
		}

		right, err := e.parseBinary(nextMin)
		if err != nil {
			return 0, err
		}

		switch op {
		case '+':
			left += right
		case '-':
			left -= right
		case '*':
			left *= right
		case '/':
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case '%':
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		case '^':
			left = math.Pow(left, right)
		}
	}
}

func (e *evaluator) parseUnary() (float64, error) {
	e.skipSpaces()
	if e.pos < len(e.src) && e.src[e.pos] == '-' {
		e.pos++
		v, err := e.parseUnary()
		return -v, err
	}
	return e.parsePrimary()
}

func (e *evaluator) parsePrimary() (float64, error) {
	e.skipSpaces()
	if e.pos >= len(e.src) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	if e.src[e.pos] == '(' {
		e.pos++
		v, err := e.parseBinary(0)
		if err != nil {
			return 0, err
		}
		e.skipSpaces()
		if e.pos >= len(e.src) || e.src[e.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		e.pos++
		return v, nil
	}

	start := e.pos
	for e.pos < len(e.src) && (isDigit(e.src[e.pos]) || e.src[e.pos] == '.') {
		e.pos++
	}
	if e.pos == start {
		return 0, fmt.Errorf("unexpected %q at offset %d", e.src[e.pos], e.pos)
	}

	v, err := strconv.ParseFloat(e.src[start:e.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", e.src[start:e.pos])
	}
	return v, nil
}

func (e *evaluator) skipSpaces() {
	for e.pos < len(e.src) && (e.src[e.pos] == ' ' || e.src[e.pos] == '\t') {
		e.pos++
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func main() {}
