package reportbro

import (
	"strings"
	"time"

	"github.com/expr-lang/expr"
)

// evalFuncs are helper functions available inside every expression.
var evalFuncs = map[string]any{
	"now": func() time.Time { return time.Now() },
	"round": func(value float64, decimals int) float64 {
		factor := 1.0
		for i := 0; i < decimals; i++ {
			factor *= 10
		}
		v := value * factor
		if v >= 0 {
			v += 0.5
		} else {
			v -= 0.5
		}
		return float64(int64(v)) / factor
	},
	"contains": strings.Contains,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
}

// evalExpression compiles and runs an expression against the given
// environment. The environment contains the resolved parameter values of the
// current context frame chain plus the helper functions above.
func evalExpression(expression string, env map[string]any) (any, error) {
	fullEnv := make(map[string]any, len(env)+len(evalFuncs))
	for name, fn := range evalFuncs {
		fullEnv[name] = fn
	}
	for name, value := range env {
		fullEnv[name] = value
	}
	program, err := expr.Compile(expression, expr.Env(fullEnv))
	if err != nil {
		return nil, err
	}
	return expr.Run(program, fullEnv)
}

// isTruthy reports whether an expression result counts as true: non-zero
// numbers, non-empty strings/collections and boolean true.
func isTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
